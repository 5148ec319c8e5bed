package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tunegrid/jukebox/internal/broadcast"
	"github.com/tunegrid/jukebox/internal/core/domain"
	"github.com/tunegrid/jukebox/internal/core/store"
)

// testClient drives the line protocol against a running server.
type testClient struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
	nextID int
}

type wireResponse struct {
	ReqID  string          `json:"reqId"`
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func startTestServer(t *testing.T) (*Server, *store.Store, *broadcast.Registry) {
	t.Helper()
	st := store.New("test-secret", zerolog.Nop())
	registry := broadcast.NewRegistry(zerolog.Nop())
	srv := New("127.0.0.1:0", st, st, registry, zerolog.Nop())
	if err := srv.Start(); err != nil {
		t.Fatalf("server start failed: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv, st, registry
}

func dialTestServer(t *testing.T, srv *Server) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return &testClient{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

func (c *testClient) sendRaw(line string) {
	c.t.Helper()
	if _, err := fmt.Fprintf(c.conn, "%s\n", line); err != nil {
		c.t.Fatalf("send failed: %v", err)
	}
}

func (c *testClient) call(action, token string, data any) wireResponse {
	c.t.Helper()
	c.nextID++
	req := map[string]any{
		"reqId":  fmt.Sprintf("req-%d", c.nextID),
		"action": action,
	}
	if token != "" {
		req["token"] = token
	}
	if data != nil {
		req["data"] = data
	}
	line, err := json.Marshal(req)
	if err != nil {
		c.t.Fatalf("marshal request: %v", err)
	}
	c.sendRaw(string(line))

	resp := c.readResponse()
	if resp.ReqID != req["reqId"] {
		c.t.Fatalf("response correlation broken: sent %v, got %q", req["reqId"], resp.ReqID)
	}
	return resp
}

func (c *testClient) readResponse() wireResponse {
	c.t.Helper()
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		c.t.Fatalf("read failed: %v", err)
	}
	var resp wireResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		c.t.Fatalf("bad response line %q: %v", line, err)
	}
	return resp
}

func (c *testClient) mustOK(action, token string, data any) json.RawMessage {
	c.t.Helper()
	resp := c.call(action, token, data)
	if !resp.OK {
		c.t.Fatalf("%s failed: %s", action, resp.Error)
	}
	return resp.Result
}

func decodeInto(t *testing.T, raw json.RawMessage, into any) {
	t.Helper()
	if err := json.Unmarshal(raw, into); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func TestEndToEnd_FullScenario(t *testing.T) {
	srv, st, _ := startTestServer(t)
	st.AddSong(&domain.Song{
		ID: "song-1", Title: "As It Was", Artist: "Harry Styles", Category: "Pop",
		Price: 1.29, RatingAverage: 4.8, RatingCount: 5000, Downloads: 100,
		AddedAt: time.Now().UTC(),
	})

	c := dialTestServer(t, srv)

	var auth struct {
		Token string          `json:"token"`
		User  domain.UserView `json:"user"`
	}
	decodeInto(t, c.mustOK("signup", "", map[string]any{
		"username": "demo", "email": "demo@x.com", "password": "Passw0rd",
	}), &auth)
	if auth.Token == "" || auth.User.Username != "demo" {
		t.Fatalf("unexpected signup result: %+v", auth)
	}
	tokenA := auth.Token

	decodeInto(t, c.mustOK("login", "", map[string]any{
		"userOrEmail": "demo", "password": "Passw0rd",
	}), &auth)
	tokenB := auth.Token
	if tokenB == tokenA {
		t.Fatalf("login should issue a fresh token")
	}
	// Both tokens stay valid.
	c.mustOK("me", tokenA, nil)
	c.mustOK("me", tokenB, nil)

	var purchase struct {
		OK     bool    `json:"ok"`
		Credit float64 `json:"credit"`
	}
	decodeInto(t, c.mustOK("purchase", tokenA, map[string]any{"songId": "song-1"}), &purchase)
	if math.Abs(purchase.Credit-198.71) > 1e-9 {
		t.Fatalf("expected credit 198.71, got %v", purchase.Credit)
	}

	var rating struct {
		RatingAverage float64 `json:"ratingAverage"`
		RatingCount   int     `json:"ratingCount"`
	}
	decodeInto(t, c.mustOK("rate", "", map[string]any{"songId": "song-1", "value": 5.0}), &rating)
	want := (4.8*5000 + 5.0) / 5001
	if math.Abs(rating.RatingAverage-want) > 1e-9 || rating.RatingCount != 5001 {
		t.Fatalf("unexpected rating result: %+v", rating)
	}

	var songs []domain.SongView
	decodeInto(t, c.mustOK("songs", "", map[string]any{"category": "Pop"}), &songs)
	if len(songs) != 1 || songs[0].Downloads != 101 {
		t.Fatalf("unexpected songs listing: %+v", songs)
	}

	var comment domain.CommentView
	decodeInto(t, c.mustOK("addComment", tokenB, map[string]any{
		"songId": "song-1", "text": "classic",
	}), &comment)
	if comment.User != "demo" {
		t.Fatalf("comment author should be the username snapshot, got %q", comment.User)
	}

	var vote struct {
		Likes    int `json:"likes"`
		Dislikes int `json:"dislikes"`
	}
	decodeInto(t, c.mustOK("likeComment", "", map[string]any{
		"commentId": comment.ID, "up": true,
	}), &vote)
	if vote.Likes != 1 {
		t.Fatalf("unexpected vote result: %+v", vote)
	}
}

func TestServer_DomainErrorsDoNotCloseConnection(t *testing.T) {
	srv, _, _ := startTestServer(t)
	c := dialTestServer(t, srv)

	if resp := c.call("purchase", "bogus-token", map[string]any{"songId": "x"}); resp.OK || resp.Error != "invalid token" {
		t.Fatalf("expected invalid token error, got %+v", resp)
	}
	if resp := c.call("login", "", map[string]any{"userOrEmail": "ghost", "password": "x"}); resp.OK || resp.Error != "user not found" {
		t.Fatalf("expected user not found, got %+v", resp)
	}
	// Connection still usable.
	c.mustOK("categories", "", nil)
}

func TestServer_UnknownActionNamesTheAction(t *testing.T) {
	srv, _, _ := startTestServer(t)
	c := dialTestServer(t, srv)

	resp := c.call("discombobulate", "", nil)
	if resp.OK || resp.Error != "unknown action: discombobulate" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestServer_MalformedJSONFailsSingleRequest(t *testing.T) {
	srv, _, _ := startTestServer(t)
	c := dialTestServer(t, srv)

	c.sendRaw(`{this is not json`)
	resp := c.readResponse()
	if resp.OK || resp.Error != "invalid request JSON" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	// Connection survives and the next request succeeds.
	c.mustOK("categories", "", nil)
}

func TestServer_ValidationErrors(t *testing.T) {
	srv, _, _ := startTestServer(t)
	c := dialTestServer(t, srv)

	resp := c.call("signup", "", map[string]any{"username": "x"})
	if resp.OK || resp.Error == "" {
		t.Fatalf("expected validation failure, got %+v", resp)
	}

	// Missing data object behaves like empty fields.
	resp = c.call("purchase", "", nil)
	if resp.OK {
		t.Fatalf("expected missing songId to fail")
	}
}

func TestServer_ResponsesAreFIFOPerConnection(t *testing.T) {
	srv, _, _ := startTestServer(t)
	c := dialTestServer(t, srv)

	const n = 20
	for i := 0; i < n; i++ {
		c.sendRaw(fmt.Sprintf(`{"reqId":"seq-%d","action":"categories"}`, i))
	}
	for i := 0; i < n; i++ {
		resp := c.readResponse()
		if resp.ReqID != fmt.Sprintf("seq-%d", i) {
			t.Fatalf("responses out of order: expected seq-%d, got %s", i, resp.ReqID)
		}
	}
}

func TestServer_BroadcastReachesAllConnections(t *testing.T) {
	srv, _, registry := startTestServer(t)

	c1 := dialTestServer(t, srv)
	c2 := dialTestServer(t, srv)

	// Registration happens on connect; wait for both.
	deadline := time.Now().Add(2 * time.Second)
	for registry.Count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("connections not registered, count=%d", registry.Count())
		}
		time.Sleep(5 * time.Millisecond)
	}

	registry.Broadcast(broadcast.Event{Event: "new_release", Song: map[string]string{"id": "s9"}})

	for _, c := range []*testClient{c1, c2} {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			t.Fatalf("event read failed: %v", err)
		}
		var ev struct {
			Event string `json:"event"`
		}
		if err := json.Unmarshal(line, &ev); err != nil || ev.Event != "new_release" {
			t.Fatalf("unexpected event line %q", line)
		}
	}
}

func TestServer_DisconnectDeregisters(t *testing.T) {
	srv, _, registry := startTestServer(t)

	c := dialTestServer(t, srv)
	c.mustOK("categories", "", nil)
	c.conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for registry.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("disconnected client still registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
