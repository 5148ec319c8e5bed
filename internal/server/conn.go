package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/tunegrid/jukebox/internal/broadcast"
	"github.com/tunegrid/jukebox/internal/core/ports"
	"github.com/tunegrid/jukebox/internal/metrics"
)

// Line length bounds for the request scanner. A client sending an oversized
// line is a transport error and loses its connection.
const (
	scannerInitialBuffer = 64 * 1024
	scannerMaxLine       = 1024 * 1024
)

// connHandler runs the per-connection loop: read a line, dispatch, write the
// response. Requests on one connection are handled strictly in order; the
// only state carried between lines is the token inside each request payload.
type connHandler struct {
	conn     net.Conn
	channel  *broadcast.Channel
	accounts ports.AccountService
	catalog  ports.CatalogService
	registry *broadcast.Registry
	validate *payloadValidator
	log      zerolog.Logger
}

func newConnHandler(conn net.Conn, accounts ports.AccountService, catalog ports.CatalogService,
	registry *broadcast.Registry, validate *payloadValidator, log zerolog.Logger) *connHandler {
	return &connHandler{
		conn:     conn,
		channel:  broadcast.NewChannel(conn),
		accounts: accounts,
		catalog:  catalog,
		registry: registry,
		validate: validate,
		log:      log.With().Str("remote_addr", conn.RemoteAddr().String()).Logger(),
	}
}

// run owns the connection until EOF or a transport error. Deregistration and
// socket close happen on every exit path.
func (h *connHandler) run() {
	defer func() {
		h.registry.Unregister(h.channel)
		h.conn.Close()
		h.log.Info().Msg("client disconnected")
	}()

	h.registry.Register(h.channel)
	h.log.Info().Msg("client connected")

	sc := bufio.NewScanner(h.conn)
	sc.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxLine)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		resp := h.handleLine(line)
		out, err := json.Marshal(resp)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to encode response")
			continue
		}
		if err := h.channel.WriteLine(out); err != nil {
			h.log.Warn().Err(err).Msg("write failed, closing connection")
			return
		}
	}
	if err := sc.Err(); err != nil {
		h.log.Warn().Err(err).Msg("read failed, closing connection")
	}
}

// handleLine turns one request line into one response. Malformed JSON and
// domain failures produce ok:false; nothing here ends the connection.
func (h *connHandler) handleLine(line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		metrics.RequestsTotal.WithLabelValues("unknown", "error").Inc()
		return Response{OK: false, Error: "invalid request JSON"}
	}

	result, err := h.dispatch(req)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(req.Action, "error").Inc()
		h.log.Debug().Str("action", req.Action).Str("req_id", req.ReqID).Err(err).Msg("request failed")
		return Response{ReqID: req.ReqID, OK: false, Error: err.Error()}
	}
	metrics.RequestsTotal.WithLabelValues(req.Action, "ok").Inc()
	return Response{ReqID: req.ReqID, OK: true, Result: result}
}

// dispatch decodes the action payload and calls the matching domain
// operation.
func (h *connHandler) dispatch(req Request) (any, error) {
	switch req.Action {
	case "signup":
		var d signupData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.accounts.Signup(d.Username, d.Email, d.Password)

	case "login":
		var d loginData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.accounts.Login(d.UserOrEmail, d.Password)

	case "me":
		return h.accounts.Me(req.Token)

	case "updateProfile":
		var d updateProfileData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.accounts.UpdateProfile(req.Token, d.Username, d.Email)

	case "addCredit":
		var d addCreditData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.accounts.AddCredit(req.Token, d.Amount)

	case "subscription":
		var d subscriptionData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.accounts.SetSubscription(req.Token, d.Plan)

	case "purchase":
		var d purchaseData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.accounts.Purchase(req.Token, d.SongID)

	case "categories":
		return h.catalog.Categories(), nil

	case "songs":
		var d songsData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.catalog.SongsByCategory(d.Category), nil

	case "rate":
		var d rateData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.catalog.Rate(d.SongID, d.Value)

	case "comments":
		var d commentsData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.catalog.Comments(d.SongID), nil

	case "addComment":
		var d addCommentData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.catalog.AddComment(req.Token, d.SongID, d.Text)

	case "likeComment":
		var d likeCommentData
		if err := h.decode(req.Data, &d); err != nil {
			return nil, err
		}
		return h.catalog.VoteComment(d.CommentID, d.Up)

	default:
		return nil, fmt.Errorf("unknown action: %s", req.Action)
	}
}

// decode unmarshals the request's data object into the action payload and
// validates it. A missing data object decodes as the zero payload, which the
// validator rejects when the action has required fields.
func (h *connHandler) decode(data json.RawMessage, into any) error {
	if len(data) > 0 {
		if err := json.Unmarshal(data, into); err != nil {
			return fmt.Errorf("invalid data payload: %w", err)
		}
	}
	return h.validate.Validate(into)
}
