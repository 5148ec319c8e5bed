// Package persistence serializes the domain store to a single JSON document
// on disk and reads it back. Decoding is deliberately forgiving: documents
// written by older or hand-edited deployments load with field-level defaults
// instead of failing, and one bad record never aborts the whole load.
package persistence

import (
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tunegrid/jukebox/internal/core/ports"
)

// Defaults substituted for absent or unusable numeric fields.
const (
	defaultPrice       = 0.0
	defaultRating      = 4.5
	defaultRatingCount = 1
	defaultDownloads   = 0
)

// Encode renders the snapshot as the canonical on-disk document:
// {"users":[…],"songs":[…],"comments":[…]}.
func Encode(snap ports.Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// Decode parses an on-disk document into a snapshot. Records that fail to
// parse entirely are logged and skipped; fields with missing or wrong-typed
// values fall back to their defaults.
func Decode(data []byte, log zerolog.Logger) (ports.Snapshot, error) {
	var doc struct {
		Users    []json.RawMessage `json:"users"`
		Songs    []json.RawMessage `json:"songs"`
		Comments []json.RawMessage `json:"comments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return ports.Snapshot{}, err
	}

	snap := ports.Snapshot{
		Users:    make([]ports.UserRecord, 0, len(doc.Users)),
		Songs:    make([]ports.SongRecord, 0, len(doc.Songs)),
		Comments: make([]ports.CommentRecord, 0, len(doc.Comments)),
	}
	for i, raw := range doc.Users {
		var u userDoc
		if err := json.Unmarshal(raw, &u); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping unreadable user record")
			continue
		}
		snap.Users = append(snap.Users, u.record())
	}
	for i, raw := range doc.Songs {
		var s songDoc
		if err := json.Unmarshal(raw, &s); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping unreadable song record")
			continue
		}
		snap.Songs = append(snap.Songs, s.record())
	}
	for i, raw := range doc.Comments {
		var c commentDoc
		if err := json.Unmarshal(raw, &c); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping unreadable comment record")
			continue
		}
		snap.Comments = append(snap.Comments, c.record())
	}
	return snap, nil
}

type userDoc struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Credit    flexFloat `json:"credit"`
	Premium   bool      `json:"premium"`
	Purchased []string  `json:"purchased"`
}

func (u userDoc) record() ports.UserRecord {
	return ports.UserRecord{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		Credit:    u.Credit.or(0),
		Premium:   u.Premium,
		Purchased: u.Purchased,
	}
}

type songDoc struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Category      string    `json:"category"`
	Price         flexFloat `json:"price"`
	RatingAverage flexFloat `json:"ratingAverage"`
	RatingCount   flexInt   `json:"ratingCount"`
	Downloads     flexInt   `json:"downloads"`
	AlbumArtURL   string    `json:"albumArtUrl"`
	SourceURL     string    `json:"sourceUrl"`
	AddedAt       string    `json:"addedAt"`
}

func (s songDoc) record() ports.SongRecord {
	return ports.SongRecord{
		ID:            s.ID,
		Title:         s.Title,
		Artist:        s.Artist,
		Category:      s.Category,
		Price:         s.Price.or(defaultPrice),
		RatingAverage: s.RatingAverage.or(defaultRating),
		RatingCount:   s.RatingCount.or(defaultRatingCount),
		Downloads:     s.Downloads.or(defaultDownloads),
		AlbumArtURL:   s.AlbumArtURL,
		SourceURL:     s.SourceURL,
		AddedAt:       s.AddedAt,
	}
}

type commentDoc struct {
	ID        string  `json:"id"`
	SongID    string  `json:"songId"`
	User      string  `json:"user"`
	Text      string  `json:"text"`
	Likes     flexInt `json:"likes"`
	Dislikes  flexInt `json:"dislikes"`
	CreatedAt string  `json:"createdAt"`
}

func (c commentDoc) record() ports.CommentRecord {
	return ports.CommentRecord{
		ID:        c.ID,
		SongID:    c.SongID,
		User:      c.User,
		Text:      c.Text,
		Likes:     c.Likes.or(0),
		Dislikes:  c.Dislikes.or(0),
		CreatedAt: c.CreatedAt,
	}
}

// flexFloat accepts a JSON number or a numeric string, and treats anything
// else as absent. Unmarshal never reports an error so a bad value cannot sink
// the enclosing record.
type flexFloat struct {
	val float64
	set bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.val, f.set = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			f.val, f.set = n, true
		}
	}
	return nil
}

func (f flexFloat) or(def float64) float64 {
	if f.set {
		return f.val
	}
	return def
}

// flexInt is flexFloat's integer counterpart; JSON numbers are truncated.
type flexInt struct {
	val int
	set bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.val, f.set = int(n), true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			f.val, f.set = n, true
		}
	}
	return nil
}

func (f flexInt) or(def int) int {
	if f.set {
		return f.val
	}
	return def
}
