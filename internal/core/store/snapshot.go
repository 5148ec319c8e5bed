package store

import (
	"time"

	"github.com/tunegrid/jukebox/internal/core/domain"
	"github.com/tunegrid/jukebox/internal/core/ports"
)

// Snapshot exports the full store state as flat arrays. Derived indices are
// not exported; Restore rebuilds them.
func (s *Store) Snapshot() ports.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := ports.Snapshot{
		Users:    make([]ports.UserRecord, 0, len(s.usersByID)),
		Songs:    make([]ports.SongRecord, 0, len(s.songsByID)),
		Comments: []ports.CommentRecord{},
	}
	for _, u := range s.usersByID {
		purchased := make([]string, 0, len(u.Purchased))
		for id := range u.Purchased {
			purchased = append(purchased, id)
		}
		snap.Users = append(snap.Users, ports.UserRecord{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Password:  u.Password,
			Credit:    u.Credit,
			Premium:   u.Premium,
			Purchased: purchased,
		})
	}
	for _, song := range s.songsByID {
		snap.Songs = append(snap.Songs, ports.SongRecord{
			ID:            song.ID,
			Title:         song.Title,
			Artist:        song.Artist,
			Category:      song.Category,
			Price:         song.Price,
			RatingAverage: song.RatingAverage,
			RatingCount:   song.RatingCount,
			Downloads:     song.Downloads,
			AlbumArtURL:   song.AlbumArtURL,
			SourceURL:     song.SourceURL,
			AddedAt:       song.AddedAt.UTC().Format(domain.TimeFormat),
		})
	}
	for _, list := range s.commentsBySong {
		for _, c := range list {
			snap.Comments = append(snap.Comments, ports.CommentRecord{
				ID:        c.ID,
				SongID:    c.SongID,
				User:      c.User,
				Text:      c.Text,
				Likes:     c.Likes,
				Dislikes:  c.Dislikes,
				CreatedAt: c.CreatedAt.UTC().Format(domain.TimeFormat),
			})
		}
	}
	return snap
}

// Restore replaces all store state with the snapshot's, rebuilding the
// category and comment indices from the flat arrays. Session tokens are
// dropped: every token issued before a restore is invalid afterwards.
func (s *Store) Restore(snap ports.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.usersByID = make(map[string]*domain.User, len(snap.Users))
	s.usersByName = make(map[string]*domain.User, len(snap.Users))
	s.usersByEmail = make(map[string]*domain.User, len(snap.Users))
	s.tokens = make(map[string]string)
	s.songsByID = make(map[string]*domain.Song, len(snap.Songs))
	s.byCategory = make(map[string][]*domain.Song)
	s.commentsBySong = make(map[string][]*domain.Comment)

	for _, r := range snap.Users {
		u := &domain.User{
			ID:        r.ID,
			Username:  r.Username,
			Email:     r.Email,
			Password:  r.Password,
			Credit:    r.Credit,
			Premium:   r.Premium,
			Purchased: make(map[string]struct{}, len(r.Purchased)),
		}
		for _, id := range r.Purchased {
			u.Purchased[id] = struct{}{}
		}
		s.usersByID[u.ID] = u
		s.usersByName[u.Username] = u
		s.usersByEmail[u.Email] = u
	}
	for _, r := range snap.Songs {
		s.addSongLocked(&domain.Song{
			ID:            r.ID,
			Title:         r.Title,
			Artist:        r.Artist,
			Category:      r.Category,
			Price:         r.Price,
			RatingAverage: r.RatingAverage,
			RatingCount:   r.RatingCount,
			Downloads:     r.Downloads,
			AlbumArtURL:   r.AlbumArtURL,
			SourceURL:     r.SourceURL,
			AddedAt:       parseTime(r.AddedAt),
		})
	}
	for _, r := range snap.Comments {
		c := &domain.Comment{
			ID:        r.ID,
			SongID:    r.SongID,
			User:      r.User,
			Text:      r.Text,
			Likes:     r.Likes,
			Dislikes:  r.Dislikes,
			CreatedAt: parseTime(r.CreatedAt),
		}
		s.commentsBySong[c.SongID] = append(s.commentsBySong[c.SongID], c)
	}
}

// parseTime decodes a persisted timestamp, falling back to now on anything
// unparsable so one bad record cannot abort a load.
func parseTime(v string) time.Time {
	t, err := time.Parse(domain.TimeFormat, v)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
