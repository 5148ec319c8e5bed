package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/tunegrid/jukebox/internal/core/domain"
)

// Seed populates an empty store with the demo catalog and the demo account.
// Calling it on a non-empty store is a no-op.
func (s *Store) Seed() {
	if s.HasData() {
		return
	}

	seedSongs := []struct {
		title, artist, category string
		price, rating           float64
		downloads               int
		artSeed                 string
		sourceURL               string
	}{
		{"As It Was", "Harry Styles", "Pop", 1.29, 4.8, 5000, "asitwas",
			"https://www.soundhelix.com/examples/mp3/SoundHelix-Song-11.mp3"},
		{"Smells Like Teen Spirit", "Nirvana", "Rock", 0.0, 4.9, 10000, "teen-spirit",
			"https://www.soundhelix.com/examples/mp3/SoundHelix-Song-12.mp3"},
		{"Billie Jean", "Michael Jackson", "Classic", 1.29, 5.0, 8000, "billiejean",
			"https://www.soundhelix.com/examples/mp3/SoundHelix-Song-13.mp3"},
		{"Rolling in the Deep", "Adele", "Pop", 0.99, 4.7, 7500, "rolling",
			"https://www.soundhelix.com/examples/mp3/SoundHelix-Song-14.mp3"},
		{"Uptown Funk", "Mark Ronson ft. Bruno Mars", "New Releases", 0.0, 4.6, 9200, "uptown",
			"https://www.soundhelix.com/examples/mp3/SoundHelix-Song-15.mp3"},
	}
	for _, t := range seedSongs {
		s.AddSong(&domain.Song{
			ID:            uuid.NewString(),
			Title:         t.title,
			Artist:        t.artist,
			Category:      t.category,
			Price:         t.price,
			RatingAverage: t.rating,
			RatingCount:   1,
			Downloads:     t.downloads,
			AlbumArtURL:   "https://picsum.photos/seed/" + t.artSeed + "/600/600",
			SourceURL:     t.sourceURL,
			AddedAt:       time.Now().UTC(),
		})
	}

	if _, err := s.Signup("demo", "demo@example.com", "DemoPass123"); err != nil {
		s.log.Warn().Err(err).Msg("failed to seed demo user")
		return
	}
	s.log.Info().Int("songs", len(seedSongs)).Msg("seeded demo catalog and demo user")
}
