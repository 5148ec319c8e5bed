package scheduler

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/tunegrid/jukebox/internal/core/domain"
)

const (
	fallbackCategory = "New Releases"
	syntheticArtist  = "Server Artist"
	syntheticSource  = "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-16.mp3"
)

// randomSong builds a pseudo-random release in one of the existing categories
// (or the fallback when the catalog is empty). The art URL is derived
// deterministically from the new id.
func randomSong(categories []string) *domain.Song {
	category := fallbackCategory
	if len(categories) > 0 {
		category = categories[rand.IntN(len(categories))]
	}

	price := 0.0
	if rand.IntN(2) == 1 {
		price = 0.89
	}

	id := uuid.NewString()
	return &domain.Song{
		ID:            id,
		Title:         fmt.Sprintf("New Track %d", 100+rand.IntN(900)),
		Artist:        syntheticArtist,
		Category:      category,
		Price:         price,
		RatingAverage: 4.0 + rand.Float64(),
		RatingCount:   1,
		Downloads:     rand.IntN(3000),
		AlbumArtURL:   fmt.Sprintf("https://picsum.photos/seed/%s/600/600", id[:6]),
		SourceURL:     syntheticSource,
		AddedAt:       time.Now().UTC(),
	}
}
