package domain

import "time"

// TimeFormat is the wire and on-disk timestamp layout. The trailing Z is a
// literal, not a zone designator, so all timestamps are rendered in UTC.
const TimeFormat = "2006-01-02T15:04:05Z"

// Song is a catalog entry. RatingAverage is the running weighted mean of all
// submitted ratings including the initial seed (count 1, value 4.5).
type Song struct {
	ID            string
	Title         string
	Artist        string
	Category      string
	Price         float64
	RatingAverage float64
	RatingCount   int
	Downloads     int
	AlbumArtURL   string
	SourceURL     string
	AddedAt       time.Time
}

// SongView is the wire representation of a song. All fields are public; the
// field names are part of the client protocol.
type SongView struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	RatingAverage float64 `json:"ratingAverage"`
	RatingCount   int     `json:"ratingCount"`
	Downloads     int     `json:"downloads"`
	AlbumArtURL   string  `json:"albumArtUrl"`
	SourceURL     string  `json:"sourceUrl"`
	AddedAt       string  `json:"addedAt"`
}

func (s *Song) View() SongView {
	return SongView{
		ID:            s.ID,
		Title:         s.Title,
		Artist:        s.Artist,
		Category:      s.Category,
		Price:         s.Price,
		RatingAverage: s.RatingAverage,
		RatingCount:   s.RatingCount,
		Downloads:     s.Downloads,
		AlbumArtURL:   s.AlbumArtURL,
		SourceURL:     s.SourceURL,
		AddedAt:       s.AddedAt.UTC().Format(TimeFormat),
	}
}
