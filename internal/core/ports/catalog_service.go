package ports

import "github.com/tunegrid/jukebox/internal/core/domain"

// CatalogService covers songs, categories, ratings, and comments. Read
// operations return empty results for unknown keys rather than erroring.
// Rate and VoteComment are deliberately unauthenticated.
type CatalogService interface {
	Categories() []string
	SongsByCategory(category string) []domain.SongView
	Rate(songID string, value float64) (*RatingResult, error)
	Comments(songID string) []domain.CommentView
	AddComment(token, songID, text string) (*domain.CommentView, error)
	VoteComment(commentID string, up bool) (*VoteResult, error)
	AddSong(song *domain.Song)
}

type RatingResult struct {
	RatingAverage float64 `json:"ratingAverage"`
	RatingCount   int     `json:"ratingCount"`
}

type VoteResult struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}
