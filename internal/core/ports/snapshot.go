package ports

// Snapshot is the full-fidelity export of the domain store: flat arrays only,
// no derived indices. Session tokens are intentionally excluded, so every
// restore starts with an empty token map.
type Snapshot struct {
	Users    []UserRecord    `json:"users"`
	Songs    []SongRecord    `json:"songs"`
	Comments []CommentRecord `json:"comments"`
}

// UserRecord persists the complete account, including the stored credential
// and the purchased-id list. It is never sent to clients.
type UserRecord struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Credit    float64  `json:"credit"`
	Premium   bool     `json:"premium"`
	Purchased []string `json:"purchased"`
}

type SongRecord struct {
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

type CommentRecord struct {
	ID        string `json:"id"`
	SongID    string `json:"songId"`
	User      string `json:"user"`
	Text      string `json:"text"`
	Likes     int    `json:"likes"`
	Dislikes  int    `json:"dislikes"`
	CreatedAt string `json:"createdAt"`
}

// StateExporter is the slice of the domain store the autosave task and the
// bootstrap need: export current state and consume the dirty flag.
type StateExporter interface {
	Snapshot() Snapshot
	ConsumeDirty() bool
	MarkDirty()
}
