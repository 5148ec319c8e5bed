package domain

import "time"

// Comment is attached to a song by id. User is a snapshot of the author's
// username at creation time, not a live reference: renaming or removing the
// author later does not touch existing comments.
type Comment struct {
	ID        string
	SongID    string
	User      string
	Text      string
	Likes     int
	Dislikes  int
	CreatedAt time.Time
}

// CommentView is the wire representation of a comment.
type CommentView struct {
	ID        string `json:"id"`
	SongID    string `json:"songId"`
	User      string `json:"user"`
	Text      string `json:"text"`
	Likes     int    `json:"likes"`
	Dislikes  int    `json:"dislikes"`
	CreatedAt string `json:"createdAt"`
}

func (c *Comment) View() CommentView {
	return CommentView{
		ID:        c.ID,
		SongID:    c.SongID,
		User:      c.User,
		Text:      c.Text,
		Likes:     c.Likes,
		Dislikes:  c.Dislikes,
		CreatedAt: c.CreatedAt.UTC().Format(TimeFormat),
	}
}
