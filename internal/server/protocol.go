package server

import "encoding/json"

// Request is a single newline-delimited client request. ReqID is an opaque
// client-chosen correlation id echoed verbatim; Data is decoded into the
// per-action payload type at dispatch time.
type Request struct {
	ReqID  string          `json:"reqId"`
	Action string          `json:"action"`
	Token  string          `json:"token,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Response is the reply to exactly one request, written on the same
// connection in request order. Exactly one of Result and Error is populated.
type Response struct {
	ReqID  string `json:"reqId"`
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Per-action payloads. Decoding these at the boundary gives the dispatch
// table a typed, exhaustive shape; validator tags express which fields each
// action requires.

type signupData struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginData struct {
	UserOrEmail string `json:"userOrEmail" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

type updateProfileData struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type addCreditData struct {
	Amount float64 `json:"amount"`
}

type subscriptionData struct {
	Plan string `json:"plan"`
}

type purchaseData struct {
	SongID string `json:"songId" validate:"required"`
}

type songsData struct {
	Category string `json:"category"`
}

type rateData struct {
	SongID string  `json:"songId" validate:"required"`
	Value  float64 `json:"value"`
}

type commentsData struct {
	SongID string `json:"songId" validate:"required"`
}

type addCommentData struct {
	SongID string `json:"songId" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

type likeCommentData struct {
	CommentID string `json:"commentId" validate:"required"`
	Up        bool   `json:"up"`
}
