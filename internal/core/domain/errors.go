package domain

import "errors"

// Sentinel errors surfaced to clients as ok:false responses. The messages are
// part of the protocol's behavior surface and are sent verbatim.
var (
	ErrUserExists         = errors.New("username or email exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrMissingToken       = errors.New("no token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSongNotFound       = errors.New("song not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrInsufficientCredit = errors.New("insufficient credit")
)
