package ports

import "github.com/tunegrid/jukebox/internal/core/domain"

// AccountService covers identity, profile, balance, subscription, and
// purchase operations. Token-taking methods resolve the caller through the
// session-token map; an unknown token fails with domain.ErrInvalidToken.
type AccountService interface {
	Signup(username, email, password string) (*AuthResult, error)
	Login(userOrEmail, password string) (*AuthResult, error)
	Me(token string) (*domain.UserView, error)
	UpdateProfile(token, username, email string) (*domain.UserView, error)
	AddCredit(token string, amount float64) (*CreditResult, error)
	SetSubscription(token, plan string) (*SubscriptionResult, error)
	Purchase(token, songID string) (*PurchaseResult, error)
}

// AuthResult is returned by signup and login: a fresh session token plus the
// public view of the account.
type AuthResult struct {
	Token string          `json:"token"`
	User  domain.UserView `json:"user"`
}

type CreditResult struct {
	Credit float64 `json:"credit"`
}

type SubscriptionResult struct {
	Subscription string `json:"subscription"`
}

// PurchaseResult reports the outcome of a purchase. OK is always true on
// success; the field exists because it is part of the wire payload.
type PurchaseResult struct {
	OK     bool    `json:"ok"`
	Credit float64 `json:"credit"`
}
