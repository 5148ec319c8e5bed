package domain

const (
	SubscriptionPremium  = "premium"
	SubscriptionStandard = "standard"
)

// User models a registered account. Password holds the bcrypt hash of the
// credential, never the plaintext.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	Credit    float64
	Premium   bool
	Purchased map[string]struct{}
}

// Subscription returns the display label derived from the premium flag.
func (u *User) Subscription() string {
	if u.Premium {
		return SubscriptionPremium
	}
	return SubscriptionStandard
}

// HasPurchased reports whether the user already owns the given song.
func (u *User) HasPurchased(songID string) bool {
	_, ok := u.Purchased[songID]
	return ok
}

// UserView is the client-safe projection of a User: no credential, no raw
// premium flag, no purchased-id list.
type UserView struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Credit       float64 `json:"credit"`
	Subscription string  `json:"subscription"`
}

func (u *User) View() UserView {
	return UserView{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Credit:       u.Credit,
		Subscription: u.Subscription(),
	}
}
