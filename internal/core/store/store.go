// Package store implements the in-memory domain store: all users, songs,
// comments, and session tokens live in maps owned by a single Store value and
// guarded by one store-wide lock. Every domain operation is atomic with
// respect to every other; pure reads share the read lock.
package store

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tunegrid/jukebox/internal/core/domain"
	"github.com/tunegrid/jukebox/internal/core/ports"
)

const defaultCredit = 200.0

// Store owns all mutable domain state. The zero value is not usable; create
// with New.
type Store struct {
	mu sync.RWMutex

	usersByID    map[string]*domain.User
	usersByName  map[string]*domain.User
	usersByEmail map[string]*domain.User
	tokens       map[string]string // token -> user id

	songsByID      map[string]*domain.Song
	byCategory     map[string][]*domain.Song // most recently added first
	commentsBySong map[string][]*domain.Comment

	dirty atomic.Bool

	jwtSecret string
	log       zerolog.Logger
}

func New(jwtSecret string, log zerolog.Logger) *Store {
	return &Store{
		usersByID:      make(map[string]*domain.User),
		usersByName:    make(map[string]*domain.User),
		usersByEmail:   make(map[string]*domain.User),
		tokens:         make(map[string]string),
		songsByID:      make(map[string]*domain.Song),
		byCategory:     make(map[string][]*domain.Song),
		commentsBySong: make(map[string][]*domain.Comment),
		jwtSecret:      jwtSecret,
		log:            log,
	}
}

// ConsumeDirty atomically reads and clears the dirty flag. It returns true
// when at least one mutation happened since the flag was last consumed.
func (s *Store) ConsumeDirty() bool {
	return s.dirty.CompareAndSwap(true, false)
}

// MarkDirty re-arms the dirty flag, used by the autosave task when a save
// attempt fails so the next tick retries.
func (s *Store) MarkDirty() {
	s.dirty.Store(true)
}

// HasData reports whether the store holds any users or songs. Used at boot to
// decide whether seeding is required.
func (s *Store) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.usersByID) > 0 || len(s.songsByID) > 0
}

// Stats returns entity counts for the readiness probe.
func (s *Store) Stats() (users, songs, comments int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, list := range s.commentsBySong {
		comments += len(list)
	}
	return len(s.usersByID), len(s.songsByID), comments
}

// Signup creates an account and issues a session token. Fails with
// domain.ErrUserExists when either the username or the email is taken.
func (s *Store) Signup(username, email, password string) (*ports.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByName[username]; taken {
		return nil, domain.ErrUserExists
	}
	if _, taken := s.usersByEmail[email]; taken {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  string(hash),
		Credit:    defaultCredit,
		Purchased: make(map[string]struct{}),
	}
	s.usersByID[user.ID] = user
	s.usersByName[user.Username] = user
	s.usersByEmail[user.Email] = user

	token, err := s.issueTokenLocked(user)
	if err != nil {
		return nil, err
	}
	s.dirty.Store(true)

	s.log.Info().Str("user_id", user.ID).Str("username", username).Msg("user signed up")
	return &ports.AuthResult{Token: token, User: user.View()}, nil
}

// Login resolves the account by username or email and issues a fresh token.
// Previously issued tokens stay valid.
func (s *Store) Login(userOrEmail, password string) (*ports.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByName[userOrEmail]
	if !ok {
		user, ok = s.usersByEmail[userOrEmail]
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueTokenLocked(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user.View()}, nil
}

// Me returns the caller's public view.
func (s *Store) Me(token string) (*domain.UserView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, err := s.authedLocked(token)
	if err != nil {
		return nil, err
	}
	v := user.View()
	return &v, nil
}

// UpdateProfile renames the account and re-indexes the username/email maps.
// Blank fields are no-ops. Uniqueness against other accounts is not
// re-checked here; a rename onto a taken name silently steals the index slot.
func (s *Store) UpdateProfile(token, username, email string) (*domain.UserView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.authedLocked(token)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(username) != "" {
		delete(s.usersByName, user.Username)
		user.Username = username
		s.usersByName[user.Username] = user
	}
	if strings.TrimSpace(email) != "" {
		delete(s.usersByEmail, user.Email)
		user.Email = email
		s.usersByEmail[user.Email] = user
	}
	s.dirty.Store(true)

	v := user.View()
	return &v, nil
}

// AddCredit adds amount to the caller's balance. The amount is not
// sign-checked: negative top-ups are accepted.
func (s *Store) AddCredit(token string, amount float64) (*ports.CreditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.authedLocked(token)
	if err != nil {
		return nil, err
	}
	user.Credit += amount
	s.dirty.Store(true)
	return &ports.CreditResult{Credit: user.Credit}, nil
}

// SetSubscription marks the caller premium. The plan value is accepted but
// not interpreted.
func (s *Store) SetSubscription(token, plan string) (*ports.SubscriptionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.authedLocked(token)
	if err != nil {
		return nil, err
	}
	user.Premium = true
	s.dirty.Store(true)

	s.log.Info().Str("user_id", user.ID).Str("plan", plan).Msg("subscription activated")
	return &ports.SubscriptionResult{Subscription: user.Subscription()}, nil
}

// Purchase buys a song for the caller. Paid songs debit credit unless the
// caller is premium; the song is marked purchased and its download counter
// incremented whether or not a charge occurred.
func (s *Store) Purchase(token, songID string) (*ports.PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.authedLocked(token)
	if err != nil {
		return nil, err
	}
	song, ok := s.songsByID[songID]
	if !ok {
		return nil, domain.ErrSongNotFound
	}

	if song.Price > 0 && !user.Premium {
		if user.Credit < song.Price {
			return nil, domain.ErrInsufficientCredit
		}
		user.Credit -= song.Price
	}
	user.Purchased[songID] = struct{}{}
	song.Downloads++
	s.dirty.Store(true)

	s.log.Info().Str("user_id", user.ID).Str("song_id", songID).Float64("credit", user.Credit).Msg("song purchased")
	return &ports.PurchaseResult{OK: true, Credit: user.Credit}, nil
}

// Categories lists every known category.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cats := make([]string, 0, len(s.byCategory))
	for c := range s.byCategory {
		cats = append(cats, c)
	}
	return cats
}

// SongsByCategory returns the category's songs, most recently added first.
// Unknown categories yield an empty list.
func (s *Store) SongsByCategory(category string) []domain.SongView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byCategory[category]
	views := make([]domain.SongView, 0, len(list))
	for _, song := range list {
		views = append(views, song.View())
	}
	return views
}

// Rate folds one rating value into the song's running weighted mean. The
// store-wide lock serializes concurrent raters, so no update is lost.
func (s *Store) Rate(songID string, value float64) (*ports.RatingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	song, ok := s.songsByID[songID]
	if !ok {
		return nil, domain.ErrSongNotFound
	}
	total := song.RatingAverage*float64(song.RatingCount) + value
	song.RatingCount++
	song.RatingAverage = total / float64(song.RatingCount)
	s.dirty.Store(true)

	return &ports.RatingResult{RatingAverage: song.RatingAverage, RatingCount: song.RatingCount}, nil
}

// Comments returns the song's comments in insertion order. Unknown song ids
// yield an empty list.
func (s *Store) Comments(songID string) []domain.CommentView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.commentsBySong[songID]
	views := make([]domain.CommentView, 0, len(list))
	for _, c := range list {
		views = append(views, c.View())
	}
	return views
}

// AddComment appends a comment authored by the caller. The song id is not
// checked for existence: a comment may reference a song the store never had.
func (s *Store) AddComment(token, songID, text string) (*domain.CommentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.authedLocked(token)
	if err != nil {
		return nil, err
	}
	c := &domain.Comment{
		ID:        uuid.NewString(),
		SongID:    songID,
		User:      user.Username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	s.commentsBySong[songID] = append(s.commentsBySong[songID], c)
	s.dirty.Store(true)

	v := c.View()
	return &v, nil
}

// VoteComment increments the like or dislike counter of the comment with the
// given id, scanning all songs' comment lists.
func (s *Store) VoteComment(commentID string, up bool) (*ports.VoteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.commentsBySong {
		for _, c := range list {
			if c.ID != commentID {
				continue
			}
			if up {
				c.Likes++
			} else {
				c.Dislikes++
			}
			s.dirty.Store(true)
			return &ports.VoteResult{Likes: c.Likes, Dislikes: c.Dislikes}, nil
		}
	}
	return nil, domain.ErrCommentNotFound
}

// AddSong inserts a song into the id map, prepends it to its category list,
// and ensures it has a comment list. The three structures change together or
// not at all.
func (s *Store) AddSong(song *domain.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addSongLocked(song)
	s.dirty.Store(true)
}

func (s *Store) addSongLocked(song *domain.Song) {
	s.songsByID[song.ID] = song
	s.byCategory[song.Category] = append([]*domain.Song{song}, s.byCategory[song.Category]...)
	if _, ok := s.commentsBySong[song.ID]; !ok {
		s.commentsBySong[song.ID] = nil
	}
}

// authedLocked resolves a token to its user. Callers must hold the lock.
func (s *Store) authedLocked(token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	uid, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	user, ok := s.usersByID[uid]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return user, nil
}

// issueTokenLocked mints a signed token and maps it to the user. The mapping
// is the sole authority: signature validity alone never authenticates, and
// tokens vanish on restart because the map is not persisted.
func (s *Store) issueTokenLocked(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"jti":      uuid.NewString(),
		"iat":      time.Now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	s.tokens[token] = user.ID
	return token, nil
}
