package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Keys under which a customer session is stored.
const (
	KeyToken  = "token"
	KeyUserID = "userId"
	// KeyAdminToken holds the back-office token, kept apart from the
	// customer session.
	KeyAdminToken = "adminToken"
)

// Claims is what the client reads from a token. The signature is not
// verified; the client holds no secret and only uses the claims for display.
type Claims struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes the claims of a JWT without verifying it.
func ParseClaims(token string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, errors.Wrap(err, "parse token")
	}

	var c Claims
	for _, k := range []string{"id", "userId", "_id", "sub"} {
		if v, ok := mc[k].(string); ok && v != "" {
			c.UserID = v
			break
		}
	}
	if role, ok := mc["role"].(string); ok {
		c.Role = role
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// Session is the signed-in state: a bearer token and the user it belongs to.
// It is safe for concurrent use and satisfies the api client's token source.
type Session struct {
	store    Store
	tokenKey string
	userKey  string

	mu     sync.RWMutex
	token  string
	userID string
}

// New returns a customer session over store. Call Init to load it.
func New(store Store) *Session {
	return &Session{store: store, tokenKey: KeyToken, userKey: KeyUserID}
}

// NewAdmin returns the back-office session over store.
func NewAdmin(store Store) *Session {
	return &Session{store: store, tokenKey: KeyAdminToken, userKey: KeyAdminToken + ":" + KeyUserID}
}

// Init loads a previously stored token, if any.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.get(ctx, s.tokenKey)
	if err != nil {
		return err
	}
	userID, err := s.get(ctx, s.userKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token, s.userID = token, userID
	s.mu.Unlock()
	return nil
}

func (s *Session) get(ctx context.Context, key string) (string, error) {
	v, err := s.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "load %s", key)
	}
	return v, nil
}

// Set stores a new token after a successful login. When userID is empty it
// is taken from the token's claims.
func (s *Session) Set(ctx context.Context, token, userID string) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	if userID == "" {
		if c, err := ParseClaims(token); err == nil {
			userID = c.UserID
		}
	}
	if err := s.store.Set(ctx, s.tokenKey, token); err != nil {
		return errors.Wrap(err, "store token")
	}
	if userID != "" {
		if err := s.store.Set(ctx, s.userKey, userID); err != nil {
			return errors.Wrap(err, "store user id")
		}
	} else if err := s.store.Delete(ctx, s.userKey); err != nil {
		return errors.Wrap(err, "clear user id")
	}

	s.mu.Lock()
	s.token, s.userID = token, userID
	s.mu.Unlock()
	return nil
}

// Clear signs out.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.userID = "", ""
	s.mu.Unlock()
	if err := s.store.Delete(ctx, s.tokenKey, s.userKey); err != nil {
		return errors.Wrap(err, "clear session")
	}
	return nil
}

// Token returns the bearer token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the signed-in user's id, or "".
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Authenticated reports whether a token is held. Expiry is not checked; the
// backend rejects stale tokens with an auth error.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Claims decodes the held token.
func (s *Session) Claims() (Claims, error) {
	token := s.Token()
	if token == "" {
		return Claims{}, errors.New("session: not signed in")
	}
	return ParseClaims(token)
}
