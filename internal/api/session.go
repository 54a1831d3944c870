package api

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"gatherly/internal/domain"
)

// refreshSkew is how long before the access token's exp we refresh
// proactively instead of waiting for a 401.
const refreshSkew = 30 * time.Second

// RefreshFunc exchanges a refresh token for a new token pair. Client wires
// its own unauthenticated /auth/refresh call here.
type RefreshFunc func(ctx context.Context, refreshToken string) (domain.AuthTokens, error)

// Session owns the token lifecycle for one logged-in user.
//
// The access token is held in memory only. The refresh token is persisted in
// the credential vault, sealed with the passphrase given to Unlock or Start.
// All refresh round-trips go through a single-flight group so concurrent
// requests hitting a 401 share one refresh instead of racing.
type Session struct {
	vault   domain.CredentialVault
	log     zerolog.Logger
	refresh RefreshFunc

	sf singleflight.Group

	mu         sync.Mutex
	passphrase string
	creds      domain.Credentials
	unlocked   bool
	access     string
	accessExp  time.Time

	subMu sync.Mutex
	subs  []chan struct{}
}

// NewSession returns a locked session backed by vault.
func NewSession(vault domain.CredentialVault, log zerolog.Logger) *Session {
	return &Session{vault: vault, log: log}
}

// SetRefreshFunc installs the transport-level refresh call. Must be set
// before the first authenticated request.
func (s *Session) SetRefreshFunc(fn RefreshFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = fn
}

// Unlock loads persisted credentials from the vault. ok reports whether a
// previous login was found. The first request after Unlock triggers a
// refresh, since no access token survives across runs.
func (s *Session) Unlock(passphrase string) (bool, error) {
	creds, ok, err := s.vault.Load(passphrase)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passphrase = passphrase
	if ok {
		s.creds = creds
		s.unlocked = true
	}
	return ok, nil
}

// Start installs a fresh token pair after login or register and persists the
// refresh half.
func (s *Session) Start(passphrase string, tokens domain.AuthTokens, user domain.User) error {
	creds := domain.Credentials{
		RefreshToken: tokens.RefreshToken,
		UserID:       user.ID,
		Email:        user.Email,
	}
	if err := s.vault.Save(passphrase, creds); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.passphrase = passphrase
	s.creds = creds
	s.unlocked = true
	s.setAccessLocked(tokens)
	return nil
}

// End clears both tokens, e.g. on logout. It does not broadcast expiry: the
// caller chose to leave.
func (s *Session) End() error {
	s.mu.Lock()
	s.access = ""
	s.accessExp = time.Time{}
	s.creds = domain.Credentials{}
	s.unlocked = false
	s.mu.Unlock()
	return s.vault.Clear()
}

// Authenticated reports whether a refresh token is loaded.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// UserID returns the persisted user ID, if any.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.UserID
}

// RefreshToken returns the current refresh token. Used by logout to revoke
// it server-side.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.RefreshToken
}

// Token returns a bearer token for the next request, refreshing first when
// the in-memory one is missing or about to expire.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if !s.unlocked {
		s.mu.Unlock()
		return "", ErrNotAuthenticated
	}
	access := s.access
	fresh := access != "" && (s.accessExp.IsZero() || time.Until(s.accessExp) > refreshSkew)
	s.mu.Unlock()

	if fresh {
		return access, nil
	}
	return s.Refresh(ctx, access)
}

// Refresh exchanges the refresh token for a new pair and returns the new
// access token. stale is the access token the caller just failed with: if
// another goroutine already replaced it, the current token is returned
// without a second round-trip. Concurrent callers share one in-flight
// refresh via the single-flight group.
func (s *Session) Refresh(ctx context.Context, stale string) (string, error) {
	s.mu.Lock()
	if !s.unlocked {
		s.mu.Unlock()
		return "", ErrNotAuthenticated
	}
	if s.access != "" && s.access != stale {
		// Someone else refreshed while we were waiting.
		access := s.access
		s.mu.Unlock()
		return access, nil
	}
	refreshToken := s.creds.RefreshToken
	fn := s.refresh
	s.mu.Unlock()

	if fn == nil {
		return "", ErrNotAuthenticated
	}

	v, err, _ := s.sf.Do("refresh", func() (any, error) {
		s.log.Debug().Msg("refreshing access token")
		tokens, err := fn(ctx, refreshToken)
		if err != nil {
			if IsUnauthorized(err) {
				s.expire()
				return nil, ErrSessionExpired
			}
			return nil, err
		}
		if err := s.adopt(tokens); err != nil {
			return nil, err
		}
		return tokens.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Expiry returns a channel that receives one value when the session dies
// from a rejected refresh. Each caller gets its own buffered channel, so the
// broadcast never blocks on a slow consumer.
func (s *Session) Expiry() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

// adopt installs a fresh token pair and persists the rotated refresh token.
func (s *Session) adopt(tokens domain.AuthTokens) error {
	s.mu.Lock()
	s.setAccessLocked(tokens)
	if tokens.RefreshToken != "" {
		s.creds.RefreshToken = tokens.RefreshToken
	}
	creds := s.creds
	passphrase := s.passphrase
	s.mu.Unlock()

	if tokens.RefreshToken == "" {
		return nil
	}
	return s.vault.Save(passphrase, creds)
}

// expire tears the session down after a rejected refresh and notifies
// subscribers.
func (s *Session) expire() {
	s.log.Warn().Msg("refresh token rejected, clearing session")

	s.mu.Lock()
	s.access = ""
	s.accessExp = time.Time{}
	s.creds = domain.Credentials{}
	s.unlocked = false
	s.mu.Unlock()

	if err := s.vault.Clear(); err != nil {
		s.log.Error().Err(err).Msg("clear credential vault")
	}

	s.subMu.Lock()
	subs := s.subs
	s.subMu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// setAccessLocked records the access token and its expiry. Expiry comes from
// the JWT exp claim when the token parses as one (unverified: the claim is a
// scheduling hint, the server still authenticates every request), otherwise
// from the advertised expires_in.
func (s *Session) setAccessLocked(tokens domain.AuthTokens) {
	s.access = tokens.AccessToken
	s.accessExp = time.Time{}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokens.AccessToken, &claims); err == nil && claims.ExpiresAt != nil {
		s.accessExp = claims.ExpiresAt.Time
		return
	}
	if tokens.ExpiresIn > 0 {
		s.accessExp = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	}
}
