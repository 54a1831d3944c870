package auth

import (
	"context"
	"fmt"
	"net/mail"

	"gatherly/internal/api"
	"gatherly/internal/domain"
)

// minPasswordLength is the shortest password the API accepts; checked
// client-side so a typo fails before the round-trip.
const minPasswordLength = 8

// Service manages accounts and the login session.
type Service struct {
	client     *api.Client
	passphrase string
}

// New returns an auth service. passphrase seals the credential vault that
// the refresh token lands in after login.
func New(client *api.Client, passphrase string) *Service {
	return &Service{client: client, passphrase: passphrase}
}

// loginResponse is the wire shape of /v1/auth/login and /v1/auth/register.
type loginResponse struct {
	User   domain.User       `json:"user"`
	Tokens domain.AuthTokens `json:"tokens"`
}

// Register creates an account and starts a session for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	if err := checkCredentials(email, password); err != nil {
		return domain.User{}, err
	}
	in := struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Name: name, Email: email, Password: password}

	var out loginResponse
	if err := s.client.PostPublic(ctx, "/v1/auth/register", in, &out); err != nil {
		return domain.User{}, err
	}
	if err := s.client.Session().Start(s.passphrase, out.Tokens, out.User); err != nil {
		return domain.User{}, fmt.Errorf("persist session: %w", err)
	}
	return out.User, nil
}

// Login authenticates and starts a session.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	if err := checkCredentials(email, password); err != nil {
		return domain.User{}, err
	}
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var out loginResponse
	if err := s.client.PostPublic(ctx, "/v1/auth/login", in, &out); err != nil {
		return domain.User{}, err
	}
	if err := s.client.Session().Start(s.passphrase, out.Tokens, out.User); err != nil {
		return domain.User{}, fmt.Errorf("persist session: %w", err)
	}
	return out.User, nil
}

// Logout revokes the refresh token server-side, then drops the local
// session. A failed revocation still clears local state: the caller asked to
// be logged out.
func (s *Service) Logout(ctx context.Context) error {
	refreshToken := s.client.Session().RefreshToken()
	if refreshToken != "" {
		in := struct {
			RefreshToken string `json:"refresh_token"`
		}{RefreshToken: refreshToken}
		if err := s.client.PostPublic(ctx, "/v1/auth/logout", in, nil); err != nil {
			return s.client.Session().End()
		}
	}
	return s.client.Session().End()
}

// CurrentUser fetches the authenticated user's profile.
func (s *Service) CurrentUser(ctx context.Context) (domain.User, error) {
	var u domain.User
	if err := s.client.Get(ctx, "/v1/users/me", nil, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// UpdateProfile patches the authenticated user's profile.
func (s *Service) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (domain.User, error) {
	var u domain.User
	if err := s.client.Patch(ctx, "/v1/users/me", patch, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func checkCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email address %q", email)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// Compile-time assertion that Service implements domain.AuthService.
var _ domain.AuthService = (*Service)(nil)
