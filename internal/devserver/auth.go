package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gatherly/internal/domain"
)

type ctxKey int

const userIDKey ctxKey = 1

// issueTokensLocked mints a JWT access token and a fresh opaque refresh
// token for userID. The mutex must be held.
func (s *Server) issueTokensLocked(userID string) (domain.AuthTokens, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return domain.AuthTokens{}, err
	}

	refresh := uuid.NewString()
	s.refresh[refresh] = refreshGrant{userID: userID, expiresAt: now.Add(defaultRefreshTTL)}

	return domain.AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL / time.Second),
	}, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	if in.Name == "" || in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "name, email, and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[in.Email]; taken {
		writeError(w, http.StatusConflict, "email_taken", "an account with that email exists")
		return
	}
	acct := &account{
		User: domain.User{
			ID:        s.nextIDLocked("u"),
			Name:      in.Name,
			Email:     in.Email,
			CreatedAt: time.Now().UTC(),
		},
		passwordHash: hash,
	}
	s.accounts[acct.ID] = acct
	s.emails[acct.Email] = acct.ID
	s.friends[acct.ID] = make(map[string]bool)

	tokens, err := s.issueTokensLocked(acct.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "issue tokens")
		return
	}
	s.log.Info().Str("user", acct.ID).Str("email", acct.Email).Msg("registered")
	writeJSON(w, http.StatusCreated, struct {
		User   domain.User       `json:"user"`
		Tokens domain.AuthTokens `json:"tokens"`
	}{acct.User, tokens})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[in.Email]
	if !ok {
		writeError(w, http.StatusUnauthorized, "bad_credentials", "unknown email or wrong password")
		return
	}
	acct := s.accounts[id]
	if bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(in.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "bad_credentials", "unknown email or wrong password")
		return
	}

	tokens, err := s.issueTokensLocked(acct.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		User   domain.User       `json:"user"`
		Tokens domain.AuthTokens `json:"tokens"`
	}{acct.User, tokens})
}

// handleRefresh rotates the refresh token: the presented one is revoked and
// a new pair issued. A token that is unknown, expired, or already rotated
// gets a 401 so the client tears its session down.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.refresh[in.RefreshToken]
	if !ok || time.Now().After(grant.expiresAt) {
		delete(s.refresh, in.RefreshToken)
		writeError(w, http.StatusUnauthorized, "invalid_grant", "refresh token invalid or expired")
		return
	}
	delete(s.refresh, in.RefreshToken)

	tokens, err := s.issueTokensLocked(grant.userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}

	s.mu.Lock()
	delete(s.refresh, in.RefreshToken)
	s.mu.Unlock()

	writeJSON(w, http.StatusNoContent, nil)
}

// requireAuth validates the bearer token and stashes the user ID in the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		s.mu.Lock()
		_, ok := s.accounts[claims.Subject]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "unknown user")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, claims.Subject)))
	})
}

// currentUser pulls the authenticated user ID out of the request context.
func currentUser(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
