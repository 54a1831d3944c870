package api_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"gatherly/internal/api"
	"gatherly/internal/domain"
	"gatherly/internal/store"
)

func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return s
}

func newSession(t *testing.T) (*api.Session, domain.CredentialVault) {
	t.Helper()
	vault := store.NewFileVault(t.TempDir())
	return api.NewSession(vault, zerolog.Nop()), vault
}

func TestToken_NotAuthenticated(t *testing.T) {
	session, _ := newSession(t)
	if _, err := session.Token(context.Background()); !errors.Is(err, api.ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
}

func TestToken_FreshTokenSkipsRefresh(t *testing.T) {
	session, _ := newSession(t)

	var calls int32
	session.SetRefreshFunc(func(ctx context.Context, rt string) (domain.AuthTokens, error) {
		atomic.AddInt32(&calls, 1)
		return domain.AuthTokens{}, errors.New("should not be called")
	})

	access := signedJWT(t, time.Now().Add(time.Hour))
	err := session.Start("pass", domain.AuthTokens{AccessToken: access, RefreshToken: "rt"}, domain.User{ID: "u-1"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	got, err := session.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != access {
		t.Fatal("expected the in-memory access token")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("refresh should not run for a fresh token")
	}
}

func TestToken_ExpiredJWTRefreshesProactively(t *testing.T) {
	session, _ := newSession(t)

	session.SetRefreshFunc(func(ctx context.Context, rt string) (domain.AuthTokens, error) {
		if rt != "rt-old" {
			t.Errorf("refresh got token %q, want rt-old", rt)
		}
		return domain.AuthTokens{AccessToken: "fresh", RefreshToken: "rt-new", ExpiresIn: 900}, nil
	})

	stale := signedJWT(t, time.Now().Add(-time.Minute))
	err := session.Start("pass", domain.AuthTokens{AccessToken: stale, RefreshToken: "rt-old"}, domain.User{ID: "u-1"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	got, err := session.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != "fresh" {
		t.Fatalf("want refreshed token, got %q", got)
	}
}

func TestRefresh_PersistsRotatedToken(t *testing.T) {
	session, vault := newSession(t)

	session.SetRefreshFunc(func(ctx context.Context, rt string) (domain.AuthTokens, error) {
		return domain.AuthTokens{AccessToken: "fresh", RefreshToken: "rt-rotated"}, nil
	})
	err := session.Start("pass", domain.AuthTokens{AccessToken: "", RefreshToken: "rt-old"}, domain.User{ID: "u-1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := session.Token(context.Background()); err != nil {
		t.Fatalf("token: %v", err)
	}

	creds, ok, err := vault.Load("pass")
	if err != nil || !ok {
		t.Fatalf("load vault: ok=%v err=%v", ok, err)
	}
	if creds.RefreshToken != "rt-rotated" {
		t.Fatalf("rotated refresh token not persisted: %q", creds.RefreshToken)
	}
}

func TestRefresh_StaleGuardSkipsRoundTrip(t *testing.T) {
	session, _ := newSession(t)

	var calls int32
	session.SetRefreshFunc(func(ctx context.Context, rt string) (domain.AuthTokens, error) {
		atomic.AddInt32(&calls, 1)
		return domain.AuthTokens{AccessToken: "fresh"}, nil
	})
	err := session.Start("pass", domain.AuthTokens{AccessToken: "current", RefreshToken: "rt"}, domain.User{ID: "u-1"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// A caller that failed with some older token should just get the current
	// one back.
	got, err := session.Refresh(context.Background(), "older-token")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got != "current" {
		t.Fatalf("want current token, got %q", got)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("stale guard should have avoided the round-trip")
	}
}

func TestUnlock_RestoresPersistedSession(t *testing.T) {
	dir := t.TempDir()
	vault := store.NewFileVault(dir)

	first := api.NewSession(vault, zerolog.Nop())
	err := first.Start("pass", domain.AuthTokens{AccessToken: "a", RefreshToken: "rt"}, domain.User{ID: "u-9"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// A new process: fresh session over the same vault.
	second := api.NewSession(vault, zerolog.Nop())
	ok, err := second.Unlock("pass")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted credentials")
	}
	if second.UserID() != "u-9" {
		t.Fatalf("user id not restored: %q", second.UserID())
	}
	if second.RefreshToken() != "rt" {
		t.Fatal("refresh token not restored")
	}
}

func TestEnd_ClearsVaultWithoutBroadcast(t *testing.T) {
	session, vault := newSession(t)
	err := session.Start("pass", domain.AuthTokens{AccessToken: "a", RefreshToken: "rt"}, domain.User{ID: "u-1"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	expired := session.Expiry()

	if err := session.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, ok, _ := vault.Load("pass"); ok {
		t.Fatal("vault should be empty after End")
	}
	select {
	case <-expired:
		t.Fatal("logout must not broadcast session expiry")
	default:
	}
}
