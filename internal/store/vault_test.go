package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gatherly/internal/domain"
	"gatherly/internal/store"
)

func TestVault_SaveLoad_OK(t *testing.T) {
	home := t.TempDir()
	pass := "correct horse battery staple"

	var vault domain.CredentialVault = store.NewFileVault(home)

	creds := domain.Credentials{
		RefreshToken: "rt-12345",
		UserID:       "u-1",
		Email:        "ada@example.com",
	}
	if err := vault.Save(pass, creds); err != nil {
		t.Fatalf("save credentials: %v", err)
	}

	got, ok, err := vault.Load(pass)
	if err != nil {
		t.Fatalf("load credentials: %v", err)
	}
	if !ok {
		t.Fatal("expected credentials to be present")
	}
	if got != creds {
		t.Fatalf("mismatch after load: got %+v want %+v", got, creds)
	}
}

func TestVault_WrongPassphrase_Fails(t *testing.T) {
	home := t.TempDir()
	var vault domain.CredentialVault = store.NewFileVault(home)

	if err := vault.Save("correct", domain.Credentials{RefreshToken: "rt"}); err != nil {
		t.Fatalf("save credentials: %v", err)
	}
	if _, _, err := vault.Load("wrong"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestVault_Load_Missing(t *testing.T) {
	vault := store.NewFileVault(t.TempDir())

	_, ok, err := vault.Load("any")
	if err != nil {
		t.Fatalf("load empty vault: %v", err)
	}
	if ok {
		t.Fatal("expected no credentials in a fresh home")
	}
}

func TestVault_Clear(t *testing.T) {
	home := t.TempDir()
	vault := store.NewFileVault(home)

	if err := vault.Save("pass", domain.Credentials{RefreshToken: "rt"}); err != nil {
		t.Fatalf("save credentials: %v", err)
	}
	if err := vault.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := vault.Load("pass"); ok {
		t.Fatal("expected vault to be empty after clear")
	}
	// Clearing an already-empty vault is fine.
	if err := vault.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestVault_CiphertextDoesNotLeakToken(t *testing.T) {
	home := t.TempDir()
	vault := store.NewFileVault(home)

	token := "super-secret-refresh-token"
	if err := vault.Save("pass", domain.Credentials{RefreshToken: token}); err != nil {
		t.Fatalf("save credentials: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(home, "credentials.json.enc"))
	if err != nil {
		t.Fatalf("read vault file: %v", err)
	}
	if strings.Contains(string(raw), token) {
		t.Fatal("refresh token stored in plaintext")
	}
}
