package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"gatherly/internal/domain"
)

const vaultFilename = "credentials.json.enc"

// FileVault stores the refresh token and profile stub encrypted on disk.
type FileVault struct {
	dir string
	mu  sync.Mutex
}

// NewFileVault returns a FileVault rooted at dir.
func NewFileVault(dir string) *FileVault { return &FileVault{dir: dir} }

// Save seals creds with the passphrase and writes them atomically.
func (v *FileVault) Save(passphrase string, creds domain.Credentials) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	raw, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	defer wipe(raw)

	ct, err := seal(passphrase, raw)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(v.dir, vaultFilename), ct, 0o600)
}

// Load opens the vault. A missing vault is not an error; ok reports whether
// credentials were present.
func (v *FileVault) Load(passphrase string) (domain.Credentials, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(v.dir, vaultFilename))
	if errors.Is(err, os.ErrNotExist) {
		return domain.Credentials{}, false, nil
	}
	if err != nil {
		return domain.Credentials{}, false, err
	}

	raw, err := open(passphrase, b)
	if err != nil {
		return domain.Credentials{}, false, err
	}
	defer wipe(raw)

	var creds domain.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return domain.Credentials{}, false, err
	}
	return creds, true, nil
}

// Clear removes the vault file. Called on logout and on session expiry.
func (v *FileVault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := os.Remove(filepath.Join(v.dir, vaultFilename))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// wipe zeroes b so plaintext credentials don't linger in reusable buffers.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// writeFile writes bytes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Compile-time assertion that FileVault implements domain.CredentialVault.
var _ domain.CredentialVault = (*FileVault)(nil)
