package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// Current version of the encrypted blob format stored on disk.
const vaultFormatVersion = 1

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// ciphertext has been modified / corrupted.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted vault")

// blob is the on-disk JSON structure holding the ciphertext and the KDF and
// AEAD parameters needed to open it again.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	Nonce  []byte `json:"nonce"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// seal derives a key from passphrase and encrypts raw into a JSON blob.
// The salt doubles as associated data, binding the ciphertext to its KDF
// parameters.
func seal(passphrase string, raw []byte) ([]byte, error) {
	N, r, p := scryptParamsDefault()

	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, raw, salt[:])

	return json.Marshal(blob{
		V:      vaultFormatVersion,
		Salt:   salt[:],
		Nonce:  nonce,
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
}

// open decrypts a JSON blob produced by seal.
func open(passphrase string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > vaultFormatVersion {
		return nil, fmt.Errorf("unsupported vault version %d", bl.V)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	if len(bl.Nonce) != aead.NonceSize() {
		return nil, ErrWrongPassphrase
	}
	pt, err := aead.Open(nil, bl.Nonce, bl.Cipher, bl.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }
