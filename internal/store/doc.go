// Package store persists long-lived credentials on disk.
//
// The refresh token (and a small profile stub) is sealed with a key derived
// from the user's passphrase via scrypt and encrypted with
// ChaCha20-Poly1305. Files are written 0600 under the app home directory,
// via a temp file and rename so a crash never leaves a partial vault.
//
// The access token is deliberately NOT stored here: it lives in memory in
// the session manager and dies with the process.
package store
