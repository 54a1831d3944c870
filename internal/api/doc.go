// Package api is the HTTP wrapper around the Gatherly REST API.
//
// Client speaks JSON over HTTP with bearer-token authentication and exposes
// small typed helpers (Get/Post/Patch/Delete/Upload) that the service
// packages build on. Session owns the token lifecycle: the short-lived
// access token stays in memory, the long-lived refresh token round-trips
// through the credential vault, and a single-flight group makes sure a burst
// of concurrent 401s triggers exactly one refresh.
//
// Authenticated requests are replayed automatically after a refresh, at most
// twice per call. When a refresh itself is rejected the session clears both
// tokens, broadcasts an expiry notification, and surfaces ErrSessionExpired
// so the caller can send the user back to login.
package api
