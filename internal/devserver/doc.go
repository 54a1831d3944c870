// Package devserver is an in-memory stand-in for the Gatherly backend.
//
// It serves the same wire format the SDK consumes: JWT access tokens with
// rotating opaque refresh tokens, paginated JSON lists, multipart photo
// intake, and a websocket notification feed. State lives in maps and dies
// with the process; it exists for local development and for exercising the
// client end-to-end in tests.
package devserver
