// Package auth handles account registration, login, logout, and profile
// access. Login and register run unauthenticated and hand the returned token
// pair to the session; everything else rides the authenticated client.
package auth
