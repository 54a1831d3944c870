package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrSessionExpired is returned once the refresh token has been rejected and
// the local session torn down. The only recovery is a fresh login.
var ErrSessionExpired = errors.New("session expired: log in again")

// ErrNotAuthenticated is returned when an authenticated endpoint is called
// without a logged-in session.
var ErrNotAuthenticated = errors.New("not logged in")

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int    // HTTP status code
	Code    string // machine-readable error code, may be empty
	Message string // human-readable message, may be empty
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// errorFromResponse drains body and builds an *APIError. The server sends
// {"error": {"code": ..., "message": ...}}; anything else degrades to a bare
// status error.
func errorFromResponse(status int, body io.Reader) *APIError {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&payload); err != nil {
		return &APIError{Status: status}
	}
	return &APIError{Status: status, Code: payload.Error.Code, Message: payload.Error.Message}
}
