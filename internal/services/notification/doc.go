// Package notification wraps the inbox endpoints and the live websocket
// feed, including reconnects and duplicate suppression for the latter.
package notification
