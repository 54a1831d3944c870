package notification

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"gatherly/internal/api"
	"gatherly/internal/domain"
)

const (
	streamPath     = "/v1/ws"
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second

	// maxSeen bounds the dedupe window; a watcher that has been up for days
	// should not hold every ID it ever saw.
	maxSeen = 1024
)

// Stream connects to the live notification feed and invokes fn for each
// notification until ctx is cancelled. Dropped connections are re-dialed
// with capped exponential backoff, whether the dial or an established
// connection failed; the backoff resets only once a connection has actually
// delivered something. Notifications recently seen in this stream are
// suppressed by ID so a reconnect replay doesn't double-deliver.
//
// Stream returns nil on context cancellation and an error only when the
// session is gone (expired or logged out).
func (s *Service) Stream(ctx context.Context, fn func(domain.Notification)) error {
	seen := newSeenSet(maxSeen)
	backoff := initialBackoff

	for {
		conn, err := s.dial(ctx)
		if err != nil {
			if errors.Is(err, api.ErrSessionExpired) || errors.Is(err, api.ErrNotAuthenticated) {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("notification stream dial failed")
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		delivered, err := s.consume(ctx, conn, seen, fn)
		if ctx.Err() != nil {
			return nil
		}
		if delivered {
			// The connection was healthy before it dropped; start the
			// reconnect schedule over.
			backoff = initialBackoff
		}
		s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("notification stream dropped, reconnecting")
		if !sleep(ctx, backoff) {
			return nil
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// dial opens the websocket with a fresh bearer token. Token() refreshes
// through the session when the in-memory one has gone stale.
func (s *Service) dial(ctx context.Context) (*websocket.Conn, error) {
	token, err := s.client.Session().Token(ctx)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.client.WebSocketURL(streamPath), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	return conn, nil
}

// consume reads notifications off conn until it breaks or ctx is cancelled,
// reporting whether anything new was delivered.
func (s *Service) consume(ctx context.Context, conn *websocket.Conn, seen *seenSet, fn func(domain.Notification)) (bool, error) {
	defer conn.Close()

	// Unblock ReadJSON when the caller gives up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	delivered := false
	for {
		var n domain.Notification
		if err := conn.ReadJSON(&n); err != nil {
			return delivered, err
		}
		if !seen.add(n.ID) {
			continue
		}
		delivered = true
		fn(n)
	}
}

// seenSet remembers the most recent capacity IDs, evicting the oldest once
// full so the window stays bounded for long-running watchers.
type seenSet struct {
	capacity int
	ids      map[string]struct{}
	order    []string
}

func newSeenSet(capacity int) *seenSet {
	return &seenSet{capacity: capacity, ids: make(map[string]struct{}, capacity)}
}

// add records id and reports whether it was new.
func (s *seenSet) add(id string) bool {
	if _, dup := s.ids[id]; dup {
		return false
	}
	if len(s.order) == s.capacity {
		delete(s.ids, s.order[0])
		s.order = s.order[1:]
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// sleep waits for d or until ctx is cancelled; it reports whether the full
// wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
