package notification_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gatherly/internal/api"
	"gatherly/internal/domain"
	"gatherly/internal/services/notification"
	"gatherly/internal/store"
)

// newStreamService wires a live session and client against baseURL.
func newStreamService(t *testing.T, baseURL string) *notification.Service {
	t.Helper()
	vault := store.NewFileVault(t.TempDir())
	session := api.NewSession(vault, zerolog.Nop())
	client, err := api.New(baseURL, session)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	tokens := domain.AuthTokens{AccessToken: "access", RefreshToken: "refresh"}
	if err := session.Start("pass", tokens, domain.User{ID: "u-1"}); err != nil {
		t.Fatalf("start session: %v", err)
	}
	return notification.New(client, zerolog.Nop())
}

func TestStream_BacksOffAfterDroppedConnections(t *testing.T) {
	// The server accepts the upgrade and hangs up straight away, over and
	// over: the flapping-backend case.
	var dials int32
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dials, 1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := newStreamService(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	if err := svc.Stream(ctx, func(domain.Notification) {}); err != nil {
		t.Fatalf("stream: %v", err)
	}

	// A 1s initial backoff leaves room for the first dial plus one retry in
	// this window. Re-dialing immediately after every drop racks up thousands.
	if n := atomic.LoadInt32(&dials); n > 3 {
		t.Fatalf("want at most 3 dials in 1.5s, got %d", n)
	}
}

func TestStream_SuppressesReplayedIDsAcrossReconnect(t *testing.T) {
	// Every connection replays n-1 before hanging up; from the second one on
	// there is also fresh data behind the replay.
	var conns int32
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", func(w http.ResponseWriter, r *http.Request) {
		nth := atomic.AddInt32(&conns, 1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(domain.Notification{ID: "n-1", Message: "first"})
		if nth >= 2 {
			_ = conn.WriteJSON(domain.Notification{ID: "n-2", Message: "second"})
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := newStreamService(t, srv.URL)

	got := make(chan domain.Notification, 8)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		errc <- svc.Stream(ctx, func(n domain.Notification) { got <- n })
	}()

	recv := func(label string) domain.Notification {
		select {
		case n := <-got:
			return n
		case <-time.After(8 * time.Second):
			t.Fatalf("timed out waiting for %s", label)
			return domain.Notification{}
		}
	}

	if n := recv("first delivery"); n.ID != "n-1" {
		t.Fatalf("want n-1 first, got %s", n.ID)
	}
	// The next delivery must be the fresh n-2 from the reconnect: the
	// replayed n-1 has to be swallowed on the way.
	if n := recv("post-reconnect delivery"); n.ID != "n-2" {
		t.Fatalf("replay not suppressed: got %s after reconnect", n.ID)
	}
	if atomic.LoadInt32(&conns) < 2 {
		t.Fatal("expected the stream to have reconnected")
	}

	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("stream: %v", err)
	}
	select {
	case n := <-got:
		t.Fatalf("unexpected extra delivery %s", n.ID)
	default:
	}
}
