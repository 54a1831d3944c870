package devserver_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gatherly/internal/api"
	"gatherly/internal/devserver"
	"gatherly/internal/domain"
	"gatherly/internal/services/auth"
	"gatherly/internal/services/event"
	"gatherly/internal/services/friend"
	"gatherly/internal/services/notification"
	"gatherly/internal/services/photo"
	"gatherly/internal/store"
)

// sdk bundles everything one test user needs.
type sdk struct {
	session       *api.Session
	auth          domain.AuthService
	events        domain.EventService
	photos        domain.PhotoService
	friends       domain.FriendService
	notifications domain.NotificationService
}

func newSDK(t *testing.T, baseURL string) *sdk {
	t.Helper()
	vault := store.NewFileVault(t.TempDir())
	session := api.NewSession(vault, zerolog.Nop())
	client, err := api.New(baseURL, session)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return &sdk{
		session:       session,
		auth:          auth.New(client, "vault-pass"),
		events:        event.New(client),
		photos:        photo.New(client),
		friends:       friend.New(client),
		notifications: notification.New(client, zerolog.Nop()),
	}
}

func startServer(t *testing.T, opts ...devserver.Option) string {
	t.Helper()
	srv := httptest.NewServer(devserver.New(zerolog.Nop(), opts...).Router())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestEndToEnd_EventLifecycle(t *testing.T) {
	ctx := context.Background()
	base := startServer(t)

	host := newSDK(t, base)
	guest := newSDK(t, base)

	hostUser, err := host.auth.Register(ctx, "Ada", "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register host: %v", err)
	}
	guestUser, err := guest.auth.Register(ctx, "Grace", "grace@example.com", "correcthorse")
	if err != nil {
		t.Fatalf("register guest: %v", err)
	}

	// Host creates an event.
	loc := "the park"
	ev, err := host.events.Create(ctx, domain.NewEvent{
		Title:    "Picnic",
		Location: &loc,
		StartsAt: time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if ev.HostID != hostUser.ID {
		t.Fatalf("host id mismatch: %q != %q", ev.HostID, hostUser.ID)
	}
	if ev.MyRSVP != domain.RSVPYes {
		t.Fatalf("host should auto-RSVP yes, got %s", ev.MyRSVP)
	}

	// Guest sees it in the list and responds.
	list, err := guest.events.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != ev.ID {
		t.Fatalf("guest should see the event, got %+v", list.Items)
	}
	if list.Items[0].MyRSVP != domain.RSVPPending {
		t.Fatalf("guest rsvp should start pending, got %s", list.Items[0].MyRSVP)
	}

	updated, err := guest.events.RSVP(ctx, ev.ID, domain.RSVPMaybe)
	if err != nil {
		t.Fatalf("rsvp: %v", err)
	}
	if updated.MyRSVP != domain.RSVPMaybe || updated.MaybeCount != 1 {
		t.Fatalf("rsvp not reflected: %+v", updated)
	}

	// The RSVP notified the host.
	inbox, err := host.notifications.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("host inbox: %v", err)
	}
	if len(inbox.Items) != 1 || inbox.Items[0].Kind != domain.NotifyRSVPChanged {
		t.Fatalf("expected one rsvp notification, got %+v", inbox.Items)
	}

	// Guest uploads a photo.
	p, err := guest.photos.Upload(ctx, ev.ID, domain.PhotoUpload{
		Filename: "cake.jpg",
		Caption:  "so good",
		Body:     strings.NewReader("jpegbytes"),
	})
	if err != nil {
		t.Fatalf("upload photo: %v", err)
	}
	if p.UploaderID != guestUser.ID {
		t.Fatalf("uploader mismatch: %+v", p)
	}

	gallery, err := host.photos.List(ctx, ev.ID, 1, 10)
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}
	if len(gallery.Items) != 1 || gallery.Items[0].Caption == nil || *gallery.Items[0].Caption != "so good" {
		t.Fatalf("gallery wrong: %+v", gallery.Items)
	}

	// Attendees show both users.
	attendees, err := host.events.Attendees(ctx, ev.ID)
	if err != nil {
		t.Fatalf("attendees: %v", err)
	}
	if len(attendees) != 2 {
		t.Fatalf("want 2 attendees, got %d", len(attendees))
	}

	// Cancel and verify.
	if err := host.events.Cancel(ctx, ev.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, err := guest.events.Get(ctx, ev.ID)
	if err != nil {
		t.Fatalf("get after cancel: %v", err)
	}
	if !got.Cancelled {
		t.Fatal("event should be cancelled")
	}
	if _, err := guest.events.RSVP(ctx, ev.ID, domain.RSVPYes); err == nil {
		t.Fatal("rsvp to a cancelled event should fail")
	}
}

func TestEndToEnd_FriendFlow(t *testing.T) {
	ctx := context.Background()
	base := startServer(t)

	alice := newSDK(t, base)
	bob := newSDK(t, base)

	aliceUser, err := alice.auth.Register(ctx, "Alice", "alice@example.com", "password-a")
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	bobUser, err := bob.auth.Register(ctx, "Bob", "bob@example.com", "password-b")
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	req, err := alice.friends.Send(ctx, bobUser.ID)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	if req.Status != domain.FriendRequestPending {
		t.Fatalf("want pending, got %s", req.Status)
	}

	// Duplicate requests are rejected.
	if _, err := alice.friends.Send(ctx, bobUser.ID); err == nil {
		t.Fatal("duplicate request should fail")
	}

	pending, err := bob.friends.Requests(ctx)
	if err != nil {
		t.Fatalf("bob requests: %v", err)
	}
	if len(pending) != 1 || pending[0].From.ID != aliceUser.ID {
		t.Fatalf("bob should see alice's request, got %+v", pending)
	}

	if err := bob.friends.Accept(ctx, req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	aliceFriends, err := alice.friends.Friends(ctx)
	if err != nil {
		t.Fatalf("alice friends: %v", err)
	}
	if len(aliceFriends) != 1 || aliceFriends[0].ID != bobUser.ID {
		t.Fatalf("alice should have bob, got %+v", aliceFriends)
	}

	// Acceptance notified alice; request notified bob.
	aliceInbox, _ := alice.notifications.List(ctx, 1, 10)
	if len(aliceInbox.Items) != 1 || aliceInbox.Items[0].Kind != domain.NotifyFriendAccept {
		t.Fatalf("alice inbox wrong: %+v", aliceInbox.Items)
	}

	if err := alice.friends.Remove(ctx, bobUser.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	bobFriends, _ := bob.friends.Friends(ctx)
	if len(bobFriends) != 0 {
		t.Fatalf("friendship should be gone, got %+v", bobFriends)
	}
}

func TestEndToEnd_TokenRefreshAcrossExpiry(t *testing.T) {
	ctx := context.Background()
	// A 2s TTL is always inside the proactive-refresh window, so every call
	// has to obtain a new token pair first. Rotation must keep working.
	base := startServer(t, devserver.WithAccessTTL(2*time.Second))

	user := newSDK(t, base)
	if _, err := user.auth.Register(ctx, "Eve", "eve@example.com", "password-e"); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := user.auth.CurrentUser(ctx); err != nil {
			t.Fatalf("call %d after expiry: %v", i, err)
		}
	}
}

func TestEndToEnd_LogoutRevokesRefresh(t *testing.T) {
	ctx := context.Background()
	base := startServer(t)

	user := newSDK(t, base)
	if _, err := user.auth.Register(ctx, "Mal", "mal@example.com", "password-m"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := user.auth.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if user.session.Authenticated() {
		t.Fatal("session should be gone after logout")
	}
	if _, err := user.auth.CurrentUser(ctx); err == nil {
		t.Fatal("authenticated call after logout should fail")
	}

	// Logging back in restores a working session.
	if _, err := user.auth.Login(ctx, "mal@example.com", "password-m"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := user.auth.CurrentUser(ctx); err != nil {
		t.Fatalf("call after re-login: %v", err)
	}
}

func TestPagination_EventList(t *testing.T) {
	ctx := context.Background()
	base := startServer(t)

	user := newSDK(t, base)
	if _, err := user.auth.Register(ctx, "Pag", "pag@example.com", "password-p"); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 7; i++ {
		_, err := user.events.Create(ctx, domain.NewEvent{
			Title:    "Event",
			StartsAt: time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	first, err := user.events.List(ctx, 1, 3)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(first.Items) != 3 || !first.Page.HasMore || first.Page.TotalItems != 7 {
		t.Fatalf("page 1 wrong: %+v", first.Page)
	}

	last, err := user.events.List(ctx, 3, 3)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(last.Items) != 1 || last.Page.HasMore {
		t.Fatalf("page 3 wrong: %d items, %+v", len(last.Items), last.Page)
	}
}

func TestStream_DeliversLiveNotifications(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	base := startServer(t)

	host := newSDK(t, base)
	guest := newSDK(t, base)

	if _, err := host.auth.Register(ctx, "Host", "host@example.com", "password-h"); err != nil {
		t.Fatalf("register host: %v", err)
	}
	if _, err := guest.auth.Register(ctx, "Guest", "guest@example.com", "password-g"); err != nil {
		t.Fatalf("register guest: %v", err)
	}

	ev, err := host.events.Create(ctx, domain.NewEvent{
		Title:    "Live",
		StartsAt: time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	received := make(chan domain.Notification, 4)
	streamCtx, stopStream := context.WithCancel(ctx)
	defer stopStream()
	go func() {
		_ = host.notifications.Stream(streamCtx, func(n domain.Notification) {
			received <- n
		})
	}()

	// Give the stream a moment to connect, then trigger a notification.
	time.Sleep(200 * time.Millisecond)
	if _, err := guest.events.RSVP(ctx, ev.ID, domain.RSVPYes); err != nil {
		t.Fatalf("rsvp: %v", err)
	}

	select {
	case n := <-received:
		if n.Kind != domain.NotifyRSVPChanged {
			t.Fatalf("want rsvp notification, got %+v", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no live notification within 5s")
	}
}
