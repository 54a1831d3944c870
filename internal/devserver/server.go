package devserver

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gatherly/internal/domain"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// account is a registered user plus server-only fields.
type account struct {
	domain.User
	passwordHash []byte
}

// refreshGrant tracks one live refresh token.
type refreshGrant struct {
	userID    string
	expiresAt time.Time
}

// Server holds all in-memory state behind one mutex. Contention is not a
// concern at dev scale.
type Server struct {
	log       zerolog.Logger
	secret    []byte
	accessTTL time.Duration
	upgrader  websocket.Upgrader

	mu        sync.Mutex
	seq       int
	accounts  map[string]*account         // user ID -> account
	emails    map[string]string           // email -> user ID
	refresh   map[string]refreshGrant     // refresh token -> grant
	events    map[string]*domain.Event    // event ID -> event
	rsvps     map[string]map[string]domain.RSVPStatus // event ID -> user ID -> status
	photos    map[string]*domain.EventPhoto
	friends   map[string]map[string]bool // user ID -> set of friend IDs
	requests  map[string]*domain.FriendRequest
	inboxes   map[string][]domain.Notification   // user ID -> inbox
	listeners map[string][]chan domain.Notification // user ID -> live feeds
}

// Option customises the server.
type Option func(*Server)

// WithAccessTTL shortens or extends access token life; tests use very short
// TTLs to force refreshes.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithSecret sets the JWT signing secret.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// New returns an empty dev server.
func New(log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		log:       log,
		secret:    []byte("gatherly-dev-secret"),
		accessTTL: defaultAccessTTL,
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		accounts:  make(map[string]*account),
		emails:    make(map[string]string),
		refresh:   make(map[string]refreshGrant),
		events:    make(map[string]*domain.Event),
		rsvps:     make(map[string]map[string]domain.RSVPStatus),
		photos:    make(map[string]*domain.EventPhoto),
		friends:   make(map[string]map[string]bool),
		requests:  make(map[string]*domain.FriendRequest),
		inboxes:   make(map[string][]domain.Notification),
		listeners: make(map[string][]chan domain.Notification),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/refresh", s.handleRefresh)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/users/me", s.handleMe)
			r.Patch("/users/me", s.handlePatchMe)

			r.Get("/events", s.handleListEvents)
			r.Post("/events", s.handleCreateEvent)
			r.Get("/events/{id}", s.handleGetEvent)
			r.Patch("/events/{id}", s.handlePatchEvent)
			r.Delete("/events/{id}", s.handleCancelEvent)
			r.Post("/events/{id}/rsvp", s.handleRSVP)
			r.Get("/events/{id}/attendees", s.handleAttendees)
			r.Get("/events/{id}/photos", s.handleListPhotos)
			r.Post("/events/{id}/photos", s.handleUploadPhoto)
			r.Delete("/photos/{id}", s.handleDeletePhoto)

			r.Get("/friends", s.handleFriends)
			r.Get("/friends/requests", s.handleFriendRequests)
			r.Post("/friends/requests", s.handleSendFriendRequest)
			r.Post("/friends/requests/{id}/accept", s.handleAcceptFriendRequest)
			r.Post("/friends/requests/{id}/decline", s.handleDeclineFriendRequest)
			r.Delete("/friends/{id}", s.handleRemoveFriend)

			r.Get("/notifications", s.handleListNotifications)
			r.Post("/notifications/{id}/read", s.handleMarkRead)
			r.Post("/notifications/read-all", s.handleMarkAllRead)

			r.Get("/ws", s.handleStream)
		})
	})

	return r
}

// nextIDLocked hands out stable sequential IDs; the mutex must be held.
func (s *Server) nextIDLocked(prefix string) string {
	s.seq++
	return prefix + "-" + strconv.Itoa(s.seq)
}

// notify appends a notification to the user's inbox and fans it out to any
// live feeds. The mutex must be held.
func (s *Server) notifyLocked(userID string, kind domain.NotificationKind, actorID, eventID, message string) {
	n := domain.Notification{
		ID:        s.nextIDLocked("n"),
		Kind:      kind,
		ActorID:   actorID,
		EventID:   eventID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	s.inboxes[userID] = append(s.inboxes[userID], n)
	for _, ch := range s.listeners[userID] {
		select {
		case ch <- n:
		default: // feed is backed up, drop rather than block
		}
	}
}
