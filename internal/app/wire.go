package app

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"gatherly/internal/api"
	"gatherly/internal/domain"
	"gatherly/internal/services/auth"
	"gatherly/internal/services/event"
	"gatherly/internal/services/friend"
	"gatherly/internal/services/notification"
	"gatherly/internal/services/photo"
	"gatherly/internal/store"
)

// Wire bundles the vault, session, API client, and services for the CLI.
type Wire struct {
	Log     zerolog.Logger
	Vault   domain.CredentialVault
	Client  *api.Client
	Session *api.Session

	Auth          domain.AuthService
	Events        domain.EventService
	Photos        domain.PhotoService
	Friends       domain.FriendService
	Notifications domain.NotificationService
}

// NewWire constructs the dependency graph from cfg. passphrase seals the
// credential vault; an existing vault is unlocked eagerly so the first
// request can refresh straight away.
func NewWire(cfg Config, passphrase string) (*Wire, error) {
	log := newLogger(cfg.LogLevel)

	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}
	vault := store.NewFileVault(cfg.Home)
	session := api.NewSession(vault, log)

	client, err := api.New(cfg.APIBaseURL, session,
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	if _, err := session.Unlock(passphrase); err != nil {
		return nil, err
	}

	return &Wire{
		Log:           log,
		Vault:         vault,
		Client:        client,
		Session:       session,
		Auth:          auth.New(client, passphrase),
		Events:        event.New(client),
		Photos:        photo.New(client),
		Friends:       friend.New(client),
		Notifications: notification.New(client, log),
	}, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
