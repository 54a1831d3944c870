package domain

import (
	"context"
	"io"
)

// CredentialVault persists the long-lived credentials between runs.
// Implementations must encrypt at rest.
type CredentialVault interface {
	Save(passphrase string, creds Credentials) error
	Load(passphrase string) (Credentials, bool, error)
	Clear() error
}

// NewEvent is the payload for creating an event.
type NewEvent struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartsAt    string  `json:"starts_at"` // RFC 3339
	EndsAt      *string `json:"ends_at,omitempty"`
}

// EventPatch updates an event; nil fields are left unchanged.
type EventPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartsAt    *string `json:"starts_at,omitempty"`
	EndsAt      *string `json:"ends_at,omitempty"`
}

// ProfilePatch updates the authenticated user's profile.
type ProfilePatch struct {
	Name      *string `json:"name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// PhotoUpload describes a multipart photo upload.
type PhotoUpload struct {
	Filename string
	Caption  string
	Body     io.Reader
}

// AuthService covers account and session endpoints.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (User, error)
	Login(ctx context.Context, email, password string) (User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (User, error)
	UpdateProfile(ctx context.Context, patch ProfilePatch) (User, error)
}

// EventService covers event CRUD, RSVP, and attendee listing.
type EventService interface {
	List(ctx context.Context, page, perPage int) (EventList, error)
	Get(ctx context.Context, id string) (Event, error)
	Create(ctx context.Context, ev NewEvent) (Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (Event, error)
	Cancel(ctx context.Context, id string) error
	RSVP(ctx context.Context, id string, status RSVPStatus) (Event, error)
	Attendees(ctx context.Context, id string) ([]Attendee, error)
}

// PhotoService covers event photo galleries.
type PhotoService interface {
	List(ctx context.Context, eventID string, page, perPage int) (PhotoList, error)
	Upload(ctx context.Context, eventID string, up PhotoUpload) (EventPhoto, error)
	Delete(ctx context.Context, photoID string) error
}

// FriendService covers friendships and friend requests.
type FriendService interface {
	Friends(ctx context.Context) ([]User, error)
	Requests(ctx context.Context) ([]FriendRequest, error)
	Send(ctx context.Context, userID string) (FriendRequest, error)
	Accept(ctx context.Context, requestID string) error
	Decline(ctx context.Context, requestID string) error
	Remove(ctx context.Context, userID string) error
}

// NotificationService covers the inbox and the live feed.
type NotificationService interface {
	List(ctx context.Context, page, perPage int) (NotificationList, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Stream(ctx context.Context, fn func(Notification)) error
}
