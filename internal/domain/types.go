package domain

import "time"

// RSVPStatus is a user's attendance response to an event.
type RSVPStatus string

const (
	RSVPYes     RSVPStatus = "yes"
	RSVPNo      RSVPStatus = "no"
	RSVPMaybe   RSVPStatus = "maybe"
	RSVPPending RSVPStatus = "pending"
)

// Valid reports whether s is one of the statuses the API accepts.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPYes, RSVPNo, RSVPMaybe, RSVPPending:
		return true
	}
	return false
}

// User is a Gatherly account as served by the API.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Event is a social event with RSVP state for the requesting user.
type Event struct {
	ID          string     `json:"id"`
	HostID      string     `json:"host_id"`
	Host        *User      `json:"host,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CoverURL    *string    `json:"cover_url,omitempty"`
	Cancelled   bool       `json:"cancelled"`
	MyRSVP      RSVPStatus `json:"my_rsvp"`
	GoingCount  int        `json:"going_count"`
	MaybeCount  int        `json:"maybe_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Attendee pairs a user with their RSVP for one event.
type Attendee struct {
	User   User       `json:"user"`
	Status RSVPStatus `json:"status"`
}

// EventPhoto is a photo uploaded to an event's gallery.
type EventPhoto struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	UploaderID string    `json:"uploader_id"`
	URL        string    `json:"url"`
	Caption    *string   `json:"caption,omitempty"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FriendRequestStatus is the lifecycle state of a friend request.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
)

// FriendRequest is a pending or resolved friendship between two users.
type FriendRequest struct {
	ID        string              `json:"id"`
	From      User                `json:"from"`
	To        User                `json:"to"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// NotificationKind discriminates Notification payloads.
type NotificationKind string

const (
	NotifyEventInvite   NotificationKind = "event_invite"
	NotifyEventUpdated  NotificationKind = "event_updated"
	NotifyEventPhoto    NotificationKind = "event_photo"
	NotifyFriendRequest NotificationKind = "friend_request"
	NotifyFriendAccept  NotificationKind = "friend_accept"
	NotifyRSVPChanged   NotificationKind = "rsvp_changed"
)

// Notification is a single inbox entry for the authenticated user.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	ActorID   string           `json:"actor_id,omitempty"`
	EventID   string           `json:"event_id,omitempty"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// AuthTokens is the access/refresh pair issued by the auth endpoints.
//
// The access token is short-lived and held in memory only; the refresh
// token is long-lived and belongs in the credential vault.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // access token lifetime, seconds
}

// Credentials is what the vault persists between runs.
type Credentials struct {
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

// Page carries pagination metadata echoed by list endpoints.
type Page struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalItems int  `json:"total_items"`
	HasMore    bool `json:"has_more"`
}

// EventList is a paginated slice of events.
type EventList struct {
	Items []Event `json:"items"`
	Page  Page    `json:"page"`
}

// PhotoList is a paginated slice of event photos.
type PhotoList struct {
	Items []EventPhoto `json:"items"`
	Page  Page         `json:"page"`
}

// NotificationList is a paginated slice of notifications.
type NotificationList struct {
	Items []Notification `json:"items"`
	Page  Page           `json:"page"`
}
