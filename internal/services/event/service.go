package event

import (
	"context"
	"fmt"
	"net/url"

	"gatherly/internal/api"
	"gatherly/internal/domain"
)

// Service covers event CRUD, RSVPs, and attendee listings.
type Service struct {
	client *api.Client
}

// New returns an event service on top of client.
func New(client *api.Client) *Service { return &Service{client: client} }

// List returns one page of events visible to the user, newest first.
func (s *Service) List(ctx context.Context, page, perPage int) (domain.EventList, error) {
	var out domain.EventList
	if err := s.client.Get(ctx, "/v1/events", api.ListQuery(page, perPage), &out); err != nil {
		return domain.EventList{}, err
	}
	return out, nil
}

// Get fetches a single event.
func (s *Service) Get(ctx context.Context, id string) (domain.Event, error) {
	var out domain.Event
	if err := s.client.Get(ctx, "/v1/events/"+url.PathEscape(id), nil, &out); err != nil {
		return domain.Event{}, err
	}
	return out, nil
}

// Create publishes a new event hosted by the authenticated user.
func (s *Service) Create(ctx context.Context, ev domain.NewEvent) (domain.Event, error) {
	if ev.Title == "" {
		return domain.Event{}, fmt.Errorf("event title is required")
	}
	var out domain.Event
	if err := s.client.Post(ctx, "/v1/events", ev, &out); err != nil {
		return domain.Event{}, err
	}
	return out, nil
}

// Update patches an event the user hosts.
func (s *Service) Update(ctx context.Context, id string, patch domain.EventPatch) (domain.Event, error) {
	var out domain.Event
	if err := s.client.Patch(ctx, "/v1/events/"+url.PathEscape(id), patch, &out); err != nil {
		return domain.Event{}, err
	}
	return out, nil
}

// Cancel cancels an event the user hosts. Attendees keep their RSVPs; the
// server marks the event cancelled and notifies them.
func (s *Service) Cancel(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/v1/events/"+url.PathEscape(id))
}

// RSVP records the user's attendance response and returns the updated event.
// Pending is what the server reports for users who have not responded; it is
// not something a response can set.
func (s *Service) RSVP(ctx context.Context, id string, status domain.RSVPStatus) (domain.Event, error) {
	if !status.Valid() || status == domain.RSVPPending {
		return domain.Event{}, fmt.Errorf("rsvp status must be yes, no, or maybe, got %q", status)
	}
	in := struct {
		Status domain.RSVPStatus `json:"status"`
	}{Status: status}

	var out domain.Event
	if err := s.client.Post(ctx, "/v1/events/"+url.PathEscape(id)+"/rsvp", in, &out); err != nil {
		return domain.Event{}, err
	}
	return out, nil
}

// Attendees lists everyone with a non-pending RSVP on the event.
func (s *Service) Attendees(ctx context.Context, id string) ([]domain.Attendee, error) {
	var out []domain.Attendee
	if err := s.client.Get(ctx, "/v1/events/"+url.PathEscape(id)+"/attendees", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Compile-time assertion that Service implements domain.EventService.
var _ domain.EventService = (*Service)(nil)
