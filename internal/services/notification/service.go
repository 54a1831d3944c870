package notification

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"gatherly/internal/api"
	"gatherly/internal/domain"
)

// Service covers the notification inbox and the live feed.
type Service struct {
	client *api.Client
	log    zerolog.Logger
}

// New returns a notification service on top of client.
func New(client *api.Client, log zerolog.Logger) *Service {
	return &Service{client: client, log: log}
}

// List returns one page of the inbox, newest first.
func (s *Service) List(ctx context.Context, page, perPage int) (domain.NotificationList, error) {
	var out domain.NotificationList
	if err := s.client.Get(ctx, "/v1/notifications", api.ListQuery(page, perPage), &out); err != nil {
		return domain.NotificationList{}, err
	}
	return out, nil
}

// MarkRead marks a single notification as read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.client.Post(ctx, "/v1/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

// MarkAllRead clears the unread state of the whole inbox.
func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.client.Post(ctx, "/v1/notifications/read-all", nil, nil)
}

// Compile-time assertion that Service implements domain.NotificationService.
var _ domain.NotificationService = (*Service)(nil)
