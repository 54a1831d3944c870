package friend

import (
	"context"
	"net/url"

	"gatherly/internal/api"
	"gatherly/internal/domain"
)

// Service covers friendships and friend requests.
type Service struct {
	client *api.Client
}

// New returns a friend service on top of client.
func New(client *api.Client) *Service { return &Service{client: client} }

// Friends lists the user's confirmed friends.
func (s *Service) Friends(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := s.client.Get(ctx, "/v1/friends", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Requests lists pending requests involving the user, both directions.
func (s *Service) Requests(ctx context.Context) ([]domain.FriendRequest, error) {
	var out []domain.FriendRequest
	if err := s.client.Get(ctx, "/v1/friends/requests", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Send creates a friend request to userID.
func (s *Service) Send(ctx context.Context, userID string) (domain.FriendRequest, error) {
	in := struct {
		UserID string `json:"user_id"`
	}{UserID: userID}

	var out domain.FriendRequest
	if err := s.client.Post(ctx, "/v1/friends/requests", in, &out); err != nil {
		return domain.FriendRequest{}, err
	}
	return out, nil
}

// Accept confirms a request addressed to the user.
func (s *Service) Accept(ctx context.Context, requestID string) error {
	return s.client.Post(ctx, "/v1/friends/requests/"+url.PathEscape(requestID)+"/accept", nil, nil)
}

// Decline rejects a request addressed to the user.
func (s *Service) Decline(ctx context.Context, requestID string) error {
	return s.client.Post(ctx, "/v1/friends/requests/"+url.PathEscape(requestID)+"/decline", nil, nil)
}

// Remove ends an existing friendship.
func (s *Service) Remove(ctx context.Context, userID string) error {
	return s.client.Delete(ctx, "/v1/friends/"+url.PathEscape(userID))
}

// Compile-time assertion that Service implements domain.FriendService.
var _ domain.FriendService = (*Service)(nil)
