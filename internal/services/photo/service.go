package photo

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"gatherly/internal/api"
	"gatherly/internal/domain"
)

// Extensions the gallery accepts; checked client-side to save a round-trip.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Service covers event photo galleries.
type Service struct {
	client *api.Client
}

// New returns a photo service on top of client.
func New(client *api.Client) *Service { return &Service{client: client} }

// List returns one page of an event's gallery.
func (s *Service) List(ctx context.Context, eventID string, page, perPage int) (domain.PhotoList, error) {
	var out domain.PhotoList
	path := "/v1/events/" + url.PathEscape(eventID) + "/photos"
	if err := s.client.Get(ctx, path, api.ListQuery(page, perPage), &out); err != nil {
		return domain.PhotoList{}, err
	}
	return out, nil
}

// Upload streams a photo into the event's gallery as a multipart form.
func (s *Service) Upload(ctx context.Context, eventID string, up domain.PhotoUpload) (domain.EventPhoto, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !allowedExtensions[ext] {
		return domain.EventPhoto{}, fmt.Errorf("unsupported photo type %q", ext)
	}
	var out domain.EventPhoto
	path := "/v1/events/" + url.PathEscape(eventID) + "/photos"
	if err := s.client.Upload(ctx, path, up, &out); err != nil {
		return domain.EventPhoto{}, err
	}
	return out, nil
}

// Delete removes a photo the user uploaded (or hosts the event of).
func (s *Service) Delete(ctx context.Context, photoID string) error {
	return s.client.Delete(ctx, "/v1/photos/"+url.PathEscape(photoID))
}

// Compile-time assertion that Service implements domain.PhotoService.
var _ domain.PhotoService = (*Service)(nil)
