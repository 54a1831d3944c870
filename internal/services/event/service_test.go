package event_test

import (
	"context"
	"testing"

	"gatherly/internal/domain"
	"gatherly/internal/services/event"
)

func TestRSVP_RejectsNonResponseStatus(t *testing.T) {
	// Validation happens before any request is built, so no client is needed.
	svc := event.New(nil)

	for _, status := range []domain.RSVPStatus{domain.RSVPPending, "attending", ""} {
		if _, err := svc.RSVP(context.Background(), "e-1", status); err == nil {
			t.Fatalf("status %q should be rejected client-side", status)
		}
	}
}
