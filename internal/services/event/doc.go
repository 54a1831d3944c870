// Package event wraps the event endpoints: paginated listing, CRUD for
// hosts, RSVP, and attendee listing.
package event
