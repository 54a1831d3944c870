package devserver

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"gatherly/internal/domain"
)

// viewLocked decorates an event with the caller's RSVP and live counts.
func (s *Server) viewLocked(ev *domain.Event, userID string) domain.Event {
	out := *ev
	out.MyRSVP = domain.RSVPPending
	out.GoingCount, out.MaybeCount = 0, 0
	for uid, status := range s.rsvps[ev.ID] {
		switch status {
		case domain.RSVPYes:
			out.GoingCount++
		case domain.RSVPMaybe:
			out.MaybeCount++
		}
		if uid == userID {
			out.MyRSVP = status
		}
	}
	if host, ok := s.accounts[ev.HostID]; ok {
		h := host.User
		out.Host = &h
	}
	return out
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	userID := currentUser(r)

	s.mu.Lock()
	all := make([]domain.Event, 0, len(s.events))
	for _, ev := range s.events {
		all = append(all, s.viewLocked(ev, userID))
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	items, meta := paginate(all, page, perPage)
	writeJSON(w, http.StatusOK, domain.EventList{Items: items, Page: meta})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in domain.NewEvent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	startsAt, err := time.Parse(time.RFC3339, in.StartsAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "starts_at must be RFC 3339")
		return
	}

	userID := currentUser(r)

	s.mu.Lock()
	ev := &domain.Event{
		ID:          s.nextIDLocked("e"),
		HostID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartsAt:    startsAt,
		CreatedAt:   time.Now().UTC(),
	}
	if in.EndsAt != nil {
		if endsAt, err := time.Parse(time.RFC3339, *in.EndsAt); err == nil {
			ev.EndsAt = &endsAt
		}
	}
	s.events[ev.ID] = ev
	s.rsvps[ev.ID] = map[string]domain.RSVPStatus{userID: domain.RSVPYes}
	out := s.viewLocked(ev, userID)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ev, ok := s.events[chi.URLParam(r, "id")]
	var out domain.Event
	if ok {
		out = s.viewLocked(ev, currentUser(r))
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such event")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePatchEvent(w http.ResponseWriter, r *http.Request) {
	var patch domain.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	userID := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such event")
		return
	}
	if ev.HostID != userID {
		writeError(w, http.StatusForbidden, "forbidden", "only the host can edit an event")
		return
	}
	if patch.Title != nil {
		ev.Title = *patch.Title
	}
	if patch.Description != nil {
		ev.Description = patch.Description
	}
	if patch.Location != nil {
		ev.Location = patch.Location
	}
	if patch.StartsAt != nil {
		if t, err := time.Parse(time.RFC3339, *patch.StartsAt); err == nil {
			ev.StartsAt = t
		}
	}
	if patch.EndsAt != nil {
		if t, err := time.Parse(time.RFC3339, *patch.EndsAt); err == nil {
			ev.EndsAt = &t
		}
	}

	// Tell everyone who responded that the plan changed.
	for uid := range s.rsvps[ev.ID] {
		if uid != userID {
			s.notifyLocked(uid, domain.NotifyEventUpdated, userID, ev.ID, ev.Title+" was updated")
		}
	}
	writeJSON(w, http.StatusOK, s.viewLocked(ev, userID))
}

func (s *Server) handleCancelEvent(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such event")
		return
	}
	if ev.HostID != userID {
		writeError(w, http.StatusForbidden, "forbidden", "only the host can cancel an event")
		return
	}
	ev.Cancelled = true
	for uid := range s.rsvps[ev.ID] {
		if uid != userID {
			s.notifyLocked(uid, domain.NotifyEventUpdated, userID, ev.ID, ev.Title+" was cancelled")
		}
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRSVP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status domain.RSVPStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	if !in.Status.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid rsvp status")
		return
	}
	userID := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such event")
		return
	}
	if ev.Cancelled {
		writeError(w, http.StatusConflict, "event_cancelled", "event was cancelled")
		return
	}
	s.rsvps[ev.ID][userID] = in.Status
	if ev.HostID != userID {
		name := s.accounts[userID].Name
		s.notifyLocked(ev.HostID, domain.NotifyRSVPChanged, userID, ev.ID, name+" responded "+string(in.Status))
	}
	writeJSON(w, http.StatusOK, s.viewLocked(ev, userID))
}

func (s *Server) handleAttendees(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such event")
		return
	}
	out := make([]domain.Attendee, 0, len(s.rsvps[ev.ID]))
	for uid, status := range s.rsvps[ev.ID] {
		if status == domain.RSVPPending {
			continue
		}
		if acct, ok := s.accounts[uid]; ok {
			out = append(out, domain.Attendee{User: acct.User, Status: status})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.ID < out[j].User.ID })
	writeJSON(w, http.StatusOK, out)
}
