package devserver

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"gatherly/internal/domain"
)

func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	s.mu.Lock()
	out := make([]domain.User, 0, len(s.friends[userID]))
	for fid := range s.friends[userID] {
		if acct, ok := s.accounts[fid]; ok {
			out = append(out, acct.User)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	s.mu.Lock()
	out := make([]domain.FriendRequest, 0)
	for _, req := range s.requests {
		if req.Status != domain.FriendRequestPending {
			continue
		}
		if req.From.ID == userID || req.To.ID == userID {
			out = append(out, *req)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	userID := currentUser(r)
	if in.UserID == userID {
		writeError(w, http.StatusBadRequest, "bad_request", "cannot befriend yourself")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.accounts[in.UserID]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such user")
		return
	}
	if s.friends[userID][in.UserID] {
		writeError(w, http.StatusConflict, "already_friends", "already friends")
		return
	}
	for _, req := range s.requests {
		if req.Status == domain.FriendRequestPending &&
			((req.From.ID == userID && req.To.ID == in.UserID) ||
				(req.From.ID == in.UserID && req.To.ID == userID)) {
			writeError(w, http.StatusConflict, "request_pending", "a request is already pending")
			return
		}
	}

	me := s.accounts[userID]
	req := &domain.FriendRequest{
		ID:        s.nextIDLocked("fr"),
		From:      me.User,
		To:        target.User,
		Status:    domain.FriendRequestPending,
		CreatedAt: time.Now().UTC(),
	}
	s.requests[req.ID] = req
	s.notifyLocked(target.ID, domain.NotifyFriendRequest, userID, "", me.Name+" sent you a friend request")

	writeJSON(w, http.StatusCreated, *req)
}

func (s *Server) handleAcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[chi.URLParam(r, "id")]
	if !ok || req.Status != domain.FriendRequestPending {
		writeError(w, http.StatusNotFound, "not_found", "no such pending request")
		return
	}
	if req.To.ID != userID {
		writeError(w, http.StatusForbidden, "forbidden", "not the request recipient")
		return
	}
	req.Status = domain.FriendRequestAccepted
	s.friends[req.From.ID][req.To.ID] = true
	s.friends[req.To.ID][req.From.ID] = true
	s.notifyLocked(req.From.ID, domain.NotifyFriendAccept, userID, "", req.To.Name+" accepted your friend request")

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeclineFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[chi.URLParam(r, "id")]
	if !ok || req.Status != domain.FriendRequestPending {
		writeError(w, http.StatusNotFound, "not_found", "no such pending request")
		return
	}
	if req.To.ID != userID {
		writeError(w, http.StatusForbidden, "forbidden", "not the request recipient")
		return
	}
	req.Status = domain.FriendRequestDeclined
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	friendID := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.friends[userID][friendID] {
		writeError(w, http.StatusNotFound, "not_found", "not friends")
		return
	}
	delete(s.friends[userID], friendID)
	delete(s.friends[friendID], userID)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	userID := currentUser(r)

	s.mu.Lock()
	all := make([]domain.Notification, len(s.inboxes[userID]))
	copy(all, s.inboxes[userID])
	s.mu.Unlock()

	// Inbox is append-ordered; newest first for the list view.
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	items, meta := paginate(all, page, perPage)
	writeJSON(w, http.StatusOK, domain.NotificationList{Items: items, Page: meta})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.inboxes[userID]
	for i := range inbox {
		if inbox[i].ID == id {
			inbox[i].Read = true
			writeJSON(w, http.StatusNoContent, nil)
			return
		}
	}
	writeError(w, http.StatusNotFound, "not_found", "no such notification")
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	s.mu.Lock()
	inbox := s.inboxes[userID]
	for i := range inbox {
		inbox[i].Read = true
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusNoContent, nil)
}

// handleStream upgrades to a websocket and forwards the user's live
// notifications until the peer goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already replied
	}
	defer conn.Close()

	feed := make(chan domain.Notification, 16)
	s.mu.Lock()
	s.listeners[userID] = append(s.listeners[userID], feed)
	s.mu.Unlock()
	defer s.dropListener(userID, feed)

	// Reader goroutine: we never expect client frames, but reading is how
	// websockets learn the peer hung up.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case n := <-feed:
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) dropListener(userID string, feed chan domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.listeners[userID][:0]
	for _, ch := range s.listeners[userID] {
		if ch != feed {
			live = append(live, ch)
		}
	}
	s.listeners[userID] = live
}
