package devserver

import (
	"encoding/json"
	"net/http"
	"time"

	"gatherly/internal/domain"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	acct := s.accounts[currentUser(r)]
	user := acct.User
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handlePatchMe(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}

	s.mu.Lock()
	acct := s.accounts[currentUser(r)]
	if patch.Name != nil {
		acct.Name = *patch.Name
	}
	if patch.Bio != nil {
		acct.Bio = patch.Bio
	}
	if patch.AvatarURL != nil {
		acct.AvatarURL = patch.AvatarURL
	}
	now := time.Now().UTC()
	acct.UpdatedAt = &now
	user := acct.User
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, user)
}
