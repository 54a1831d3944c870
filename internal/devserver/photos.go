package devserver

import (
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"gatherly/internal/domain"
)

// maxPhotoBytes caps a single upload. The dev server only keeps metadata,
// but the limit keeps accidental large posts honest.
const maxPhotoBytes = 16 << 20

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	eventID := chi.URLParam(r, "id")

	s.mu.Lock()
	if _, ok := s.events[eventID]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "not_found", "no such event")
		return
	}
	all := make([]domain.EventPhoto, 0)
	for _, p := range s.photos {
		if p.EventID == eventID {
			all = append(all, *p)
		}
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	items, meta := paginate(all, page, perPage)
	writeJSON(w, http.StatusOK, domain.PhotoList{Items: items, Page: meta})
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	userID := currentUser(r)

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "expected multipart form")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "photo file field is required")
		return
	}
	defer file.Close()
	size, err := io.Copy(io.Discard, file)
	if err != nil || size == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "empty photo")
		return
	}
	caption := r.FormValue("caption")

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[eventID]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such event")
		return
	}
	p := &domain.EventPhoto{
		ID:         s.nextIDLocked("p"),
		EventID:    eventID,
		UploaderID: userID,
		URL:        "https://cdn.gatherly.local/" + eventID + "/" + header.Filename,
		CreatedAt:  time.Now().UTC(),
	}
	if caption != "" {
		p.Caption = &caption
	}
	s.photos[p.ID] = p

	if ev.HostID != userID {
		name := s.accounts[userID].Name
		s.notifyLocked(ev.HostID, domain.NotifyEventPhoto, userID, eventID, name+" added a photo to "+ev.Title)
	}
	writeJSON(w, http.StatusCreated, *p)
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.photos[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such photo")
		return
	}
	host := ""
	if ev, ok := s.events[p.EventID]; ok {
		host = ev.HostID
	}
	if p.UploaderID != userID && host != userID {
		writeError(w, http.StatusForbidden, "forbidden", "only the uploader or the host can delete a photo")
		return
	}
	delete(s.photos, p.ID)
	writeJSON(w, http.StatusNoContent, nil)
}
