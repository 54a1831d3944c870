package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gatherly/internal/domain"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	type inner struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	writeJSON(w, status, struct {
		Error inner `json:"error"`
	}{Error: inner{Code: code, Message: message}})
}

// pageParams reads the pagination query parameters with defaults and caps.
func pageParams(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// paginate slices items for the requested page and fills in metadata.
func paginate[T any](items []T, page, perPage int) ([]T, domain.Page) {
	total := len(items)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	meta := domain.Page{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		HasMore:    end < total,
	}
	return items[start:end], meta
}
