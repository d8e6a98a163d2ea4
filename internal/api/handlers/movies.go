package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hectorm/xstreamify/internal/library"
	"github.com/hectorm/xstreamify/internal/models"
	"github.com/hectorm/xstreamify/internal/query"
	"github.com/sirupsen/logrus"
)

// MoviesHandler handles collection listing and single-record mutations
type MoviesHandler struct {
	store  *library.Store
	logger *logrus.Logger
}

// NewMoviesHandler creates a new movies handler
func NewMoviesHandler(store *library.Store, logger *logrus.Logger) *MoviesHandler {
	return &MoviesHandler{
		store:  store,
		logger: logger,
	}
}

// ListResponse is the projected collection plus its count
type ListResponse struct {
	Items []*models.MovieRecord `json:"items"`
	Total int                   `json:"total"`
}

// ServeHTTP routes /api/movies and /api/movies/{id}[/favorite]
func (h *MoviesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/movies"), "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1:
		id := parts[0]
		switch r.Method {
		case http.MethodPut:
			h.update(w, r, id)
		case http.MethodDelete:
			h.remove(w, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "favorite":
		if r.Method != http.MethodPatch {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.toggleFavorite(w, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *MoviesHandler) list(w http.ResponseWriter, r *http.Request) {
	view := models.ViewSpec{
		Query:   r.URL.Query().Get("query"),
		Tab:     models.ParseTab(r.URL.Query().Get("tab")),
		SortKey: models.ParseSortKey(r.URL.Query().Get("sort")),
	}

	items := query.Project(h.store.All(), view)
	writeJSON(w, http.StatusOK, ListResponse{Items: items, Total: len(items)})
}

func (h *MoviesHandler) create(w http.ResponseWriter, r *http.Request) {
	var input library.AddInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	record, err := h.store.Add(input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (h *MoviesHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var patch library.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	record, err := h.store.Update(id, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *MoviesHandler) remove(w http.ResponseWriter, id string) {
	if err := h.store.Remove(id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *MoviesHandler) toggleFavorite(w http.ResponseWriter, id string) {
	record, err := h.store.ToggleFavorite(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}
