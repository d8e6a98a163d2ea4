package handlers

import (
	"net/http"
	"strconv"

	"github.com/hectorm/xstreamify/internal/library"
	"github.com/hectorm/xstreamify/internal/search"
	"github.com/sirupsen/logrus"
)

// SuggestHandler serves typeahead suggestions for the search overlay
type SuggestHandler struct {
	store  *library.Store
	logger *logrus.Logger
}

// NewSuggestHandler creates a new suggest handler
func NewSuggestHandler(store *library.Store, logger *logrus.Logger) *SuggestHandler {
	return &SuggestHandler{store: store, logger: logger}
}

// SuggestResponse holds ranked title suggestions
type SuggestResponse struct {
	Suggestions []search.Suggestion `json:"suggestions"`
}

// ServeHTTP handles GET /api/search/suggest
func (h *SuggestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	suggestions := search.Suggest(h.store.All(), q, limit)
	if suggestions == nil {
		suggestions = []search.Suggestion{}
	}

	writeJSON(w, http.StatusOK, SuggestResponse{Suggestions: suggestions})
}
