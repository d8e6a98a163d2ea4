package handlers

import (
	"fmt"
	"net/http"

	"github.com/hectorm/xstreamify/internal/library"
	"github.com/hectorm/xstreamify/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler reports vault statistics
type StatusHandler struct {
	store  *library.Store
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(store *library.Store, db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		store:  store,
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalMovies   int            `json:"total_movies"`
	Favorites     int            `json:"favorites"`
	Tagged        int            `json:"tagged"`
	WithPoster    int            `json:"with_poster"`
	ByDecade      map[string]int `json:"by_decade"`
	SchemaVersion int            `json:"schema_version"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	version, err := h.db.StoredSchemaVersion()
	if err != nil {
		h.logger.WithError(err).Error("Failed to read schema version")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := StatusResponse{
		ByDecade:      make(map[string]int),
		SchemaVersion: version,
	}

	for _, movie := range h.store.All() {
		response.TotalMovies++
		if movie.Favorite {
			response.Favorites++
		}
		if len(movie.Tags) > 0 {
			response.Tagged++
		}
		if movie.PosterURL != "" {
			response.WithPoster++
		}
		if movie.Year != nil {
			decade := fmt.Sprintf("%ds", (*movie.Year/10)*10)
			response.ByDecade[decade]++
		}
	}

	writeJSON(w, http.StatusOK, response)
}
