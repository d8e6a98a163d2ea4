package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hectorm/xstreamify/internal/models"
	"github.com/sirupsen/logrus"
)

// PrefsHandler persists the last-used view preferences
type PrefsHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewPrefsHandler creates a new preferences handler
func NewPrefsHandler(db *models.Database, logger *logrus.Logger) *PrefsHandler {
	return &PrefsHandler{db: db, logger: logger}
}

// ServeHTTP handles GET and PUT /api/prefs
func (h *PrefsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		prefs, err := h.db.GetPrefs()
		if err != nil {
			h.logger.WithError(err).Error("Failed to read preferences")
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, prefs)

	case http.MethodPut:
		var incoming models.Prefs
		if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
			return
		}

		// Unknown tab/sort values collapse to the defaults rather than
		// persisting garbage the projection would choke on later.
		prefs := &models.Prefs{
			Tab:     models.ParseTab(string(incoming.Tab)),
			SortKey: models.ParseSortKey(string(incoming.SortKey)),
			Query:   incoming.Query,
		}
		if err := h.db.PutPrefs(prefs); err != nil {
			h.logger.WithError(err).Error("Failed to save preferences")
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "storage write failed"})
			return
		}
		writeJSON(w, http.StatusOK, prefs)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
