package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/hectorm/xstreamify/internal/library"
	"github.com/hectorm/xstreamify/internal/models"
	"github.com/hectorm/xstreamify/internal/query"
	"github.com/hectorm/xstreamify/internal/selection"
	"github.com/sirupsen/logrus"
)

// BulkHandler applies a bulk action through the selection manager. The caller
// sends its view spec so the selection is scoped to what it could actually
// see; ids outside that projection are ignored rather than acted on.
type BulkHandler struct {
	store     *library.Store
	selection *selection.Manager
	logger    *logrus.Logger

	// The selection manager is shared, and each request runs a multi-step
	// clear/project/toggle/dispatch sequence against it. Requests take this
	// mutex for the whole sequence so one request's selection can never be
	// dispatched by another.
	mu sync.Mutex
}

// NewBulkHandler creates a new bulk handler
func NewBulkHandler(store *library.Store, sel *selection.Manager, logger *logrus.Logger) *BulkHandler {
	return &BulkHandler{
		store:     store,
		selection: sel,
		logger:    logger,
	}
}

// BulkRequest is the bulk action payload
type BulkRequest struct {
	Action string   `json:"action"` // favorite | unfavorite | delete
	IDs    []string `json:"ids"`
	View   struct {
		Query string `json:"query"`
		Tab   string `json:"tab"`
		Sort  string `json:"sort"`
	} `json:"view"`
}

// BulkResponse reports how many records the action touched
type BulkResponse struct {
	Action   string `json:"action"`
	Affected int    `json:"affected"`
	Ignored  int    `json:"ignored"` // ids outside the caller's projection
}

// ServeHTTP handles POST /api/movies/bulk
func (h *BulkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	action, err := selection.ParseAction(req.Action)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "action"})
		return
	}

	view := models.ViewSpec{
		Query:   req.View.Query,
		Tab:     models.ParseTab(req.View.Tab),
		SortKey: models.ParseSortKey(req.View.Sort),
	}

	projected := query.Project(h.store.All(), view)
	visible := make([]string, len(projected))
	for i, m := range projected {
		visible[i] = m.ID
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.selection.Clear()
	h.selection.SetProjection(view.Tab, visible)

	ignored := 0
	for _, id := range req.IDs {
		if !h.selection.Toggle(id) {
			ignored++
		}
	}

	affected, err := h.selection.Dispatch(action)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, BulkResponse{
		Action:   string(action),
		Affected: affected,
		Ignored:  ignored,
	})
}
