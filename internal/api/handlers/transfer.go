package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hectorm/xstreamify/internal/library"
	"github.com/hectorm/xstreamify/internal/transfer"
	"github.com/sirupsen/logrus"
)

// Import documents larger than this are rejected outright.
const maxImportBytes = 16 << 20

// ExportHandler serves the collection as a downloadable JSON document
type ExportHandler struct {
	store  *library.Store
	logger *logrus.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(store *library.Store, logger *logrus.Logger) *ExportHandler {
	return &ExportHandler{store: store, logger: logger}
}

// ServeHTTP handles GET /api/movies/export
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := h.store.ExportAll()
	if err != nil {
		h.logger.WithError(err).Error("Export failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "export failed"})
		return
	}

	filename := transfer.ExportFilename(time.Now())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportHandler merges an uploaded JSON document into the collection
type ImportHandler struct {
	store  *library.Store
	logger *logrus.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(store *library.Store, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{store: store, logger: logger}
}

// ImportResponse reports the merge outcome
type ImportResponse struct {
	Inserted int `json:"inserted"`
	Replaced int `json:"replaced"`
	Skipped  int `json:"skipped"`
}

// ServeHTTP handles POST /api/movies/import
func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}

	records, skipped, err := transfer.Parse(body)
	if err != nil {
		var formatErr *transfer.ImportFormatError
		if errors.As(err, &formatErr) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: formatErr.Error()})
			return
		}
		writeError(w, h.logger, err)
		return
	}

	stats, err := h.store.ImportMerge(records)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Inserted: stats.Inserted,
		Replaced: stats.Replaced,
		Skipped:  skipped,
	})
}
