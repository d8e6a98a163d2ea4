package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hectorm/xstreamify/internal/library"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the structured failure body every endpoint returns.
// Callers get the field or id that failed, never a raw internal message.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	ID    string `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses and structured bodies.
func writeError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	var validationErr *library.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: validationErr.Error(),
			Field: validationErr.Field,
		})
		return
	}

	var notFoundErr *library.NotFoundError
	if errors.As(err, &notFoundErr) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: notFoundErr.Error(),
			ID:    notFoundErr.ID,
		})
		return
	}

	var persistenceErr *library.PersistenceError
	if errors.As(err, &persistenceErr) {
		logger.WithError(err).Error("Persistence failure")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "storage write failed",
		})
		return
	}

	logger.WithError(err).Error("Unhandled error")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
	})
}
