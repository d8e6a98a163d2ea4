package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hectorm/xstreamify/internal/models"
	"github.com/hectorm/xstreamify/internal/profiles"
	"github.com/sirupsen/logrus"
)

// ProfilesHandler handles viewer profile management
type ProfilesHandler struct {
	service *profiles.Service
	logger  *logrus.Logger
}

// NewProfilesHandler creates a new profiles handler
func NewProfilesHandler(service *profiles.Service, logger *logrus.Logger) *ProfilesHandler {
	return &ProfilesHandler{service: service, logger: logger}
}

// ProfilesResponse lists profiles and which one is active
type ProfilesResponse struct {
	Profiles []*models.Profile `json:"profiles"`
	ActiveID string            `json:"activeId,omitempty"`
}

// ServeHTTP routes /api/profiles, /api/profiles/{id} and /api/profiles/active
func (h *ProfilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/profiles"), "/")

	switch {
	case rest == "":
		switch r.Method {
		case http.MethodGet:
			h.list(w)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case rest == "active":
		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.setActive(w, r)
	case !strings.Contains(rest, "/"):
		switch r.Method {
		case http.MethodPut:
			h.rename(w, r, rest)
		case http.MethodDelete:
			h.remove(w, rest)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func (h *ProfilesHandler) list(w http.ResponseWriter) {
	list, err := h.service.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list profiles")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := ProfilesResponse{Profiles: list}
	if active, err := h.service.Active(); err == nil && active != nil {
		response.ActiveID = active.ID
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ProfilesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
		Kids   bool   `json:"kids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	profile, err := h.service.Add(req.Name, req.Avatar, req.Kids)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

func (h *ProfilesHandler) rename(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	profile, err := h.service.Rename(id, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfilesHandler) remove(w http.ResponseWriter, id string) {
	if err := h.service.Remove(id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *ProfilesHandler) setActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	if err := h.service.SetActive(req.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
