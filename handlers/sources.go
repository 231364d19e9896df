package handlers

import (
	"net/http"

	"github.com/prakhar3125/ExpenseFlow-backend/models"
	"github.com/prakhar3125/ExpenseFlow-backend/services"
)

// SourceHandler serves /api/sources.
type SourceHandler struct {
	svc *services.SourceService
}

func NewSourceHandler(svc *services.SourceService) *SourceHandler {
	return &SourceHandler{svc: svc}
}

// GetSources handles GET /api/sources
func (h *SourceHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	sources, err := h.svc.ListSources(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sources)
}

// CreateSource handles POST /api/sources
func (h *SourceHandler) CreateSource(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.SourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	src, err := h.svc.CreateSource(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, src)
}

// UpdateSource handles PUT /api/sources/{id}
func (h *SourceHandler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req models.SourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	src, err := h.svc.UpdateSource(r.Context(), userID, id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, src)
}

// DeleteSource handles DELETE /api/sources/{id}
func (h *SourceHandler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteSource(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
