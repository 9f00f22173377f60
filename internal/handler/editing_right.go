package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/phonebook/internal/security/middleware"
	"github.com/yourorg/phonebook/internal/service"
)

// EditingRightHandler serves the /api/v1/edit_access/ endpoints
type EditingRightHandler struct {
	rightService *service.EditingRightService
	logger       *slog.Logger
}

// NewEditingRightHandler creates a new editing right handler
func NewEditingRightHandler(rightService *service.EditingRightService, logger *slog.Logger) *EditingRightHandler {
	return &EditingRightHandler{rightService: rightService, logger: logger}
}

// editingRightRequest identifies the editor by email and the organization
// by name.
type editingRightRequest struct {
	Editor       string `json:"editor"`
	Organization string `json:"organization"`
}

// List handles GET /api/v1/edit_access/, scoped to organizations the
// requester created (all grants for a superuser).
func (h *EditingRightHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	rights, err := h.rightService.List(identity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]editingRightResponse, 0, len(rights))
	for _, right := range rights {
		out = append(out, toEditingRightResponse(right))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /api/v1/edit_access/
func (h *EditingRightHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	var req editingRightRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	right, err := h.rightService.Create(identity, req.Editor, req.Organization)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEditingRightResponse(right))
}

// Delete handles DELETE /api/v1/edit_access/{id}/
func (h *EditingRightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.rightService.Delete(identity, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
