package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/phonebook/internal/security/middleware"
	"github.com/yourorg/phonebook/internal/service"
)

// OrganizationHandler serves the /api/v1/organizations/ endpoints
type OrganizationHandler struct {
	orgService *service.OrganizationService
	logger     *slog.Logger
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgService *service.OrganizationService, logger *slog.Logger) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService, logger: logger}
}

// organizationRequest is the write body for create and full update.
type organizationRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// List handles GET /api/v1/organizations/ with optional ?search= substring
// filtering over organization names and their workers' fields.
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	search := r.URL.Query().Get("search")

	orgs, err := h.orgService.List(identity, search)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]organizationResponse, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, toOrganizationResponse(org))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/organizations/{id}/
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	org, err := h.orgService.Get(identity, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrganizationResponse(org))
}

// Create handles POST /api/v1/organizations/; the acting identity becomes
// the creator.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	var req organizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	org, err := h.orgService.Create(identity, req.Name, req.Address, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrganizationResponse(org))
}

// Update handles PUT /api/v1/organizations/{id}/ (full replace).
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req organizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	patch := service.OrganizationPatch{
		Name:        &req.Name,
		Address:     &req.Address,
		Description: &req.Description,
	}
	org, err := h.orgService.Update(identity, id, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrganizationResponse(org))
}

// Patch handles PATCH /api/v1/organizations/{id}/ (partial update).
func (h *OrganizationHandler) Patch(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var patch service.OrganizationPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	org, err := h.orgService.Update(identity, id, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrganizationResponse(org))
}

// Delete handles DELETE /api/v1/organizations/{id}/; workers and editing
// rights cascade away with the organization.
func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.orgService.Delete(identity, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
