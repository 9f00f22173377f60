package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/phonebook/internal/security/middleware"
	"github.com/yourorg/phonebook/internal/service"
)

// WorkerHandler serves the nested
// /api/v1/organizations/{organization_id}/workers/ endpoints. The parent
// organization always comes from the path.
type WorkerHandler struct {
	workerService *service.WorkerService
	logger        *slog.Logger
}

// NewWorkerHandler creates a new worker handler
func NewWorkerHandler(workerService *service.WorkerService, logger *slog.Logger) *WorkerHandler {
	return &WorkerHandler{workerService: workerService, logger: logger}
}

// List handles GET .../workers/ with optional ?search= filtering over full
// name and phone fields.
func (h *WorkerHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	orgID, err := pathID(r, "organization_id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	workers, err := h.workerService.List(identity, orgID, r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkerResponses(workers))
}

// Get handles GET .../workers/{id}/
func (h *WorkerHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	orgID, workerID, err := h.ids(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	worker, err := h.workerService.Get(identity, orgID, workerID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkerResponse(worker))
}

// Create handles POST .../workers/
func (h *WorkerHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	orgID, err := pathID(r, "organization_id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.WorkerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	worker, err := h.workerService.Create(identity, orgID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWorkerResponse(worker))
}

// Update handles PUT .../workers/{id}/ (full replace).
func (h *WorkerHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	orgID, workerID, err := h.ids(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.WorkerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	patch := service.WorkerPatch{
		FullName:      &in.FullName,
		Position:      &in.Position,
		WorkNumber:    &in.WorkNumber,
		PrivateNumber: &in.PrivateNumber,
		Fax:           &in.Fax,
	}
	worker, err := h.workerService.Update(identity, orgID, workerID, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkerResponse(worker))
}

// Patch handles PATCH .../workers/{id}/ (partial update).
func (h *WorkerHandler) Patch(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	orgID, workerID, err := h.ids(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var patch service.WorkerPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	worker, err := h.workerService.Update(identity, orgID, workerID, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkerResponse(worker))
}

// Delete handles DELETE .../workers/{id}/
func (h *WorkerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	orgID, workerID, err := h.ids(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.workerService.Delete(identity, orgID, workerID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkerHandler) ids(r *http.Request) (orgID, workerID int64, err error) {
	orgID, err = pathID(r, "organization_id")
	if err != nil {
		return 0, 0, err
	}
	workerID, err = pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	return orgID, workerID, nil
}
