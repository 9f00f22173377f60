package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/phonebook/internal/service"
)

// RegistrationHandler handles new account creation
type RegistrationHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(authService *service.AuthService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{authService: authService, logger: logger}
}

// Create handles POST /api/v1/registration/. Open to unauthenticated
// callers; the password never appears in the response.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.authService.Register(in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}
