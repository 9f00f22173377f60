package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/phonebook/internal/service"
)

// TokenRequest represents token-auth credentials
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenHandler exchanges username/password for a bearer token
type TokenHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(authService *service.AuthService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{authService: authService, logger: logger}
}

// Create handles POST /api/v1/api-token-auth/
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
