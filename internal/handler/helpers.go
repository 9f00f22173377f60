package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/phonebook/internal/domain"
)

// errorBody is the machine-readable error envelope for every non-2xx
// response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a domain error onto an HTTP status and error kind.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	if ve, ok := domain.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Kind:    "validation",
			Message: "validation failed",
			Fields:  ve.Fields,
		}})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{
			Kind:    "not_found",
			Message: "resource not found",
		}})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: errorDetail{
			Kind:    "conflict",
			Message: err.Error(),
		}})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: errorDetail{
			Kind:    "forbidden",
			Message: "you do not have permission to perform this action",
		}})
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: errorDetail{
			Kind:    "unauthorized",
			Message: "authentication required",
		}})
	default:
		log.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
			Kind:    "internal",
			Message: "internal server error",
		}})
	}
}

// decodeJSON reads the request body into v, reporting malformed payloads as
// a validation error.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError().Add("body", "invalid JSON payload")
	}
	return nil
}

// pathID parses an integer path value; a non-numeric id reads as not found,
// matching how an unknown numeric id reads.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

// Wire representations for the response bodies.

type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type workerResponse struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	Position      string `json:"position"`
	WorkNumber    string `json:"work_number"`
	PrivateNumber string `json:"private_number"`
	Fax           string `json:"fax"`
}

func toWorkerResponse(w *domain.Worker) workerResponse {
	return workerResponse{
		ID:            w.ID,
		FullName:      w.FullName,
		Position:      w.Position,
		WorkNumber:    w.WorkNumber,
		PrivateNumber: w.PrivateNumber,
		Fax:           w.Fax,
	}
}

func toWorkerResponses(workers []*domain.Worker) []workerResponse {
	out := make([]workerResponse, 0, len(workers))
	for _, w := range workers {
		out = append(out, toWorkerResponse(w))
	}
	return out
}

type organizationResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Address     string           `json:"address"`
	Description string           `json:"description"`
	Workers     []workerResponse `json:"workers"`
}

func toOrganizationResponse(org *domain.Organization) organizationResponse {
	return organizationResponse{
		ID:          org.ID,
		Name:        org.Name,
		Address:     org.Address,
		Description: org.Description,
		Workers:     toWorkerResponses(org.Workers),
	}
}

type editingRightResponse struct {
	ID           int64  `json:"id"`
	Editor       string `json:"editor"`
	Organization string `json:"organization"`
}

func toEditingRightResponse(right *domain.EditingRight) editingRightResponse {
	return editingRightResponse{
		ID:           right.ID,
		Editor:       right.EditorEmail,
		Organization: right.Organization,
	}
}
