package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/calculadrink/platform/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes and stable error codes
// clients can branch on.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation"})
	case errors.Is(err, domain.ErrDuplicate):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "document or email already registered", Code: "duplicate"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found", Code: "not_found"})
	case errors.Is(err, domain.ErrPendingApproval):
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Error: "your access request is still awaiting approval",
			Code:  "pending_approval",
		})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "invalid_transition"})
	case errors.Is(err, domain.ErrSchemaMissing):
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "database schema is not installed, run the migrations",
			Code:  "schema_missing",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"})
	}
}
