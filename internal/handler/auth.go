package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/service"
)

// AuthHandler handles the access-gate endpoints
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// LoginRequest represents a login request. Clients send either the email or
// the document as the identifier.
type LoginRequest struct {
	Document string `json:"document"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RecoveryRequest represents a password recovery request
type RecoveryRequest struct {
	Email string `json:"email"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode register request",
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Code: "validation"})
		return
	}

	company, err := h.authService.Register(r.Context(), req)
	if err != nil {
		if !errors.Is(err, domain.ErrValidation) && !errors.Is(err, domain.ErrDuplicate) {
			h.logger.Error("registration failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, company)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request",
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Code: "validation"})
		return
	}

	result, err := h.authService.Login(r.Context(), req.Document, req.Email, req.Password)
	if err != nil {
		// wrong credentials come back as 401, not 404
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error: "invalid credentials",
				Code:  "invalid_credentials",
			})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Recovery handles POST /api/auth/recovery
func (h *AuthHandler) Recovery(w http.ResponseWriter, r *http.Request) {
	var req RecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Code: "validation"})
		return
	}

	message, err := h.authService.Recover(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}
