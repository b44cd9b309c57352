package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/calculadrink/platform/internal/security"
	"github.com/calculadrink/platform/internal/security/middleware"
	"github.com/calculadrink/platform/internal/service"
)

// TeamHandler handles the team management endpoints
type TeamHandler struct {
	teamService *service.TeamService
	logger      *slog.Logger
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService *service.TeamService, logger *slog.Logger) *TeamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeamHandler{
		teamService: teamService,
		logger:      logger,
	}
}

// authorize checks that the caller may act on the given company's team.
// The platform master may act on any company; everyone else only on their own.
func (h *TeamHandler) authorize(r *http.Request, companyID string, perm security.Permission) bool {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return false
	}
	if claims.Master {
		return true
	}
	if claims.CompanyID != companyID {
		return false
	}
	return security.HasPermission(claims.Role, perm)
}

// List handles GET /api/companies/{id}/team
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID := r.PathValue("id")
	if !h.authorize(r, companyID, security.PermViewTeam) {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Code: "forbidden"})
		return
	}

	users, err := h.teamService.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("failed to list team", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// Add handles POST /api/companies/{id}/team
func (h *TeamHandler) Add(w http.ResponseWriter, r *http.Request) {
	companyID := r.PathValue("id")
	if !h.authorize(r, companyID, security.PermManageTeam) {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Code: "forbidden"})
		return
	}

	var req service.AddInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Code: "validation"})
		return
	}

	user, err := h.teamService.Add(r.Context(), companyID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Remove handles DELETE /api/team/{id}
func (h *TeamHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "user id required", Code: "validation"})
		return
	}

	user, err := h.teamService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.authorize(r, user.CompanyID, security.PermManageTeam) {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Code: "forbidden"})
		return
	}

	if err := h.teamService.Remove(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
