package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/security/middleware"
	"github.com/calculadrink/platform/internal/service"
)

// CompaniesHandler handles the platform console endpoints
type CompaniesHandler struct {
	adminService *service.AdminService
	logger       *slog.Logger
}

// NewCompaniesHandler creates a new companies handler
func NewCompaniesHandler(adminService *service.AdminService, logger *slog.Logger) *CompaniesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompaniesHandler{
		adminService: adminService,
		logger:       logger,
	}
}

func operatorID(r *http.Request) string {
	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		return claims.CompanyID
	}
	return ""
}

// List handles GET /api/admin/companies?q=&status=
func (h *CompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.adminService.ListCompanies(r.Context())
	if err != nil {
		h.logger.Error("failed to list companies", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	query := r.URL.Query().Get("q")
	status := domain.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown status filter", Code: "validation"})
		return
	}

	writeJSON(w, http.StatusOK, service.FilterCompanies(companies, query, status))
}

// Get handles GET /api/admin/companies/{id}
func (h *CompaniesHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := h.adminService.GetCompany(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// UpdateStatusRequest represents a status change request
type UpdateStatusRequest struct {
	Status domain.Status `json:"status"`
}

// UpdateStatus handles PATCH /api/admin/companies/{id}/status
func (h *CompaniesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "company id required", Code: "validation"})
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Code: "validation"})
		return
	}

	company, err := h.adminService.UpdateStatus(r.Context(), operatorID(r), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, company)
}

// UpdateRoleRequest represents a role change request
type UpdateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// UpdateRole handles PATCH /api/admin/companies/{id}/role
func (h *CompaniesHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "company id required", Code: "validation"})
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Code: "validation"})
		return
	}

	company, err := h.adminService.UpdateRole(r.Context(), operatorID(r), id, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, company)
}

// ResetPasswordRequest represents a password reset request. An empty password
// asks the server to generate one.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword handles POST /api/admin/companies/{id}/password
func (h *CompaniesHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "company id required", Code: "validation"})
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Code: "validation"})
		return
	}

	result, err := h.adminService.ResetPassword(r.Context(), operatorID(r), id, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
