package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/service"
)

// SettingsHandler handles the platform settings endpoints
type SettingsHandler struct {
	adminService *service.AdminService
	logger       *slog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(adminService *service.AdminService, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// Get handles GET /api/admin/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.adminService.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Put handles PUT /api/admin/settings
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Code: "validation"})
		return
	}

	if err := h.adminService.SaveSettings(r.Context(), operatorID(r), &settings); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
