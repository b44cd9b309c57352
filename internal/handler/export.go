package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/service"
)

// ExportHandler produces spreadsheet exports of the company listing
type ExportHandler struct {
	adminService *service.AdminService
	logger       *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(adminService *service.AdminService, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// Companies handles GET /api/admin/companies/export. The same q and status
// filters as the listing endpoint apply.
func (h *ExportHandler) Companies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.adminService.ListCompanies(r.Context())
	if err != nil {
		h.logger.Error("failed to list companies for export", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	query := r.URL.Query().Get("q")
	status := domain.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown status filter", Code: "validation"})
		return
	}
	companies = service.FilterCompanies(companies, query, status)

	buf, err := buildCompaniesWorkbook(companies)
	if err != nil {
		h.logger.Error("failed to build export", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"})
		return
	}

	filename := fmt.Sprintf("companies-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

func buildCompaniesWorkbook(companies []*domain.Company) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"id",
		"name",
		"responsible",
		"document",
		"email",
		"phone",
		"type",
		"status",
		"role",
		"plan",
		"next_billing_date",
		"created_at",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	for _, c := range companies {
		nextBilling := ""
		if c.NextBillingDate != nil {
			nextBilling = c.NextBillingDate.Format("2006-01-02")
		}
		excelRow := []interface{}{
			c.ID,
			c.Name,
			c.ResponsibleName,
			c.Document,
			c.Email,
			c.Phone,
			string(c.Type),
			string(c.Status),
			string(c.Role),
			c.Plan,
			nextBilling,
			c.CreatedAt.Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, err
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
