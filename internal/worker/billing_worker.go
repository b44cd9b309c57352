package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/observability/metrics"
	"github.com/calculadrink/platform/internal/service"
)

// BillingWorker periodically suspends active accounts whose billing date has
// slipped past the grace period.
type BillingWorker struct {
	companies    domain.CompanyRepository
	adminService *service.AdminService
	logger       *slog.Logger
	interval     time.Duration
	grace        time.Duration
}

// NewBillingWorker creates a new billing sweep worker.
func NewBillingWorker(
	companies domain.CompanyRepository,
	adminService *service.AdminService,
	logger *slog.Logger,
	interval time.Duration,
	graceDays int,
) *BillingWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if graceDays < 0 {
		graceDays = 0
	}

	return &BillingWorker{
		companies:    companies,
		adminService: adminService,
		logger:       logger,
		interval:     interval,
		grace:        time.Duration(graceDays) * 24 * time.Hour,
	}
}

// Start begins the sweep loop. It blocks until the context is cancelled.
func (bw *BillingWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(bw.interval)
	defer ticker.Stop()

	bw.logger.Info("billing worker started",
		slog.Duration("interval", bw.interval),
		slog.Duration("grace", bw.grace),
	)

	for {
		select {
		case <-ctx.Done():
			bw.logger.Info("billing worker stopped")
			return
		case <-ticker.C:
			bw.sweep(ctx)
		}
	}
}

// sweep suspends every active account overdue beyond the grace period.
func (bw *BillingWorker) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-bw.grace)

	overdue, err := bw.companies.ListOverdue(ctx, cutoff)
	if err != nil {
		bw.logger.Error("failed to list overdue accounts", slog.String("error", err.Error()))
		return
	}
	if len(overdue) == 0 {
		return
	}

	bw.logger.Info("billing sweep found overdue accounts", slog.Int("count", len(overdue)))

	for _, company := range overdue {
		if _, err := bw.adminService.UpdateStatus(ctx, "billing-worker", company.ID, domain.StatusSuspended); err != nil {
			bw.logger.Error("failed to suspend overdue account",
				slog.String("company_id", company.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		metrics.ObserveBillingSuspension()
		bw.logger.Info("account suspended for overdue billing",
			slog.String("company_id", company.ID),
			slog.Time("next_billing_date", derefTime(company.NextBillingDate)),
		)
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
