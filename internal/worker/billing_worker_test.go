package worker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/service"
)

type fakeCompanyRepo struct {
	companies map[string]*domain.Company
}

func (r *fakeCompanyRepo) Create(_ context.Context, c *domain.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*domain.Company, error) {
	if c, ok := r.companies[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeCompanyRepo) GetByEmail(_ context.Context, _ string) (*domain.Company, error) {
	return nil, domain.ErrNotFound
}

func (r *fakeCompanyRepo) GetByDocument(_ context.Context, _ string) (*domain.Company, error) {
	return nil, domain.ErrNotFound
}

func (r *fakeCompanyRepo) List(_ context.Context) ([]*domain.Company, error) {
	out := make([]*domain.Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCompanyRepo) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	c, ok := r.companies[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	return nil
}

func (r *fakeCompanyRepo) UpdateRole(_ context.Context, _ string, _ domain.Role) error { return nil }

func (r *fakeCompanyRepo) UpdatePassword(_ context.Context, _, _ string) error { return nil }

func (r *fakeCompanyRepo) ListOverdue(_ context.Context, before time.Time) ([]*domain.Company, error) {
	var out []*domain.Company
	for _, c := range r.companies {
		if c.Status == domain.StatusActive && c.NextBillingDate != nil && c.NextBillingDate.Before(before) {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestBillingSweep(t *testing.T) {
	overdue := time.Now().Add(-10 * 24 * time.Hour)
	recent := time.Now().Add(-1 * 24 * time.Hour)

	repo := &fakeCompanyRepo{companies: map[string]*domain.Company{
		"late": {ID: "late", Name: "Bar Atrasado", Status: domain.StatusActive, NextBillingDate: &overdue},
		"ok":   {ID: "ok", Name: "Bar em Dia", Status: domain.StatusActive, NextBillingDate: &recent},
		"none": {ID: "none", Name: "Bar sem Plano", Status: domain.StatusActive},
	}}

	adminSvc := service.NewAdminService(repo, nil, nil, nil, nil, nil,
		slog.Default(), "https://app.calculadrink.com")
	bw := NewBillingWorker(repo, adminSvc, slog.Default(), time.Hour, 5)

	bw.sweep(context.Background())

	if got := repo.companies["late"].Status; got != domain.StatusSuspended {
		t.Errorf("late account status = %s, want %s", got, domain.StatusSuspended)
	}
	if got := repo.companies["ok"].Status; got != domain.StatusActive {
		t.Errorf("current account status = %s, want %s", got, domain.StatusActive)
	}
	if got := repo.companies["none"].Status; got != domain.StatusActive {
		t.Errorf("unbilled account status = %s, want %s", got, domain.StatusActive)
	}
}
