package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/calculadrink/platform/internal/domain"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s, path
}

func sampleCompany() *domain.Company {
	return &domain.Company{
		ID:           domain.NewID(),
		Name:         "Bar X",
		Document:     "12345678901",
		Email:        "a@b.com",
		Type:         domain.TypePJ,
		Status:       domain.StatusActive,
		Role:         domain.RoleAdmin,
		PasswordHash: "hash",
	}
}

func TestLocalDuplicateCheck(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	repo := s.Companies()

	if err := repo.Create(ctx, sampleCompany()); err != nil {
		t.Fatalf("create: %v", err)
	}

	sameDoc := sampleCompany()
	sameDoc.ID = domain.NewID()
	sameDoc.Email = "other@b.com"
	if err := repo.Create(ctx, sameDoc); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate for shared document, got %v", err)
	}

	sameEmail := sampleCompany()
	sameEmail.ID = domain.NewID()
	sameEmail.Document = "99999999999"
	sameEmail.Email = "A@B.COM" // case-insensitive match
	if err := repo.Create(ctx, sameEmail); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate for shared email, got %v", err)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	c := sampleCompany()
	if err := s.Companies().Create(ctx, c); err != nil {
		t.Fatalf("create company: %v", err)
	}
	if err := s.Team().Create(ctx, &domain.TeamUser{
		ID:           domain.NewID(),
		CompanyID:    c.ID,
		Name:         "Ana",
		Email:        "ana@b.com",
		Role:         domain.RoleBartender,
		PasswordHash: "hash",
	}); err != nil {
		t.Fatalf("create team user: %v", err)
	}
	if err := s.Settings().Save(ctx, domain.DefaultSettings()); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	// Reopen from disk and verify everything survived.
	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	got, err := reopened.Companies().GetByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.PasswordHash != "hash" {
		t.Fatalf("password hash not persisted")
	}

	team, err := reopened.Team().ListByCompany(ctx, c.ID)
	if err != nil || len(team) != 1 {
		t.Fatalf("expected 1 team member, got %d (err=%v)", len(team), err)
	}

	settings, err := reopened.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.Prices.Monthly != 49.90 {
		t.Fatalf("unexpected monthly price: %v", settings.Prices.Monthly)
	}
}

func TestListNewestFirst(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	repo := s.Companies()

	first := sampleCompany()
	second := sampleCompany()
	second.ID = domain.NewID()
	second.Document = "222"
	second.Email = "second@b.com"

	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected newest first")
	}
}

func TestDeleteTeamUser(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	u := &domain.TeamUser{ID: "t1", CompanyID: "c1", Name: "Ana", Email: "ana@b.com", Role: domain.RoleManager, PasswordHash: "h"}
	if err := s.Team().Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Team().Delete(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Team().Delete(ctx, "t1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
