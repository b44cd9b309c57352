package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/security/auth"
	"github.com/calculadrink/platform/internal/service"
)

// stubCompanyRepo is a minimal in-memory CompanyRepository for handler tests.
type stubCompanyRepo struct {
	mu        sync.Mutex
	companies []*domain.Company
}

func (r *stubCompanyRepo) Create(_ context.Context, c *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.companies {
		if e.Document == c.Document || strings.EqualFold(e.Email, c.Email) {
			return domain.ErrDuplicate
		}
	}
	r.companies = append(r.companies, c)
	return nil
}

func (r *stubCompanyRepo) GetByID(_ context.Context, id string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubCompanyRepo) GetByEmail(_ context.Context, email string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubCompanyRepo) GetByDocument(_ context.Context, document string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.Document == document {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubCompanyRepo) List(_ context.Context) ([]*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Company, len(r.companies))
	copy(out, r.companies)
	return out, nil
}

func (r *stubCompanyRepo) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	c, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	c.Status = status
	return nil
}

func (r *stubCompanyRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	c, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	c.Role = role
	return nil
}

func (r *stubCompanyRepo) UpdatePassword(_ context.Context, id, hash string) error {
	c, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	return nil
}

func (r *stubCompanyRepo) ListOverdue(_ context.Context, _ time.Time) ([]*domain.Company, error) {
	return nil, nil
}

func newTestAuthHandler(repo *stubCompanyRepo) *AuthHandler {
	tm := auth.NewTokenManager("test-secret", "calculadrink")
	svc := service.NewAuthService(repo, tm, nil, nil, slog.Default(),
		"master@calculadrink.com", time.Hour, true)
	return NewAuthHandler(svc, slog.Default())
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	repo := &stubCompanyRepo{}
	h := newTestAuthHandler(repo)

	rec := postJSON(t, h.Register, `{
		"name": "Bar do Zé",
		"document": "12.345.678/0001-90",
		"email": "ze@bar.com",
		"type": "PJ",
		"password": "segredo",
		"confirmPassword": "segredo"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var company domain.Company
	if err := json.Unmarshal(rec.Body.Bytes(), &company); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if company.Status != domain.StatusRequested {
		t.Errorf("status = %s, want %s", company.Status, domain.StatusRequested)
	}
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Error("response must not expose the password hash")
	}

	// same document again
	rec = postJSON(t, h.Register, `{
		"name": "Outro",
		"document": "12345678000190",
		"email": "outro@bar.com",
		"password": "segredo",
		"confirmPassword": "segredo"
	}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: status = %d, want 409", rec.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	repo := &stubCompanyRepo{}
	hash, _ := bcrypt.GenerateFromPassword([]byte("segredo"), bcrypt.MinCost)
	repo.companies = append(repo.companies,
		&domain.Company{
			ID: "c1", Name: "Bar Ativo", Document: "111", Email: "ativo@bar.com",
			Status: domain.StatusActive, Role: domain.RoleAdmin, PasswordHash: string(hash),
		},
		&domain.Company{
			ID: "c2", Name: "Bar Novo", Document: "222", Email: "novo@bar.com",
			Status: domain.StatusRequested, Role: domain.RoleAdmin, PasswordHash: string(hash),
		},
	)
	h := newTestAuthHandler(repo)

	rec := postJSON(t, h.Login, `{"email":"ativo@bar.com","password":"segredo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result service.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a token")
	}

	rec = postJSON(t, h.Login, `{"email":"ativo@bar.com","password":"errada"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d, want 401", rec.Code)
	}

	rec = postJSON(t, h.Login, `{"email":"novo@bar.com","password":"segredo"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("pending account: status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "pending_approval") {
		t.Errorf("pending account: body = %s", rec.Body.String())
	}
}

func TestRecoveryEndpoint(t *testing.T) {
	repo := &stubCompanyRepo{}
	repo.companies = append(repo.companies, &domain.Company{
		ID: "c1", Name: "Bar do Zé", Document: "111", Email: "ze@bar.com",
		Status: domain.StatusActive, Role: domain.RoleAdmin,
	})
	h := newTestAuthHandler(repo)

	rec := postJSON(t, h.Recovery, `{"email":"ze@bar.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "master@calculadrink.com") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = postJSON(t, h.Recovery, `{"email":"nobody@bar.com"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown email: status = %d, want 404", rec.Code)
	}
}
