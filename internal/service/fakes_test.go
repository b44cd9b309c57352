package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/calculadrink/platform/internal/domain"
)

// memCompanyRepo is an in-memory CompanyRepository for tests.
type memCompanyRepo struct {
	mu        sync.Mutex
	companies []*domain.Company
	createErr error
}

func (r *memCompanyRepo) Create(_ context.Context, c *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.companies {
		if existing.Document == c.Document || strings.EqualFold(existing.Email, c.Email) {
			return domain.ErrDuplicate
		}
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.companies = append(r.companies, c)
	return nil
}

func (r *memCompanyRepo) GetByID(_ context.Context, id string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memCompanyRepo) GetByEmail(_ context.Context, email string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memCompanyRepo) GetByDocument(_ context.Context, document string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.Document == document {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memCompanyRepo) List(_ context.Context) ([]*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Company, len(r.companies))
	copy(out, r.companies)
	return out, nil
}

func (r *memCompanyRepo) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.ID == id {
			c.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memCompanyRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.ID == id {
			c.Role = role
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memCompanyRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.ID == id {
			c.PasswordHash = passwordHash
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memCompanyRepo) ListOverdue(_ context.Context, before time.Time) ([]*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Company
	for _, c := range r.companies {
		if c.Status == domain.StatusActive && c.NextBillingDate != nil && c.NextBillingDate.Before(before) {
			out = append(out, c)
		}
	}
	return out, nil
}

// memTeamRepo is an in-memory TeamRepository for tests.
type memTeamRepo struct {
	mu    sync.Mutex
	users []*domain.TeamUser
}

func (r *memTeamRepo) Create(_ context.Context, u *domain.TeamUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.CompanyID == u.CompanyID && strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	u.CreatedAt = time.Now()
	r.users = append(r.users, u)
	return nil
}

func (r *memTeamRepo) GetByID(_ context.Context, id string) (*domain.TeamUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memTeamRepo) ListByCompany(_ context.Context, companyID string) ([]*domain.TeamUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TeamUser
	for _, u := range r.users {
		if u.CompanyID == companyID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memTeamRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// memSettingsRepo is an in-memory SettingsRepository for tests.
type memSettingsRepo struct {
	mu       sync.Mutex
	settings *domain.Settings
}

func (r *memSettingsRepo) Get(_ context.Context) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return nil, domain.ErrNotFound
	}
	return r.settings, nil
}

func (r *memSettingsRepo) Save(_ context.Context, s *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
	return nil
}

// memSessions tracks per-company session versions in memory.
type memSessions struct {
	mu       sync.Mutex
	versions map[string]int64
}

func newMemSessions() *memSessions {
	return &memSessions{versions: map[string]int64{}}
}

func (s *memSessions) CurrentVersion(_ context.Context, companyID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[companyID], nil
}

func (s *memSessions) Revoke(_ context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[companyID]++
	return nil
}
