package localstore

import (
	"context"
	"strings"
	"time"

	"github.com/calculadrink/platform/internal/domain"
)

// CompanyRepository exposes the store as a domain.CompanyRepository.
type CompanyRepository struct {
	store *Store
}

// Companies returns the company repository view of the store.
func (s *Store) Companies() *CompanyRepository {
	return &CompanyRepository{store: s}
}

// Create inserts a company after checking that no local record shares its
// document or email.
func (r *CompanyRepository) Create(_ context.Context, c *domain.Company) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.data.Companies {
		if rec.Document == c.Document || strings.EqualFold(rec.Email, c.Email) {
			return domain.ErrDuplicate
		}
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.data.Companies = append(s.data.Companies, companyRecord{
		Company:      *c,
		PasswordHash: c.PasswordHash,
	})
	return s.flush()
}

// GetByID retrieves a company by ID.
func (r *CompanyRepository) GetByID(_ context.Context, id string) (*domain.Company, error) {
	return r.find(func(rec companyRecord) bool { return rec.ID == id })
}

// GetByEmail retrieves a company by email, case-insensitively.
func (r *CompanyRepository) GetByEmail(_ context.Context, email string) (*domain.Company, error) {
	return r.find(func(rec companyRecord) bool { return strings.EqualFold(rec.Email, email) })
}

// GetByDocument retrieves a company by its CNPJ/CPF.
func (r *CompanyRepository) GetByDocument(_ context.Context, document string) (*domain.Company, error) {
	return r.find(func(rec companyRecord) bool { return rec.Document == document })
}

// List returns every company, newest first.
func (r *CompanyRepository) List(_ context.Context) ([]*domain.Company, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Company, 0, len(s.data.Companies))
	for i := len(s.data.Companies) - 1; i >= 0; i-- {
		out = append(out, recordToCompany(s.data.Companies[i]))
	}
	return out, nil
}

// UpdateStatus sets the lifecycle status of a company.
func (r *CompanyRepository) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	return r.update(id, func(rec *companyRecord) {
		rec.Status = status
	})
}

// UpdateRole sets the role of a company account.
func (r *CompanyRepository) UpdateRole(_ context.Context, id string, role domain.Role) error {
	return r.update(id, func(rec *companyRecord) {
		rec.Role = role
	})
}

// UpdatePassword replaces the stored credential hash.
func (r *CompanyRepository) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	return r.update(id, func(rec *companyRecord) {
		rec.PasswordHash = passwordHash
	})
}

// ListOverdue returns active companies with a billing date before the cutoff.
func (r *CompanyRepository) ListOverdue(_ context.Context, before time.Time) ([]*domain.Company, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Company
	for _, rec := range s.data.Companies {
		if rec.Status == domain.StatusActive && rec.NextBillingDate != nil && rec.NextBillingDate.Before(before) {
			out = append(out, recordToCompany(rec))
		}
	}
	return out, nil
}

func (r *CompanyRepository) find(match func(companyRecord) bool) (*domain.Company, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.data.Companies {
		if match(rec) {
			return recordToCompany(rec), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CompanyRepository) update(id string, apply func(*companyRecord)) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Companies {
		if s.data.Companies[i].ID == id {
			apply(&s.data.Companies[i])
			s.data.Companies[i].UpdatedAt = time.Now()
			return s.flush()
		}
	}
	return domain.ErrNotFound
}

func recordToCompany(rec companyRecord) *domain.Company {
	c := rec.Company
	c.PasswordHash = rec.PasswordHash
	if rec.NextBillingDate != nil {
		t := *rec.NextBillingDate
		c.NextBillingDate = &t
	}
	return &c
}
