package localstore

import (
	"context"
	"strings"
	"time"

	"github.com/calculadrink/platform/internal/domain"
)

// TeamRepository exposes the store as a domain.TeamRepository.
type TeamRepository struct {
	store *Store
}

// Team returns the team repository view of the store.
func (s *Store) Team() *TeamRepository {
	return &TeamRepository{store: s}
}

// Create inserts a team user, rejecting duplicate emails within the company.
func (r *TeamRepository) Create(_ context.Context, u *domain.TeamUser) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.data.Team {
		if rec.CompanyID == u.CompanyID && strings.EqualFold(rec.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}

	u.CreatedAt = time.Now()
	s.data.Team = append(s.data.Team, teamRecord{
		TeamUser:     *u,
		PasswordHash: u.PasswordHash,
	})
	return s.flush()
}

// GetByID retrieves a team user by ID.
func (r *TeamRepository) GetByID(_ context.Context, id string) (*domain.TeamUser, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.data.Team {
		if rec.ID == id {
			u := rec.TeamUser
			u.PasswordHash = rec.PasswordHash
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListByCompany lists one company's team in insertion order.
func (r *TeamRepository) ListByCompany(_ context.Context, companyID string) ([]*domain.TeamUser, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var team []*domain.TeamUser
	for _, rec := range s.data.Team {
		if rec.CompanyID == companyID {
			u := rec.TeamUser
			u.PasswordHash = rec.PasswordHash
			team = append(team, &u)
		}
	}
	return team, nil
}

// Delete removes a team user.
func (r *TeamRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.data.Team {
		if rec.ID == id {
			s.data.Team = append(s.data.Team[:i], s.data.Team[i+1:]...)
			return s.flush()
		}
	}
	return domain.ErrNotFound
}
