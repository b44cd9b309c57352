package service

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/events"
	"github.com/calculadrink/platform/internal/observability/metrics"
)

// TeamService manages the staff accounts that belong to a company.
type TeamService struct {
	team   domain.TeamRepository
	bus    *events.Bus
	logger *slog.Logger
}

// NewTeamService creates a new team service.
func NewTeamService(team domain.TeamRepository, bus *events.Bus, logger *slog.Logger) *TeamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeamService{team: team, bus: bus, logger: logger}
}

// List returns a company's team members, oldest first.
func (s *TeamService) List(ctx context.Context, companyID string) ([]*domain.TeamUser, error) {
	if companyID == "" {
		return nil, domain.Validationf("company id is required")
	}
	return s.team.ListByCompany(ctx, companyID)
}

// Get fetches a single team member.
func (s *TeamService) Get(ctx context.Context, userID string) (*domain.TeamUser, error) {
	if userID == "" {
		return nil, domain.Validationf("user id is required")
	}
	return s.team.GetByID(ctx, userID)
}

// AddInput is everything the add-member form collects.
type AddInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Password string      `json:"password"`
}

// Add creates a team member under a company. Emails are unique per company.
func (s *TeamService) Add(ctx context.Context, companyID string, in AddInput) (*domain.TeamUser, error) {
	if companyID == "" {
		return nil, domain.Validationf("company id is required")
	}
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, domain.Validationf("name, email, role and password are required")
	}
	if !in.Role.Valid() {
		return nil, domain.Validationf("unknown role %q", in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.TeamUser{
		ID:           domain.NewID(),
		CompanyID:    companyID,
		Name:         in.Name,
		Email:        domain.NormalizeEmail(in.Email),
		Role:         in.Role,
		PasswordHash: string(hash),
	}
	if err := s.team.Create(ctx, user); err != nil {
		return nil, err
	}

	metrics.ObserveTeamChange("add")
	if s.bus != nil {
		s.bus.Emit(ctx, events.ActionTeamAdded, companyID, "", user.Email)
	}

	s.logger.Info("team member added",
		slog.String("company_id", companyID),
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// Remove deletes a team member.
func (s *TeamService) Remove(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.Validationf("user id is required")
	}

	user, err := s.team.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.team.Delete(ctx, userID); err != nil {
		return err
	}

	metrics.ObserveTeamChange("remove")
	if s.bus != nil {
		s.bus.Emit(ctx, events.ActionTeamRemoved, user.CompanyID, "", user.Email)
	}

	s.logger.Info("team member removed",
		slog.String("company_id", user.CompanyID),
		slog.String("user_id", userID),
	)
	return nil
}
