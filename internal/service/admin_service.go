package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/events"
	"github.com/calculadrink/platform/internal/observability/metrics"
	"github.com/calculadrink/platform/internal/security/audit"
	"github.com/calculadrink/platform/pkg/cache"
)

const settingsCacheKey = "settings:platform"

// AdminService implements the platform console: reviewing access requests,
// moving accounts through their lifecycle, resetting credentials and
// maintaining platform settings.
type AdminService struct {
	companies domain.CompanyRepository
	settings  domain.SettingsRepository
	sessions  SessionManager
	bus       *events.Bus
	cache     *cache.Cache
	audit     *audit.Logger
	logger    *slog.Logger
	appURL    string
}

// NewAdminService creates a new platform console service.
func NewAdminService(
	companies domain.CompanyRepository,
	settings domain.SettingsRepository,
	sessions SessionManager,
	bus *events.Bus,
	c *cache.Cache,
	auditLog *audit.Logger,
	logger *slog.Logger,
	appURL string,
) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{
		companies: companies,
		settings:  settings,
		sessions:  sessions,
		bus:       bus,
		cache:     c,
		audit:     auditLog,
		logger:    logger,
		appURL:    appURL,
	}
}

// ListCompanies returns every registered account, newest first, and refreshes
// the active-accounts gauge as a side effect.
func (s *AdminService) ListCompanies(ctx context.Context) ([]*domain.Company, error) {
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, err
	}

	active := 0
	for _, c := range companies {
		if c.Status == domain.StatusActive {
			active++
		}
	}
	metrics.SetActiveCompanies(active)

	return companies, nil
}

// FilterCompanies narrows a listing by a free-text query matched against
// name, email and document, and by an optional status facet. Input order is
// preserved.
func FilterCompanies(companies []*domain.Company, query string, status domain.Status) []*domain.Company {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]*domain.Company, 0, len(companies))
	for _, c := range companies {
		if status != "" && c.Status != status {
			continue
		}
		if query != "" {
			if !strings.Contains(strings.ToLower(c.Name), query) &&
				!strings.Contains(strings.ToLower(c.Email), query) &&
				!strings.Contains(c.Document, query) {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// GetCompany fetches a single account.
func (s *AdminService) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	if id == "" {
		return nil, domain.Validationf("company id is required")
	}
	return s.companies.GetByID(ctx, id)
}

// UpdateStatus moves an account to a new lifecycle status. Only the
// transitions the lifecycle allows go through; suspending an account also
// revokes its outstanding sessions.
func (s *AdminService) UpdateStatus(ctx context.Context, operatorID, id string, next domain.Status) (*domain.Company, error) {
	if !next.Valid() {
		return nil, domain.Validationf("unknown status %q", next)
	}

	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.Status == next {
		return company, nil
	}
	if !domain.CanTransition(company.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, company.Status, next)
	}

	prev := company.Status
	if err := s.companies.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	company.Status = next

	if next == domain.StatusSuspended && s.sessions != nil {
		if err := s.sessions.Revoke(ctx, id); err != nil {
			s.logger.Error("failed to revoke sessions",
				slog.String("company_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	metrics.ObserveStatusTransition(string(prev), string(next))
	if s.audit != nil {
		s.audit.LogStatusChange(ctx, operatorID, id, string(prev), string(next))
	}
	if s.bus != nil {
		s.bus.Emit(ctx, events.ActionStatusChanged, company.ID, company.Name,
			fmt.Sprintf("%s -> %s", prev, next))
	}

	s.logger.Info("status updated",
		slog.String("company_id", id),
		slog.String("from", string(prev)),
		slog.String("to", string(next)),
	)
	return company, nil
}

// UpdateRole reassigns an account's role.
func (s *AdminService) UpdateRole(ctx context.Context, operatorID, id string, role domain.Role) (*domain.Company, error) {
	if !role.Valid() {
		return nil, domain.Validationf("unknown role %q", role)
	}

	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.Role == role {
		return company, nil
	}

	if err := s.companies.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	company.Role = role

	if s.audit != nil {
		s.audit.LogRoleChange(ctx, operatorID, id, string(role))
	}
	if s.bus != nil {
		s.bus.Emit(ctx, events.ActionRoleChanged, company.ID, company.Name, string(role))
	}

	s.logger.Info("role updated",
		slog.String("company_id", id),
		slog.String("role", string(role)),
	)
	return company, nil
}

// ResetResult carries a freshly reset password and a prefilled mailto link
// the operator can use to hand it to the account holder.
type ResetResult struct {
	Password  string `json:"password"`
	MailtoURL string `json:"mailtoUrl"`
}

// ResetPassword stores a new password for an account, revoking its sessions.
// An empty password asks for a generated suggestion; anything shorter than
// four characters is rejected before any change is made.
func (s *AdminService) ResetPassword(ctx context.Context, operatorID, id, password string) (*ResetResult, error) {
	if password == "" {
		password = SuggestPassword()
	}
	if utf8.RuneCountInString(password) < 4 {
		return nil, domain.Validationf("password must have at least 4 characters")
	}

	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.companies.UpdatePassword(ctx, id, string(hash)); err != nil {
		return nil, err
	}

	if s.sessions != nil {
		if err := s.sessions.Revoke(ctx, id); err != nil {
			s.logger.Error("failed to revoke sessions",
				slog.String("company_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	metrics.ObservePasswordReset()
	if s.audit != nil {
		s.audit.LogPasswordReset(ctx, operatorID, id)
	}
	if s.bus != nil {
		s.bus.Emit(ctx, events.ActionPasswordReset, company.ID, company.Name, "")
	}

	return &ResetResult{
		Password:  password,
		MailtoURL: s.composeMailto(company, password),
	}, nil
}

// composeMailto builds the hand-off email for a reset password. The operator
// sends it manually; nothing here talks to a mail server.
func (s *AdminService) composeMailto(company *domain.Company, password string) string {
	subject := "CalculaDrink - Nova senha de acesso"
	body := fmt.Sprintf(
		"Olá %s,\n\nSua senha de acesso ao CalculaDrink foi redefinida.\n\nNova senha: %s\n\nAcesse: %s\n\nRecomendamos alterar a senha no primeiro acesso.",
		company.ResponsibleName, password, s.appURL,
	)
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		company.Email,
		url.QueryEscape(subject),
		url.QueryEscape(body),
	)
}

// GetSettings returns the platform settings, falling back to the built-in
// defaults when none were ever saved.
func (s *AdminService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(settingsCacheKey); ok {
			if settings, ok := v.(*domain.Settings); ok {
				return settings, nil
			}
		}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			settings = domain.DefaultSettings()
		} else {
			return nil, err
		}
	}

	if s.cache != nil {
		s.cache.Set(settingsCacheKey, settings, 5*time.Minute)
	}
	return settings, nil
}

// SaveSettings validates and persists the platform settings.
func (s *AdminService) SaveSettings(ctx context.Context, operatorID string, settings *domain.Settings) error {
	if settings == nil {
		return domain.Validationf("settings payload is required")
	}
	if settings.Prices.Monthly <= 0 || settings.Prices.Yearly <= 0 {
		return domain.Validationf("plan prices must be positive")
	}

	if err := s.settings.Save(ctx, settings); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(settingsCacheKey)
	}
	if s.audit != nil {
		s.audit.LogAction(ctx, operatorID, "settings_updated", "platform_settings", "1", "ok", "")
	}
	return nil
}
