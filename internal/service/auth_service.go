package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/events"
	"github.com/calculadrink/platform/internal/observability/metrics"
	"github.com/calculadrink/platform/internal/security/auth"
)

// SessionManager tracks per-company session versions so outstanding tokens
// can be revoked in one step. A nil manager disables revocation.
type SessionManager interface {
	CurrentVersion(ctx context.Context, companyID string) (int64, error)
	Revoke(ctx context.Context, companyID string) error
}

// AuthService handles the access gate: registration requests, login and
// password recovery.
type AuthService struct {
	companies   domain.CompanyRepository
	tokens      *auth.TokenManager
	sessions    SessionManager
	bus         *events.Bus
	logger      *slog.Logger
	masterEmail string
	tokenTTL    time.Duration

	// online selects the hosted-database registration flow; the offline
	// single-device flow activates accounts immediately.
	online bool
}

// NewAuthService creates a new access-gate service.
func NewAuthService(
	companies domain.CompanyRepository,
	tokens *auth.TokenManager,
	sessions SessionManager,
	bus *events.Bus,
	logger *slog.Logger,
	masterEmail string,
	tokenTTL time.Duration,
	online bool,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{
		companies:   companies,
		tokens:      tokens,
		sessions:    sessions,
		bus:         bus,
		logger:      logger,
		masterEmail: masterEmail,
		tokenTTL:    tokenTTL,
		online:      online,
	}
}

// RegisterInput is everything the registration form collects.
type RegisterInput struct {
	Name            string             `json:"name"`
	ResponsibleName string             `json:"responsibleName"`
	Document        string             `json:"document"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	Type            domain.CompanyType `json:"type"`
	Password        string             `json:"password"`
	ConfirmPassword string             `json:"confirmPassword"`
}

// LoginResult is a resolved login: the account plus its session token.
type LoginResult struct {
	Company   *domain.Company `json:"company"`
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expiresIn"` // seconds
	TokenType string          `json:"tokenType"`
}

// Register files an access request. Online mode persists the account with
// status requested and leaves approval to the platform master; offline mode
// activates immediately after the local duplicate check.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Company, error) {
	if in.Name == "" || in.Document == "" || in.Email == "" || in.Password == "" {
		metrics.ObserveRegistration("validation_error")
		return nil, domain.Validationf("name, document, email and password are required")
	}
	if in.Password != in.ConfirmPassword {
		metrics.ObserveRegistration("validation_error")
		return nil, domain.Validationf("passwords do not match")
	}
	if in.Type == "" {
		in.Type = domain.TypePJ
	}
	if !in.Type.Valid() {
		metrics.ObserveRegistration("validation_error")
		return nil, domain.Validationf("unknown registration type %q", in.Type)
	}

	status := domain.StatusRequested
	if !s.online {
		status = domain.StatusActive
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		metrics.ObserveRegistration("error")
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	responsible := in.ResponsibleName
	if responsible == "" {
		responsible = in.Name
	}

	company := &domain.Company{
		ID:              domain.NewID(),
		Name:            in.Name,
		ResponsibleName: responsible,
		Document:        domain.NormalizeDocument(in.Document),
		Email:           domain.NormalizeEmail(in.Email),
		Phone:           in.Phone,
		Type:            in.Type,
		Status:          status,
		Role:            domain.RoleAdmin, // whoever requests access owns the account
		PasswordHash:    string(hash),
	}

	if err := s.companies.Create(ctx, company); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			metrics.ObserveRegistration("duplicate")
		case errors.Is(err, domain.ErrSchemaMissing):
			metrics.ObserveRegistration("schema_missing")
		default:
			metrics.ObserveRegistration("error")
		}
		return nil, err
	}

	metrics.ObserveRegistration("ok")
	if s.bus != nil {
		s.bus.Emit(ctx, events.ActionRegistered, company.ID, company.Name, string(company.Status))
	}

	s.logger.Info("access request filed",
		slog.String("company_id", company.ID),
		slog.String("status", string(company.Status)),
	)
	return company, nil
}

// Login resolves credentials to an account. The identifier is the email when
// present, otherwise the document. Accounts still in the approval queue are
// rejected with the pending-approval signal even when credentials are right.
func (s *AuthService) Login(ctx context.Context, document, email, password string) (*LoginResult, error) {
	if (document == "" && email == "") || password == "" {
		return nil, domain.Validationf("email or document, and password, are required")
	}

	var company *domain.Company
	var err error
	if email != "" {
		company, err = s.companies.GetByEmail(ctx, domain.NormalizeEmail(email))
	} else {
		company, err = s.companies.GetByDocument(ctx, domain.NormalizeDocument(document))
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveLogin("not_found")
			return nil, domain.ErrNotFound
		}
		metrics.ObserveLogin("error")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(company.PasswordHash), []byte(password)); err != nil {
		// indistinguishable from an unknown account on purpose
		s.logger.Info("login failed", slog.String("company_id", company.ID))
		metrics.ObserveLogin("bad_credentials")
		return nil, domain.ErrNotFound
	}

	if !company.Status.CanAccess() {
		metrics.ObserveLogin("pending")
		return nil, domain.ErrPendingApproval
	}

	master := strings.EqualFold(company.Email, s.masterEmail)

	var sessVer int64
	if s.sessions != nil {
		sessVer, err = s.sessions.CurrentVersion(ctx, company.ID)
		if err != nil {
			s.logger.Error("session version lookup failed", slog.String("error", err.Error()))
			sessVer = 0
		}
	}

	token, err := s.tokens.GenerateToken(company.ID, company.Email, company.Role, master, sessVer, s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		metrics.ObserveLogin("error")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.ObserveLogin("ok")
	s.logger.Info("login",
		slog.String("company_id", company.ID),
		slog.Bool("master", master),
	)

	return &LoginResult{
		Company:   company,
		Token:     token,
		ExpiresIn: int(s.tokenTTL.Seconds()),
		TokenType: "Bearer",
	}, nil
}

// Recover checks whether an email is registered. Known emails get the
// instruction message; unknown emails get the not-found signal. The message
// never reveals the account's status.
func (s *AuthService) Recover(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", domain.Validationf("email is required")
	}

	if _, err := s.companies.GetByEmail(ctx, domain.NormalizeEmail(email)); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Email found. Contact the administrator (%s) to reset your password.",
		s.masterEmail,
	), nil
}
