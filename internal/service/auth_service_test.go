package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/security/auth"
)

func newTestAuthService(repo *memCompanyRepo, online bool) *AuthService {
	tm := auth.NewTokenManager("test-secret", "calculadrink")
	return NewAuthService(repo, tm, newMemSessions(), nil, slog.Default(),
		"master@calculadrink.com", time.Hour, online)
}

func seedCompany(t *testing.T, repo *memCompanyRepo, email, document, password string, status domain.Status) *domain.Company {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	c := &domain.Company{
		ID:           domain.NewID(),
		Name:         "Bar do Zé",
		Document:     document,
		Email:        email,
		Type:         domain.TypePJ,
		Status:       status,
		Role:         domain.RoleAdmin,
		PasswordHash: string(hash),
	}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return c
}

func TestRegister_FilesRequest(t *testing.T) {
	repo := &memCompanyRepo{}
	svc := newTestAuthService(repo, true)

	company, err := svc.Register(context.Background(), RegisterInput{
		Name:            "Bar do Zé",
		Document:        "12.345.678/0001-90",
		Email:           "ZE@Bar.com",
		Type:            domain.TypePJ,
		Password:        "segredo",
		ConfirmPassword: "segredo",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if company.Status != domain.StatusRequested {
		t.Errorf("status = %s, want %s", company.Status, domain.StatusRequested)
	}
	if company.Role != domain.RoleAdmin {
		t.Errorf("role = %s, want %s", company.Role, domain.RoleAdmin)
	}
	if company.Email != "ze@bar.com" {
		t.Errorf("email not normalized: %s", company.Email)
	}
	if company.Document != "12345678000190" {
		t.Errorf("document not normalized: %s", company.Document)
	}
	if company.PasswordHash == "segredo" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_OfflineActivatesImmediately(t *testing.T) {
	repo := &memCompanyRepo{}
	svc := newTestAuthService(repo, false)

	company, err := svc.Register(context.Background(), RegisterInput{
		Name:            "Boteco Local",
		Document:        "98765432100",
		Email:           "local@boteco.com",
		Password:        "segredo",
		ConfirmPassword: "segredo",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if company.Status != domain.StatusActive {
		t.Errorf("status = %s, want %s", company.Status, domain.StatusActive)
	}
}

func TestRegister_PasswordMismatch(t *testing.T) {
	repo := &memCompanyRepo{}
	svc := newTestAuthService(repo, true)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:            "Bar",
		Document:        "123",
		Email:           "a@b.com",
		Password:        "one",
		ConfirmPassword: "two",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(repo.companies) != 0 {
		t.Error("mismatched passwords must not reach the store")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	repo := &memCompanyRepo{}
	svc := newTestAuthService(repo, true)
	seedCompany(t, repo, "dup@bar.com", "11111111111", "x", domain.StatusActive)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:            "Outro Bar",
		Document:        "111.111.111-11",
		Email:           "other@bar.com",
		Password:        "segredo",
		ConfirmPassword: "segredo",
	})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestLogin_ByEmailAndDocument(t *testing.T) {
	repo := &memCompanyRepo{}
	svc := newTestAuthService(repo, true)
	seedCompany(t, repo, "ze@bar.com", "12345678000190", "segredo", domain.StatusActive)

	result, err := svc.Login(context.Background(), "", "ze@bar.com", "segredo")
	if err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a token")
	}
	if result.TokenType != "Bearer" {
		t.Errorf("token type = %s", result.TokenType)
	}

	if _, err := svc.Login(context.Background(), "12345678000190", "", "segredo"); err != nil {
		t.Fatalf("login by document: %v", err)
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	repo := &memCompanyRepo{}
	svc := newTestAuthService(repo, true)
	seedCompany(t, repo, "ze@bar.com", "12345678000190", "segredo", domain.StatusActive)

	_, err := svc.Login(context.Background(), "", "ze@bar.com", "errada")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("wrong password: err = %v, want ErrNotFound", err)
	}

	_, err = svc.Login(context.Background(), "", "ghost@bar.com", "segredo")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown email: err = %v, want ErrNotFound", err)
	}
}

func TestLogin_PendingAccountsBlocked(t *testing.T) {
	repo := &memCompanyRepo{}
	svc := newTestAuthService(repo, true)
	seedCompany(t, repo, "new@bar.com", "22222222222", "segredo", domain.StatusRequested)
	seedCompany(t, repo, "queue@bar.com", "33333333333", "segredo", domain.StatusPendingApproval)

	for _, email := range []string{"new@bar.com", "queue@bar.com"} {
		_, err := svc.Login(context.Background(), "", email, "segredo")
		if !errors.Is(err, domain.ErrPendingApproval) {
			t.Errorf("%s: err = %v, want ErrPendingApproval", email, err)
		}
	}
}

func TestLogin_MasterFlag(t *testing.T) {
	repo := &memCompanyRepo{}
	svc := newTestAuthService(repo, true)
	seedCompany(t, repo, "Master@CalculaDrink.com", "44444444444", "segredo", domain.StatusActive)

	result, err := svc.Login(context.Background(), "", "master@calculadrink.com", "segredo")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	tm := auth.NewTokenManager("test-secret", "calculadrink")
	claims, err := tm.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !claims.Master {
		t.Error("master account must carry the master claim")
	}
}

func TestRecover_KnownAndUnknownEmail(t *testing.T) {
	repo := &memCompanyRepo{}
	svc := newTestAuthService(repo, true)
	seedCompany(t, repo, "ze@bar.com", "12345678000190", "segredo", domain.StatusRequested)

	msg, err := svc.Recover(context.Background(), "ZE@bar.com")
	if err != nil {
		t.Fatalf("recover known: %v", err)
	}
	if !strings.Contains(msg, "master@calculadrink.com") {
		t.Errorf("message must carry the administrator contact: %s", msg)
	}
	// status must not leak into the instruction
	if strings.Contains(strings.ToLower(msg), string(domain.StatusRequested)) {
		t.Errorf("message reveals account status: %s", msg)
	}

	_, err = svc.Recover(context.Background(), "ghost@bar.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("recover unknown: err = %v, want ErrNotFound", err)
	}
}
