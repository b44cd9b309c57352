package domain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a company account.
type Status string

const (
	StatusRequested       Status = "requested"
	StatusPendingApproval Status = "pending_approval"
	StatusWaitingPayment  Status = "waiting_payment"
	StatusActive          Status = "active"
	StatusSuspended       Status = "suspended"
)

// Role is one of exactly three access levels a company login can hold.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleBartender Role = "bartender"
)

// CompanyType distinguishes legal-entity (PJ) from individual (PF) registrations.
type CompanyType string

const (
	TypePJ CompanyType = "PJ"
	TypePF CompanyType = "PF"
)

// Company is a customer account on the platform. The registering user becomes
// the account admin; subordinate logins are TeamUsers.
type Company struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	ResponsibleName string      `json:"responsibleName"`
	Document        string      `json:"document"` // CNPJ or CPF, digits only
	Email           string      `json:"email"`    // stored lowercased, login key
	Phone           string      `json:"phone"`
	Type            CompanyType `json:"type"`
	Status          Status      `json:"status"`
	Role            Role        `json:"role"`
	Plan            string      `json:"plan,omitempty"`
	NextBillingDate *time.Time  `json:"nextBillingDate,omitempty"`
	PasswordHash    string      `json:"-"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// CompanyRepository defines data access for company accounts.
type CompanyRepository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id string) (*Company, error)
	GetByEmail(ctx context.Context, email string) (*Company, error)
	GetByDocument(ctx context.Context, document string) (*Company, error)
	List(ctx context.Context) ([]*Company, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdateRole(ctx context.Context, id string, role Role) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	ListOverdue(ctx context.Context, before time.Time) ([]*Company, error)
}

// transitions lists every allowed status change. Everything else is rejected,
// so an account can never move backwards in the approval pipeline; only
// active <-> suspended is reversible.
var transitions = map[Status][]Status{
	StatusRequested:       {StatusPendingApproval},
	StatusPendingApproval: {StatusWaitingPayment, StatusActive},
	StatusWaitingPayment:  {StatusActive},
	StatusActive:          {StatusSuspended},
	StatusSuspended:       {StatusActive},
}

// CanTransition reports whether a status change is allowed.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusPendingApproval, StatusWaitingPayment, StatusActive, StatusSuspended:
		return true
	}
	return false
}

// Valid reports whether r is one of the three recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleBartender:
		return true
	}
	return false
}

// Valid reports whether t is a known registration type.
func (t CompanyType) Valid() bool {
	return t == TypePJ || t == TypePF
}

// CanAccess reports whether an account in this status may use the application.
// Accounts still in the approval queue must never be let in.
func (s Status) CanAccess() bool {
	return s != StatusRequested && s != StatusPendingApproval
}

// NormalizeEmail lowercases and trims an email for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeDocument strips everything but digits from a CNPJ/CPF.
func NormalizeDocument(document string) string {
	var b strings.Builder
	for _, r := range document {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewID returns a random 32-hex-char identifier.
func NewID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("id-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
