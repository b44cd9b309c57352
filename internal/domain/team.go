package domain

import (
	"context"
	"time"
)

// TeamUser is a subordinate login scoped to one company. Email is the login
// key and must be unique within the owning company; uniqueness is enforced by
// the store, not by callers.
type TeamUser struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"companyId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TeamRepository defines data access for team users.
type TeamRepository interface {
	Create(ctx context.Context, u *TeamUser) error
	GetByID(ctx context.Context, id string) (*TeamUser, error)
	ListByCompany(ctx context.Context, companyID string) ([]*TeamUser, error)
	Delete(ctx context.Context, id string) error
}
