package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/calculadrink/platform/internal/domain"
)

// PostgresTeamRepository implements domain.TeamRepository using PostgreSQL
type PostgresTeamRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *sql.DB, logger *slog.Logger) *PostgresTeamRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTeamRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new team user. The per-company email uniqueness is a
// database constraint and comes back as domain.ErrDuplicate.
func (r *PostgresTeamRepository) Create(ctx context.Context, u *domain.TeamUser) error {
	query := `
		INSERT INTO team_users (id, company_id, name, email, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		u.ID,
		u.CompanyID,
		u.Name,
		u.Email,
		u.Role,
		u.PasswordHash,
	).Scan(&u.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create team user",
			slog.String("company_id", u.CompanyID),
			slog.String("error", err.Error()),
		)
		return mapError("create team user", err)
	}

	return nil
}

// GetByID retrieves a team user by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id string) (*domain.TeamUser, error) {
	u := &domain.TeamUser{}

	query := `
		SELECT id, company_id, name, email, role, password_hash, created_at
		FROM team_users
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.CompanyID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, mapError("get team user", err)
	}

	return u, nil
}

// ListByCompany lists the team of one company, oldest first
func (r *PostgresTeamRepository) ListByCompany(ctx context.Context, companyID string) ([]*domain.TeamUser, error) {
	query := `
		SELECT id, company_id, name, email, role, password_hash, created_at
		FROM team_users
		WHERE company_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("failed to list team",
			slog.String("company_id", companyID),
			slog.String("error", err.Error()),
		)
		return nil, mapError("list team", err)
	}
	defer rows.Close()

	var team []*domain.TeamUser
	for rows.Next() {
		u := &domain.TeamUser{}
		err := rows.Scan(
			&u.ID,
			&u.CompanyID,
			&u.Name,
			&u.Email,
			&u.Role,
			&u.PasswordHash,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, mapError("scan team user", err)
		}
		team = append(team, u)
	}

	return team, rows.Err()
}

// Delete removes a team user permanently
func (r *PostgresTeamRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM team_users WHERE id = $1`, id)
	if err != nil {
		return mapError("delete team user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return mapError("delete team user", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}
