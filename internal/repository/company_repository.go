package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/calculadrink/platform/internal/domain"
)

const companyColumns = `id, name, responsible_name, document, email, phone, type,
	status, role, plan, next_billing_date, password_hash, created_at, updated_at`

// PostgresCompanyRepository implements domain.CompanyRepository using PostgreSQL
type PostgresCompanyRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCompanyRepository creates a new company repository
func NewPostgresCompanyRepository(db *sql.DB, logger *slog.Logger) *PostgresCompanyRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCompanyRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new company account
func (r *PostgresCompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	query := `
		INSERT INTO companies (id, name, responsible_name, document, email, phone, type, status, role, plan, next_billing_date, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		c.ID,
		c.Name,
		c.ResponsibleName,
		c.Document,
		c.Email,
		c.Phone,
		c.Type,
		c.Status,
		c.Role,
		c.Plan,
		c.NextBillingDate,
		c.PasswordHash,
	).Scan(&c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create company",
			slog.String("email", c.Email),
			slog.String("error", err.Error()),
		)
		return mapError("create company", err)
	}

	return nil
}

// GetByID retrieves a company by ID
func (r *PostgresCompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a company by email, case-insensitively
func (r *PostgresCompanyRepository) GetByEmail(ctx context.Context, email string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE lower(email) = lower($1)`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// GetByDocument retrieves a company by its CNPJ/CPF
func (r *PostgresCompanyRepository) GetByDocument(ctx context.Context, document string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE document = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, document))
}

// List returns every company, newest first. The console filters in memory;
// there is no pagination.
func (r *PostgresCompanyRepository) List(ctx context.Context) ([]*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list companies", slog.String("error", err.Error()))
		return nil, mapError("list companies", err)
	}
	defer rows.Close()

	var companies []*domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, mapError("scan company", err)
		}
		companies = append(companies, c)
	}

	return companies, rows.Err()
}

// UpdateStatus sets the lifecycle status of a company
func (r *PostgresCompanyRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	return r.exec(ctx, "update status",
		`UPDATE companies SET status = $1, updated_at = now() WHERE id = $2`, status, id)
}

// UpdateRole sets the role of a company account
func (r *PostgresCompanyRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.exec(ctx, "update role",
		`UPDATE companies SET role = $1, updated_at = now() WHERE id = $2`, role, id)
}

// UpdatePassword replaces the stored credential hash
func (r *PostgresCompanyRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.exec(ctx, "update password",
		`UPDATE companies SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, id)
}

// ListOverdue returns active companies whose next billing date is before the
// given cutoff. Used by the billing sweep.
func (r *PostgresCompanyRepository) ListOverdue(ctx context.Context, before time.Time) ([]*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies
		WHERE status = $1 AND next_billing_date IS NOT NULL AND next_billing_date < $2
		ORDER BY next_billing_date`

	rows, err := r.db.QueryContext(ctx, query, domain.StatusActive, before)
	if err != nil {
		return nil, mapError("list overdue companies", err)
	}
	defer rows.Close()

	var companies []*domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, mapError("scan company", err)
		}
		companies = append(companies, c)
	}

	return companies, rows.Err()
}

func (r *PostgresCompanyRepository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("company update failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return mapError(op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return mapError(op, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresCompanyRepository) scanOne(row *sql.Row) (*domain.Company, error) {
	c, err := scanCompany(row)
	if err != nil {
		return nil, mapError("get company", err)
	}
	return c, nil
}

func scanCompany(row rowScanner) (*domain.Company, error) {
	c := &domain.Company{}
	var plan sql.NullString
	var nextBilling sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.ResponsibleName,
		&c.Document,
		&c.Email,
		&c.Phone,
		&c.Type,
		&c.Status,
		&c.Role,
		&plan,
		&nextBilling,
		&c.PasswordHash,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Plan = plan.String
	if nextBilling.Valid {
		t := nextBilling.Time
		c.NextBillingDate = &t
	}
	return c, nil
}
