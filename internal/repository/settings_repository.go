package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/calculadrink/platform/internal/domain"
)

// PostgresSettingsRepository stores the platform configuration singleton in a
// single-row table. Reads and writes are always whole-object.
type PostgresSettingsRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresSettingsRepository creates a new settings repository
func NewPostgresSettingsRepository(db *sql.DB, logger *slog.Logger) *PostgresSettingsRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSettingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get reads the singleton. Returns domain.ErrNotFound when no operator has
// ever saved a configuration.
func (r *PostgresSettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	s := &domain.Settings{}

	query := `
		SELECT monthly_price, yearly_price, merchant_name, merchant_id, gateway, gateway_merchant_id
		FROM platform_settings
		WHERE id = 1
	`

	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.Prices.Monthly,
		&s.Prices.Yearly,
		&s.GooglePay.MerchantName,
		&s.GooglePay.MerchantID,
		&s.GooglePay.Gateway,
		&s.GooglePay.GatewayMerchantID,
	)
	if err != nil {
		return nil, mapError("get settings", err)
	}

	return s, nil
}

// Save replaces the singleton wholesale.
func (r *PostgresSettingsRepository) Save(ctx context.Context, s *domain.Settings) error {
	query := `
		INSERT INTO platform_settings (id, monthly_price, yearly_price, merchant_name, merchant_id, gateway, gateway_merchant_id, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			monthly_price = EXCLUDED.monthly_price,
			yearly_price = EXCLUDED.yearly_price,
			merchant_name = EXCLUDED.merchant_name,
			merchant_id = EXCLUDED.merchant_id,
			gateway = EXCLUDED.gateway,
			gateway_merchant_id = EXCLUDED.gateway_merchant_id,
			updated_at = now()
	`

	_, err := r.db.ExecContext(ctx, query,
		s.Prices.Monthly,
		s.Prices.Yearly,
		s.GooglePay.MerchantName,
		s.GooglePay.MerchantID,
		s.GooglePay.Gateway,
		s.GooglePay.GatewayMerchantID,
	)
	if err != nil {
		r.logger.Error("failed to save settings", slog.String("error", err.Error()))
		return mapError("save settings", err)
	}

	return nil
}
