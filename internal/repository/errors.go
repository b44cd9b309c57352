package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/calculadrink/platform/internal/domain"
)

// mapError translates driver errors into the domain taxonomy. Unique
// violations become duplicate conflicts; a missing relation means the schema
// was never installed and is surfaced as the distinct configuration error so
// operators can tell a broken deployment from a transient failure.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return domain.ErrDuplicate
		case "42P01": // undefined_table
			return domain.ErrSchemaMissing
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
