package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/holuwadafe/maglo-finance/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapError converts gorm/pgx errors to model errors.
// Context errors pass through so callers can tell cancellation from an outage.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", model.ErrConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", model.ErrNotFound, pgErr.ConstraintName)
		case "22P02", "22003", "23514": // invalid_text_representation, numeric_value_out_of_range, check_violation
			return fmt.Errorf("%w: %s", model.ErrValidation, pgErr.Message)
		}
		// The server answered, so it is reachable; surface the raw error.
		return fmt.Errorf("database: %w", err)
	}

	// No server response at all: refused connection, closed pool, DNS, TLS...
	return fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
}
