package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/holuwadafe/maglo-finance/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, model.ErrNotFound},
		{"wrapped not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), model.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, model.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, model.ErrNotFound},
		{"check violation", &pgconn.PgError{Code: "23514"}, model.ErrValidation},
		{"bad uuid text", &pgconn.PgError{Code: "22P02"}, model.ErrValidation},
		{"numeric overflow", &pgconn.PgError{Code: "22003", Message: "numeric field overflow"}, model.ErrValidation},
		{"cancelled", context.Canceled, context.Canceled},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), context.DeadlineExceeded},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), model.ErrBackendUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mapError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapError_OtherServerErrorsStayRaw(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	got := mapError(pgErr)

	assert.ErrorIs(t, got, pgErr)
	assert.NotErrorIs(t, got, model.ErrBackendUnavailable)
}
