package postgres

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_PgxCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     *pgconn.PgError
		want    *errors.AppError
		details string
	}{
		{
			name:    "unique violation",
			err:     &pgconn.PgError{Code: "23505", Message: "duplicate key value", ConstraintName: "routes_slug_key"},
			want:    errors.ErrConflict,
			details: "routes_slug_key",
		},
		{
			name:    "dangling reference",
			err:     &pgconn.PgError{Code: "23503", Message: `insert or update on table "fares" violates foreign key constraint`, ConstraintName: "fares_from_stop_id_fkey"},
			want:    errors.ErrUnresolvedReference,
			details: "fares_from_stop_id_fkey",
		},
		{
			name: "still referenced",
			err:  &pgconn.PgError{Code: "23503", Message: `update or delete on table "stops" violates foreign key constraint`},
			want: errors.ErrConflict,
		},
		{
			name: "check violation",
			err:  &pgconn.PgError{Code: "23514", Message: "new row violates check constraint"},
			want: errors.ErrValidationFailed,
		},
		{
			name: "row level security",
			err:  &pgconn.PgError{Code: "42501", Message: "new row violates row-level security policy"},
			want: errors.ErrAccessDenied,
		},
		{
			name: "anything else",
			err:  &pgconn.PgError{Code: "53300", Message: "too many connections"},
			want: errors.ErrDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(fmt.Errorf("exec: %w", tt.err))

			assert.True(t, errors.Is(got, tt.want), "got %v", got)
			var pgErr *pgconn.PgError
			assert.True(t, stderrors.As(got, &pgErr), "driver error stays reachable")

			if tt.details != "" {
				appErr, ok := errors.As(got)
				require.True(t, ok)
				assert.Equal(t, tt.details, appErr.Details["constraint"])
			}
		})
	}
}

func TestClassify_PqError(t *testing.T) {
	got := classify(&pq.Error{Code: "23505", Constraint: "stops_slug_key"})
	assert.True(t, errors.Is(got, errors.ErrConflict))
}

func TestClassify_NoRowsAndPassthrough(t *testing.T) {
	assert.Nil(t, classify(nil))
	assert.True(t, errors.Is(classify(sql.ErrNoRows), errors.ErrNotFound))

	notFound := errors.NotFound("route", "x")
	assert.Same(t, notFound, classify(notFound))

	assert.True(t, errors.Is(classify(stderrors.New("boom")), errors.ErrDatabaseError))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "($1, $2), ($3, $4)", placeholders(2, 2))
	assert.Equal(t, "($1, $2, $3)", placeholders(1, 3))
}

func TestLimitOffset(t *testing.T) {
	assert.Equal(t, " LIMIT 100", limitOffset(0, 0))
	assert.Equal(t, " LIMIT 1000 OFFSET 20", limitOffset(5000, 20))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_peak`, escapeLike("50% off_peak"))
}
