package postgres

import (
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes the content model reacts to
const (
	codeUniqueViolation       = "23505"
	codeForeignKeyViolation   = "23503"
	codeCheckViolation        = "23514"
	codeNotNullViolation      = "23502"
	codeInvalidTextRepr       = "22P02"
	codeInsufficientPrivilege = "42501"
	codeReadOnlyTransaction   = "25006"
)

// classify maps driver errors onto the application taxonomy. Both pgx
// (the service driver) and lib/pq (the test helper driver) errors are
// understood. The original error stays reachable through Unwrap.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.ErrNotFound.Wrap(err)
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return fromSQLState(pgErr.Code, pgErr.Message, pgErr.ConstraintName, err)
	}
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return fromSQLState(string(pqErr.Code), pqErr.Message, pqErr.Constraint, err)
	}
	return errors.ErrDatabaseError.Wrap(err)
}

func fromSQLState(code, message, constraint string, err error) error {
	details := map[string]interface{}{}
	if constraint != "" {
		details["constraint"] = constraint
	}

	switch code {
	case codeUniqueViolation:
		return errors.ErrConflict.WithDetails(details).Wrap(err)
	case codeForeignKeyViolation:
		// Deleting a row that is still referenced is a conflict with the
		// existing data; inserting a dangling reference is not.
		if strings.HasPrefix(message, "update or delete") {
			return errors.ErrConflict.WithDetails(details).Wrap(err)
		}
		return errors.ErrUnresolvedReference.WithDetails(details).Wrap(err)
	case codeCheckViolation, codeNotNullViolation, codeInvalidTextRepr:
		return errors.ErrValidationFailed.WithDetails(details).Wrap(err)
	case codeInsufficientPrivilege:
		return errors.ErrAccessDenied.Wrap(err)
	case codeReadOnlyTransaction:
		return errors.ErrDatabaseError.Wrap(err)
	}
	return errors.ErrDatabaseError.Wrap(err)
}
