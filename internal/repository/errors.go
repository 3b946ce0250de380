package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error classes surfaced to the service layer. They are joined
// with the driver error so callers can still reach the *pgconn.PgError.
var (
	ErrDuplicate         = errors.New("value already exists")
	ErrReferenceNotFound = errors.New("referenced row does not exist")
	ErrConstraint        = errors.New("value violates a constraint")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// classify tags integrity errors with the matching sentinel and wraps
// anything else with the failed action.
func classify(action string, err error) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrReferenceNotFound, err)
	case pgCheckViolation, pgNotNullViolation:
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
