package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode   = "23505"
	pgCheckViolationCode = "23514"
)

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr and PostgreSQL unique violation (23505)
// to duplicateErr. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	if hasCode(err, pgDuplicateKeyCode) {
		return duplicateErr
	}

	return err
}

// IsCheckViolation reports whether err is a PostgreSQL check constraint violation (23514).
func IsCheckViolation(err error) bool {
	return hasCode(err, pgCheckViolationCode)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
