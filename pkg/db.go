package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// error codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"
)

func isPgErrorWithCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsUniqueViolationError checks if the error is a unique violation error
func IsUniqueViolationError(err error) bool {
	return isPgErrorWithCode(err, pgCodeUniqueViolation)
}

// IsForeignKeyViolationError checks if the error is a foreign key violation error
func IsForeignKeyViolationError(err error) bool {
	return isPgErrorWithCode(err, pgCodeForeignKeyViolation)
}
