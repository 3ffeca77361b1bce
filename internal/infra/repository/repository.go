// Package repository implements the command-side persistence ports with raw
// SQL over pgx. Every concurrency-sensitive mutation is a conditional UPDATE
// whose WHERE clause re-checks the precondition, so correctness does not
// depend on callers holding locks.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrCodeUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation
}
