package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes inspected by callers.
const (
	codeUndefinedTable  = "42P01"
	codeUniqueViolation = "23505"
)

// IsNoRows reports whether err is the "no rows" condition of a single-row query.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUndefinedTable reports whether err comes from querying a relation that does not exist.
func IsUndefinedTable(err error) bool {
	return pgCode(err) == codeUndefinedTable
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
