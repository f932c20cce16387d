package repositories

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// DB is the subset of pgx every repository needs. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so a service can run the same repository code
// inside or outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UniqueViolationCode is the Postgres error code repositories translate
// into domain-level duplicate errors.
const UniqueViolationCode = "23505"

// Duplicate-key errors surfaced to the service layer, one per unique
// constraint that callers are expected to handle.
var (
	ErrDuplicateUnitNumber      = errors.New("unit number already exists for property")
	ErrDuplicateEmail           = errors.New("email already in use")
	ErrDuplicateUsername        = errors.New("username already in use")
	ErrDuplicateCheckoutRequest = errors.New("checkout request already recorded")
)

// IsUniqueViolation reports whether err is a unique-constraint failure,
// optionally on the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != UniqueViolationCode {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// placeholder renders the n-th positional parameter ($1, $2, ...) for
// dynamically assembled filter clauses.
func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
