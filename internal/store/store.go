package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB defines the interface for database operations.
// It is implemented by *pgxpool.Pool and can be mocked for testing.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The unique indexes are the arbiter for duplicate memberships,
// duplicate playlist entries and duplicate registrations.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ValidUUID reports whether s parses as a UUID. Handlers reject malformed
// id params up front so a garbage id behaves like a missing row rather than
// a database error.
func ValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
