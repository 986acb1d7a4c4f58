package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"eventrsvp/internal/domain"
)

// ErrOccupancyUnderflow means a release found occupancy already at zero. The stored counter no longer
// matches the ledger; the transaction is aborted.
var ErrOccupancyUnderflow = errors.New("occupancy already zero")

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlState extracts the SQLSTATE code from a lib/pq or pgx error.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// isTaxonomyError reports whether err is one of the reservation outcomes callers act on.
func isTaxonomyError(err error) bool {
	return errors.Is(err, domain.ErrEventNotFound) ||
		errors.Is(err, domain.ErrEventFull) ||
		errors.Is(err, domain.ErrDuplicateReservation) ||
		errors.Is(err, domain.ErrReservationNotFound) ||
		errors.Is(err, domain.ErrStoreUnavailable) ||
		errors.Is(err, ErrOccupancyUnderflow)
}

// storeError wraps a transport, driver or timeout failure so callers can tell it is retryable.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
