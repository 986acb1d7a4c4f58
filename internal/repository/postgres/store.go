package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"eventrsvp/internal/domain"
)

type reservationStore struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// NewReservationStore returns a ReservationStore backed by db. Each WithinTx call runs in its own
// database transaction.
func NewReservationStore(db *sql.DB, logger *slog.Logger) domain.ReservationStore {
	return &reservationStore{
		DB:     db,
		Logger: logger,
	}
}

func (s *reservationStore) Ledger() domain.ReservationLedger {
	return NewReservationLedger(s.DB)
}

func (s *reservationStore) WithinTx(ctx context.Context, fn func(ctx context.Context, admission domain.AdmissionControl, ledger domain.ReservationLedger) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin transaction", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.Logger.WarnContext(ctx, "rollback failed", "err", rbErr)
		}
	}()

	if err := fn(ctx, NewAdmissionControl(tx), NewReservationLedger(tx)); err != nil {
		if isTaxonomyError(err) {
			return err
		}
		return storeError("reservation transaction", err)
	}
	if err := tx.Commit(); err != nil {
		return storeError("commit transaction", err)
	}
	committed = true
	return nil
}
