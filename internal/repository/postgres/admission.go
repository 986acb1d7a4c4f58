package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventrsvp/internal/domain"
)

type admissionControl struct {
	q querier
}

// NewAdmissionControl returns AdmissionControl bound to q, normally the *sql.Tx of a reservation store
// transaction.
func NewAdmissionControl(q querier) domain.AdmissionControl {
	return &admissionControl{q: q}
}

// Admit is a single compare-and-increment. Postgres re-evaluates the occupancy predicate after waiting
// on the row lock, so two transactions racing for the last slot cannot both match.
func (a *admissionControl) Admit(ctx context.Context, eventID string) (*domain.Event, error) {
	if uuid.Validate(eventID) != nil {
		return nil, domain.ErrEventNotFound
	}
	query := `
		UPDATE events SET occupancy = occupancy + 1
		WHERE id = $1 AND occupancy < capacity
		RETURNING ` + eventColumns
	e, err := scanEvent(a.q.QueryRowContext(ctx, query, eventID))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("admit: %w", err)
	}
	exists, err := eventExists(ctx, a.q, eventID)
	if err != nil {
		return nil, fmt.Errorf("admit: check event: %w", err)
	}
	if !exists {
		return nil, domain.ErrEventNotFound
	}
	return nil, domain.ErrEventFull
}

func (a *admissionControl) Release(ctx context.Context, eventID string) (*domain.Event, error) {
	if uuid.Validate(eventID) != nil {
		return nil, domain.ErrEventNotFound
	}
	query := `
		UPDATE events SET occupancy = occupancy - 1
		WHERE id = $1 AND occupancy > 0
		RETURNING ` + eventColumns
	e, err := scanEvent(a.q.QueryRowContext(ctx, query, eventID))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("release: %w", err)
	}
	exists, err := eventExists(ctx, a.q, eventID)
	if err != nil {
		return nil, fmt.Errorf("release: check event: %w", err)
	}
	if !exists {
		return nil, domain.ErrEventNotFound
	}
	return nil, fmt.Errorf("release slot on event %s: %w", eventID, ErrOccupancyUnderflow)
}
