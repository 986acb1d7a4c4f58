package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventrsvp/internal/domain"
)

type reservationLedger struct {
	q querier
}

// NewReservationLedger returns a ReservationLedger bound to q (*sql.DB for reads, *sql.Tx inside a
// reservation transaction).
func NewReservationLedger(q querier) domain.ReservationLedger {
	return &reservationLedger{q: q}
}

// Add relies on the reservations_user_event_key constraint, never on a prior read.
func (l *reservationLedger) Add(ctx context.Context, userID, eventID string) (*domain.Reservation, error) {
	if uuid.Validate(eventID) != nil {
		return nil, domain.ErrEventNotFound
	}
	res := &domain.Reservation{
		ID:        uuid.NewString(),
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: time.Now().UTC(),
	}
	query := `
		INSERT INTO reservations (id, user_id, event_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := l.q.ExecContext(ctx, query, res.ID, res.UserID, res.EventID, res.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateReservation
		}
		if isForeignKeyViolation(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("insert reservation: %w", err)
	}
	return res, nil
}

func (l *reservationLedger) Remove(ctx context.Context, userID, eventID string) (*domain.Reservation, error) {
	if uuid.Validate(eventID) != nil {
		return nil, domain.ErrReservationNotFound
	}
	query := `
		DELETE FROM reservations
		WHERE user_id = $1 AND event_id = $2
		RETURNING id, user_id, event_id, created_at
	`
	res := &domain.Reservation{}
	err := l.q.QueryRowContext(ctx, query, userID, eventID).
		Scan(&res.ID, &res.UserID, &res.EventID, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("delete reservation: %w", err)
	}
	return res, nil
}

func (l *reservationLedger) ListEventIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT event_id
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at ASC, event_id ASC
	`
	rows, err := l.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListWithEvents reads reservations and their events in one query. The inner join drops reservations
// whose event is gone.
func (l *reservationLedger) ListWithEvents(ctx context.Context, userID string) ([]*domain.ReservationWithEvent, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.created_at,
			e.id, e.title, e.description, e.starts_at, e.location,
			e.capacity, e.occupancy, e.owner_id, e.created_at, e.updated_at
		FROM reservations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`
	rows, err := l.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reserved events: %w", err)
	}
	defer rows.Close()

	list := make([]*domain.ReservationWithEvent, 0)
	for rows.Next() {
		res, e := &domain.Reservation{}, &domain.Event{}
		err := rows.Scan(
			&res.ID, &res.UserID, &res.EventID, &res.CreatedAt,
			&e.ID, &e.Title, &e.Description, &e.StartsAt, &e.Location,
			&e.Capacity, &e.Occupancy, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reserved event: %w", err)
		}
		list = append(list, &domain.ReservationWithEvent{Reservation: res, Event: e})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reserved events: %w", err)
	}
	return list, nil
}
