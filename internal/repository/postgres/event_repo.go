package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventrsvp/internal/domain"
)

const eventColumns = `id, title, description, starts_at, location, capacity, occupancy, owner_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.StartsAt, &e.Location,
		&e.Capacity, &e.Occupancy, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return e, nil
}

func eventExists(ctx context.Context, q querier, id string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, starts_at, location, capacity, occupancy, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.StartsAt, e.Location, e.Capacity, e.OwnerID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrEventNotFound
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, from time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE starts_at >= $1`, from).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE starts_at >= $1
		ORDER BY starts_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`
	events, err := r.list(ctx, query, from, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, ownerID)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update never touches occupancy. A capacity change carries the guard capacity >= occupancy in the
// same statement, so it cannot race a concurrent admission.
func (r *eventRepository) Update(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	if uuid.Validate(eventID) != nil {
		return nil, domain.ErrEventNotFound
	}
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(column string, v any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, v)
		n++
	}
	if patch.Title != nil {
		add("title", strings.TrimSpace(*patch.Title))
	}
	if patch.Description != nil {
		add("description", strings.TrimSpace(*patch.Description))
	}
	if patch.StartsAt != nil {
		add("starts_at", patch.StartsAt.UTC())
	}
	if patch.Location != nil {
		add("location", strings.TrimSpace(*patch.Location))
	}
	if n == 1 && patch.Capacity == nil {
		return r.GetByID(ctx, eventID)
	}
	where := fmt.Sprintf("id = $%d", n)
	args = append(args, eventID)
	n++
	if patch.Capacity != nil {
		setClauses = append(setClauses, fmt.Sprintf("capacity = $%d", n))
		where += fmt.Sprintf(" AND occupancy <= $%d", n)
		args = append(args, *patch.Capacity)
	}
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE %s
		RETURNING %s
	`, strings.Join(setClauses, ", "), where, eventColumns)

	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	exists, err := eventExists(ctx, r.DB, eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrEventNotFound
	}
	return nil, domain.ErrCapacityBelowOccupancy
}

// Delete refuses while the event has live reservations: the occupancy guard and the RESTRICT foreign key
// from reservations both enforce it.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return domain.ErrEventNotFound
	}
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND occupancy = 0`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventHasReservations
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}
	exists, err := eventExists(ctx, r.DB, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrEventNotFound
	}
	return domain.ErrEventHasReservations
}
