package domain

import (
	"context"
	"time"
)

// Reservation is a confirmed claim by one user on one slot of one event.
// swagger:model Reservation
type Reservation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReservationWithEvent bundles a reservation with the event it refers to.
type ReservationWithEvent struct {
	Reservation *Reservation `json:"reservation"`
	Event       *Event       `json:"event"`
}

// AdmissionControl claims and releases capacity slots on an event.
type AdmissionControl interface {
	// Admit increments occupancy by one in a single conditional update, only while occupancy < capacity.
	// Returns ErrEventFull or ErrEventNotFound when nothing matched.
	Admit(ctx context.Context, eventID string) (*Event, error)
	// Release decrements occupancy by one. It must only follow a successful ledger removal.
	Release(ctx context.Context, eventID string) (*Event, error)
}

// ReservationLedger holds the (user, event) reservation pairs. Uniqueness is enforced by the store.
type ReservationLedger interface {
	// Add returns ErrDuplicateReservation when the pair already exists.
	Add(ctx context.Context, userID, eventID string) (*Reservation, error)
	// Remove returns ErrReservationNotFound when the pair does not exist.
	Remove(ctx context.Context, userID, eventID string) (*Reservation, error)
	ListEventIDs(ctx context.Context, userID string) ([]string, error)
	// ListWithEvents returns the user's reservations joined to their events, newest first. Reservations
	// whose event no longer exists are not returned.
	ListWithEvents(ctx context.Context, userID string) ([]*ReservationWithEvent, error)
}

// ReservationStore runs fn inside one store transaction. Admission control and the ledger handed to fn
// share that transaction: if fn returns an error everything it did is rolled back, otherwise it is
// committed. Begin, commit and connectivity failures are reported wrapped in ErrStoreUnavailable.
type ReservationStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, admission AdmissionControl, ledger ReservationLedger) error) error
	// Ledger returns a ledger bound to the connection pool for plain reads.
	Ledger() ReservationLedger
}

// ReservationNotifier is told about committed reservation changes. Implementations must not block for long.
type ReservationNotifier interface {
	ReservationCreated(ctx context.Context, r *Reservation, e *Event) error
	ReservationCancelled(ctx context.Context, r *Reservation, e *Event) error
}

// ReservationService is the entry point the API layer calls for RSVPs.
type ReservationService interface {
	Reserve(ctx context.Context, eventID, userID string) (*Reservation, error)
	CancelReservation(ctx context.Context, eventID, userID string) error
	ListReservations(ctx context.Context, userID string) ([]string, error)
	ListMyReservedEvents(ctx context.Context, userID string) ([]*ReservationWithEvent, error)
}
