package domain

import "errors"

// Reservation errors. Controllers map these to client errors; none of them is retried by the core.
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrEventFull            = errors.New("event is full")
	ErrDuplicateReservation = errors.New("user already holds a reservation for this event")
	ErrReservationNotFound  = errors.New("reservation not found")
)

// ErrStoreUnavailable wraps transaction and connectivity failures. The aborted transaction leaves no
// partial effect, so callers may retry the whole request.
var ErrStoreUnavailable = errors.New("reservation store unavailable")

// Event CRUD errors.
var (
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrEventHasReservations   = errors.New("event still has live reservations")
	ErrCapacityBelowOccupancy = errors.New("capacity cannot be lower than current occupancy")
)
