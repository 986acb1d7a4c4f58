package domain

import (
	"context"
	"strings"
	"time"
)

// MaxEventCapacity bounds the capacity an organizer may set.
const MaxEventCapacity = 100_000

// Event is a hostable occasion with a fixed attendance capacity.
// Occupancy is only ever changed by the reservation service.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Occupancy   int       `json:"occupancy"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event owned by ownerID with zero occupancy. ID is set by the repository on create.
func NewEvent(in EventInput, ownerID string, now time.Time) *Event {
	return &Event{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		StartsAt:    in.StartsAt.UTC(),
		Location:    strings.TrimSpace(in.Location),
		Capacity:    in.Capacity,
		Occupancy:   0,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Remaining returns the number of free slots.
func (e *Event) Remaining() int {
	return e.Capacity - e.Occupancy
}

// IsFull reports whether no slot is left.
func (e *Event) IsFull() bool {
	return e.Occupancy >= e.Capacity
}

// EventInput carries the organizer-editable fields of an event.
type EventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
}

// Validate returns the list of rule violations; nil means valid.
func (in EventInput) Validate() []string {
	var errs []string
	if strings.TrimSpace(in.Title) == "" {
		errs = append(errs, "title is required")
	}
	if in.StartsAt.IsZero() {
		errs = append(errs, "starts_at is required")
	}
	errs = append(errs, validateCapacity(in.Capacity)...)
	return errs
}

// EventPatch holds the optional fields of a partial event update. Occupancy is deliberately absent.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
}

// IsEmpty reports whether no field is set.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.StartsAt == nil && p.Location == nil && p.Capacity == nil
}

// Validate returns the list of rule violations; nil means valid.
func (p EventPatch) Validate() []string {
	var errs []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if p.StartsAt != nil && p.StartsAt.IsZero() {
		errs = append(errs, "starts_at cannot be empty")
	}
	if p.Capacity != nil {
		errs = append(errs, validateCapacity(*p.Capacity)...)
	}
	return errs
}

func validateCapacity(capacity int) []string {
	if capacity <= 0 {
		return []string{"capacity must be a positive integer"}
	}
	if capacity > MaxEventCapacity {
		return []string{"capacity cannot exceed 100000"}
	}
	return nil
}

// EventRepository defines event storage outside the reservation transaction.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListUpcoming(ctx context.Context, from time.Time, params PaginationParams) ([]*Event, int, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	// Update applies patch to the event. A capacity below the current occupancy is rejected atomically.
	Update(ctx context.Context, eventID string, patch EventPatch) (*Event, error)
	// Delete removes the event only while it has no live reservations.
	Delete(ctx context.Context, eventID string) error
}

// EventService defines organizer and browsing operations on events.
type EventService interface {
	CreateEvent(ctx context.Context, ownerID string, in EventInput) (*Event, error)
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListUpcomingEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListEventsByOwner(ctx context.Context, ownerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, ownerID string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, ownerID string) error
}
