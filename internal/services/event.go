package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventrsvp/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, ownerID string, in domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ownerID == "" {
		return nil, fmt.Errorf("%w: event owner is required", domain.ErrInvalidInput)
	}
	if errs := in.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}

	event := domain.NewEvent(in, ownerID, s.now().UTC())
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListUpcomingEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListUpcoming(ctx, s.now().UTC(), params)
	if err != nil {
		return nil, 0, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) ListEventsByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByOwnerID(ctx, ownerID)
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, ownerID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if errs := patch.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	if err := s.requireOwner(ctx, eventID, ownerID); err != nil {
		return nil, err
	}

	updated, err := s.eventRepo.Update(ctx, eventID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) || errors.Is(err, domain.ErrCapacityBelowOccupancy) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// DeleteEvent refuses while reservations are live (ErrEventHasReservations); attendees must cancel first.
func (s *eventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireOwner(ctx, eventID, ownerID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) || errors.Is(err, domain.ErrEventHasReservations) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) requireOwner(ctx context.Context, eventID, ownerID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	return nil
}
