package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventrsvp/internal/domain"
)

const notifyTimeout = 5 * time.Second

type reservationService struct {
	store          domain.ReservationStore
	notifier       domain.ReservationNotifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewReservationService creates a ReservationService. timeout bounds each reserve/cancel transaction;
// notifier may be nil.
func NewReservationService(
	store domain.ReservationStore,
	notifier domain.ReservationNotifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ReservationService {
	return &reservationService{
		store:          store,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// Reserve claims a slot and then records the reservation, both in one transaction. A duplicate insert
// aborts the transaction, which also undoes the slot claim.
func (s *reservationService) Reserve(ctx context.Context, eventID, userID string) (*domain.Reservation, error) {
	if err := requireIDs(eventID, userID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		reservation *domain.Reservation
		event       *domain.Event
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, admission domain.AdmissionControl, ledger domain.ReservationLedger) error {
		e, err := admission.Admit(ctx, eventID)
		if err != nil {
			return err
		}
		r, err := ledger.Add(ctx, userID, eventID)
		if err != nil {
			return err
		}
		reservation, event = r, e
		return nil
	})
	if err != nil {
		return nil, classify("reserve", err)
	}

	s.logger.InfoContext(ctx, "reservation created",
		"event_id", eventID, "user_id", userID, "occupancy", event.Occupancy, "capacity", event.Capacity)
	s.notify(ctx, func(ctx context.Context, n domain.ReservationNotifier) error {
		return n.ReservationCreated(ctx, reservation, event)
	})
	return reservation, nil
}

// CancelReservation removes the ledger row first, so the counter is only decremented for a reservation
// that really existed.
func (s *reservationService) CancelReservation(ctx context.Context, eventID, userID string) error {
	if err := requireIDs(eventID, userID); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		reservation *domain.Reservation
		event       *domain.Event
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, admission domain.AdmissionControl, ledger domain.ReservationLedger) error {
		r, err := ledger.Remove(ctx, userID, eventID)
		if err != nil {
			return err
		}
		e, err := admission.Release(ctx, eventID)
		if err != nil {
			return err
		}
		reservation, event = r, e
		return nil
	})
	if err != nil {
		return classify("cancel reservation", err)
	}

	s.logger.InfoContext(ctx, "reservation cancelled",
		"event_id", eventID, "user_id", userID, "occupancy", event.Occupancy, "capacity", event.Capacity)
	s.notify(ctx, func(ctx context.Context, n domain.ReservationNotifier) error {
		return n.ReservationCancelled(ctx, reservation, event)
	})
	return nil
}

func (s *reservationService) ListReservations(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ids, err := s.store.Ledger().ListEventIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return ids, nil
}

func (s *reservationService) ListMyReservedEvents(ctx context.Context, userID string) ([]*domain.ReservationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, err := s.store.Ledger().ListWithEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reserved events: %w", err)
	}
	return items, nil
}

func (s *reservationService) notify(ctx context.Context, call func(ctx context.Context, n domain.ReservationNotifier) error) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := call(ctx, s.notifier); err != nil {
		s.logger.WarnContext(ctx, "reservation notification failed", "err", err)
	}
}

func requireIDs(eventID, userID string) error {
	if strings.TrimSpace(eventID) == "" {
		return fmt.Errorf("%w: event id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	return nil
}

// classify passes taxonomy errors through unchanged and wraps everything else with op.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrEventFull),
		errors.Is(err, domain.ErrDuplicateReservation),
		errors.Is(err, domain.ErrReservationNotFound):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
