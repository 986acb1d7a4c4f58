package services

import (
	"context"
	"errors"
	"time"

	"eventrsvp/internal/domain"
)

// NotifierGroup fans a reservation change out to every notifier and joins their errors.
type NotifierGroup []domain.ReservationNotifier

func (g NotifierGroup) ReservationCreated(ctx context.Context, r *domain.Reservation, e *domain.Event) error {
	var errs []error
	for _, n := range g {
		errs = append(errs, n.ReservationCreated(ctx, r, e))
	}
	return errors.Join(errs...)
}

func (g NotifierGroup) ReservationCancelled(ctx context.Context, r *domain.Reservation, e *domain.Event) error {
	var errs []error
	for _, n := range g {
		errs = append(errs, n.ReservationCancelled(ctx, r, e))
	}
	return errors.Join(errs...)
}

type emailNotifier struct {
	emails domain.EmailService
}

// NewEmailNotifier returns a notifier that emails the caller found in the request context.
// Requests without an email address on the principal are skipped.
func NewEmailNotifier(emails domain.EmailService) domain.ReservationNotifier {
	return &emailNotifier{emails: emails}
}

func (n *emailNotifier) ReservationCreated(ctx context.Context, _ *domain.Reservation, e *domain.Event) error {
	data, ok := reservationEmailData(ctx, e)
	if !ok {
		return nil
	}
	return n.emails.SendReservationConfirmed(ctx, data)
}

func (n *emailNotifier) ReservationCancelled(ctx context.Context, _ *domain.Reservation, e *domain.Event) error {
	data, ok := reservationEmailData(ctx, e)
	if !ok {
		return nil
	}
	return n.emails.SendReservationCancelled(ctx, data)
}

func reservationEmailData(ctx context.Context, e *domain.Event) (*domain.ReservationEmailData, bool) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok || p.Email == "" || e == nil {
		return nil, false
	}
	return &domain.ReservationEmailData{
		Email:      p.Email,
		EventTitle: e.Title,
		StartsAt:   e.StartsAt.UTC().Format(time.RFC1123),
		Location:   e.Location,
		Remaining:  e.Remaining(),
	}, true
}
