package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventrsvp/internal/domain"
)

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, html, text string) error {
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return f.err
}

type fakeRenderer struct {
	lastTemplate string
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	f.lastTemplate = templateName
	d := data.(*domain.ReservationEmailData)
	return "Subject " + d.EventTitle, "<p>" + d.EventTitle + "</p>", d.EventTitle, nil
}

func TestEmailNotifier(t *testing.T) {
	event := &domain.Event{
		Title:     "Go meetup",
		StartsAt:  time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC),
		Capacity:  10,
		Occupancy: 4,
	}

	t.Run("confirmation goes to principal email", func(t *testing.T) {
		mailer := &fakeMailer{}
		renderer := &fakeRenderer{}
		n := NewEmailNotifier(NewEmailService(mailer, renderer, testLogger()))
		ctx := domain.ContextWithPrincipal(context.Background(), &domain.Principal{UserID: "u1", Email: "u1@example.com"})

		require.NoError(t, n.ReservationCreated(ctx, &domain.Reservation{}, event))
		assert.Equal(t, "reservation_confirmed", renderer.lastTemplate)
		assert.Equal(t, "u1@example.com", mailer.to)
		assert.Equal(t, "Subject Go meetup", mailer.subject)
	})

	t.Run("cancellation template", func(t *testing.T) {
		renderer := &fakeRenderer{}
		n := NewEmailNotifier(NewEmailService(&fakeMailer{}, renderer, testLogger()))
		ctx := domain.ContextWithPrincipal(context.Background(), &domain.Principal{UserID: "u1", Email: "u1@example.com"})

		require.NoError(t, n.ReservationCancelled(ctx, &domain.Reservation{}, event))
		assert.Equal(t, "reservation_cancelled", renderer.lastTemplate)
	})

	t.Run("no email on principal is skipped", func(t *testing.T) {
		mailer := &fakeMailer{}
		n := NewEmailNotifier(NewEmailService(mailer, &fakeRenderer{}, testLogger()))
		ctx := domain.ContextWithPrincipal(context.Background(), &domain.Principal{UserID: "u1"})

		require.NoError(t, n.ReservationCreated(ctx, &domain.Reservation{}, event))
		assert.Empty(t, mailer.to)
	})

	t.Run("mailer error surfaces", func(t *testing.T) {
		n := NewEmailNotifier(NewEmailService(&fakeMailer{err: errors.New("ses throttled")}, &fakeRenderer{}, testLogger()))
		ctx := domain.ContextWithPrincipal(context.Background(), &domain.Principal{UserID: "u1", Email: "u1@example.com"})

		require.Error(t, n.ReservationCreated(ctx, &domain.Reservation{}, event))
	})
}

func TestNotifierGroup_JoinsErrors(t *testing.T) {
	ok := &countingNotifier{}
	failing := &countingNotifier{err: errors.New("broker down")}
	g := NotifierGroup{ok, failing}

	err := g.ReservationCreated(context.Background(), &domain.Reservation{}, &domain.Event{})
	require.Error(t, err)
	assert.Equal(t, 1, ok.created)
	assert.Equal(t, 1, failing.created)

	require.Error(t, g.ReservationCancelled(context.Background(), &domain.Reservation{}, &domain.Event{}))
	assert.Equal(t, 1, ok.cancelled)
}
