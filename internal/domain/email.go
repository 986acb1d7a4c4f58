package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ReservationEmailData holds data for reservation confirmation and cancellation emails.
type ReservationEmailData struct {
	Email      string
	EventTitle string
	StartsAt   string
	Location   string
	Remaining  int
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendReservationConfirmed(ctx context.Context, data *ReservationEmailData) error
	SendReservationCancelled(ctx context.Context, data *ReservationEmailData) error
}
