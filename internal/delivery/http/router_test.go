package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"eventrsvp/internal/delivery/http/controllers"
	"eventrsvp/internal/domain"
)

const routerEventID = "5b0c7a4e-9d55-4c1e-8a44-3f2f5b1a0c11"

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*domain.Principal, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &domain.Principal{UserID: "user-1", Email: "u@example.com"}, nil
}

type stubReservations struct{ calls int }

func (s *stubReservations) Reserve(context.Context, string, string) (*domain.Reservation, error) {
	s.calls++
	return &domain.Reservation{ID: "r-1"}, nil
}
func (s *stubReservations) CancelReservation(context.Context, string, string) error { return nil }
func (s *stubReservations) ListReservations(context.Context, string) ([]string, error) {
	return nil, nil
}
func (s *stubReservations) ListMyReservedEvents(context.Context, string) ([]*domain.ReservationWithEvent, error) {
	return nil, nil
}

type stubEvents struct{ domain.EventService }

func (stubEvents) ListUpcomingEvents(context.Context, domain.PaginationParams) ([]*domain.Event, int, error) {
	return nil, 0, nil
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func TestNewRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reservations := &stubReservations{}
	mux := NewRouter(Controllers{
		Events:       controllers.NewEventController(logger, stubEvents{}),
		Reservations: controllers.NewReservationController(logger, reservations),
		Health:       controllers.NewHealthController(logger, okPinger{}),
	}, stubVerifier{}, logger)
	handler := NewHandler(mux, nil, logger)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"ready is public", http.MethodGet, "/ready", "", http.StatusOK},
		{"event list is public", http.MethodGet, "/events", "", http.StatusOK},
		{"reserve requires auth", http.MethodPost, "/events/" + routerEventID + "/reservations", "", http.StatusUnauthorized},
		{"reserve rejects bad token", http.MethodPost, "/events/" + routerEventID + "/reservations", "bad", http.StatusUnauthorized},
		{"reserve with token", http.MethodPost, "/events/" + routerEventID + "/reservations", "good", http.StatusCreated},
		{"wrong method", http.MethodPut, "/events/" + routerEventID + "/reservations", "good", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
	assert.Equal(t, 1, reservations.calls)
}
