package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventrsvp/internal/delivery/http/controllers"
	"eventrsvp/internal/delivery/http/middleware"
	"eventrsvp/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Events       *controllers.EventController
	Reservations *controllers.ReservationController
	Health       *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Events (public reads)
	mux.HandleFunc("GET /events", c.Events.ListUpcomingEvents)
	mux.HandleFunc("GET /events/{eventID}", c.Events.GetEvent)

	// Events (owner)
	mux.HandleFunc("POST /events", auth(c.Events.CreateEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Events.DeleteEvent))
	mux.HandleFunc("GET /me/events", auth(c.Events.ListMyEvents))

	// Reservations
	mux.HandleFunc("POST /events/{eventID}/reservations", auth(c.Reservations.Reserve))
	mux.HandleFunc("DELETE /events/{eventID}/reservations", auth(c.Reservations.CancelReservation))
	mux.HandleFunc("GET /me/reservations", auth(c.Reservations.ListMyReservations))
	mux.HandleFunc("GET /me/reserved-events", auth(c.Reservations.ListMyReservedEvents))

	// Health
	mux.HandleFunc("GET /health", c.Health.Health)
	mux.HandleFunc("GET /ready", c.Health.Ready)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with CORS and request logging.
func NewHandler(mux *http.ServeMux, allowedOrigins []string, logger *slog.Logger) http.Handler {
	return middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, mux))
}
