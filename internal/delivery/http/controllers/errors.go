package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"eventrsvp/internal/delivery/http/helpers"
	"eventrsvp/internal/delivery/http/middleware"
	"eventrsvp/internal/domain"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// domainErrors maps the service error taxonomy to HTTP responses. Order matters only for wrapped chains.
var domainErrors = []errorMapping{
	{domain.ErrEventNotFound, http.StatusNotFound, helpers.ErrCodeEventNotFound, "event not found"},
	{domain.ErrEventFull, http.StatusConflict, helpers.ErrCodeEventFull, "event is full"},
	{domain.ErrDuplicateReservation, http.StatusConflict, helpers.ErrCodeDuplicateReservation, "you already hold a reservation for this event"},
	{domain.ErrReservationNotFound, http.StatusNotFound, helpers.ErrCodeReservationNotFound, "reservation not found"},
	{domain.ErrEventHasReservations, http.StatusConflict, helpers.ErrCodeEventHasReservations, "event still has live reservations"},
	{domain.ErrCapacityBelowOccupancy, http.StatusConflict, helpers.ErrCodeConflict, "capacity cannot be lower than current occupancy"},
	{domain.ErrForbidden, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event owner can do this"},
}

// writeServiceError writes the envelope for err. Invalid input echoes the validation message;
// store outages answer 503 with Retry-After; anything else is logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			helpers.WriteJSONError(w, m.status, m.code, m.message)
			return
		}
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		logger.WarnContext(r.Context(), "store unavailable", "path", r.URL.Path, "method", r.Method, "err", err)
		w.Header().Set("Retry-After", "1")
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeStoreUnavailable, "temporarily unavailable, please retry")
		return
	}
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
}

// eventIDFromPath reads and validates the {eventID} path value. On failure it writes a 400 and returns false.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	if err := uuid.Validate(eventID); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "eventID must be a UUID")
		return "", false
	}
	return eventID, true
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}
