package controllers

import (
	"log/slog"
	"net/http"

	"eventrsvp/internal/delivery/http/helpers"
	"eventrsvp/internal/domain"
)

// ReservationSuccessResponse is the success response envelope for POST /events/{eventID}/reservations (201).
type ReservationSuccessResponse struct {
	Data  *domain.Reservation `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// CancelReservationResponse is the body of a successful cancellation.
type CancelReservationResponse struct {
	EventID   string `json:"event_id"`
	Cancelled bool   `json:"cancelled"`
}

// ListReservationsResponse is the body for GET /me/reservations.
type ListReservationsResponse struct {
	EventIDs []string `json:"event_ids"`
}

type ReservationController struct {
	Logger  *slog.Logger
	Service domain.ReservationService
}

func NewReservationController(logger *slog.Logger, svc domain.ReservationService) *ReservationController {
	return &ReservationController{
		Logger:  logger,
		Service: svc,
	}
}

// Reserve godoc
// @Summary Reserve a slot on an event
// @Description Claims one slot for the authenticated user. At most one reservation per user and event.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.ReservationSuccessResponse "data contains the reservation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_full or duplicate_reservation"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /events/{eventID}/reservations [post]
func (c *ReservationController) Reserve(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	reservation, err := c.Service.Reserve(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reservation)
}

// CancelReservation godoc
// @Summary Cancel my reservation on an event
// @Description Removes the authenticated user's reservation and frees the slot.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains event_id and cancelled"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: reservation_not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /events/{eventID}/reservations [delete]
func (c *ReservationController) CancelReservation(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.CancelReservation(r.Context(), eventID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CancelReservationResponse{EventID: eventID, Cancelled: true})
}

// ListMyReservations godoc
// @Summary List the events I hold reservations for
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data.event_ids"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/reservations [get]
func (c *ReservationController) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	ids, err := c.Service.ListReservations(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListReservationsResponse{EventIDs: ids})
}

// ListMyReservedEvents godoc
// @Summary List my reservations with their events
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a list of reservation and event pairs"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/reserved-events [get]
func (c *ReservationController) ListMyReservedEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	items, err := c.Service.ListMyReservedEvents(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if items == nil {
		items = []*domain.ReservationWithEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}
