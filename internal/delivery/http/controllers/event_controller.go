package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventrsvp/internal/delivery/http/helpers"
	"eventrsvp/internal/domain"
)

// CreateEventRequest is the request body for POST /events. Occupancy is server-managed and not accepted.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	return c.input().Validate()
}

func (c CreateEventRequest) input() domain.EventInput {
	return domain.EventInput{
		Title:       c.Title,
		Description: c.Description,
		StartsAt:    c.StartsAt,
		Location:    c.Location,
		Capacity:    c.Capacity,
	}
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	Location    *string    `json:"location"`
	Capacity    *int       `json:"capacity"`
}

// Validate implements Validator. At least one field must be set.
func (u UpdateEventRequest) Validate() []string {
	p := u.patch()
	if p.IsEmpty() {
		return []string{"at least one field must be provided"}
	}
	return p.Validate()
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	return domain.EventPatch{
		Title:       u.Title,
		Description: u.Description,
		StartsAt:    u.StartsAt,
		Location:    u.Location,
		Capacity:    u.Capacity,
	}
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsResponse is the body for GET /events.
type ListEventsResponse struct {
	Items      []*domain.Event        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event with a fixed capacity. The authenticated user becomes the owner; occupancy starts at 0.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), userID, req.input())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event including capacity and current occupancy.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListUpcomingEvents godoc
// @Summary List upcoming events
// @Description Events starting now or later, soonest first.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 10, max 50)"
// @Success 200 {object} helpers.APIResponse "data.items and data.pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListUpcomingEvents(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Items:      events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListMyEvents godoc
// @Summary List events I own
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a list of events, newest first"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/events [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListEventsByOwner(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Owner only. Capacity may not drop below the current occupancy.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, req.patch())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Owner only. Refused while the event has live reservations.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_has_reservations"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
