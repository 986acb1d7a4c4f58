package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eventrsvp/internal/delivery/http/helpers"
)

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	Logger *slog.Logger
	DB     Pinger
}

func NewHealthController(logger *slog.Logger, db Pinger) *HealthController {
	return &HealthController{Logger: logger, DB: db}
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready godoc
// @Summary Readiness check
// @Description Checks the database connection.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := c.DB.PingContext(ctx); err != nil {
		c.Logger.WarnContext(r.Context(), "readiness check failed", "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeStoreUnavailable, "database unreachable")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}
