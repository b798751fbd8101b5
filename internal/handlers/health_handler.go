package handlers

import (
	"context"
	"net/http"
	"time"

	apierrors "budgetbook/internal/errors"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by database.DB.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	db  Pinger
	now func() time.Time
}

func NewHealthCheckHandler(db Pinger) *HealthCheckHandler {
	return &HealthCheckHandler{db: db, now: time.Now}
}

// HealthCheck pings the database within two seconds.
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		return SendError(c, apierrors.SystemServiceUnavailable,
			apierrors.WithDetails("Database connection failed"),
			apierrors.WithInternalError(err, exposeDetails(c)))
	}

	return SendSuccess(c, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   h.now().UTC().Format(time.RFC3339),
	})
}
