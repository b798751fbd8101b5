package middleware

import (
	"budgetbook/internal/handlers"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TraceIDHeader carries the request trace ID in both directions.
const TraceIDHeader = "X-Trace-ID"

// RequestID assigns every request a trace ID. A client-supplied X-Trace-ID is
// reused so logs can be correlated across services.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(TraceIDHeader)
			if traceID == "" || len(traceID) > 128 {
				traceID = uuid.New().String()
			}

			c.Set(handlers.TraceIDContextKey, traceID)
			c.Response().Header().Set(TraceIDHeader, traceID)
			return next(c)
		}
	}
}

// GetTraceID returns the trace ID set by RequestID, or "unknown".
func GetTraceID(c echo.Context) string {
	if traceID, ok := c.Get(handlers.TraceIDContextKey).(string); ok && traceID != "" {
		return traceID
	}
	return "unknown"
}

// ExposeErrorDetails marks whether error responses may carry internal error
// text. It is enabled outside production.
func ExposeErrorDetails(expose bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(handlers.ExposeDetailsContextKey, expose)
			return next(c)
		}
	}
}

func exposeDetails(c echo.Context) bool {
	expose, _ := c.Get(handlers.ExposeDetailsContextKey).(bool)
	return expose
}
