package handlers

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"net/http"

	apierrors "budgetbook/internal/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

// STANDARDIZED RESPONSE PATTERNS
//
// 1. SendSuccess / SendSuccessWithMeta - every 2xx body is a SuccessResponse.
//
// 2. SendError - client and business errors (4xx), and known server-side
//    failures that have their own code (SUMMARY_001, QUOTE_003, ...).
//
// 3. SendSystemError - unexpected errors. The client sees a generic message;
//    the error itself is logged with the trace ID and only echoed in details
//    when the server runs with detail exposure on. Driver and connection
//    failures answer SYSTEM_002, everything else SYSTEM_001.
//
// Validation errors from c.Validate are returned as-is and rendered by the
// central HTTP error handler.

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
	// ExposeDetailsContextKey holds whether internal error text may be sent to clients
	ExposeDetailsContextKey = "expose_error_details"
)

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = apierrors.ErrorResponse

func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

func exposeDetails(c echo.Context) bool {
	expose, _ := c.Get(ExposeDetailsContextKey).(bool)
	return expose
}

// SendSuccess writes data inside the success envelope.
func SendSuccess(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, SuccessResponse{Success: true, Data: data})
}

func SendSuccessWithMeta(c echo.Context, status int, data, meta interface{}) error {
	return c.JSON(status, SuccessResponse{Success: true, Data: data, Meta: meta})
}

func SendMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, SuccessResponse{Success: true, Message: message})
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code apierrors.ErrorCode, opts ...apierrors.ErrorOption) error {
	errorResponse := apierrors.NewErrorResponse(code, getTraceID(c), opts...)
	return c.JSON(errorResponse.GetHTTPStatus(), errorResponse)
}

// SendCodedServerError answers with a server-side code and logs err.
func SendCodedServerError(c echo.Context, code apierrors.ErrorCode, err error) error {
	logServerError(c, string(code), err)
	return SendError(c, code, apierrors.WithInternalError(err, exposeDetails(c)))
}

// SendSystemError wraps a system error with generic message and logs the internal error
func SendSystemError(c echo.Context, err error) error {
	wrap := apierrors.WrapSystemError
	if isDatabaseError(err) {
		wrap = apierrors.WrapDatabaseError
	}
	errorResponse, internal := wrap(err, getTraceID(c), exposeDetails(c))
	logServerError(c, errorResponse.Code, internal)
	return c.JSON(http.StatusInternalServerError, errorResponse)
}

func isDatabaseError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, driver.ErrBadConn)
}

func logServerError(c echo.Context, code string, err error) {
	slog.ErrorContext(c.Request().Context(), "request failed",
		"trace_id", getTraceID(c),
		"error_code", code,
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
}
