package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	apierrors "budgetbook/internal/errors"
	"budgetbook/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var apiErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of API errors by code, endpoint, and status",
	},
	[]string{"code", "endpoint", "status"},
)

// CustomHTTPErrorHandler renders every error that escapes a handler as a
// failure envelope. Validator errors become VALIDATION_001 with one detail per
// field, echo errors keep their status, anything else is a SYSTEM_001.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	traceID := GetTraceID(c)
	errorResponse := buildErrorResponse(err, traceID, exposeDetails(c))
	httpStatus := errorResponse.GetHTTPStatus()

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code >= 400 {
		httpStatus = echoErr.Code
	}
	errorResponse.Error = apierrors.StatusLabel(httpStatus)

	logLevel := slog.LevelWarn
	if httpStatus >= 500 {
		logLevel = slog.LevelError
	}
	slog.Log(c.Request().Context(), logLevel, "HTTP error occurred",
		"trace_id", traceID,
		"error_code", errorResponse.Code,
		"status", httpStatus,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"error", err.Error(),
	)

	apiErrorsTotal.WithLabelValues(errorResponse.Code, c.Path(), strconv.Itoa(httpStatus)).Inc()

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(httpStatus)
	} else {
		err = c.JSON(httpStatus, errorResponse)
	}
	if err != nil {
		slog.Error("Failed to send error response", "trace_id", traceID, "error", err.Error())
	}
}

func buildErrorResponse(err error, traceID string, expose bool) *apierrors.ErrorResponse {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apierrors.NewValidationErrorFromList(validation.FieldErrors(err), traceID)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		code := mapHTTPStatusToErrorCode(echoErr.Code)
		if echoErr.Code >= http.StatusInternalServerError {
			return apierrors.NewErrorResponse(code, traceID, apierrors.WithInternalError(err, expose))
		}
		return apierrors.NewErrorResponse(code, traceID, apierrors.WithMessage(fmt.Sprintf("%v", echoErr.Message)))
	}

	errorResponse, _ := apierrors.WrapSystemError(err, traceID, expose)
	return errorResponse
}

func mapHTTPStatusToErrorCode(status int) apierrors.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return apierrors.ValidationGeneral
	case http.StatusUnauthorized:
		return apierrors.AuthMissingToken
	case http.StatusForbidden:
		return apierrors.AuthInsufficientPermission
	case http.StatusNotFound:
		return apierrors.SystemRouteNotFound
	case http.StatusMethodNotAllowed:
		return apierrors.SystemMethodNotAllowed
	case http.StatusTooManyRequests:
		return apierrors.SystemRateLimitExceeded
	case http.StatusServiceUnavailable:
		return apierrors.SystemServiceUnavailable
	case http.StatusInternalServerError:
		return apierrors.SystemInternalError
	default:
		return apierrors.SystemUnexpectedError
	}
}
