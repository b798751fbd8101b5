package errors

import "net/http"

// GenericServerError is the only text a 5xx response carries in its error field.
const GenericServerError = "Internal server error"

// ErrorResponse is the failure envelope returned by every endpoint.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
	TraceID string   `json:"trace_id"`
}

// ErrorOption is a functional option for configuring error responses
type ErrorOption func(*ErrorResponse)

// WithDetails adds detail messages to the error response
func WithDetails(details ...string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Details = append(er.Details, details...)
	}
}

// WithMessage overrides the default message for the error code
func WithMessage(message string) ErrorOption {
	return func(er *ErrorResponse) {
		if message != "" {
			er.Message = message
		}
	}
}

// WithInternalError appends err as a detail line when expose is set. It is a
// no-op otherwise, so driver messages never reach clients in production.
func WithInternalError(err error, expose bool) ErrorOption {
	return func(er *ErrorResponse) {
		if expose && err != nil {
			er.Details = append(er.Details, err.Error())
		}
	}
}

// NewErrorResponse creates a standardized error response with the given error code and trace ID
func NewErrorResponse(code ErrorCode, traceID string, opts ...ErrorOption) *ErrorResponse {
	response := &ErrorResponse{
		Success: false,
		Error:   StatusLabel(GetHTTPStatus(code)),
		Message: GetErrorMessage(code),
		Code:    string(code),
		TraceID: traceID,
	}

	for _, opt := range opts {
		opt(response)
	}

	return response
}

// NewValidationErrorFromList creates a validation error from a list of detail messages.
// The first detail becomes the message so clients can show it directly.
func NewValidationErrorFromList(details []string, traceID string) *ErrorResponse {
	response := NewErrorResponse(ValidationGeneral, traceID, WithDetails(details...))
	if len(details) == 1 {
		response.Message = details[0]
	}
	return response
}

// WrapSystemError wraps an internal error with a generic system error message
// The internal error is returned separately for server-side logging
func WrapSystemError(err error, traceID string, expose bool) (*ErrorResponse, error) {
	return NewErrorResponse(SystemInternalError, traceID, WithInternalError(err, expose)), err
}

// WrapDatabaseError wraps a database error with a generic system error message
func WrapDatabaseError(err error, traceID string, expose bool) (*ErrorResponse, error) {
	return NewErrorResponse(SystemDatabaseError, traceID, WithInternalError(err, expose)), err
}

// StatusLabel is the error field text for an HTTP status. Every 5xx shares GenericServerError.
func StatusLabel(status int) string {
	if status >= http.StatusInternalServerError {
		return GenericServerError
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Request failed"
}

// GetHTTPStatus returns the appropriate HTTP status code for the error code
func GetHTTPStatus(code ErrorCode) int {
	switch code {
	// 400 Bad Request - Validation errors, malformed requests
	case ValidationGeneral, ValidationRequiredField, ValidationInvalidFormat,
		ValidationOutOfRange, ValidationInvalidEmail, ValidationInvalidDate,
		ValidationInvalidYearMonth, ValidationInvalidID, ValidationMalformedBody,
		TransactionInvalidAmount, TransactionInvalidType, SummaryInvalidYear,
		QuoteInvalidSymbol:
		return http.StatusBadRequest

	// 401 Unauthorized - Authentication failures
	case AuthInvalidCredentials, AuthMissingToken, AuthExpiredToken,
		AuthInvalidTokenFormat, AuthInvalidRefreshToken:
		return http.StatusUnauthorized

	// 403 Forbidden - Authorization failures
	case AuthInsufficientPermission, AuthAccountLocked:
		return http.StatusForbidden

	// 404 Not Found - Resource not found
	case TransactionNotFound, QuoteNotFound, SystemRouteNotFound:
		return http.StatusNotFound

	case SystemMethodNotAllowed:
		return http.StatusMethodNotAllowed

	// 409 Conflict - Resource state conflict
	case AuthEmailAlreadyRegistered:
		return http.StatusConflict

	// 422 Unprocessable Entity - Semantic validation failures
	case TransactionValidationFailed:
		return http.StatusUnprocessableEntity

	// 429 Too Many Requests - Rate limiting
	case SystemRateLimitExceeded:
		return http.StatusTooManyRequests

	// 502 Bad Gateway - Upstream answered with an error
	case QuoteUpstreamFailed:
		return http.StatusBadGateway

	// 503 Service Unavailable - Service temporarily unavailable
	case SystemServiceUnavailable, QuoteUpstreamUnavailable:
		return http.StatusServiceUnavailable

	default:
		// SYSTEM_* and unknown codes
		return http.StatusInternalServerError
	}
}

// GetHTTPStatus returns the HTTP status code for the error response
func (er *ErrorResponse) GetHTTPStatus() int {
	return GetHTTPStatus(ErrorCode(er.Code))
}
