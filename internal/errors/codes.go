package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthInvalidCredentials     ErrorCode = "AUTH_001"
	AuthMissingToken           ErrorCode = "AUTH_002"
	AuthExpiredToken           ErrorCode = "AUTH_003"
	AuthInvalidTokenFormat     ErrorCode = "AUTH_004"
	AuthInsufficientPermission ErrorCode = "AUTH_005"
	AuthAccountLocked          ErrorCode = "AUTH_006"
	AuthEmailAlreadyRegistered ErrorCode = "AUTH_007"
	AuthInvalidRefreshToken    ErrorCode = "AUTH_008"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral          ErrorCode = "VALIDATION_001"
	ValidationRequiredField    ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat    ErrorCode = "VALIDATION_003"
	ValidationOutOfRange       ErrorCode = "VALIDATION_004"
	ValidationInvalidEmail     ErrorCode = "VALIDATION_005"
	ValidationInvalidDate      ErrorCode = "VALIDATION_006"
	ValidationInvalidYearMonth ErrorCode = "VALIDATION_007"
	ValidationInvalidID        ErrorCode = "VALIDATION_008"
	ValidationMalformedBody    ErrorCode = "VALIDATION_009"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound         ErrorCode = "TRANSACTION_001"
	TransactionInvalidAmount    ErrorCode = "TRANSACTION_002"
	TransactionInvalidType      ErrorCode = "TRANSACTION_003"
	TransactionValidationFailed ErrorCode = "TRANSACTION_004"
)

// Summary error codes (SUMMARY_*)
const (
	SummaryRecomputeFailed ErrorCode = "SUMMARY_001"
	SummaryInvalidYear     ErrorCode = "SUMMARY_002"
)

// Quote error codes (QUOTE_*)
const (
	QuoteInvalidSymbol       ErrorCode = "QUOTE_001"
	QuoteNotFound            ErrorCode = "QUOTE_002"
	QuoteUpstreamFailed      ErrorCode = "QUOTE_003"
	QuoteUpstreamUnavailable ErrorCode = "QUOTE_004"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
	SystemRouteNotFound      ErrorCode = "SYSTEM_007"
	SystemMethodNotAllowed   ErrorCode = "SYSTEM_008"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	AuthInvalidCredentials:     "Invalid email or password",
	AuthMissingToken:           "Authorization token is required",
	AuthExpiredToken:           "Authorization token has expired",
	AuthInvalidTokenFormat:     "Invalid authorization token format",
	AuthInsufficientPermission: "Insufficient permissions to access this resource",
	AuthAccountLocked:          "Account is locked after too many failed login attempts",
	AuthEmailAlreadyRegistered: "An account with this email already exists",
	AuthInvalidRefreshToken:    "Refresh token is invalid, expired or revoked",

	ValidationGeneral:          "Validation failed",
	ValidationRequiredField:    "Required field is missing",
	ValidationInvalidFormat:    "Invalid field format",
	ValidationOutOfRange:       "Field value is out of allowed range",
	ValidationInvalidEmail:     "Invalid email address format",
	ValidationInvalidDate:      "Date must be formatted as YYYY-MM-DD",
	ValidationInvalidYearMonth: "Month must be formatted as YYYY-MM",
	ValidationInvalidID:        "Invalid identifier format",
	ValidationMalformedBody:    "Request body is not valid JSON",

	TransactionNotFound:         "Transaction not found",
	TransactionInvalidAmount:    "Transaction amount must be greater than zero",
	TransactionInvalidType:      "Transaction type must be one of income, expense, savings",
	TransactionValidationFailed: "Transaction validation failed",

	SummaryRecomputeFailed: "Monthly summary could not be recomputed",
	SummaryInvalidYear:     "Year must be a four digit number",

	QuoteInvalidSymbol:       "Invalid stock symbol",
	QuoteNotFound:            "No quote available for this symbol",
	QuoteUpstreamFailed:      "Quote provider returned an error",
	QuoteUpstreamUnavailable: "Quote provider is temporarily unavailable",

	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
	SystemRouteNotFound:      "Resource not found",
	SystemMethodNotAllowed:   "Method not allowed",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
