package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"budgetbook/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the shared validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("positive_amount", validatePositiveAmount)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("year_month", validateYearMonth)
	_ = v.RegisterValidation("date", validateDate)
	_ = v.RegisterValidation("quote_symbol", validateQuoteSymbol)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validate: v}
}

// Struct validates a request DTO.
func (v *Validator) Struct(i interface{}) error {
	return v.validate.Struct(i)
}

// validatePositiveAmount accepts integers and floats strictly above zero, and
// decimals the ledger can store exactly.
func validatePositiveAmount(fl validator.FieldLevel) bool {
	if d, ok := fl.Field().Interface().(decimal.Decimal); ok {
		return models.ValidateAmount(d) == nil
	}
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() > 0
	case reflect.Float32, reflect.Float64:
		return fl.Field().Float() > 0
	default:
		return false
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.IsValidTransactionType(fl.Field().String())
}

func validateYearMonth(fl validator.FieldLevel) bool {
	_, err := models.ParseYearMonth(fl.Field().String())
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

func validateQuoteSymbol(fl validator.FieldLevel) bool {
	return models.IsValidQuoteSymbol(fl.Field().String())
}

// FieldErrors flattens validator errors into "field: message" lines, sorted
// by field. It returns nil when err is not a validation error.
func FieldErrors(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}
	details := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		details = append(details, fmt.Sprintf("%s: %s", fe.Field(), FormatFieldError(fe)))
	}
	sort.Strings(details)
	return details
}

// FormatFieldError converts a validator.FieldError to a human-readable message
func FormatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "iso4217":
		return "must be an ISO 4217 currency code"
	case "positive_amount":
		if _, ok := fe.Value().(decimal.Decimal); ok {
			return "must be greater than 0 and below 10000000000000 with at most 2 decimal places"
		}
		return "must be greater than 0"
	case "transaction_type":
		return "must be one of income, expense, savings"
	case "year_month":
		return "must be formatted as YYYY-MM"
	case "date":
		return "must be formatted as YYYY-MM-DD"
	case "quote_symbol":
		return "must be 1-15 letters, digits or . - ^ ="
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}
