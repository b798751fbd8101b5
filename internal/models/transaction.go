package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
	TransactionTypeSavings = "savings"

	DateLayout = "2006-01-02"

	MaxCategoryLength = 50

	// AmountScale is the number of decimal places the amount columns store.
	AmountScale = 2
)

// MaxAmount is the exclusive upper bound for an amount; DECIMAL(15,2) holds 13 integer digits.
var MaxAmount = decimal.New(1, 13)

var (
	ErrInvalidTransactionType = errors.New("transaction type must be one of income, expense, savings")
	ErrInvalidAmount          = errors.New("transaction amount must be positive")
	ErrAmountPrecision        = errors.New("transaction amount has more than 2 decimal places")
	ErrAmountTooLarge         = errors.New("transaction amount is too large")
	ErrMissingOwner           = errors.New("transaction owner is required")
	ErrMissingDate            = errors.New("transaction date is required")
	ErrMissingCategory        = errors.New("transaction category is required")
	ErrCategoryTooLong        = errors.New("transaction category too long")
)

// TransactionTypes lists the types in the order summaries report them.
var TransactionTypes = []string{TransactionTypeIncome, TransactionTypeExpense, TransactionTypeSavings}

// Transaction is a single ledger entry owned by one user. Date carries no time of day.
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	Date          time.Time       `gorm:"type:date;not null;index:idx_transactions_user_date,priority:2" json:"date"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type          string          `gorm:"type:varchar(20);not null" json:"type"`
	Category      string          `gorm:"type:varchar(50);not null" json:"category"`
	Description   string          `gorm:"type:text" json:"description"`
	Memo          *string         `gorm:"type:text" json:"memo,omitempty"`
	PaymentMethod *string         `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	t.Date = NormalizeDate(t.Date)
	return t.Validate()
}

func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	t.Date = NormalizeDate(t.Date)
	return t.Validate()
}

func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrMissingOwner
	}

	if t.Date.IsZero() {
		return ErrMissingDate
	}

	if !IsValidTransactionType(t.Type) {
		return ErrInvalidTransactionType
	}

	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}

	if strings.TrimSpace(t.Category) == "" {
		return ErrMissingCategory
	}

	if len(t.Category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}

	return nil
}

// YearMonth is the summary scope this transaction contributes to.
func (t *Transaction) YearMonth() YearMonth {
	return YearMonthOf(t.Date)
}

func (t *Transaction) TableName() string {
	return "transactions"
}

func IsValidTransactionType(transactionType string) bool {
	switch transactionType {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeSavings:
		return true
	default:
		return false
	}
}

// ValidateAmount accepts amounts the ledger can store exactly.
func ValidateAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return ErrInvalidAmount
	case !amount.Equal(amount.Truncate(AmountScale)):
		return ErrAmountPrecision
	case amount.GreaterThanOrEqual(MaxAmount):
		return ErrAmountTooLarge
	default:
		return nil
	}
}

// NormalizeDate drops the time of day, keeping the calendar date as seen in UTC.
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
