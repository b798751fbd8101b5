package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthlySummary is derived data: per user and month totals rebuilt from transactions.
type MonthlySummary struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	YearMonth        string          `gorm:"type:char(7);not null;uniqueIndex:idx_monthly_summary_key,priority:1" json:"year_month"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_monthly_summary_key,priority:2" json:"user_id"`
	IncomeTotal      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"income_total"`
	ExpenseTotal     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"expense_total"`
	SavingsTotal     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"savings_total"`
	TransactionCount int64           `gorm:"not null;default:0" json:"transaction_count"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
}

// EmptyMonthlySummary is what a month without transactions aggregates to.
func EmptyMonthlySummary(userID uuid.UUID, ym YearMonth) *MonthlySummary {
	return &MonthlySummary{
		YearMonth:    ym.String(),
		UserID:       userID,
		IncomeTotal:  decimal.Zero,
		ExpenseTotal: decimal.Zero,
		SavingsTotal: decimal.Zero,
	}
}

func (s *MonthlySummary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	return nil
}

// Balance is income left after expenses and savings.
func (s *MonthlySummary) Balance() decimal.Decimal {
	return s.IncomeTotal.Sub(s.ExpenseTotal).Sub(s.SavingsTotal)
}

func (s *MonthlySummary) TableName() string {
	return "monthly_summary"
}
