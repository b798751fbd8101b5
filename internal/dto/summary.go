package dto

import (
	"time"

	"budgetbook/internal/models"

	"github.com/shopspring/decimal"
)

type MonthlySummaryResponse struct {
	YearMonth        string          `json:"yearMonth"`
	IncomeTotal      decimal.Decimal `json:"incomeTotal"`
	ExpenseTotal     decimal.Decimal `json:"expenseTotal"`
	SavingsTotal     decimal.Decimal `json:"savingsTotal"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int64           `json:"transactionCount"`
	UpdatedAt        *time.Time      `json:"updatedAt,omitempty"`
}

// YearSummaryResponse holds twelve months plus their totals.
type YearSummaryResponse struct {
	Year         int                      `json:"year"`
	Months       []MonthlySummaryResponse `json:"months"`
	IncomeTotal  decimal.Decimal          `json:"incomeTotal"`
	ExpenseTotal decimal.Decimal          `json:"expenseTotal"`
	SavingsTotal decimal.Decimal          `json:"savingsTotal"`
}

type CategoryBreakdownResponse struct {
	YearMonth  string                   `json:"yearMonth"`
	Type       string                   `json:"type,omitempty"`
	Categories []models.CategorySummary `json:"categories"`
}

func NewMonthlySummaryResponse(s *models.MonthlySummary) MonthlySummaryResponse {
	resp := MonthlySummaryResponse{
		YearMonth:        s.YearMonth,
		IncomeTotal:      s.IncomeTotal,
		ExpenseTotal:     s.ExpenseTotal,
		SavingsTotal:     s.SavingsTotal,
		Balance:          s.Balance(),
		TransactionCount: s.TransactionCount,
	}
	// months that were never stored carry no timestamp
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

func NewYearSummaryResponse(year int, summaries []models.MonthlySummary) YearSummaryResponse {
	resp := YearSummaryResponse{
		Year:         year,
		Months:       make([]MonthlySummaryResponse, 0, len(summaries)),
		IncomeTotal:  decimal.Zero,
		ExpenseTotal: decimal.Zero,
		SavingsTotal: decimal.Zero,
	}
	for i := range summaries {
		resp.Months = append(resp.Months, NewMonthlySummaryResponse(&summaries[i]))
		resp.IncomeTotal = resp.IncomeTotal.Add(summaries[i].IncomeTotal)
		resp.ExpenseTotal = resp.ExpenseTotal.Add(summaries[i].ExpenseTotal)
		resp.SavingsTotal = resp.SavingsTotal.Add(summaries[i].SavingsTotal)
	}
	return resp
}
