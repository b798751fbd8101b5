package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthlySummary_Balance(t *testing.T) {
	s := &MonthlySummary{
		IncomeTotal:  decimal.NewFromInt(100000),
		ExpenseTotal: decimal.NewFromInt(30000),
		SavingsTotal: decimal.NewFromInt(20000),
	}
	assert.True(t, decimal.NewFromInt(50000).Equal(s.Balance()))

	empty := EmptyMonthlySummary(uuid.New(), MustParseYearMonth("2024-03"))
	assert.Equal(t, "2024-03", empty.YearMonth)
	assert.True(t, empty.Balance().IsZero())
	assert.Zero(t, empty.TransactionCount)
}
