package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Date   string          `json:"date" validate:"required,date"`
	Amount decimal.Decimal `json:"amount" validate:"positive_amount"`
	Type   string          `json:"type" validate:"required,transaction_type"`
	Month  string          `query:"month" validate:"omitempty,year_month"`
	Symbol string          `param:"symbol" validate:"omitempty,quote_symbol"`
	Count  int             `json:"count" validate:"omitempty,positive_amount"`
}

func validSample() sampleRequest {
	return sampleRequest{
		Date:   "2024-02-29",
		Amount: decimal.RequireFromString("12500.50"),
		Type:   "expense",
		Month:  "2024-02",
		Symbol: "005930.KS",
	}
}

func TestValidator_AcceptsValidRequest(t *testing.T) {
	assert.NoError(t, NewValidator().Struct(validSample()))
}

func TestValidator_CustomRules(t *testing.T) {
	cases := map[string]struct {
		mutate func(*sampleRequest)
		field  string
	}{
		"zero amount":       {func(r *sampleRequest) { r.Amount = decimal.Zero }, "amount"},
		"negative amount":   {func(r *sampleRequest) { r.Amount = decimal.NewFromInt(-1) }, "amount"},
		"sub-cent amount":   {func(r *sampleRequest) { r.Amount = decimal.RequireFromString("0.004") }, "amount"},
		"three decimals":    {func(r *sampleRequest) { r.Amount = decimal.RequireFromString("12.345") }, "amount"},
		"overflow amount":   {func(r *sampleRequest) { r.Amount = decimal.New(1, 13) }, "amount"},
		"unknown type":      {func(r *sampleRequest) { r.Type = "transfer" }, "type"},
		"uppercase type":    {func(r *sampleRequest) { r.Type = "INCOME" }, "type"},
		"impossible date":   {func(r *sampleRequest) { r.Date = "2023-02-29" }, "date"},
		"slashed date":      {func(r *sampleRequest) { r.Date = "2024/03/01" }, "date"},
		"bad month":         {func(r *sampleRequest) { r.Month = "2024-13" }, "month"},
		"symbol with space": {func(r *sampleRequest) { r.Symbol = "BRK B" }, "symbol"},
		"negative int":      {func(r *sampleRequest) { r.Count = -3 }, "count"},
	}

	v := NewValidator()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := validSample()
			tc.mutate(&req)

			details := FieldErrors(v.Struct(req))
			require.Len(t, details, 1)
			assert.Contains(t, details[0], tc.field+": ")
		})
	}
}

func TestValidator_AmountBounds(t *testing.T) {
	v := NewValidator()
	for _, raw := range []string{"0.01", "12.3", "12.30", "9999999999999.99"} {
		req := validSample()
		req.Amount = decimal.RequireFromString(raw)
		assert.NoError(t, v.Struct(req), raw)
	}
}

func TestValidator_IntegerAmountMessage(t *testing.T) {
	req := validSample()
	req.Count = -3

	assert.Equal(t, []string{"count: must be greater than 0"}, FieldErrors(NewValidator().Struct(req)))
}

func TestFieldErrors_SortedMessages(t *testing.T) {
	details := FieldErrors(NewValidator().Struct(sampleRequest{}))

	assert.Equal(t, []string{
		"amount: must be greater than 0 and below 10000000000000 with at most 2 decimal places",
		"date: is required",
		"type: is required",
	}, details)
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, FieldErrors(assert.AnError))
	assert.Nil(t, FieldErrors(nil))
}

func TestGetValidator_Shared(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
	assert.NotNil(t, GetValidator().GetValidate())
}
