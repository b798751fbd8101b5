package models

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var quoteSymbolPattern = regexp.MustCompile(`^[A-Za-z0-9.\-^=]{1,15}$`)

// IsValidQuoteSymbol reports whether s looks like a ticker: 1-15 letters, digits or . - ^ =.
func IsValidQuoteSymbol(s string) bool {
	return quoteSymbolPattern.MatchString(s)
}

// Quote is the latest market price for a symbol as reported upstream.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Currency      string          `json:"currency"`
	Exchange      string          `json:"exchange,omitempty"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	MarketTime    time.Time       `json:"market_time"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

// Change is the absolute move since the previous close.
func (q *Quote) Change() decimal.Decimal {
	return q.Price.Sub(q.PreviousClose)
}

// ChangePercent is zero when there is no previous close.
func (q *Quote) ChangePercent() decimal.Decimal {
	if q.PreviousClose.IsZero() {
		return decimal.Zero
	}
	return q.Change().Div(q.PreviousClose).Mul(decimal.NewFromInt(100)).Round(2)
}
