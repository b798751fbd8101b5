package dto

import (
	"time"

	"budgetbook/internal/models"

	"github.com/shopspring/decimal"
)

type QuoteResponse struct {
	Symbol        string          `json:"symbol"`
	Currency      string          `json:"currency"`
	Exchange      string          `json:"exchange,omitempty"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previousClose"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	MarketTime    time.Time       `json:"marketTime"`
	FetchedAt     time.Time       `json:"fetchedAt"`
}

func NewQuoteResponse(q *models.Quote) QuoteResponse {
	return QuoteResponse{
		Symbol:        q.Symbol,
		Currency:      q.Currency,
		Exchange:      q.Exchange,
		Price:         q.Price,
		PreviousClose: q.PreviousClose,
		Change:        q.Change(),
		ChangePercent: q.ChangePercent(),
		MarketTime:    q.MarketTime,
		FetchedAt:     q.FetchedAt,
	}
}

// YahooChartResponse is the subset of the upstream chart payload the quote provider reads.
type YahooChartResponse struct {
	Chart struct {
		Result []YahooChartResult `json:"result"`
		Error  *YahooChartError   `json:"error"`
	} `json:"chart"`
}

type YahooChartResult struct {
	Meta YahooChartMeta `json:"meta"`
}

type YahooChartMeta struct {
	Symbol             string   `json:"symbol"`
	Currency           string   `json:"currency"`
	ExchangeName       string   `json:"exchangeName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
	PreviousClose      *float64 `json:"previousClose"`
	RegularMarketTime  int64    `json:"regularMarketTime"`
}

type YahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
