package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"budgetbook/internal/config"
	"budgetbook/internal/dto"
	"budgetbook/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrQuoteNotFound    = errors.New("quote not found")
	ErrQuoteUpstream    = errors.New("quote upstream request failed")
	ErrQuoteUnavailable = errors.New("quote upstream unavailable")
)

const maxQuoteResponseBytes = 1 << 20

type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(req)
}

// YahooQuoteProvider reads the latest price from the chart endpoint
// <base>/v8/finance/chart/<symbol>.
type YahooQuoteProvider struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

func NewYahooQuoteProvider(cfg *config.QuoteConfig, logger *slog.Logger) QuoteProviderInterface {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &YahooQuoteProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Transport: &userAgentTransport{
				userAgent: "budgetbook/1.0",
				base:      http.DefaultTransport,
			},
			Timeout: timeout,
		},
		logger: logger,
		now:    time.Now,
	}
}

func (p *YahooQuoteProvider) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", p.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.ErrorContext(ctx, "quote request failed",
			"symbol", symbol,
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrQuoteUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %w", ErrQuoteUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrQuoteNotFound
	case resp.StatusCode != http.StatusOK:
		p.logger.ErrorContext(ctx, "unexpected quote response",
			"symbol", symbol,
			"status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrQuoteUpstream, resp.StatusCode)
	}

	var chart dto.YahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrQuoteUpstream, err)
	}

	if chart.Chart.Error != nil {
		if strings.EqualFold(chart.Chart.Error.Code, "Not Found") {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrQuoteUpstream, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || chart.Chart.Result[0].Meta.RegularMarketPrice == nil {
		return nil, ErrQuoteNotFound
	}

	return p.toQuote(symbol, chart.Chart.Result[0].Meta), nil
}

func (p *YahooQuoteProvider) toQuote(symbol string, meta dto.YahooChartMeta) *models.Quote {
	quote := &models.Quote{
		Symbol:        symbol,
		Currency:      meta.Currency,
		Exchange:      meta.ExchangeName,
		Price:         decimal.NewFromFloat(*meta.RegularMarketPrice),
		PreviousClose: decimal.Zero,
		FetchedAt:     p.now().UTC(),
	}
	if meta.Symbol != "" {
		quote.Symbol = meta.Symbol
	}
	switch {
	case meta.PreviousClose != nil:
		quote.PreviousClose = decimal.NewFromFloat(*meta.PreviousClose)
	case meta.ChartPreviousClose != nil:
		quote.PreviousClose = decimal.NewFromFloat(*meta.ChartPreviousClose)
	}
	if meta.RegularMarketTime > 0 {
		quote.MarketTime = time.Unix(meta.RegularMarketTime, 0).UTC()
	}
	return quote
}
