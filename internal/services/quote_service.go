package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budgetbook/internal/cache"
	"budgetbook/internal/models"

	"golang.org/x/sync/singleflight"
)

var ErrInvalidSymbol = errors.New("invalid quote symbol")

const quoteBreakerName = "quote_upstream"

// QuoteService serves quotes through a TTL cache keyed "quote:<SYMBOL>".
// Concurrent misses for one symbol share a single upstream call.
type QuoteService struct {
	provider QuoteProviderInterface
	cache    *cache.TTLCache[models.Quote]
	ttl      time.Duration
	breaker  CircuitBreakerInterface
	group    singleflight.Group
	metrics  MetricsRecorderInterface
	logger   *slog.Logger
}

func NewQuoteService(
	provider QuoteProviderInterface,
	quoteCache *cache.TTLCache[models.Quote],
	ttl time.Duration,
	breaker CircuitBreakerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) QuoteServiceInterface {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &QuoteService{
		provider: provider,
		cache:    quoteCache,
		ttl:      ttl,
		breaker:  breaker,
		metrics:  metrics,
		logger:   logger,
	}
}

func QuoteCacheKey(symbol string) string {
	return "quote:" + strings.ToUpper(symbol)
}

func NormalizeSymbol(symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if !models.IsValidQuoteSymbol(symbol) {
		return "", ErrInvalidSymbol
	}
	return strings.ToUpper(symbol), nil
}

func (s *QuoteService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	key := QuoteCacheKey(symbol)

	if quote, ok := s.cache.Get(key); ok {
		s.metrics.IncrementCounter(MetricQuoteCache, map[string]string{"result": "hit"})
		return &quote, nil
	}
	s.metrics.IncrementCounter(MetricQuoteCache, map[string]string{"result": "miss"})

	// The shared fetch outlives any single caller; the provider's client
	// timeout bounds it. Each caller stops waiting when its own ctx ends.
	fetchCtx := context.WithoutCancel(ctx)
	results := s.group.DoChan(key, func() (interface{}, error) {
		return s.fetch(fetchCtx, symbol, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		quote := res.Val.(models.Quote)
		return &quote, nil
	}
}

func (s *QuoteService) fetch(ctx context.Context, symbol, key string) (models.Quote, error) {
	if s.breaker.IsOpen() {
		s.metrics.IncrementCounter(MetricQuoteUpstream, map[string]string{"status": "rejected"})
		return models.Quote{}, fmt.Errorf("%w: %w", ErrQuoteUnavailable, ErrCircuitBreakerOpen)
	}

	start := time.Now()
	quote, err := s.provider.FetchQuote(ctx, symbol)
	s.metrics.RecordProcessingTime(MetricQuoteUpstream, time.Since(start))

	if err != nil {
		if errors.Is(err, ErrQuoteNotFound) {
			// an unknown symbol is a valid upstream answer
			s.breaker.RecordSuccess()
			s.metrics.IncrementCounter(MetricQuoteUpstream, map[string]string{"status": "not_found"})
			return models.Quote{}, err
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			// the caller went away; says nothing about upstream health
			s.metrics.IncrementCounter(MetricQuoteUpstream, map[string]string{"status": "cancelled"})
			return models.Quote{}, err
		}
		s.breaker.RecordFailure()
		s.metrics.IncrementCounter(MetricQuoteUpstream, map[string]string{"status": "failed"})
		s.logger.WarnContext(ctx, "quote fetch failed",
			"symbol", symbol,
			"error", err,
			"breaker_state", s.breaker.GetState().String())
		return models.Quote{}, err
	}

	s.breaker.RecordSuccess()
	s.metrics.IncrementCounter(MetricQuoteUpstream, map[string]string{"status": "success"})
	s.cache.SetWithTTL(key, *quote, s.ttl)
	return *quote, nil
}

// NewQuoteCircuitBreaker builds the upstream breaker and mirrors its state into metrics.
func NewQuoteCircuitBreaker(maxFailures int, resetTimeout time.Duration, metrics MetricsRecorderInterface, logger *slog.Logger) CircuitBreakerInterface {
	cfg := DefaultCircuitBreakerConfig()
	if maxFailures > 0 {
		cfg.MaxFailures = maxFailures
	}
	if resetTimeout > 0 {
		cfg.ResetTimeout = resetTimeout
	}
	cfg.OnStateChange = func(from, to models.CircuitBreakerState) {
		metrics.RecordGauge(MetricCircuitBreaker, float64(to), map[string]string{"service": quoteBreakerName})
		logger.Warn("circuit breaker state changed",
			"service", quoteBreakerName,
			"from", from.String(),
			"to", to.String())
	}
	metrics.RecordGauge(MetricCircuitBreaker, float64(StateClosed), map[string]string{"service": quoteBreakerName})
	return NewCircuitBreaker(cfg)
}
