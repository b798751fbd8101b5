package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names understood by PrometheusMetrics.
const (
	MetricSummaryRecompute    = "summary.recompute"
	MetricTransactionMutation = "transaction.mutation"
	MetricQuoteCache          = "quote.cache"
	MetricQuoteUpstream       = "quote.upstream"
	MetricCircuitBreaker      = "circuit_breaker.state"
	MetricAuthEvent           = "authentication_event"
)

type PrometheusMetrics struct {
	summaryRecomputeTotal     *prometheus.CounterVec
	summaryRecomputeDuration  prometheus.Histogram
	transactionMutations      *prometheus.CounterVec
	quoteCacheRequests        *prometheus.CounterVec
	quoteUpstreamRequests     *prometheus.CounterVec
	quoteUpstreamDuration     prometheus.Histogram
	circuitBreakerState       *prometheus.GaugeVec
	authenticationEventsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry so repeated construction does not collide.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		summaryRecomputeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "summary_recompute_total",
				Help: "Total number of monthly summary recomputations",
			},
			[]string{"status"},
		),
		summaryRecomputeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "summary_recompute_duration_milliseconds",
				Help:    "Monthly summary recompute duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		transactionMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_mutations_total",
				Help: "Total number of ledger mutations",
			},
			[]string{"operation"},
		),
		quoteCacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quote_cache_requests_total",
				Help: "Quote cache lookups by result",
			},
			[]string{"result"},
		),
		quoteUpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quote_upstream_requests_total",
				Help: "Upstream quote fetches by status",
			},
			[]string{"status"},
		),
		quoteUpstreamDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quote_upstream_duration_seconds",
				Help:    "Upstream quote fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		authenticationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case MetricSummaryRecompute:
		if status := tags["status"]; status != "" {
			m.summaryRecomputeTotal.WithLabelValues(status).Inc()
		}
	case MetricTransactionMutation:
		if operation := tags["operation"]; operation != "" {
			m.transactionMutations.WithLabelValues(operation).Inc()
		}
	case MetricQuoteCache:
		if result := tags["result"]; result != "" {
			m.quoteCacheRequests.WithLabelValues(result).Inc()
		}
	case MetricQuoteUpstream:
		if status := tags["status"]; status != "" {
			m.quoteUpstreamRequests.WithLabelValues(status).Inc()
		}
	case MetricAuthEvent:
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case MetricSummaryRecompute:
		m.summaryRecomputeDuration.Observe(float64(duration.Milliseconds()))
	case MetricQuoteUpstream:
		m.quoteUpstreamDuration.Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricCircuitBreaker:
		if service := tags["service"]; service != "" {
			m.circuitBreakerState.WithLabelValues(service).Set(value)
		}
	}
}
