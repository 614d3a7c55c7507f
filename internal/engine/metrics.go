package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// optimizationDuration tracks the time taken per optimization by strategy.
	optimizationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_optimizer_duration_seconds",
		Help:    "Time taken to optimize a cart by strategy",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"strategy"})

	// optimizationErrors tracks fatal optimization errors by strategy.
	optimizationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_optimizer_errors_total",
		Help: "Total number of fatal optimization errors by strategy",
	}, []string{"strategy"})

	// cacheHits tracks result cache hits.
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_optimizer_cache_hits_total",
		Help: "Total number of result cache hits",
	})

	// cacheMisses tracks result cache misses.
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_optimizer_cache_misses_total",
		Help: "Total number of result cache misses",
	})

	// lookupFailures tracks degraded (failed or timed-out) alternative lookups.
	lookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_optimizer_lookup_failures_total",
		Help: "Total number of alternative lookups that degraded to empty",
	})

	// cartSize tracks the distribution of cart line counts.
	cartSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_optimizer_cart_items_count",
		Help:    "Number of line items in optimization requests",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	// alternativesFound tracks alternatives retained per line item.
	alternativesFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_optimizer_alternatives_per_item",
		Help:    "Number of alternatives retained per line item",
		Buckets: []float64{0, 1, 2, 5, 10, 20},
	})

	// savingsAmount tracks total savings per optimization in currency units.
	savingsAmount = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_optimizer_savings_amount",
		Help:    "Total savings per optimization by strategy",
		Buckets: []float64{0, 0.5, 1, 2, 5, 10, 25, 50, 100},
	}, []string{"strategy"})
)

// MetricsRecorder provides methods to record engine metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordOptimization records one optimization call.
func (m *MetricsRecorder) RecordOptimization(strategy StrategyType, duration time.Duration, err error) {
	optimizationDuration.WithLabelValues(string(strategy)).Observe(duration.Seconds())
	if err != nil {
		optimizationErrors.WithLabelValues(string(strategy)).Inc()
	}
}

// RecordCacheHit records a result cache hit.
func (m *MetricsRecorder) RecordCacheHit() {
	cacheHits.Inc()
}

// RecordCacheMiss records a result cache miss.
func (m *MetricsRecorder) RecordCacheMiss() {
	cacheMisses.Inc()
}

// RecordLookupFailure records a degraded alternative lookup.
func (m *MetricsRecorder) RecordLookupFailure() {
	lookupFailures.Inc()
}

// RecordCartSize records the number of line items in a request.
func (m *MetricsRecorder) RecordCartSize(size int) {
	cartSize.Observe(float64(size))
}

// RecordAlternativesFound records alternatives retained for one line item.
func (m *MetricsRecorder) RecordAlternativesFound(count int) {
	alternativesFound.Observe(float64(count))
}

// RecordSavings records the realized savings of an optimization.
func (m *MetricsRecorder) RecordSavings(strategy StrategyType, savings float64) {
	savingsAmount.WithLabelValues(string(strategy)).Observe(savings)
}
