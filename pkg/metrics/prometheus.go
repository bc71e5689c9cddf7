// Package metrics provides Prometheus metrics for the getaway recommender.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for recommendation requests.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Manager owns the recommender's Prometheus metrics.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	customLabels   map[string]string
	registry       *prometheus.Registry

	// Query metrics
	recommendations       *prometheus.CounterVec
	recommendationLatency prometheus.Histogram
	resultSize            prometheus.Histogram
	candidatesInRadius    prometheus.Histogram

	// Cache metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Table metrics
	tableRows       prometheus.Gauge
	tableCities     prometheus.Gauge
	tableLoadErrors prometheus.Counter
	tableLoadTime   prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "getaway",
		subsystem:      "recommender",
		latencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		customLabels:   make(map[string]string),
		registry:       prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.recommendations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "requests_total",
			Help:        "Total number of recommendation requests by outcome",
			ConstLabels: labels,
		},
		[]string{"outcome"},
	)

	m.recommendationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "latency_milliseconds",
		Help:        "Recommendation latency in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	})

	m.resultSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "result_rows",
		Help:        "Number of rows returned per successful request",
		Buckets:     prometheus.LinearBuckets(0, 1, 11),
		ConstLabels: labels,
	})

	m.candidatesInRadius = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "candidates_in_radius",
		Help:        "Number of candidates within the search radius before truncation",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		ConstLabels: labels,
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_hits_total",
		Help:        "Total number of requests answered from the result cache",
		ConstLabels: labels,
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_misses_total",
		Help:        "Total number of requests computed from the table",
		ConstLabels: labels,
	})

	m.tableRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "table_rows",
		Help:        "Rows in the loaded destination table",
		ConstLabels: labels,
	})

	m.tableCities = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "table_cities",
		Help:        "Distinct cities in the loaded destination table",
		ConstLabels: labels,
	})

	m.tableLoadErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "table_load_errors_total",
		Help:        "Total number of failed table loads",
		ConstLabels: labels,
	})

	m.tableLoadTime = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "table_load_duration_milliseconds",
		Help:        "Duration of the last table load in milliseconds",
		ConstLabels: labels,
	})
}

// Registry returns the registry the manager's metrics live in.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRecommendation counts a request with its outcome and latency.
func (m *Manager) RecordRecommendation(outcome string, latencyMs float64) {
	m.recommendations.WithLabelValues(outcome).Inc()
	m.recommendationLatency.Observe(latencyMs)
}

// RecordResult records the size of a successful result and the candidate pool.
func (m *Manager) RecordResult(rows, candidates int) {
	m.resultSize.Observe(float64(rows))
	m.candidatesInRadius.Observe(float64(candidates))
}

// RecordCacheHit increments the cache hit counter.
func (m *Manager) RecordCacheHit() { m.cacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func (m *Manager) RecordCacheMiss() { m.cacheMisses.Inc() }

// UpdateTable sets the table size gauges after a load.
func (m *Manager) UpdateTable(rows, cities int, loadMs float64) {
	m.tableRows.Set(float64(rows))
	m.tableCities.Set(float64(cities))
	m.tableLoadTime.Set(loadMs)
}

// RecordTableLoadError increments the table load error counter.
func (m *Manager) RecordTableLoadError() { m.tableLoadErrors.Inc() }

// WriteTextfile writes the registry in Prometheus text format to path,
// for pickup by a node_exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExport, path, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager {
	return globalManager
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
