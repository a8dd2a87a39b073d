// Package metrics provides Prometheus metrics for the BrandPulse scoring
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus instruments for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Scoring metrics
	scoresComputed *prometheus.CounterVec
	finalScore     prometheus.Histogram
	confidence     prometheus.Histogram
	scoringLatency prometheus.Histogram
	scoresInFlight prometheus.Gauge

	// Collector metrics
	collectorRequests *prometheus.CounterVec
	collectorLatency  *prometheus.HistogramVec

	// LLM collaborator metrics
	llmRequests *prometheus.CounterVec
	llmLatency  prometheus.Histogram

	// Cache metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process metrics
	systemMemoryBytes prometheus.Gauge
	systemGoroutines  prometheus.Gauge
	gcPauseTime       prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// GetRegistry returns the registry backing the global manager, for serving
// via promhttp.
func GetRegistry() *prometheus.Registry { return customRegistry }

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "brandpulse",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoresComputed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "scores_computed_total",
			Help:      "Total number of artist scores computed, by letter grade",
		},
		[]string{"grade"},
	)

	m.finalScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "final_score",
		Help:      "Distribution of computed final scores (0-100)",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	m.confidence = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "confidence_level",
		Help:      "Distribution of confidence levels (weight mass of reporting sources)",
		Buckets:   []float64{0.1, 0.25, 0.5, 0.65, 0.75, 0.9, 0.95, 1},
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "latency_milliseconds",
		Help:      "End-to-end scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.scoresInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "in_flight",
		Help:      "Number of scoring requests currently being computed",
	})

	m.collectorRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "collector",
			Name:      "requests_total",
			Help:      "Collection attempts by source and resulting status",
		},
		[]string{"source", "status"},
	)

	m.collectorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "collector",
			Name:      "latency_milliseconds",
			Help:      "Collection latency in milliseconds by source",
			Buckets:   m.histogramBuckets,
		},
		[]string{"source"},
	)

	m.llmRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "LLM collaborator calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.llmLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "llm",
		Name:      "latency_milliseconds",
		Help:      "LLM collaborator call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Score cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Score cache misses",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by endpoint, method, and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Current number of goroutines",
	})

	m.gcPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers against the global manager.

// RecordScoreComputed counts a completed scoring request by grade and
// observes its final score and confidence.
func RecordScoreComputed(grade string, finalScore, confidence float64) {
	globalManager.scoresComputed.WithLabelValues(grade).Inc()
	globalManager.finalScore.Observe(finalScore)
	globalManager.confidence.Observe(confidence)
}

// RecordScoringLatency observes the end-to-end scoring latency.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// ScoreStarted marks a scoring request as in flight.
func ScoreStarted() { globalManager.scoresInFlight.Inc() }

// ScoreFinished marks a scoring request as done.
func ScoreFinished() { globalManager.scoresInFlight.Dec() }

// RecordCollectorRequest counts a collection attempt outcome.
func RecordCollectorRequest(source, status string) {
	globalManager.collectorRequests.WithLabelValues(source, status).Inc()
}

// RecordCollectorLatency observes one source's collection latency.
func RecordCollectorLatency(source string, latencyMs float64) {
	globalManager.collectorLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordLLMRequest counts an LLM collaborator call outcome.
func RecordLLMRequest(operation, outcome string) {
	globalManager.llmRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordLLMLatency observes an LLM collaborator call latency.
func RecordLLMLatency(latencyMs float64) {
	globalManager.llmLatency.Observe(latencyMs)
}

// RecordCacheHit counts a score cache hit.
func RecordCacheHit() { globalManager.cacheHits.Inc() }

// RecordCacheMiss counts a score cache miss.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the current heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryBytes.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutines.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.gcPauseTime.Observe(pauseMs)
}
