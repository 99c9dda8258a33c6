// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Summarization metrics track the extractive and abstractive pipelines
var (
	// SummariesTotal counts summarization calls by method and status
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summaries_total",
			Help: "Total number of summarization calls",
		},
		[]string{"method", "status"}, // status: success, failure
	)

	// SummarizationDuration measures the time to produce a summary
	SummarizationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summarization_duration_seconds",
			Help:    "Time taken to summarize a document",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		},
		[]string{"method"},
	)

	// SummarySentenceCount observes the number of segmented sentences per document
	SummarySentenceCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summary_sentence_count",
			Help:    "Number of usable sentences in summarized documents",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// SummaryCompressionRatio observes the selected/total sentence percentage
	SummaryCompressionRatio = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summary_compression_ratio",
			Help:    "Percentage of sentences kept in the summary",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	// SummaryCacheTotal counts summary cache lookups by result
	SummaryCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_lookups_total",
			Help: "Total number of summary cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)

	// SummaryMethodFallbackTotal counts requests naming an unknown method
	SummaryMethodFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_method_fallback_total",
			Help: "Total number of requests with an unknown method that fell back to textrank",
		},
	)

	// AbstractiveChunks observes the number of chunks sent to the generator per document
	AbstractiveChunks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "abstractive_chunks",
			Help:    "Number of chunks generated per abstractive summary",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
		},
	)
)

// Digest metrics track the scheduled feed digest
var (
	// DigestRunDuration measures one digest run over all feeds
	DigestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_run_duration_seconds",
			Help:    "Time taken by a digest run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	// DigestItemsTotal counts feed items by outcome
	DigestItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_items_total",
			Help: "Total number of feed items processed by the digest",
		},
		[]string{"status"}, // status: stored, duplicate, failed
	)

	// FeedReadErrors counts feed read failures
	FeedReadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_read_errors_total",
			Help: "Total number of feed read errors",
		},
		[]string{"error_type"},
	)

	// DigestsTotal tracks the number of stored digests
	DigestsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digests_total",
			Help: "Total number of digests in the database",
		},
	)
)

// Content fetch metrics track article acquisition
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in bytes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "content_fetch_size_bytes",
			Help: "Fetched article content size in bytes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600, 819200,
				1638400, 3276800, 6553600, 10485760, // up to 10MB
			},
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// Circuit breakers of outbound calls, labeled by breaker name.
var (
	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state changes by target state",
		},
		[]string{"name", "to"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
