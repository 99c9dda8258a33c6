package metrics

import (
	"time"
)

// RecordSummary records the outcome and latency of a summarization call.
// Status should be either "success" or "failure".
func RecordSummary(method, status string, duration time.Duration) {
	SummariesTotal.WithLabelValues(method, status).Inc()
	SummarizationDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordSummaryShape records the size of a successful summary.
func RecordSummaryShape(sentenceCount int, compressionRatio float64) {
	SummarySentenceCount.Observe(float64(sentenceCount))
	SummaryCompressionRatio.Observe(compressionRatio)
}

// RecordSummaryCache records a summary cache lookup.
func RecordSummaryCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	SummaryCacheTotal.WithLabelValues(result).Inc()
}

// RecordMethodFallback records a request whose method name was not recognized.
func RecordMethodFallback() {
	SummaryMethodFallbackTotal.Inc()
}

// RecordAbstractiveChunks records how many chunks one abstractive summary needed.
func RecordAbstractiveChunks(n int) {
	AbstractiveChunks.Observe(float64(n))
}

// RecordContentFetchSuccess records a successful content fetch operation.
// This tracks both the duration and size of fetched content.
//
// Example:
//
//	start := time.Now()
//	doc, err := fetcher.Fetch(ctx, url)
//	if err == nil {
//	    RecordContentFetchSuccess(time.Since(start), len(doc.Text))
//	}
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a feed item whose embedded content was
// used instead of fetching the article page.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDigestRun records the duration of a digest run and its item outcomes.
func RecordDigestRun(duration time.Duration, stored, duplicates, failed int64) {
	DigestRunDuration.Observe(duration.Seconds())
	DigestItemsTotal.WithLabelValues("stored").Add(float64(stored))
	DigestItemsTotal.WithLabelValues("duplicate").Add(float64(duplicates))
	DigestItemsTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordFeedReadError records a failed feed read.
// errorType is a short classification such as "timeout" or "parse".
func RecordFeedReadError(errorType string) {
	FeedReadErrors.WithLabelValues(errorType).Inc()
}

// UpdateDigestsTotal updates the total count of stored digests.
func UpdateDigestsTotal(count int) {
	DigestsTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "list_digests", "insert_digest").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// RecordCircuitBreakerState records a breaker transition. state follows the
// gobreaker numbering: 0 closed, 1 half-open, 2 open.
func RecordCircuitBreakerState(name string, state int, to string) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, to).Inc()
}
