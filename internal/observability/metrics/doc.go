// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Summarization metrics (calls, latency, compression, cache)
//   - Content fetch and digest metrics
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	start := time.Now()
//	res := service.Summarize(ctx, req)
//	metrics.RecordSummary("textrank", "success", time.Since(start))
package metrics
