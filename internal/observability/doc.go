// Package observability provides structured logging, Prometheus metrics and
// OpenTelemetry tracing for the API, the CLI and the digest worker.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry tracer provider and HTTP middleware
package observability
