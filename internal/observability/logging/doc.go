// Package logging wraps log/slog with the conventions used across the
// binaries: JSON output for services, text output on stderr for the CLI,
// LOG_LEVEL driven levels and request/trace ID propagation.
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, slog.Default()).Info("processing request")
//	}
package logging
