// Package tracing provides OpenTelemetry tracing integration.
//
// InitProvider installs the SDK tracer provider at process start; Middleware
// opens a server span per HTTP request and GetTracer is used by the use cases
// to open child spans around pipeline stages.
//
//	shutdown := tracing.InitProvider(tracing.ProviderConfig{ServiceName: "haberozet-api"})
//	defer shutdown(context.Background())
package tracing
