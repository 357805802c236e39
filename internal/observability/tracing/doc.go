// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created through the global otel TracerProvider. The CLI does not
// install an exporter, so spans are no-ops unless a provider is registered
// (tests register an in-memory one via tracetest).
//
// Example usage:
//
//	ctx, span := tracing.StartSpan(ctx, "collect.all", attribute.String("query", q))
//	defer func() { tracing.EndSpan(span, err) }()
package tracing
