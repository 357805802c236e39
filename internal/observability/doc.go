// Package observability provides the logging, metrics and tracing used across
// the collection and generation pipeline.
//
// Subpackages:
//   - logging: Structured logging utilities with slog and tint
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry span helpers
package observability
