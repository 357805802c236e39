// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Collector metrics (runs, items, invalid items, duration)
//   - Deduplication removals per pass
//   - Retry and fallback tier outcomes
//   - Content fetch and generation metrics
//
// All metrics are automatically registered with the Prometheus default registry.
// The CLI dumps them with WriteTextfile when --metrics-file is set.
//
// Example usage:
//
//	start := time.Now()
//	items, err := c.Collect(ctx, query, limit)
//	metrics.RecordCollectorRun(c.Name(), time.Since(start), len(items), err)
package metrics
