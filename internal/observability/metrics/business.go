package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordCollectorRun records the result of one collector invocation.
func RecordCollectorRun(source string, duration time.Duration, items int, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	CollectorRunsTotal.WithLabelValues(source, result).Inc()
	CollectorDuration.WithLabelValues(source).Observe(duration.Seconds())
	if items > 0 {
		CollectorItemsTotal.WithLabelValues(source).Add(float64(items))
	}
}

// RecordInvalidItems records items a collector returned that failed validation.
func RecordInvalidItems(source string, count int) {
	if count <= 0 {
		return
	}
	CollectorInvalidItemsTotal.WithLabelValues(source).Add(float64(count))
}

// RecordCollection records the duration of the whole collection pipeline.
// Result should be one of "success", "failure" or "timeout".
func RecordCollection(result string, duration time.Duration) {
	CollectionDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordDedup records the removals of both deduplication passes.
func RecordDedup(hashRemoved, similarityRemoved int) {
	DedupRemovedTotal.WithLabelValues("hash").Add(float64(hashRemoved))
	DedupRemovedTotal.WithLabelValues("similarity").Add(float64(similarityRemoved))
}

// RecordRetryAttempt records a single attempt of the retry primitive.
// Result should be "success", "retry" or "failure".
func RecordRetryAttempt(operation, result string) {
	if operation == "" {
		operation = "unnamed"
	}
	RetryAttemptsTotal.WithLabelValues(operation, result).Inc()
}

// RecordTierOutcome records how a fallback tier ended.
func RecordTierOutcome(router, tier, outcome string) {
	FallbackTierOutcomesTotal.WithLabelValues(router, tier, outcome).Inc()
}

// RecordRoute records the duration of a full route and the tier that served it.
func RecordRoute(router, tier string, duration time.Duration) {
	FallbackRouteDuration.WithLabelValues(router, tier).Observe(duration.Seconds())
}

// RecordContentFetchSuccess records a successful content fetch operation.
// This tracks both the duration and size of fetched content.
//
// Example:
//
//	start := time.Now()
//	content, err := fetcher.FetchContent(ctx, url)
//	if err == nil {
//	    RecordContentFetchSuccess(time.Since(start), len(content))
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

// RecordContentFetchSkipped records a skipped content fetch operation.
// This occurs when the snippet is already long enough and fetching is unnecessary.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDraftGenerated records a generated draft and the tier that produced it.
func RecordDraftGenerated(tier string) {
	DraftsGeneratedTotal.WithLabelValues(tier).Inc()
}

// RecordImageGenerated records a generated image and the tier that produced it.
func RecordImageGenerated(tier string) {
	ImagesGeneratedTotal.WithLabelValues(tier).Inc()
}

// RecordBreakerState records a circuit breaker transition. state follows
// gobreaker's numbering: 0 closed, 1 half-open, 2 open.
func RecordBreakerState(breaker string, state int) {
	CircuitBreakerState.WithLabelValues(breaker).Set(float64(state))
}

// WriteTextfile dumps every registered metric to path in the Prometheus
// text exposition format. The CLI is short-lived, so this replaces a /metrics endpoint.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
