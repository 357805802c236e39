// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collection metrics track collector behavior and pipeline throughput
var (
	// CollectorRunsTotal counts collector invocations by source and result
	CollectorRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_runs_total",
			Help: "Total number of collector invocations",
		},
		[]string{"source", "result"}, // result: success, failure
	)

	// CollectorItemsTotal counts raw items returned by each collector
	CollectorItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_items_total",
			Help: "Total number of items returned by collectors",
		},
		[]string{"source"},
	)

	// CollectorInvalidItemsTotal counts items skipped at validation
	CollectorInvalidItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_invalid_items_total",
			Help: "Total number of collected items skipped because they failed validation",
		},
		[]string{"source"},
	)

	// CollectorDuration measures the time each collector takes
	CollectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collector_duration_seconds",
			Help:    "Time taken by a single collector invocation",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// CollectionDuration measures the whole collect-all pipeline
	CollectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collection_duration_seconds",
			Help:    "Time taken by the collection pipeline",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"result"}, // result: success, failure, timeout
	)

	// DedupRemovedTotal counts items removed by deduplication
	DedupRemovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_removed_total",
			Help: "Total number of items removed by deduplication",
		},
		[]string{"pass"}, // pass: hash, similarity
	)
)

// Resilience metrics track retries and fallback routing
var (
	// RetryAttemptsTotal counts retry loop outcomes per operation
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of attempts made by the retry primitive",
		},
		[]string{"operation", "result"}, // result: success, retry, failure
	)

	// FallbackTierOutcomesTotal counts router tier outcomes
	FallbackTierOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_tier_outcomes_total",
			Help: "Total number of fallback tier outcomes",
		},
		[]string{"router", "tier", "outcome"}, // outcome: success, recoverable, fatal, skipped
	)

	// FallbackRouteDuration measures a full route across tiers
	FallbackRouteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fallback_route_duration_seconds",
			Help:    "Time taken to route a request through the fallback tiers",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"router", "tier"},
	)
)

// Content fetch metrics track readability enhancement of short items
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures content fetch duration
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in characters
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "content_fetch_size_bytes",
			Help: "Size of fetched article content in characters",
			Buckets: []float64{
				500, 1000, 2000, 5000, 10000, 20000, 50000, 100000,
			},
		},
	)
)

// Generation metrics track model and image outputs
var (
	// DraftsGeneratedTotal counts generated drafts by tier
	DraftsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drafts_generated_total",
			Help: "Total number of post drafts generated",
		},
		[]string{"tier"},
	)

	// ImagesGeneratedTotal counts generated images by tier
	ImagesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "images_generated_total",
			Help: "Total number of images generated",
		},
		[]string{"tier"},
	)
)

// CircuitBreakerState is 0 closed, 1 half-open, 2 open
var CircuitBreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current circuit breaker state (0 closed, 1 half-open, 2 open)",
	},
	[]string{"breaker"},
)
