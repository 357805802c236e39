// Package resilience provides reliability and fault tolerance patterns for the application.
//
// The package supports:
//   - Circuit breakers for external API calls (collectors, Claude, OpenAI, content fetch)
//   - Retry logic with exponential backoff, jitter and per-attempt timeouts
//   - Bounded-concurrency batch processing with order-preserving results
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.CollectorConfig("reddit"))
//	res := retry.DoWithTimeout(ctx, retry.CollectorConfig(), 10*time.Second,
//	    func(ctx context.Context) ([]byte, error) {
//	        return circuitbreaker.Call(cb, func() ([]byte, error) { return fetch(ctx) })
//	    })
//
//	enhanced, err := batch.Process(ctx, items, enhance, 5)
package resilience
