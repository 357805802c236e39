package collector_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/infra/collector"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
)

var fixedNow = time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)

// testOptions points a collector at server with fast retries and no pacing.
func testOptions(server *httptest.Server) []collector.Option {
	return []collector.Option{
		collector.WithBaseURL(server.URL),
		collector.WithHTTPClient(server.Client()),
		collector.WithRetryConfig(retry.Config{MaxRetries: 2, BaseDelay: time.Millisecond}),
		collector.WithRateLimit(0, 1),
		collector.WithClock(func() time.Time { return fixedNow }),
	}
}

// serve returns a server that replies with body; the first failures requests get status 503.
func serve(t *testing.T, contentType, body string, failures int32, seen func(*http.Request)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if seen != nil {
			seen(r)
		}
		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if _, err := w.Write([]byte(body)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}
