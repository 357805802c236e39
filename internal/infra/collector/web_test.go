package collector_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/domain/entity"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/infra/collector"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
)

const newsRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>"ai agents" - Google News</title>
    <link>https://news.google.com</link>
    <item>
      <title>Agents are eating software - Example Times</title>
      <link>https://news.example.com/agents</link>
      <pubDate>Mon, 03 Nov 2025 07:00:00 GMT</pubDate>
      <description>&lt;a href="https://news.example.com/agents"&gt;Agents are eating software&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;Example Times&lt;/font&gt;</description>
    </item>
    <item>
      <title>Entry without a link</title>
      <description>dropped</description>
    </item>
    <item>
      <title>Second story</title>
      <link>https://news.example.com/second</link>
      <description>Plain description text</description>
    </item>
    <item>
      <title>Third story</title>
      <link>https://news.example.com/third</link>
    </item>
  </channel>
</rss>`

func TestWeb_Collect(t *testing.T) {
	// Arrange
	var query string
	server, _ := serve(t, "application/rss+xml", newsRSS, 0, func(r *http.Request) {
		query = r.URL.Query().Get("q")
		assert.Equal(t, "/rss/search", r.URL.Path)
	})
	web := collector.NewWeb(testOptions(server)...)

	// Act
	items, err := web.Collect(context.Background(), "ai agents", 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ai agents", query)
	assert.Equal(t, "web", web.Name())
	require.Len(t, items, 3)

	first := items[0]
	assert.Equal(t, "web", first.Source)
	assert.Equal(t, "https://news.example.com/agents", first.SourceURL)
	assert.Equal(t, "Agents are eating software - Example Times\n\nAgents are eating software Example Times", first.Content)
	assert.Equal(t, entity.HashContent(first.Content), first.ContentHash)
	assert.Equal(t, fixedNow, first.RetrievedAt)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, 2025, first.PublishedAt.Year())
	assert.NoError(t, first.Validate())

	assert.Equal(t, "Second story\n\nPlain description text", items[1].Content)
	assert.Equal(t, "Third story", items[2].Content)
}

func TestWeb_Collect_RespectsLimit(t *testing.T) {
	server, _ := serve(t, "application/rss+xml", newsRSS, 0, nil)
	web := collector.NewWeb(testOptions(server)...)

	items, err := web.Collect(context.Background(), "ai", 2)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://news.example.com/second", items[1].SourceURL)
}

func TestWeb_Collect_RetriesTransientFailures(t *testing.T) {
	server, calls := serve(t, "application/rss+xml", newsRSS, 2, nil)
	web := collector.NewWeb(testOptions(server)...)

	items, err := web.Collect(context.Background(), "ai", 10)

	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWeb_Collect_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()
	web := collector.NewWeb(testOptions(server)...)

	_, err := web.Collect(context.Background(), "ai", 10)

	var httpErr *retry.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWeb_Collect_MalformedFeed(t *testing.T) {
	server, _ := serve(t, "text/html", "<html><body>captcha</body></html>", 0, nil)
	web := collector.NewWeb(testOptions(server)...)

	_, err := web.Collect(context.Background(), "ai", 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse feed")
}

func TestWeb_Collect_CancelledContext(t *testing.T) {
	server, _ := serve(t, "application/rss+xml", newsRSS, 0, nil)
	web := collector.NewWeb(testOptions(server)...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := web.Collect(ctx, "ai", 10)

	assert.ErrorIs(t, err, context.Canceled)
}
