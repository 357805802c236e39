package collect

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/domain/entity"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/metrics"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/batch"
)

// ContentFetcher fetches full article text for a URL.
//
// Security considerations:
//   - Implementations MUST prevent Server-Side Request Forgery (SSRF) attacks
//   - Implementations MUST enforce size limits to prevent memory exhaustion
//   - Implementations MUST enforce timeouts to prevent resource starvation
//   - Implementations MUST validate redirect targets
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// Sentinel errors for content fetching operations.
var (
	// ErrInvalidURL indicates the URL format is invalid or uses an unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a private IP address (SSRF prevention).
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrReadabilityFailed indicates content extraction failed.
	ErrReadabilityFailed = errors.New("content extraction failed")
)

// EnhanceConfig controls content enhancement.
type EnhanceConfig struct {
	// Sources lists the sources whose items are enhanced. Empty means MandatorySource only.
	Sources     []string
	Parallelism int // Maximum number of concurrent content fetches
	Threshold   int // Minimum snippet length in runes before fetching is skipped
}

// DefaultEnhanceConfig returns the defaults used by the CLI.
func DefaultEnhanceConfig() EnhanceConfig {
	return EnhanceConfig{
		Sources:     []string{MandatorySource},
		Parallelism: 5,
		Threshold:   600,
	}
}

// Enhancer replaces short snippets with the full article text.
type Enhancer struct {
	fetcher ContentFetcher
	cfg     EnhanceConfig
}

// NewEnhancer returns an Enhancer, or nil when fetcher is nil (feature disabled).
func NewEnhancer(fetcher ContentFetcher, cfg EnhanceConfig) *Enhancer {
	if fetcher == nil {
		return nil
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = []string{MandatorySource}
	}
	return &Enhancer{fetcher: fetcher, cfg: cfg}
}

// Enhance returns items with short snippets replaced by fetched content.
// It never fails: every fetch error falls back to the original item,
// and output order matches input order.
func (e *Enhancer) Enhance(ctx context.Context, items []entity.RawItem) []entity.RawItem {
	if e == nil {
		return items
	}
	out, err := batch.Process(ctx, items, func(ctx context.Context, item entity.RawItem) (entity.RawItem, error) {
		return e.enhanceItem(ctx, item), nil
	}, e.cfg.Parallelism)
	if err != nil {
		// only reachable through cancellation; keep what the collectors gave us
		slog.Warn("content enhancement aborted", slog.Any("error", err))
		return items
	}
	return out
}

// enhanceItem implements the content enhancement logic:
//  1. Skip sources that are not enhanced
//  2. Skip snippets that are already long enough (>= threshold)
//  3. Fetch the full article from the item URL
//  4. Use fetched content only if it is longer than the snippet
//  5. Fall back to the snippet on any error
func (e *Enhancer) enhanceItem(ctx context.Context, item entity.RawItem) entity.RawItem {
	logger := slog.Default()

	enabled := false
	for _, s := range e.cfg.Sources {
		if s == item.Source {
			enabled = true
			break
		}
	}
	if !enabled {
		return item
	}

	snippetLength := utf8.RuneCountInString(item.Content)
	if snippetLength >= e.cfg.Threshold {
		logger.Debug("snippet sufficient, skipping fetch",
			slog.String("url", item.SourceURL),
			slog.Int("snippet_length", snippetLength),
			slog.Int("threshold", e.cfg.Threshold))
		metrics.RecordContentFetchSkipped()
		return item
	}

	fetchStart := time.Now()
	fullContent, err := e.fetcher.FetchContent(ctx, item.SourceURL)
	fetchDuration := time.Since(fetchStart)
	if err != nil {
		logger.Warn("content fetch failed, using snippet",
			slog.String("url", item.SourceURL),
			slog.Any("error", err),
			slog.Duration("fetch_duration", fetchDuration))
		metrics.RecordContentFetchFailed(fetchDuration)
		return item
	}

	fetchedLength := utf8.RuneCountInString(fullContent)
	metrics.RecordContentFetchSuccess(fetchDuration, fetchedLength)

	// truncated or poor extractions lose to the snippet
	if fetchedLength <= snippetLength {
		logger.Debug("fetched content shorter than snippet, keeping snippet",
			slog.String("url", item.SourceURL),
			slog.Int("snippet_length", snippetLength),
			slog.Int("fetched_length", fetchedLength))
		return item
	}

	logger.Info("content enhanced",
		slog.String("url", item.SourceURL),
		slog.Int("snippet_length", snippetLength),
		slog.Int("fetched_length", fetchedLength))
	return item.WithContent(fullContent)
}
