package collector

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/domain/entity"
)

const (
	webSourceName  = "web"
	googleNewsBase = "https://news.google.com"
)

// Web searches Google News through its RSS endpoint. It is the mandatory source.
type Web struct {
	api     *apiClient
	baseURL string
	now     func() time.Time
}

// NewWeb creates the web collector.
func NewWeb(opts ...Option) *Web {
	o := buildOptions(googleNewsBase, 1, opts)
	return &Web{
		api:     newAPIClient(webSourceName, o),
		baseURL: strings.TrimRight(o.baseURL, "/"),
		now:     o.now,
	}
}

// Name returns "web".
func (w *Web) Name() string { return webSourceName }

// Collect returns up to limit news items matching query.
func (w *Web) Collect(ctx context.Context, query string, limit int) ([]entity.RawItem, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	body, err := w.api.get(ctx, w.baseURL+"/rss/search?"+params.Encode(), "application/rss+xml")
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("web: parse feed: %w", err)
	}

	retrievedAt := w.now()
	items := make([]entity.RawItem, 0, capLimit(len(feed.Items), limit))
	for i, it := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		item, err := feedItemToRaw(webSourceName, it, retrievedAt)
		if err != nil {
			slog.Debug("skipping feed entry",
				slog.String("source", webSourceName),
				slog.Int("index", i),
				slog.Any("error", err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func feedItemToRaw(source string, it *gofeed.Item, retrievedAt time.Time) (entity.RawItem, error) {
	// Content優先、なければDescriptionを使用
	body := it.Content
	if strings.TrimSpace(body) == "" {
		body = it.Description
	}
	title := collapseSpace(it.Title)
	item, err := entity.NewRawItem(source, strings.TrimSpace(it.Link), joinTitleBody(title, htmlToText(body)), retrievedAt)
	if err != nil {
		return entity.RawItem{}, err
	}
	item.Title = title
	if it.PublishedParsed != nil {
		published := it.PublishedParsed.UTC()
		item.PublishedAt = &published
	}
	if len(it.Authors) > 0 && it.Authors[0] != nil {
		item.Author = it.Authors[0].Name
	}
	return item, nil
}
