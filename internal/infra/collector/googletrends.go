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
	trendsSourceName = "googletrends"
	trendsBaseURL    = "https://trends.google.com"
	trendsExploreURL = "https://trends.google.com/trends/explore"

	maxTrendingTopics   = 10
	trendingImpressions = 10000
	trendingRankStep    = 500
)

// GoogleTrends turns the daily trending searches for a region into items.
// The query does not filter topics; trending searches are global to the region.
type GoogleTrends struct {
	api     *apiClient
	baseURL string
	geo     string
	now     func() time.Time
}

// NewGoogleTrends creates the Google Trends collector for geo (default "US").
func NewGoogleTrends(geo string, opts ...Option) *GoogleTrends {
	if geo == "" {
		geo = "US"
	}
	o := buildOptions(trendsBaseURL, 1, opts)
	return &GoogleTrends{
		api:     newAPIClient(trendsSourceName, o),
		baseURL: strings.TrimRight(o.baseURL, "/"),
		geo:     strings.ToUpper(geo),
		now:     o.now,
	}
}

// Name returns "googletrends".
func (g *GoogleTrends) Name() string { return trendsSourceName }

// Collect returns up to min(limit, 10) trending topics. Impressions encode
// the rank: 10000 for the top topic, 500 less for each following one.
func (g *GoogleTrends) Collect(ctx context.Context, query string, limit int) ([]entity.RawItem, error) {
	body, err := g.api.get(ctx, g.baseURL+"/trending/rss?geo="+url.QueryEscape(g.geo), "application/rss+xml")
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("googletrends: parse feed: %w", err)
	}

	slog.Debug("trending searches fetched",
		slog.String("geo", g.geo),
		slog.String("query", query),
		slog.Int("topics", len(feed.Items)))

	retrievedAt := g.now()
	n := capLimit(min(len(feed.Items), maxTrendingTopics), limit)
	items := make([]entity.RawItem, 0, n)
	for idx, it := range feed.Items[:min(len(feed.Items), maxTrendingTopics)] {
		if len(items) >= n {
			break
		}
		topic := collapseSpace(it.Title)
		if topic == "" {
			continue
		}
		item, err := g.topicItem(topic, idx, retrievedAt)
		if err != nil {
			slog.Debug("skipping topic",
				slog.String("source", trendsSourceName),
				slog.String("topic", topic),
				slog.Any("error", err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (g *GoogleTrends) topicItem(topic string, rank int, retrievedAt time.Time) (entity.RawItem, error) {
	exploreURL := trendsExploreURL + "?q=" + url.QueryEscape(topic) + "&geo=" + url.QueryEscape(g.geo)
	content := fmt.Sprintf("'%s' is currently trending on Google in %s. This topic is gaining significant search interest.", topic, g.geo)

	item, err := entity.NewRawItem(trendsSourceName, exploreURL, content, retrievedAt)
	if err != nil {
		return entity.RawItem{}, err
	}
	item.Title = "Trending: " + topic
	item.Engagement.Impressions = entity.IntPtr(trendingImpressions - rank*trendingRankStep)
	return item, nil
}
