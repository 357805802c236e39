package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/domain/entity"
)

const (
	hnSourceName  = "hackernews"
	hnAlgoliaBase = "https://hn.algolia.com/api/v1"
	hnItemURL     = "https://news.ycombinator.com/item?id="
)

// HackerNews searches stories through the Algolia HN Search API.
type HackerNews struct {
	api     *apiClient
	baseURL string
	now     func() time.Time
}

// hnHit represents a single story from the search API.
type hnHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      *int   `json:"points"`
	NumComments *int   `json:"num_comments"`
	CreatedAtI  int64  `json:"created_at_i"`
	StoryText   string `json:"story_text"`
}

type hnSearchResponse struct {
	Hits []hnHit `json:"hits"`
}

// NewHackerNews creates the Hacker News collector.
func NewHackerNews(opts ...Option) *HackerNews {
	o := buildOptions(hnAlgoliaBase, 5, opts)
	return &HackerNews{
		api:     newAPIClient(hnSourceName, o),
		baseURL: strings.TrimRight(o.baseURL, "/"),
		now:     o.now,
	}
}

// Name returns "hackernews".
func (h *HackerNews) Name() string { return hnSourceName }

// Collect returns up to limit stories matching query, most relevant first.
func (h *HackerNews) Collect(ctx context.Context, query string, limit int) ([]entity.RawItem, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("tags", "story")
	if limit > 0 {
		params.Set("hitsPerPage", strconv.Itoa(limit))
	}

	body, err := h.api.get(ctx, h.baseURL+"/search?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var resp hnSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("hackernews: decode response: %w", err)
	}

	retrievedAt := h.now()
	items := make([]entity.RawItem, 0, capLimit(len(resp.Hits), limit))
	for _, hit := range resp.Hits {
		if limit > 0 && len(items) >= limit {
			break
		}
		item, err := hit.toRawItem(retrievedAt)
		if err != nil {
			slog.Debug("skipping story",
				slog.String("source", hnSourceName),
				slog.String("object_id", hit.ObjectID),
				slog.Any("error", err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (hit hnHit) toRawItem(retrievedAt time.Time) (entity.RawItem, error) {
	discussion := hnItemURL + hit.ObjectID
	link := strings.TrimSpace(hit.URL)
	if link == "" {
		// Ask HN and similar text posts have no outbound link
		link = discussion
	}

	title := collapseSpace(hit.Title)
	item, err := entity.NewRawItem(hnSourceName, link, joinTitleBody(title, htmlToText(hit.StoryText)), retrievedAt)
	if err != nil {
		return entity.RawItem{}, err
	}
	item.Title = title
	item.Author = hit.Author
	item.AuthorHandle = hit.Author
	if link != discussion {
		item.Citations = append(item.Citations, discussion)
	}
	if hit.CreatedAtI > 0 {
		published := time.Unix(hit.CreatedAtI, 0).UTC()
		item.PublishedAt = &published
	}
	item.Engagement.Likes = hit.Points
	item.Engagement.Comments = hit.NumComments
	return item, nil
}
