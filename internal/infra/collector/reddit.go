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
	redditSourceName = "reddit"
	redditBaseURL    = "https://www.reddit.com"
)

// Reddit searches posts across public subreddits via Reddit's JSON API.
type Reddit struct {
	api     *apiClient
	baseURL string
	window  string
	now     func() time.Time
}

type redditListing struct {
	Data struct {
		Children []redditChild `json:"children"`
	} `json:"data"`
}

type redditChild struct {
	Data redditPost `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Score       *int    `json:"score"`
	NumComments *int    `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Over18      bool    `json:"over_18"`
	IsSelf      bool    `json:"is_self"`
}

// NewReddit creates the Reddit collector. Search covers the past week.
func NewReddit(opts ...Option) *Reddit {
	o := buildOptions(redditBaseURL, 1, opts)
	return &Reddit{
		api:     newAPIClient(redditSourceName, o),
		baseURL: strings.TrimRight(o.baseURL, "/"),
		window:  "week",
		now:     o.now,
	}
}

// Name returns "reddit".
func (r *Reddit) Name() string { return redditSourceName }

// Collect returns up to limit posts matching query. NSFW posts are skipped.
func (r *Reddit) Collect(ctx context.Context, query string, limit int) ([]entity.RawItem, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "relevance")
	params.Set("t", r.window)
	params.Set("raw_json", "1")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := r.api.get(ctx, r.baseURL+"/search.json?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("reddit: decode listing: %w", err)
	}

	retrievedAt := r.now()
	items := make([]entity.RawItem, 0, capLimit(len(listing.Data.Children), limit))
	for _, child := range listing.Data.Children {
		if limit > 0 && len(items) >= limit {
			break
		}
		p := child.Data
		if p.Over18 {
			continue
		}
		item, err := r.toRawItem(p, retrievedAt)
		if err != nil {
			slog.Debug("skipping post",
				slog.String("source", redditSourceName),
				slog.String("id", p.ID),
				slog.Any("error", err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Reddit) toRawItem(p redditPost, retrievedAt time.Time) (entity.RawItem, error) {
	permalink := r.baseURL + p.Permalink
	title := collapseSpace(p.Title)
	item, err := entity.NewRawItem(redditSourceName, permalink, joinTitleBody(title, p.Selftext), retrievedAt)
	if err != nil {
		return entity.RawItem{}, err
	}
	item.Title = title
	item.Author = p.Author
	if p.Author != "" {
		item.AuthorHandle = "u/" + p.Author
	}
	if link := strings.TrimSpace(p.URL); !p.IsSelf && link != "" && link != permalink {
		item.Citations = append(item.Citations, link)
	}
	if p.CreatedUTC > 0 {
		published := time.Unix(int64(p.CreatedUTC), 0).UTC()
		item.PublishedAt = &published
	}
	item.Engagement.Likes = p.Score
	item.Engagement.Comments = p.NumComments
	return item, nil
}
