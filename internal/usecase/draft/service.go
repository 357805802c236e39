// Package draft turns a topic into a post draft: it collects and
// consolidates source material, builds a prompt from the top items and
// routes it through the model tiers, ending with an extractive draft that
// needs no model at all.
package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/domain/entity"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/logging"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/metrics"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/collect"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
)

// ExtractiveTierName is the name of the model-free last tier.
const ExtractiveTierName = "extractive"

// ErrEmptyQuery is returned when the topic is blank.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Generator is one model tier.
type Generator interface {
	Name() string
	Enabled() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Collector gathers and consolidates source material for a query.
type Collector interface {
	CollectAll(ctx context.Context, query string, cfg collect.Config) (*collect.Result, error)
}

// Config controls draft generation.
type Config struct {
	Collect collect.Config

	// PromptItems is how many of the consolidated items go into the prompt.
	PromptItems int

	// SnippetChars truncates each item's content in the prompt (in runes).
	SnippetChars int

	// ExtractiveItems is how many items the extractive draft lists.
	ExtractiveItems int
}

// DefaultConfig returns defaults tuned for a single post.
func DefaultConfig() Config {
	return Config{
		Collect: collect.Config{
			MaxPerSource: 25,
			MaxTotal:     50,
			Timeout:      90 * time.Second,
		},
		PromptItems:     12,
		SnippetChars:    600,
		ExtractiveItems: 5,
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if err := c.Collect.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.PromptItems <= 0 {
		errs = append(errs, fmt.Errorf("prompt items must be positive, got %d", c.PromptItems))
	}
	if c.SnippetChars <= 0 {
		errs = append(errs, fmt.Errorf("snippet chars must be positive, got %d", c.SnippetChars))
	}
	if c.ExtractiveItems <= 0 {
		errs = append(errs, fmt.Errorf("extractive items must be positive, got %d", c.ExtractiveItems))
	}
	return errors.Join(errs...)
}

// SourceRef identifies an item the draft was built from. Index matches the
// bracketed citation number used in the prompt.
type SourceRef struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url"`
}

// Draft is a generated post.
type Draft struct {
	Query          string           `json:"query"`
	Text           string           `json:"text"`
	Tier           string           `json:"tier"`
	TiersAttempted []string         `json:"tiersAttempted"`
	TierFailures   []string         `json:"tierFailures,omitempty"`
	Sources        []SourceRef      `json:"sources"`
	Collection     collect.Metadata `json:"collection"`
	GeneratedAt    time.Time        `json:"generatedAt"`
}

// Service generates drafts.
type Service struct {
	collector  Collector
	generators []Generator
	config     Config
	now        func() time.Time
}

// NewService creates a draft Service. generators are tried in order before
// the extractive tier.
func NewService(collector Collector, generators []Generator, config Config) *Service {
	return &Service{
		collector:  collector,
		generators: generators,
		config:     config,
		now:        time.Now,
	}
}

// Generate collects material for query and produces a draft.
//
// Collection errors are returned wrapped and unchanged in kind, so callers
// can match *collect.CollectionError. Model tier failures are absorbed by
// the router and listed in Draft.TierFailures; the extractive tier always
// produces a draft once collection has succeeded.
//
// Example:
//
//	d, err := svc.Generate(ctx, "AI agents in customer support")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(d.Text)
func (s *Service) Generate(ctx context.Context, query string) (*Draft, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	logger := logging.FromContext(ctx).With(slog.String("query", query))

	collected, err := s.collector.CollectAll(ctx, query, s.config.Collect)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	top := topItems(collected.Items, s.config.PromptItems)
	prompt := BuildPrompt(query, top, s.config.SnippetChars)

	tiers := make([]fallback.Tier[string], 0, len(s.generators)+1)
	for _, g := range s.generators {
		tiers = append(tiers, fallback.Tier[string]{
			Name:    g.Name(),
			Enabled: g.Enabled(),
			Call: func(ctx context.Context) (string, error) {
				return g.Generate(ctx, prompt)
			},
			Recoverable: fallback.MeteredTierRecoverable,
		})
	}
	tiers = append(tiers, fallback.Tier[string]{
		Name:    ExtractiveTierName,
		Enabled: true,
		Call: func(context.Context) (string, error) {
			return Extractive(query, top, s.config.ExtractiveItems)
		},
		// an empty item set exhausts the chain instead of aborting it
		Recoverable: fallback.ToolTierRecoverable,
	})

	routed, err := fallback.Route(ctx, tiers, fallback.WithName("draft"))
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}
	metrics.RecordDraftGenerated(routed.Tier)

	failures := make([]string, len(routed.Recovered))
	for i, f := range routed.Recovered {
		failures[i] = f.String()
	}

	logger.InfoContext(ctx, "draft generated",
		slog.String("tier", routed.Tier),
		slog.Any("tiers_attempted", routed.TiersAttempted),
		slog.Int("items", len(collected.Items)))

	return &Draft{
		Query:          query,
		Text:           routed.Value,
		Tier:           routed.Tier,
		TiersAttempted: routed.TiersAttempted,
		TierFailures:   failures,
		Sources:        sourceRefs(top),
		Collection:     collected.Metadata,
		GeneratedAt:    s.now().UTC(),
	}, nil
}

func topItems(items []entity.RawItem, n int) []entity.RawItem {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func sourceRefs(items []entity.RawItem) []SourceRef {
	refs := make([]SourceRef, len(items))
	for i, it := range items {
		refs[i] = SourceRef{Index: i + 1, Source: it.Source, Title: it.Title, URL: it.SourceURL}
	}
	return refs
}
