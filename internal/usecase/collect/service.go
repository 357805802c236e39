package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/domain/entity"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/logging"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/metrics"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/tracing"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/dedup"
)

// Stage names the step a collection run is in. Transitions are logged at debug level.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageCollecting    Stage = "collecting"
	StagePartitioning  Stage = "partitioning"
	StageCapPerSource  Stage = "cap_per_source"
	StageEnhancing     Stage = "enhancing"
	StageDeduplicating Stage = "deduplicating"
	StageCapGlobal     Stage = "cap_global"
	StageDone          Stage = "done"
	StageFatal         Stage = "fatal"
)

// Config controls a single collection run.
type Config struct {
	// Sources lists the optional sources to run. The mandatory source always runs.
	Sources      []string
	MaxPerSource int
	MaxTotal     int
	Timeout      time.Duration
}

// Validate checks that every limit is positive.
func (c Config) Validate() error {
	var errs []error
	if c.MaxPerSource <= 0 {
		errs = append(errs, fmt.Errorf("maxPerSource must be positive, got %d", c.MaxPerSource))
	}
	if c.MaxTotal <= 0 {
		errs = append(errs, fmt.Errorf("maxTotal must be positive, got %d", c.MaxTotal))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Metadata describes how a run's final item set was produced.
type Metadata struct {
	PerSourceCounts             map[string]int `json:"perSourceCounts"`
	DuplicatesRemoved           int            `json:"duplicatesRemoved"`
	HashDuplicatesRemoved       int            `json:"hashDuplicatesRemoved"`
	SimilarityDuplicatesRemoved int            `json:"similarityDuplicatesRemoved"`
	NonFatalErrors              []SourceError  `json:"nonFatalErrors"`
	InvalidItemsSkipped         int            `json:"invalidItemsSkipped"`
	SourcesAttempted            []string       `json:"sourcesAttempted"`
	Duration                    time.Duration  `json:"duration"`
}

// Result is the consolidated output of a run.
type Result struct {
	Items    []entity.RawItem `json:"items"`
	Metadata Metadata         `json:"metadata"`
}

// Service orchestrates the mandatory and optional collectors.
type Service struct {
	mandatory Collector
	optional  []Collector
	enhancer  *Enhancer
	dedup     dedup.Engine
}

// Option configures a Service.
type Option func(*Service)

// WithOptional registers optional collectors. Registration order is the
// order items are concatenated in, after the mandatory source.
func WithOptional(collectors ...Collector) Option {
	return func(s *Service) { s.optional = append(s.optional, collectors...) }
}

// WithEnhancer enables readability enhancement of short items before deduplication.
func WithEnhancer(e *Enhancer) Option {
	return func(s *Service) { s.enhancer = e }
}

// WithDedupEngine overrides the default deduplication engine.
func WithDedupEngine(e dedup.Engine) Option {
	return func(s *Service) { s.dedup = e }
}

// NewService creates a collection Service. mandatory must report MandatorySource as its name.
func NewService(mandatory Collector, opts ...Option) (*Service, error) {
	if mandatory == nil {
		return nil, fmt.Errorf("%w: mandatory collector is required", ErrInvalidConfig)
	}
	if mandatory.Name() != MandatorySource {
		return nil, fmt.Errorf("%w: mandatory collector must be %q, got %q", ErrInvalidConfig, MandatorySource, mandatory.Name())
	}
	s := &Service{mandatory: mandatory}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sources returns every registered source name in registration order.
func (s *Service) Sources() []string {
	names := []string{s.mandatory.Name()}
	for _, c := range s.optional {
		names = append(names, c.Name())
	}
	return names
}

// CollectAll runs the mandatory collector and every requested optional
// collector concurrently under one deadline, then partitions, validates,
// caps, deduplicates and caps again.
//
// It returns a *CollectionError when the mandatory collector fails, when
// the deadline expires first, or when no item survives.
func (s *Service) CollectAll(ctx context.Context, query string, cfg Config) (res *Result, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	logger := logging.FromContext(ctx).With(slog.String("component", "collect"))

	ctx, span := tracing.StartSpan(ctx, "collect.all",
		attribute.String("query", query),
		attribute.Int("max_per_source", cfg.MaxPerSource),
		attribute.Int("max_total", cfg.MaxTotal))
	defer func() {
		if res != nil {
			span.SetAttributes(attribute.Int("items", len(res.Items)))
		}
		tracing.EndSpan(span, err)
	}()

	stage := StageIdle
	transition := func(next Stage) {
		logger.Debug("collection stage transition",
			slog.String("from", string(stage)),
			slog.String("to", string(next)))
		stage = next
	}

	// Step 1: active collectors, mandatory first then registration order
	active, warnings := s.activeCollectors(cfg.Sources)
	for _, w := range warnings {
		logger.Warn("ignoring unknown source", slog.String("source", w.Source))
	}

	// Step 2: run everything under the outer deadline
	transition(StageCollecting)
	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	// abort ends the run from whichever stage the deadline or cancellation hit
	abort := func(err error) error {
		failed := stage
		transition(StageFatal)
		cause := err
		result := "failure"
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			cause = fmt.Errorf("%w after %s", ErrPipelineTimeout, cfg.Timeout)
			result = "timeout"
		}
		metrics.RecordCollection(result, time.Since(start))
		logger.Error("collection aborted",
			slog.String("stage", string(failed)),
			slog.Any("error", cause))
		return &CollectionError{Component: "pipeline", Cause: cause, Warnings: warnings}
	}

	outcomes, err := s.runCollectors(runCtx, active, query, cfg.MaxPerSource)
	if err != nil {
		return nil, abort(err)
	}

	// Step 3: partition
	transition(StagePartitioning)
	meta := Metadata{PerSourceCounts: map[string]int{}}
	var survivors []Outcome
	for _, o := range outcomes {
		meta.SourcesAttempted = append(meta.SourcesAttempted, o.Source)
		if o.Failed() {
			if o.Required {
				continue
			}
			logger.Warn("optional collector failed, excluding source",
				slog.String("source", o.Source),
				slog.Any("error", o.Err))
			warnings = append(warnings, newSourceError(o.Source, o.Err))
			continue
		}
		valid, invalid := validItems(o.Items)
		if invalid > 0 {
			logger.Warn("skipping invalid items",
				slog.String("source", o.Source),
				slog.Int("invalid", invalid))
			metrics.RecordInvalidItems(o.Source, invalid)
			meta.InvalidItemsSkipped += invalid
		}
		o.Items = valid
		survivors = append(survivors, o)
	}
	if mandatory := outcomes[0]; mandatory.Failed() {
		transition(StageFatal)
		metrics.RecordCollection("failure", time.Since(start))
		logger.Error("mandatory collector failed",
			slog.String("source", mandatory.Source),
			slog.Any("error", mandatory.Err))
		return nil, &CollectionError{
			Component: "collector:" + mandatory.Source,
			Cause:     mandatory.Err,
			Warnings:  warnings,
		}
	}
	meta.NonFatalErrors = warnings

	// Step 4: per-source cap, positional
	transition(StageCapPerSource)
	var merged []entity.RawItem
	for _, o := range survivors {
		items := o.Items
		if len(items) > cfg.MaxPerSource {
			items = items[:cfg.MaxPerSource]
		}
		merged = append(merged, items...)
	}

	if s.enhancer != nil {
		transition(StageEnhancing)
		merged = s.enhancer.Enhance(runCtx, merged)
		// Enhance falls back to snippets on cancellation; the run itself must not
		if err := runCtx.Err(); err != nil {
			return nil, abort(err)
		}
	}

	// Step 5: deduplicate the concatenation
	transition(StageDeduplicating)
	deduped := s.dedup.Deduplicate(merged)
	meta.HashDuplicatesRemoved = deduped.HashDuplicatesRemoved
	meta.SimilarityDuplicatesRemoved = deduped.SimilarityDuplicatesRemoved
	meta.DuplicatesRemoved = deduped.TotalRemoved

	// Step 6: global cap, positional
	transition(StageCapGlobal)
	final := deduped.Items
	if len(final) > cfg.MaxTotal {
		final = final[:cfg.MaxTotal]
	}

	// Step 7: nothing left is fatal
	if len(final) == 0 {
		transition(StageFatal)
		metrics.RecordCollection("failure", time.Since(start))
		causes := []error{ErrNoItems}
		for _, w := range warnings {
			causes = append(causes, fmt.Errorf("%s: %w", w.Source, w.Err))
		}
		return nil, &CollectionError{Component: "pipeline", Cause: errors.Join(causes...), Warnings: warnings}
	}

	// Step 8: per-source counts on the final set
	for _, item := range final {
		meta.PerSourceCounts[item.Source]++
	}
	meta.Duration = time.Since(start)
	transition(StageDone)
	metrics.RecordCollection("success", meta.Duration)

	logger.Info("collection completed",
		slog.Int("items", len(final)),
		slog.Int("duplicates_removed", meta.DuplicatesRemoved),
		slog.Int("invalid_skipped", meta.InvalidItemsSkipped),
		slog.Int("non_fatal_errors", len(meta.NonFatalErrors)),
		slog.Duration("duration", meta.Duration))

	return &Result{Items: final, Metadata: meta}, nil
}

func (s *Service) activeCollectors(requested []string) ([]Collector, []SourceError) {
	active := []Collector{s.mandatory}
	var warnings []SourceError
	for _, name := range requested {
		if name == s.mandatory.Name() {
			continue
		}
		found := slices.ContainsFunc(s.optional, func(c Collector) bool { return c.Name() == name })
		if !found {
			warnings = append(warnings, newSourceError(name, errors.New("unknown source")))
		}
	}
	// registration order, not request order
	for _, c := range s.optional {
		if slices.Contains(requested, c.Name()) {
			active = append(active, c)
		}
	}
	return active, warnings
}

// runCollectors starts every collector and waits for all of them or the
// deadline. The channel is buffered so collectors still running at the
// deadline can finish and exit without a reader.
func (s *Service) runCollectors(ctx context.Context, active []Collector, query string, limit int) ([]Outcome, error) {
	results := make(chan Outcome, len(active))
	for i, c := range active {
		go func() {
			results <- runOne(ctx, i, c, query, limit)
		}()
	}

	outcomes := make([]Outcome, 0, len(active))
	for len(outcomes) < len(active) {
		select {
		case o := <-results:
			outcomes = append(outcomes, o)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// completion order is timing-dependent; attribution must not be
	slices.SortFunc(outcomes, func(a, b Outcome) int { return a.index - b.index })
	return outcomes, nil
}

func runOne(ctx context.Context, index int, c Collector, query string, limit int) (o Outcome) {
	start := time.Now()
	o = Outcome{Source: c.Name(), Required: index == 0, index: index}
	defer func() {
		if r := recover(); r != nil {
			o.Items = nil
			o.Err = fmt.Errorf("collector %s panicked: %v", c.Name(), r)
		}
		o.Duration = time.Since(start)
		metrics.RecordCollectorRun(o.Source, o.Duration, len(o.Items), o.Err)
	}()

	items, err := c.Collect(ctx, query, limit)
	if err != nil {
		o.Err = err
		return o
	}
	if items == nil {
		items = []entity.RawItem{}
	}
	o.Items = items
	return o
}

func validItems(items []entity.RawItem) ([]entity.RawItem, int) {
	valid := make([]entity.RawItem, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			continue
		}
		valid = append(valid, item)
	}
	return valid, len(items) - len(valid)
}
