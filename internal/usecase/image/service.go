// Package image produces the post's illustration. A prompt is routed through
// the image tiers in preference order; the chosen image has its metadata
// stripped before it is written. When no tier can produce an image, the
// route ends with manual instructions instead of an error.
package image

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/logging"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/metrics"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
)

// ManualTierName is the name of the terminal tier.
const ManualTierName = "manual"

// Input validation errors.
var (
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	ErrEmptyOutput = errors.New("output path cannot be empty")
)

// Generator is one image backend.
type Generator interface {
	Name() string
	Enabled() bool
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Stripper removes metadata from encoded image data.
type Stripper func(data []byte) ([]byte, error)

type backend struct {
	gen         Generator
	recoverable func(error) bool
}

// Service routes image requests.
type Service struct {
	backends []backend
	strip    Stripper
}

// Option configures a Service.
type Option func(*Service)

// WithToolTier appends a tool-backed tier. Only tool failures (not found,
// auth, timeout, generation) escalate; anything else aborts the route.
func WithToolTier(g Generator) Option {
	return func(s *Service) {
		s.backends = append(s.backends, backend{gen: g, recoverable: fallback.ToolTierRecoverable})
	}
}

// WithMeteredTier appends a metered API tier. Any failure escalates.
func WithMeteredTier(g Generator) Option {
	return func(s *Service) {
		s.backends = append(s.backends, backend{gen: g, recoverable: fallback.MeteredTierRecoverable})
	}
}

// WithStripper sets the metadata stripper applied before writing.
func WithStripper(fn Stripper) Option {
	return func(s *Service) { s.strip = fn }
}

// NewService creates an image Service. Tiers are tried in the order their
// options are given; the manual tier always comes last.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request describes one image to produce.
type Request struct {
	Prompt     string
	OutputPath string
}

// Result describes the outcome. When Manual is set nothing was written and
// Instructions tells the operator what to do.
type Result struct {
	Path             string   `json:"path,omitempty"`
	Tier             string   `json:"tier"`
	TiersAttempted   []string `json:"tiersAttempted"`
	TierFailures     []string `json:"tierFailures,omitempty"`
	Bytes            int      `json:"bytes,omitempty"`
	MetadataStripped bool     `json:"metadataStripped"`
	Manual           bool     `json:"manual"`
	Instructions     string   `json:"instructions,omitempty"`
}

// Generate routes req through the tiers and writes the image.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if req.OutputPath == "" {
		return nil, ErrEmptyOutput
	}
	logger := logging.FromContext(ctx).With(slog.String("output", req.OutputPath))

	tiers := make([]fallback.Tier[[]byte], 0, len(s.backends)+1)
	for _, b := range s.backends {
		gen := b.gen
		tiers = append(tiers, fallback.Tier[[]byte]{
			Name:    gen.Name(),
			Enabled: gen.Enabled(),
			Call: func(ctx context.Context) ([]byte, error) {
				return gen.Generate(ctx, prompt)
			},
			Recoverable: b.recoverable,
		})
	}
	tiers = append(tiers, fallback.Tier[[]byte]{
		Name:         ManualTierName,
		Enabled:      true,
		Terminal:     true,
		Instructions: ManualInstructions(prompt, req.OutputPath),
	})

	routed, err := fallback.Route(ctx, tiers, fallback.WithName("image"))
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}

	res := &Result{
		Tier:           routed.Tier,
		TiersAttempted: routed.TiersAttempted,
		Manual:         routed.Manual,
		Instructions:   routed.Instructions,
	}
	for _, f := range routed.Recovered {
		res.TierFailures = append(res.TierFailures, f.String())
	}
	if routed.Manual {
		logger.WarnContext(ctx, "no image tier succeeded, manual step required",
			slog.Any("tiers_attempted", routed.TiersAttempted))
		return res, nil
	}

	data := routed.Value
	if s.strip != nil {
		cleaned, err := s.strip(data)
		if err != nil {
			logger.WarnContext(ctx, "metadata stripping failed, writing image as generated",
				slog.String("tier", routed.Tier),
				slog.Any("error", err))
		} else {
			data = cleaned
			res.MetadataStripped = true
		}
	}

	if dir := filepath.Dir(req.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(req.OutputPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	metrics.RecordImageGenerated(routed.Tier)

	res.Path = req.OutputPath
	res.Bytes = len(data)
	logger.InfoContext(ctx, "image written",
		slog.String("tier", routed.Tier),
		slog.Int("bytes", len(data)),
		slog.Bool("metadata_stripped", res.MetadataStripped))
	return res, nil
}
