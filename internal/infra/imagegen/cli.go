package imagegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/logging"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
)

// maxStderr bounds how much tool stderr is kept for error messages.
const maxStderr = 2048

// authMarkers in tool stderr indicate a login or credential problem.
var authMarkers = []string{
	"unauthorized",
	"unauthenticated",
	"not logged in",
	"login required",
	"please log in",
	"authentication",
	"credential",
	"api key",
	"permission denied",
}

// CLITool generates images by shelling out to a locally installed tool.
type CLITool struct {
	config CLIConfig
	tools  *fallback.ToolCache
	tmpDir string
}

// NewCLITool creates the tool tier. Tool detection goes through tools, so a
// missing executable is looked up once per process until the cache is reset.
func NewCLITool(config CLIConfig, tools *fallback.ToolCache) *CLITool {
	return &CLITool{config: config, tools: tools}
}

// WithTempDir sets the directory for intermediate output files.
func (c *CLITool) WithTempDir(dir string) *CLITool {
	c.tmpDir = dir
	return c
}

// Name returns the tier name, which is the tool name.
func (c *CLITool) Name() string { return c.config.Tool }

// Enabled reports whether the tier is configured on.
func (c *CLITool) Enabled() bool { return !c.config.Disabled && c.config.Tool != "" }

// Generate runs the tool once and returns the image it wrote.
//
// Failures are reported as *fallback.ToolNotFoundError, *fallback.AuthError,
// *fallback.TierTimeoutError or *fallback.GenerationError. Anything else,
// such as a failure to prepare the scratch directory or cancellation of ctx,
// is returned unwrapped.
func (c *CLITool) Generate(ctx context.Context, prompt string) ([]byte, error) {
	tier := c.Name()
	logger := logging.FromContext(ctx).With(slog.String("tier", tier))

	path, err := c.tools.Lookup(c.config.Tool)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(c.tmpDir, "imagegen-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)
	output := filepath.Join(dir, "image.png")

	runCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, expandArgs(c.config.Args, prompt, output)...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.InfoContext(ctx, "running image tool", slog.String("path", path))
	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	if runErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if runCtx.Err() == context.DeadlineExceeded {
			logger.WarnContext(ctx, "image tool timed out", slog.Duration("duration", duration))
			return nil, &fallback.TierTimeoutError{Tier: tier, After: c.config.Timeout}
		}

		var execErr *exec.Error
		if errors.As(runErr, &execErr) || errors.Is(runErr, os.ErrNotExist) {
			return nil, &fallback.ToolNotFoundError{Tool: c.config.Tool, Err: runErr}
		}

		msg := tail(stderr.String(), maxStderr)
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			logger.WarnContext(ctx, "image tool failed",
				slog.Int("exit_code", exitErr.ExitCode()),
				slog.Duration("duration", duration))
			if isAuthFailure(msg) {
				return nil, &fallback.AuthError{Tier: tier, Err: fmt.Errorf("%w: %s", runErr, msg)}
			}
			return nil, &fallback.GenerationError{Tier: tier, Reason: "tool exited with error", Err: fmt.Errorf("%w: %s", runErr, msg)}
		}
		return nil, fmt.Errorf("run %s: %w", c.config.Tool, runErr)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &fallback.GenerationError{Tier: tier, Reason: "tool wrote no output file", Err: ErrNoImage}
		}
		return nil, fmt.Errorf("read tool output: %w", err)
	}
	if len(data) == 0 {
		return nil, &fallback.GenerationError{Tier: tier, Reason: "tool wrote an empty file", Err: ErrNoImage}
	}

	logger.InfoContext(ctx, "image tool completed",
		slog.Int("bytes", len(data)),
		slog.Duration("duration", duration))
	return data, nil
}

func expandArgs(args []string, prompt, output string) []string {
	r := strings.NewReplacer(PromptPlaceholder, prompt, OutputPlaceholder, output)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}

func isAuthFailure(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, m := range authMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
