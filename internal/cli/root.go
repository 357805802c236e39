// Package cli provides the curator command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/config"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/logging"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/metrics"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

// app carries the flag values and the state shared by subcommands.
type app struct {
	configPath  string
	envFile     string
	logFormat   string
	logLevel    string
	metricsFile string

	cfg   *config.Config
	tools *fallback.ToolCache
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	a := &app{tools: fallback.NewToolCache(nil)}

	root := &cobra.Command{
		Use:   "curator",
		Short: "Collect, consolidate and draft LinkedIn posts",
		Long: "curator gathers recent material on a topic from the web, Hacker News, Reddit and Google Trends, " +
			"merges it into one deduplicated set, and drafts a post and an illustration with tiered fallbacks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.metricsFile == "" {
				return nil
			}
			return metrics.WriteTextfile(a.metricsFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file (optional)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: json or text (overrides config)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(
		newCollectCmd(a),
		newDraftCmd(a),
		newImageCmd(a),
		newStripCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree with ctx as the root context.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// load reads the dotenv file and the configuration and installs the logger.
func (a *app) load() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	slog.SetDefault(logging.NewWithLevel(cfg.Log.Format, cfg.Log.Level))
	return nil
}

// runContext tags ctx with a fresh run ID and the default logger.
func runContext(ctx context.Context) context.Context {
	ctx = logging.WithLogger(ctx, slog.Default())
	return logging.WithRunID(ctx, uuid.NewString())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "curator %s (%s)\n", Version, Commit)
		},
	}
}
