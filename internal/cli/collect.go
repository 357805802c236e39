package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// collectFlags are shared by collect and draft.
type collectFlags struct {
	sources      []string
	maxTotal     int
	maxPerSource int
	timeout      time.Duration
	noEnhance    bool
}

func (f *collectFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVar(&f.sources, "sources", nil, "optional sources to run (hackernews, reddit, googletrends); web always runs")
	fs.IntVar(&f.maxTotal, "max-total", 0, "maximum items after deduplication")
	fs.IntVar(&f.maxPerSource, "max-per-source", 0, "maximum items kept per source")
	fs.DurationVar(&f.timeout, "timeout", 0, "deadline for the whole collection run")
	fs.BoolVar(&f.noEnhance, "no-enhance", false, "skip fetching full article text for short web snippets")
}

// apply overrides loaded config values with flags that were set explicitly.
func (f *collectFlags) apply(cmd *cobra.Command, a *app) {
	c := &a.cfg.Collection
	fs := cmd.Flags()
	if fs.Changed("sources") {
		c.Sources = f.sources
	}
	if fs.Changed("max-total") {
		c.MaxTotal = f.maxTotal
	}
	if fs.Changed("max-per-source") {
		c.MaxPerSource = f.maxPerSource
	}
	if fs.Changed("timeout") {
		c.Timeout = f.timeout
	}
	if f.noEnhance {
		a.cfg.Enhance.Enabled = false
	}
}

func newCollectCmd(a *app) *cobra.Command {
	var flags collectFlags
	cmd := &cobra.Command{
		Use:   "collect <query>",
		Short: "Collect and deduplicate source material for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			flags.apply(cmd, a)

			cfg := a.collectConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			svc, err := a.collectService()
			if err != nil {
				return err
			}

			res, err := svc.CollectAll(runContext(cmd.Context()), strings.Join(args, " "), cfg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	flags.register(cmd)
	return cmd
}
