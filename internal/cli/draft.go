package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newDraftCmd(a *app) *cobra.Command {
	var (
		flags       collectFlags
		promptItems int
	)
	cmd := &cobra.Command{
		Use:   "draft <query>",
		Short: "Collect material and draft a post (Claude, then OpenAI, then extractive)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			flags.apply(cmd, a)
			if cmd.Flags().Changed("prompt-items") {
				a.cfg.Draft.PromptItems = promptItems
			}

			svc, err := a.draftService()
			if err != nil {
				return err
			}
			d, err := svc.Generate(runContext(cmd.Context()), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), d)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&promptItems, "prompt-items", 0, "number of top items included in the prompt")
	return cmd
}
