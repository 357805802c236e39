package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/image"
)

func newImageCmd(a *app) *cobra.Command {
	var (
		prompt     string
		promptFile string
		output     string
		noTool     bool
	)
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Generate an illustration (CLI tool, then OpenAI Images, then manual instructions)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if promptFile != "" {
				data, err := os.ReadFile(promptFile)
				if err != nil {
					return fmt.Errorf("read prompt file: %w", err)
				}
				prompt = string(data)
			}
			if prompt == "" {
				return errors.New("one of --prompt or --prompt-file is required")
			}
			if output == "" {
				output = a.cfg.Image.OutputPath
			}
			if noTool {
				a.cfg.Image.ToolDisabled = true
			}

			res, err := a.imageService().Generate(runContext(cmd.Context()), image.Request{
				Prompt:     prompt,
				OutputPath: output,
			})
			if err != nil {
				return err
			}
			if res.Manual {
				fmt.Fprint(cmd.ErrOrStderr(), res.Instructions)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&prompt, "prompt", "", "image prompt")
	fs.StringVar(&promptFile, "prompt-file", "", "read the image prompt from a file")
	fs.StringVarP(&output, "output", "o", "", "output image path (defaults to image.outputPath)")
	fs.BoolVar(&noTool, "no-tool", false, "skip the command-line tool tier")
	cmd.MarkFlagsMutuallyExclusive("prompt", "prompt-file")
	return cmd
}
