package cli

import (
	"github.com/spf13/cobra"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/infra/imagemeta"
)

type stripReport struct {
	imagemeta.Report
	Saved        int     `json:"saved"`
	SavedPercent float64 `json:"savedPercent"`
}

func newStripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strip-metadata <input> [output]",
		Short: "Remove EXIF, XMP, text chunks and comments from a JPEG or PNG",
		Long:  "strip-metadata writes a copy of the image without metadata. The output defaults to <name>_clean.<ext> next to the input.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var output string
			if len(args) == 2 {
				output = args[1]
			}
			report, err := imagemeta.StripFile(args[0], output)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stripReport{
				Report:       report,
				Saved:        report.Saved(),
				SavedPercent: report.SavedPercent(),
			})
		},
	}
}
