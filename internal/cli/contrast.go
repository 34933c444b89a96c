package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-label-mcp/internal/imaging"
	"github.com/ironsheep/image-label-mcp/internal/label"
)

// ContrastCmd returns the contrast command.
func ContrastCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "contrast <background>",
		Short: "Print the text colour that reads best on a background",
		Long: `Print black or white, whichever contrasts more with the background colour.

The background is #RRGGBB or a b,g,r triple.

Examples:
  image-label-mcp contrast "#FFFF00"
  image-label-mcp contrast 0,0,255 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bg, err := label.ParseColor(args[0])
			if err != nil {
				return fmt.Errorf("invalid background: %w", err)
			}
			result := imaging.Describe(bg)
			if asJSON {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (contrast %.2f:1)\n", result.TextColor, result.ContrastRatio)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full colour description as JSON")
	return cmd
}
