package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-label-mcp/internal/fontcat"
)

// FontsCmd returns the fonts command.
func FontsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fonts [descriptor...]",
		Short: "List known fonts or resolve font descriptors",
		Long: `Without arguments, list every font name the catalog knows: the built-in
Go fonts and the fonts installed on the system.

With arguments, resolve each descriptor (name, file path or http(s) URL) and
print where the font file is.

Examples:
  image-label-mcp fonts
  image-label-mcp fonts "DejaVu Sans" ./fonts/Inter.ttf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := a.catalog()

			if len(args) == 0 {
				for _, name := range catalog.Names() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			sources := make([]fontcat.Source, 0, len(args))
			for _, d := range args {
				src, err := catalog.Resolve(cmd.Context(), d)
				if err != nil {
					return err
				}
				sources = append(sources, src)
			}
			return writeJSON(cmd, sources)
		},
	}
	return cmd
}
