package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-label-mcp/internal/server"
)

// ServeCmd returns the serve command.
func ServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := a.logger.Named("server")
			srv := server.New(
				server.WithConfig(a.cfg),
				server.WithLogger(logger),
				server.WithCatalog(a.catalog()),
				server.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
			)
			if err := srv.Run(cmd.Context()); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}
}

// VersionCmd returns the version command.
func VersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "image-label-mcp %s\n", version)
		},
	}
}
