// Package cli implements the image-label-mcp command line.
//
// The root command serves MCP over stdio when run without a subcommand. The
// put, contrast and fonts subcommands expose the labelling operations
// directly for scripting and for checking fonts without an MCP client.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-label-mcp/internal/config"
	"github.com/ironsheep/image-label-mcp/internal/fontcat"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger hclog.Logger
}

// setup loads the configuration and builds the root logger. The logger
// writes to stderr; stdout carries the protocol.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv(config.EnvPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level := hclog.LevelFromString(cfg.Log.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "image-label-mcp",
		Output: cmd.ErrOrStderr(),
		Level:  level,
	})
	a.logger.Debug("configuration loaded", "path", path)
	return nil
}

// catalog builds the font catalog described by the configuration.
func (a *app) catalog() *fontcat.Catalog {
	return fontcat.New(
		fontcat.WithLogger(a.logger.Named("fontcat")),
		fontcat.WithCacheDir(a.cfg.Font.CacheDir),
		fontcat.WithDownloadDir(a.cfg.Font.DownloadDir),
	)
}

// NewRootCmd returns the root command with all subcommands attached.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	serve := ServeCmd(a)

	root := &cobra.Command{
		Use:   "image-label-mcp",
		Short: "MCP server that draws legible text labels onto images",
		Long: `MCP server that draws legible text labels onto images.

Run without a subcommand to serve MCP over stdio. Configure it in your MCP
client (e.g., Claude Desktop).

Examples:
  # Serve MCP with a config file
  image-label-mcp --config ~/.config/image-label-mcp.toml

  # Draw a label from the command line
  image-label-mcp put photo.png "Front door" --x 40 --y 120 -o labelled.png

  # Which text colour reads best on a background?
  image-label-mcp contrast "#336699"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: serve.RunE,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "",
		fmt.Sprintf("config file (TOML); default from $%s", config.EnvPath))
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		fmt.Sprintf("trace, debug, info, warn, error or off; overrides $%s", config.EnvLogLevel))

	root.AddCommand(
		serve,
		PutCmd(a),
		ContrastCmd(a),
		FontsCmd(a),
		VersionCmd(version),
	)
	return root
}
