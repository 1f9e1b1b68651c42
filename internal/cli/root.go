package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"draftboard/pkg/buildinfo"
)

// Execute runs the draftboard CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, and executes the command tree. The
// logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "draftboard",
		Short:        "Draftboard is a node-and-edge diagram editor",
		Long:         `Draftboard edits node-and-edge diagrams: create and lay out shapes, connect them with curved arrows, and export the result as SVG, PNG, DOT, or JSON. The serve command exposes the same operations over an HTTP API with live websocket sync.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: user config dir)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newEditCmd())
	root.AddCommand(newNewCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newExportCmd(&configPath))
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newNodeCmd())
	root.AddCommand(newEdgeCmd())
	root.AddCommand(newUndoCmd())
	root.AddCommand(newRedoCmd())

	return root.ExecuteContext(ctx)
}
