package cli

import (
	"github.com/spf13/cobra"

	"draftboard/pkg/diagram"
)

// newOpts holds options for the new command.
type newOpts struct {
	name     string // diagram display name
	gridSize int    // snap grid spacing
	force    bool   // overwrite an existing file
}

// newNewCmd creates the new command.
func newNewCmd() *cobra.Command {
	opts := &newOpts{}

	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create a new diagram file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "Untitled", "diagram name")
	cmd.Flags().IntVar(&opts.gridSize, "grid", 20, "snap grid size in pixels")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func runNew(cmd *cobra.Command, path string, opts *newOpts) error {
	logger := loggerFromContext(cmd.Context())

	if !opts.force {
		if err := refuseExisting(path); err != nil {
			return err
		}
	}

	d := diagram.New(opts.name)
	d.Metadata.GridSize = opts.gridSize
	if err := diagram.WriteFile(d, path); err != nil {
		return err
	}
	logger.Info("Created diagram", "name", opts.name, "path", path)
	return nil
}
