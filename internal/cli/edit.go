package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"draftboard/pkg/diagram"
)

// editOpts holds options for the edit command.
type editOpts struct {
	history int // undo history depth
}

// newEditCmd creates the edit command.
func newEditCmd() *cobra.Command {
	opts := &editOpts{}

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Open a diagram in the interactive terminal editor",
		Long:  `Edit opens a full-screen terminal editor. Drag nodes with the mouse, resize from the bottom-right corner, rotate from the handle above a node, and box-select on empty canvas. Press ? in the editor for the full key map.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.history, "history", 0, "undo history depth (0 = unlimited)")
	return cmd
}

func runEdit(cmd *cobra.Command, path string, opts *editOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	manager := diagram.NewManager(opts.history)
	if _, err := manager.Open(path); err != nil {
		return err
	}

	model := newEditorModel(ctx, manager, path)
	prog := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	final, err := prog.Run()
	if err != nil {
		return err
	}

	if m, ok := final.(*editorModel); ok && m.saved > 0 {
		logger.Info("Saved diagram", "path", path, "saves", m.saved)
	}
	return nil
}
