package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"draftboard/pkg/diagram"
)

// infoOpts holds options for the info command.
type infoOpts struct {
	top      int  // number of most-connected nodes to list
	validate bool // include the validation report
}

// newInfoCmd creates the info command.
func newInfoCmd() *cobra.Command {
	opts := &infoOpts{}

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Print a structural summary of a diagram file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.top, "top", 5, "number of most-connected nodes to list")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "include the validation report")
	return cmd
}

func runInfo(cmd *cobra.Command, path string, opts *infoOpts) error {
	d, err := diagram.ReadFile(path)
	if err != nil {
		return err
	}
	summary := diagram.Summarize(d, opts.top)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styleTitle.Render(summary.Name))
	printField(out, "Nodes", strconv.Itoa(summary.TotalNodes))
	printField(out, "Edges", strconv.Itoa(summary.TotalEdges))
	printField(out, "Components", strconv.Itoa(summary.Components))
	printField(out, "Orphans", strconv.Itoa(summary.OrphanCount))
	if len(summary.TagsInUse) > 0 {
		printField(out, "Tags", strings.Join(summary.TagsInUse, ", "))
	}
	printCounts(out, "By type", summary.NodesByType)
	printCounts(out, "By shape", summary.NodesByShape)

	if len(summary.MostConnected) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styleLabel.Render("Most connected"))
		fmt.Fprintln(out, connectionsTable(summary.MostConnected))
	}

	if opts.validate {
		fmt.Fprintln(out)
		printValidation(out, d)
	}
	return nil
}

func printField(out io.Writer, label, value string) {
	fmt.Fprintf(out, "%s %s\n", styleLabel.Render(label+":"), styleValue.Render(value))
}

// printCounts prints a count map sorted by key for stable output.
func printCounts(out io.Writer, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	printField(out, label, strings.Join(parts, " "))
}

func connectionsTable(conns []diagram.ConnectionInfo) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers("NODE", "LABEL", "IN", "OUT")
	for _, c := range conns {
		t.Row(c.NodeID, c.Label, strconv.Itoa(c.Incoming), strconv.Itoa(c.Outgoing))
	}
	return t.Render()
}

func printValidation(out io.Writer, d *diagram.Diagram) {
	issues := diagram.Validate(d)
	vs := diagram.SummarizeIssues(issues)
	if vs.Valid && len(issues) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("✓ no issues found"))
		return
	}
	for _, issue := range issues {
		style := styleDim
		switch issue.Severity {
		case diagram.SeverityError:
			style = styleError
		case diagram.SeverityWarning:
			style = styleWarning
		}
		target := issue.NodeID
		if target == "" {
			target = issue.EdgeID
		}
		fmt.Fprintf(out, "%s %s %s\n",
			style.Render(string(issue.Severity)),
			styleValue.Render(issue.Message),
			styleDim.Render(target))
	}
	if !vs.Valid {
		fmt.Fprintln(out, styleError.Render(fmt.Sprintf("✗ %d error(s), %d warning(s)", vs.Errors, vs.Warnings)))
	} else {
		fmt.Fprintln(out, styleSuccess.Render(fmt.Sprintf("✓ valid, %d warning(s)", vs.Warnings)))
	}
}
