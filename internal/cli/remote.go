package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"draftboard/pkg/diagram"
)

// The node, edge, undo, and redo commands drive a running draftboard server
// over its HTTP API, so edits land in the server's undo history and fan out
// to connected editors over the websocket.

// nodeFlags mirrors the server's node request body. Only flags the user
// actually set are sent, so a patch leaves the other fields untouched.
type nodeFlags struct {
	label       string
	nodeType    string
	shape       string
	color       string
	x, y        float64
	width       float64
	height      float64
	rotation    float64
	fillOpacity float64
	zIndex      int
	borderStyle string
	description string
	tags        []string
}

func (f *nodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.label, "label", "l", "", "node label")
	cmd.Flags().StringVar(&f.nodeType, "type", "", "semantic node type")
	cmd.Flags().StringVar(&f.shape, "shape", "", "node shape (rectangle, ellipse, diamond, triangle, arrow, pill)")
	cmd.Flags().StringVar(&f.color, "color", "", "fill color (#rrggbb)")
	cmd.Flags().Float64VarP(&f.x, "x", "x", 0, "x position")
	cmd.Flags().Float64VarP(&f.y, "y", "y", 0, "y position")
	cmd.Flags().Float64Var(&f.width, "width", 0, "node width")
	cmd.Flags().Float64Var(&f.height, "height", 0, "node height")
	cmd.Flags().Float64Var(&f.rotation, "rotation", 0, "rotation in degrees")
	cmd.Flags().Float64Var(&f.fillOpacity, "opacity", 0, "fill opacity (0..1)")
	cmd.Flags().IntVar(&f.zIndex, "z", 0, "stacking order")
	cmd.Flags().StringVar(&f.borderStyle, "border", "", "border style (solid, dashed, dotted)")
	cmd.Flags().StringVar(&f.description, "description", "", "free-form description")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "tags")
}

// body collects the set flags into a request payload.
func (f *nodeFlags) body(cmd *cobra.Command) map[string]any {
	req := map[string]any{}
	set := func(flag, key string, value any) {
		if cmd.Flags().Changed(flag) {
			req[key] = value
		}
	}
	set("label", "label", f.label)
	set("type", "type", f.nodeType)
	set("shape", "shape", f.shape)
	set("color", "color", f.color)
	set("x", "x", f.x)
	set("y", "y", f.y)
	set("width", "width", f.width)
	set("height", "height", f.height)
	set("rotation", "rotation", f.rotation)
	set("opacity", "fill_opacity", f.fillOpacity)
	set("z", "z_index", f.zIndex)
	set("border", "border_style", f.borderStyle)
	set("description", "description", f.description)
	set("tags", "tags", f.tags)
	return req
}

// newNodeCmd creates the node command group.
func newNodeCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage nodes on a running server",
	}
	cmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL, "server base URL")

	addFlags := &nodeFlags{}
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Node *diagram.Node `json:"node"`
			}
			client := newAPIClient(serverURL)
			if err := client.post(cmd.Context(), "/api/nodes", addFlags.body(cmd), &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Node.ID)
			return nil
		},
	}
	addFlags.register(add)

	setFlags := &nodeFlags{}
	set := &cobra.Command{
		Use:   "set <id>",
		Short: "Update node fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL)
			return client.patch(cmd.Context(), "/api/nodes/"+url.PathEscape(args[0]), setFlags.body(cmd), nil)
		},
	}
	setFlags.register(set)

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a node and its edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL)
			return client.delete(cmd.Context(), "/api/nodes/"+url.PathEscape(args[0]))
		},
	}

	var (
		lsQuery string
		lsTag   string
		lsType  string
	)
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List nodes, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("label", lsQuery)
			query.Set("tag", lsTag)
			query.Set("type", lsType)
			var resp struct {
				Nodes []*diagram.Node `json:"nodes"`
			}
			client := newAPIClient(serverURL)
			if err := client.get(cmd.Context(), "/api/nodes/search?"+query.Encode(), &resp); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range resp.Nodes {
				fmt.Fprintf(out, "%s\t%s\t%s\t(%.0f,%.0f)\n", n.ID, n.Shape, n.Label, n.X, n.Y)
			}
			return nil
		},
	}
	ls.Flags().StringVarP(&lsQuery, "query", "q", "", "substring label match")
	ls.Flags().StringVar(&lsTag, "tag", "", "tag filter")
	ls.Flags().StringVar(&lsType, "type", "", "node type filter")

	cmd.AddCommand(add, set, rm, ls)
	return cmd
}

// newEdgeCmd creates the edge command group.
func newEdgeCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Manage edges on a running server",
	}
	cmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL, "server base URL")

	var (
		label      string
		sourceSide string
		targetSide string
		arrow      string
		style      string
		color      string
	)
	add := &cobra.Command{
		Use:   "add <source> <target>",
		Short: "Connect two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"source": args[0], "target": args[1]}
			if cmd.Flags().Changed("label") {
				body["label"] = label
			}
			if cmd.Flags().Changed("source-side") {
				body["source_side"] = sourceSide
			}
			if cmd.Flags().Changed("target-side") {
				body["target_side"] = targetSide
			}
			if cmd.Flags().Changed("arrow") {
				body["arrow_end"] = arrow
			}
			if cmd.Flags().Changed("style") {
				body["style"] = style
			}
			if cmd.Flags().Changed("color") {
				body["color"] = color
			}
			var resp struct {
				Edge *diagram.Edge `json:"edge"`
			}
			client := newAPIClient(serverURL)
			if err := client.post(cmd.Context(), "/api/edges", body, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Edge.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&label, "label", "l", "", "edge label")
	add.Flags().StringVar(&sourceSide, "source-side", "", "source attachment side (top, right, bottom, left)")
	add.Flags().StringVar(&targetSide, "target-side", "", "target attachment side (top, right, bottom, left)")
	add.Flags().StringVar(&arrow, "arrow", "", "arrowhead kind (arrow, filled, diamond, circle, none)")
	add.Flags().StringVar(&style, "style", "", "line style (solid, dashed, dotted)")
	add.Flags().StringVar(&color, "color", "", "line color (#rrggbb)")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL)
			return client.delete(cmd.Context(), "/api/edges/"+url.PathEscape(args[0]))
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}

// newUndoCmd creates the undo command.
func newUndoCmd() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the last change on a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL)
			return client.post(cmd.Context(), "/api/undo", nil, nil)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "server base URL")
	return cmd
}

// newRedoCmd creates the redo command.
func newRedoCmd() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "redo",
		Short: "Redo the last undone change on a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL)
			return client.post(cmd.Context(), "/api/redo", nil, nil)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "server base URL")
	return cmd
}
