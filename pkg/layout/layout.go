// Package layout provides automatic arrangement strategies for diagram
// nodes: grid, hierarchical tree, force-directed spring simulation, row
// packing, plus the alignment, distribution, and grid-snap helpers used by
// multi-selection editing.
//
// All functions mutate the passed nodes in place. The force simulation is
// deterministic: nodes are seeded on a circle and the iteration count is
// fixed, so the same input always lands in the same arrangement.
package layout

import (
	"math"
	"sort"

	"draftboard/pkg/diagram"
	"draftboard/pkg/errors"
)

// Default layout parameters.
const (
	DefaultSpacingX = 200.0
	DefaultSpacingY = 150.0
	DefaultStartX   = 100.0
	DefaultStartY   = 100.0
)

// Algorithm selects a whole-diagram layout strategy.
type Algorithm string

// Whole-diagram layout algorithms.
const (
	AlgorithmGrid  Algorithm = "grid"
	AlgorithmTree  Algorithm = "tree"
	AlgorithmForce Algorithm = "force"
	AlgorithmPack  Algorithm = "pack"
)

// Algorithms lists the supported layout algorithms.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmGrid, AlgorithmTree, AlgorithmForce, AlgorithmPack}
}

// Orientation controls tree layout direction.
type Orientation string

// Tree orientations.
const (
	Vertical   Orientation = "vertical"   // roots on top, children below
	Horizontal Orientation = "horizontal" // roots on the left, children right
)

// Options tunes the positional layouts. Zero values select the defaults.
type Options struct {
	SpacingX    float64
	SpacingY    float64
	StartX      float64
	StartY      float64
	Columns     int         // grid only; 0 auto-derives from the node count
	Orientation Orientation // tree only
}

func (o Options) withDefaults() Options {
	if o.SpacingX == 0 {
		o.SpacingX = DefaultSpacingX
	}
	if o.SpacingY == 0 {
		o.SpacingY = DefaultSpacingY
	}
	if o.StartX == 0 {
		o.StartX = DefaultStartX
	}
	if o.StartY == 0 {
		o.StartY = DefaultStartY
	}
	if o.Orientation == "" {
		o.Orientation = Vertical
	}
	return o
}

// Apply runs the named algorithm over the whole diagram.
func Apply(algo Algorithm, d *diagram.Diagram, opts Options) error {
	switch algo {
	case AlgorithmGrid:
		Grid(d.Nodes, opts)
	case AlgorithmTree:
		Tree(d.Nodes, d.Edges, opts)
	case AlgorithmForce:
		Force(d.Nodes, d.Edges, ForceOptions{})
	case AlgorithmPack:
		Pack(d.Nodes, 20, opts)
	default:
		return errors.New(errors.ErrCodeInvalidLayout, "unknown layout algorithm: %s", algo)
	}
	return nil
}

// =============================================================================
// Positional Layouts
// =============================================================================

// Grid arranges nodes row by row. With Columns unset the column count is
// max(3, floor(sqrt(n))+1).
func Grid(nodes []*diagram.Node, opts Options) {
	if len(nodes) == 0 {
		return
	}
	o := opts.withDefaults()
	cols := o.Columns
	if cols <= 0 {
		cols = int(math.Sqrt(float64(len(nodes)))) + 1
		if cols < 3 {
			cols = 3
		}
	}
	for i, n := range nodes {
		n.X = o.StartX + float64(i%cols)*o.SpacingX
		n.Y = o.StartY + float64(i/cols)*o.SpacingY
	}
}

// Tree arranges nodes hierarchically by edge direction: nodes without
// incoming edges form the root level, children sit one level further. Cycles
// leave no root; the first node is used then. Disconnected nodes join the
// root level.
func Tree(nodes []*diagram.Node, edges []*diagram.Edge, opts Options) {
	if len(nodes) == 0 {
		return
	}
	o := opts.withDefaults()

	children := make(map[string][]string, len(nodes))
	hasParent := map[string]struct{}{}
	for _, n := range nodes {
		children[n.ID] = nil
	}
	for _, e := range edges {
		if _, okS := children[e.Source]; !okS {
			continue
		}
		if _, okT := children[e.Target]; !okT {
			continue
		}
		children[e.Source] = append(children[e.Source], e.Target)
		hasParent[e.Target] = struct{}{}
	}

	var roots []string
	for _, n := range nodes {
		if _, ok := hasParent[n.ID]; !ok {
			roots = append(roots, n.ID)
		}
	}
	if len(roots) == 0 {
		roots = []string{nodes[0].ID}
	}

	// BFS level assignment; first visit wins.
	type queued struct {
		id    string
		level int
	}
	levels := map[string]int{}
	queue := make([]queued, 0, len(nodes))
	for _, r := range roots {
		queue = append(queue, queued{r, 0})
	}
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]
		if _, seen := levels[q.id]; seen {
			continue
		}
		levels[q.id] = q.level
		for _, child := range children[q.id] {
			queue = append(queue, queued{child, q.level + 1})
		}
	}
	for _, n := range nodes {
		if _, ok := levels[n.ID]; !ok {
			levels[n.ID] = 0
		}
	}

	counts := map[int]int{}
	for _, n := range nodes {
		level := levels[n.ID]
		idx := counts[level]
		counts[level]++
		if o.Orientation == Horizontal {
			n.X = o.StartX + float64(level)*o.SpacingX
			n.Y = o.StartY + float64(idx)*o.SpacingY
		} else {
			n.X = o.StartX + float64(idx)*o.SpacingX
			n.Y = o.StartY + float64(level)*o.SpacingY
		}
	}
}

// ForceOptions tunes the spring simulation. Zero values select the defaults.
type ForceOptions struct {
	Iterations  int
	Repulsion   float64 // Coulomb constant between all node pairs
	Attraction  float64 // Hooke constant along edges
	Damping     float64
	MinDistance float64
}

func (o ForceOptions) withDefaults() ForceOptions {
	if o.Iterations == 0 {
		o.Iterations = 100
	}
	if o.Repulsion == 0 {
		o.Repulsion = 5000
	}
	if o.Attraction == 0 {
		o.Attraction = 0.01
	}
	if o.Damping == 0 {
		o.Damping = 0.1
	}
	if o.MinDistance == 0 {
		o.MinDistance = 50
	}
	return o
}

// Force runs a force-directed simulation: every node pair repels, connected
// nodes attract. Nodes are seeded on a circle so the result is stable for a
// given input.
func Force(nodes []*diagram.Node, edges []*diagram.Edge, opts ForceOptions) {
	if len(nodes) < 2 {
		return
	}
	o := opts.withDefaults()

	byID := make(map[string]*diagram.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	const centerX, centerY, radius = 400.0, 400.0, 200.0
	for i, n := range nodes {
		angle := 2 * math.Pi * float64(i) / float64(len(nodes))
		n.X = centerX + radius*math.Cos(angle)
		n.Y = centerY + radius*math.Sin(angle)
	}

	type vec struct{ x, y float64 }
	for iter := 0; iter < o.Iterations; iter++ {
		forces := make(map[string]vec, len(nodes))

		for i, n1 := range nodes {
			for _, n2 := range nodes[i+1:] {
				dx := n1.X - n2.X
				dy := n1.Y - n2.Y
				dist := math.Max(o.MinDistance, math.Hypot(dx, dy))
				f := o.Repulsion / (dist * dist)
				fx, fy := f*dx/dist, f*dy/dist
				forces[n1.ID] = vec{forces[n1.ID].x + fx, forces[n1.ID].y + fy}
				forces[n2.ID] = vec{forces[n2.ID].x - fx, forces[n2.ID].y - fy}
			}
		}

		for _, e := range edges {
			src, dst := byID[e.Source], byID[e.Target]
			if src == nil || dst == nil {
				continue
			}
			dx := dst.X - src.X
			dy := dst.Y - src.Y
			dist := math.Max(o.MinDistance, math.Hypot(dx, dy))
			f := dist * o.Attraction
			fx, fy := f*dx/dist, f*dy/dist
			forces[src.ID] = vec{forces[src.ID].x + fx, forces[src.ID].y + fy}
			forces[dst.ID] = vec{forces[dst.ID].x - fx, forces[dst.ID].y - fy}
		}

		for _, n := range nodes {
			f := forces[n.ID]
			n.X = math.Max(o.MinDistance, n.X+f.x*o.Damping)
			n.Y = math.Max(o.MinDistance, n.Y+f.y*o.Damping)
		}
	}
}

// Pack compacts nodes into rows, largest area first, wrapping at a fixed
// row width. Useful after deleting nodes leaves a sparse diagram.
func Pack(nodes []*diagram.Node, padding float64, opts Options) {
	if len(nodes) == 0 {
		return
	}
	o := opts.withDefaults()
	const maxWidth = 1200.0

	ordered := make([]*diagram.Node, len(nodes))
	copy(ordered, nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Width*ordered[i].Height > ordered[j].Width*ordered[j].Height
	})

	x, y := o.StartX, o.StartY
	rowHeight := 0.0
	for _, n := range ordered {
		if x+n.Width > maxWidth && x > o.StartX {
			x = o.StartX
			y += rowHeight + padding
			rowHeight = 0
		}
		n.X, n.Y = x, y
		x += n.Width + padding
		rowHeight = math.Max(rowHeight, n.Height)
	}
}

// =============================================================================
// Selection Helpers
// =============================================================================

// Alignment selects the reference edge or axis for Align.
type Alignment string

// Alignments.
const (
	AlignLeft    Alignment = "left"
	AlignRight   Alignment = "right"
	AlignTop     Alignment = "top"
	AlignBottom  Alignment = "bottom"
	AlignCenterH Alignment = "center_h" // common horizontal center
	AlignCenterV Alignment = "center_v" // common vertical center
)

// Align lines up the identified nodes on a shared edge or center. At least
// two of the ids must resolve to nodes.
func Align(nodes []*diagram.Node, ids []string, alignment Alignment) error {
	targets := pick(nodes, ids)
	if len(targets) < 2 {
		return errors.New(errors.ErrCodeInvalidInput, "alignment needs at least 2 nodes, got %d", len(targets))
	}

	switch alignment {
	case AlignLeft:
		minX := targets[0].X
		for _, n := range targets[1:] {
			minX = math.Min(minX, n.X)
		}
		for _, n := range targets {
			n.X = minX
		}
	case AlignRight:
		maxX := targets[0].X + targets[0].Width
		for _, n := range targets[1:] {
			maxX = math.Max(maxX, n.X+n.Width)
		}
		for _, n := range targets {
			n.X = maxX - n.Width
		}
	case AlignTop:
		minY := targets[0].Y
		for _, n := range targets[1:] {
			minY = math.Min(minY, n.Y)
		}
		for _, n := range targets {
			n.Y = minY
		}
	case AlignBottom:
		maxY := targets[0].Y + targets[0].Height
		for _, n := range targets[1:] {
			maxY = math.Max(maxY, n.Y+n.Height)
		}
		for _, n := range targets {
			n.Y = maxY - n.Height
		}
	case AlignCenterH:
		var sum float64
		for _, n := range targets {
			sum += n.X + n.Width/2
		}
		center := sum / float64(len(targets))
		for _, n := range targets {
			n.X = center - n.Width/2
		}
	case AlignCenterV:
		var sum float64
		for _, n := range targets {
			sum += n.Y + n.Height/2
		}
		center := sum / float64(len(targets))
		for _, n := range targets {
			n.Y = center - n.Height/2
		}
	default:
		return errors.New(errors.ErrCodeInvalidLayout, "unknown alignment: %s", alignment)
	}
	return nil
}

// Axis selects the distribution direction.
type Axis string

// Distribution axes.
const (
	AxisHorizontal Axis = "horizontal"
	AxisVertical   Axis = "vertical"
)

// Distribute spaces the identified nodes evenly between the two outermost.
// At least three of the ids must resolve to nodes.
func Distribute(nodes []*diagram.Node, ids []string, axis Axis) error {
	targets := pick(nodes, ids)
	if len(targets) < 3 {
		return errors.New(errors.ErrCodeInvalidInput, "distribution needs at least 3 nodes, got %d", len(targets))
	}

	switch axis {
	case AxisHorizontal:
		sort.SliceStable(targets, func(i, j int) bool { return targets[i].X < targets[j].X })
		minX, maxX := targets[0].X, targets[len(targets)-1].X
		spacing := (maxX - minX) / float64(len(targets)-1)
		for i, n := range targets {
			n.X = minX + float64(i)*spacing
		}
	case AxisVertical:
		sort.SliceStable(targets, func(i, j int) bool { return targets[i].Y < targets[j].Y })
		minY, maxY := targets[0].Y, targets[len(targets)-1].Y
		spacing := (maxY - minY) / float64(len(targets)-1)
		for i, n := range targets {
			n.Y = minY + float64(i)*spacing
		}
	default:
		return errors.New(errors.ErrCodeInvalidLayout, "unknown axis: %s", axis)
	}
	return nil
}

// SnapToGrid rounds every node position to the nearest grid line. A grid
// size of zero or less leaves positions untouched.
func SnapToGrid(nodes []*diagram.Node, gridSize int) {
	if gridSize <= 0 {
		return
	}
	g := float64(gridSize)
	for _, n := range nodes {
		n.X = math.Round(n.X/g) * g
		n.Y = math.Round(n.Y/g) * g
	}
}

func pick(nodes []*diagram.Node, ids []string) []*diagram.Node {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*diagram.Node
	for _, n := range nodes {
		if _, ok := want[n.ID]; ok {
			out = append(out, n)
		}
	}
	return out
}
