package interaction

import (
	"context"
	"math"

	"draftboard/pkg/diagram"
	"draftboard/pkg/geom"
)

// Gesture tuning.
const (
	// rotationSnap is the rotation increment, in degrees, applied unless
	// the free-rotate modifier is held.
	rotationSnap = 15.0
	// boxSelectThreshold is the minimum box extent, in canvas units, for a
	// canvas drag to count as a box-select instead of a click.
	boxSelectThreshold = 5.0
)

// TargetKind says what kind of element sits under the pointer.
type TargetKind int

// Pointer targets, as resolved by the renderer's hit testing.
const (
	TargetCanvas TargetKind = iota
	TargetNode
	TargetEdge
	TargetResizeHandle
	TargetRotateHandle
	TargetConnectHandle
)

// Hit identifies the element under the pointer at press or release time.
// The renderer owns hit testing; the controller only consumes its result.
type Hit struct {
	Kind   TargetKind
	NodeID string
	EdgeID string
	Side   diagram.Side // connect handles only
}

// Modifiers are the keyboard modifiers active during a pointer event.
type Modifiers struct {
	Multi      bool // toggle selection membership
	FreeRotate bool // bypass the 15° rotation snap
}

// NodeView is what rendering should draw for a node: transient in-gesture
// geometry when the node is being manipulated, committed geometry otherwise.
type NodeView struct {
	X, Y      float64
	Width     float64
	Height    float64
	Rotation  float64
	Transient bool
}

// Rect is an axis-aligned box in canvas coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func rectBetween(a, b geom.Point) Rect {
	x := math.Min(a.X, b.X)
	y := math.Min(a.Y, b.Y)
	return Rect{X: x, Y: y, Width: math.Abs(a.X - b.X), Height: math.Abs(a.Y - b.Y)}
}

func (r Rect) intersects(n *diagram.Node) bool {
	// Un-rotated AABB on purpose: rotation is ignored for hit testing.
	return r.X < n.X+n.Width && r.X+r.Width > n.X &&
		r.Y < n.Y+n.Height && r.Y+r.Height > n.Y
}

// =============================================================================
// Gesture State
// =============================================================================

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureResize
	gestureRotate
	gestureBox
)

// dragSnapshot is one node's position at drag entry.
type dragSnapshot struct {
	x, y float64
}

type gesture struct {
	kind    gestureKind
	nodeID  string // resize/rotate target; pressed node for a drag
	start   geom.Point
	current geom.Point

	// Drag: per-node start positions; one shared raw delta is applied to
	// each and snapped per node, so grid snapping never causes relative
	// drift within a group.
	snapshots map[string]dragSnapshot

	// Resize.
	startW, startH float64

	// Rotate.
	startRot float64
	center   geom.Point
}

// =============================================================================
// Controller
// =============================================================================

// Controller is the pointer-driven editing state machine. It consumes hit
// results and pointer positions in screen space, maintains transient
// overlays and selection, and commits completed gestures through the
// Mutator.
type Controller struct {
	ctx      context.Context
	mutator  Mutator
	reporter ErrorReporter

	nodes    map[string]*diagram.Node
	order    []string // authoritative node order, for deterministic queries
	gridSize float64

	zoom       float64
	panX, panY float64

	g         gesture
	overlay   map[string]NodeView
	boxActive bool

	selected     map[string]struct{}
	selectedEdge string

	connecting     bool
	connectSource  string
	connectSide    diagram.Side
	connectPointer geom.Point
}

// NewController creates a controller committing through the given mutator.
// A nil reporter drops failure messages.
func NewController(ctx context.Context, m Mutator, r ErrorReporter) *Controller {
	if r == nil {
		r = ReporterFunc(func(string) {})
	}
	return &Controller{
		ctx:      ctx,
		mutator:  m,
		reporter: r,
		nodes:    map[string]*diagram.Node{},
		zoom:     1,
		overlay:  map[string]NodeView{},
		selected: map[string]struct{}{},
	}
}

// SyncNodes replaces the authoritative node set. Transient overlays for
// nodes still mid-gesture are kept; overlays, selection, and gesture state
// referencing vanished nodes are dropped, so a refresh that deletes a node
// mid-gesture degrades to a smaller gesture or none at all.
func (c *Controller) SyncNodes(nodes []*diagram.Node) {
	c.nodes = make(map[string]*diagram.Node, len(nodes))
	c.order = c.order[:0]
	for _, n := range nodes {
		cp := *n
		c.nodes[n.ID] = &cp
		c.order = append(c.order, n.ID)
	}
	for id := range c.overlay {
		if _, ok := c.nodes[id]; !ok {
			delete(c.overlay, id)
		}
	}
	for id := range c.selected {
		if _, ok := c.nodes[id]; !ok {
			delete(c.selected, id)
		}
	}

	switch c.g.kind {
	case gestureDrag:
		for id := range c.g.snapshots {
			if _, ok := c.nodes[id]; !ok {
				delete(c.g.snapshots, id)
			}
		}
		if len(c.g.snapshots) == 0 {
			c.g = gesture{}
		} else if _, ok := c.nodes[c.g.nodeID]; !ok {
			c.g.nodeID = ""
		}
	case gestureResize, gestureRotate:
		if _, ok := c.nodes[c.g.nodeID]; !ok {
			c.g = gesture{}
		}
	}
	if c.connecting {
		if _, ok := c.nodes[c.connectSource]; !ok {
			c.cancelConnection()
		}
	}
}

// SetGridSize sets the snap grid. Zero or negative disables snapping.
func (c *Controller) SetGridSize(size float64) { c.gridSize = size }

// SetViewport sets the screen-to-canvas transform: canvas = pan + screen/zoom.
func (c *Controller) SetViewport(zoom, panX, panY float64) {
	if zoom <= 0 {
		zoom = 1
	}
	c.zoom = zoom
	c.panX, c.panY = panX, panY
}

func (c *Controller) toCanvas(screen geom.Point) geom.Point {
	return geom.Point{X: c.panX + screen.X/c.zoom, Y: c.panY + screen.Y/c.zoom}
}

func (c *Controller) snap(v float64) float64 {
	if c.gridSize <= 0 {
		return v
	}
	return math.Round(v/c.gridSize) * c.gridSize
}

// NodeView returns the geometry rendering should use for a node:
// the transient overlay when the node is mid-gesture, committed data
// otherwise. ok is false for unknown nodes.
func (c *Controller) NodeView(id string) (NodeView, bool) {
	if v, ok := c.overlay[id]; ok {
		return v, true
	}
	n, ok := c.nodes[id]
	if !ok {
		return NodeView{}, false
	}
	return NodeView{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height, Rotation: n.Rotation}, true
}

// =============================================================================
// Selection
// =============================================================================

// SelectedNodes returns the selected node ids in authoritative order.
func (c *Controller) SelectedNodes() []string {
	out := make([]string, 0, len(c.selected))
	for _, id := range c.order {
		if _, ok := c.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// SelectedEdge returns the selected edge id, or "".
func (c *Controller) SelectedEdge() string { return c.selectedEdge }

// IsSelected reports whether the node is in the selection set.
func (c *Controller) IsSelected(id string) bool {
	_, ok := c.selected[id]
	return ok
}

// SelectNode replaces the selection with a single node and cancels any
// active connection.
func (c *Controller) SelectNode(id string) {
	c.cancelConnection()
	c.selected = map[string]struct{}{id: {}}
	c.selectedEdge = ""
}

// ToggleNode toggles a node's membership in the selection set, clearing any
// edge selection and cancelling any active connection.
func (c *Controller) ToggleNode(id string) {
	c.cancelConnection()
	c.selectedEdge = ""
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else {
		c.selected[id] = struct{}{}
	}
}

// SelectEdge selects a single edge, clearing node selection and cancelling
// any active connection.
func (c *Controller) SelectEdge(id string) {
	c.cancelConnection()
	c.selected = map[string]struct{}{}
	c.selectedEdge = id
}

// ClearSelection empties both node and edge selection and cancels any
// active connection.
func (c *Controller) ClearSelection() {
	c.cancelConnection()
	c.selected = map[string]struct{}{}
	c.selectedEdge = ""
}

// =============================================================================
// Connection Mode
// =============================================================================

// Connecting reports the active connection gesture, if any.
func (c *Controller) Connecting() (source string, side diagram.Side, active bool) {
	return c.connectSource, c.connectSide, c.connecting
}

// ConnectionPointer returns the live pointer position of an active
// connection gesture, for rubber-band rendering.
func (c *Controller) ConnectionPointer() geom.Point { return c.connectPointer }

func (c *Controller) cancelConnection() {
	c.connecting = false
	c.connectSource = ""
	c.connectSide = diagram.SideAuto
}

// =============================================================================
// Pointer Events
// =============================================================================

// PointerDown feeds a pointer press. hit is the element under the pointer;
// screen is the pointer position in screen coordinates.
func (c *Controller) PointerDown(hit Hit, screen geom.Point, mods Modifiers) {
	canvas := c.toCanvas(screen)

	switch hit.Kind {
	case TargetConnectHandle:
		// Starting a connection selects only the source node.
		c.selected = map[string]struct{}{hit.NodeID: {}}
		c.selectedEdge = ""
		c.connecting = true
		c.connectSource = hit.NodeID
		c.connectSide = hit.Side
		c.connectPointer = canvas

	case TargetNode:
		c.cancelConnection()
		if mods.Multi {
			c.selectedEdge = ""
			if _, ok := c.selected[hit.NodeID]; ok {
				delete(c.selected, hit.NodeID)
			} else {
				c.selected[hit.NodeID] = struct{}{}
			}
			return
		}
		if _, ok := c.selected[hit.NodeID]; !ok {
			c.selected = map[string]struct{}{hit.NodeID: {}}
		}
		c.selectedEdge = ""
		c.beginDrag(canvas, hit.NodeID)

	case TargetResizeHandle:
		c.cancelConnection()
		n, ok := c.nodes[hit.NodeID]
		if !ok {
			return
		}
		c.selected = map[string]struct{}{hit.NodeID: {}}
		c.selectedEdge = ""
		c.g = gesture{
			kind:    gestureResize,
			nodeID:  hit.NodeID,
			start:   canvas,
			current: canvas,
			startW:  n.Width,
			startH:  n.Height,
		}

	case TargetRotateHandle:
		c.cancelConnection()
		n, ok := c.nodes[hit.NodeID]
		if !ok {
			return
		}
		c.selected = map[string]struct{}{hit.NodeID: {}}
		c.selectedEdge = ""
		c.g = gesture{
			kind:     gestureRotate,
			nodeID:   hit.NodeID,
			start:    canvas,
			current:  canvas,
			startRot: n.Rotation,
			center:   geom.Center(n),
		}

	case TargetEdge:
		c.cancelConnection()
		c.selected = map[string]struct{}{}
		c.selectedEdge = hit.EdgeID

	case TargetCanvas:
		c.cancelConnection()
		c.g = gesture{kind: gestureBox, start: canvas, current: canvas}
		c.boxActive = true
	}
}

func (c *Controller) beginDrag(canvas geom.Point, pressed string) {
	snaps := make(map[string]dragSnapshot, len(c.selected))
	for id := range c.selected {
		if n, ok := c.nodes[id]; ok {
			snaps[id] = dragSnapshot{x: n.X, y: n.Y}
		}
	}
	if len(snaps) == 0 {
		return
	}
	c.g = gesture{kind: gestureDrag, nodeID: pressed, start: canvas, current: canvas, snapshots: snaps}
}

// PointerMove feeds a pointer move. Updates only transient state.
func (c *Controller) PointerMove(screen geom.Point, mods Modifiers) {
	canvas := c.toCanvas(screen)

	if c.connecting {
		c.connectPointer = canvas
		return
	}

	c.g.current = canvas
	switch c.g.kind {
	case gestureDrag:
		delta := canvas.Sub(c.g.start)
		for id, snap := range c.g.snapshots {
			x, y := c.dragResult(snap, delta)
			n := c.nodes[id]
			c.overlay[id] = NodeView{
				X: x, Y: y,
				Width: n.Width, Height: n.Height, Rotation: n.Rotation,
				Transient: true,
			}
		}

	case gestureResize:
		w, h := c.resizeResult(c.g, canvas.Sub(c.g.start))
		n := c.nodes[c.g.nodeID]
		c.overlay[c.g.nodeID] = NodeView{
			X: n.X, Y: n.Y,
			Width: w, Height: h, Rotation: n.Rotation,
			Transient: true,
		}

	case gestureRotate:
		deg := rotateResult(c.g.center, canvas, mods)
		n := c.nodes[c.g.nodeID]
		c.overlay[c.g.nodeID] = NodeView{
			X: n.X, Y: n.Y,
			Width: n.Width, Height: n.Height, Rotation: deg,
			Transient: true,
		}
	}
}

// dragResult computes a node's position for the shared raw delta: snap the
// result per axis, then clamp to the canvas origin.
func (c *Controller) dragResult(snap dragSnapshot, delta geom.Point) (x, y float64) {
	x = math.Max(c.snap(snap.x+delta.X), 0)
	y = math.Max(c.snap(snap.y+delta.Y), 0)
	return x, y
}

func (c *Controller) resizeResult(g gesture, delta geom.Point) (w, h float64) {
	w = math.Max(c.snap(g.startW+delta.X), diagram.MinNodeWidth)
	h = math.Max(c.snap(g.startH+delta.Y), diagram.MinNodeHeight)
	return w, h
}

// rotateResult computes the rotation from the node center to the pointer.
// atan2(dx, -dy) measures from "up", so dragging the handle straight above
// the node reads 0°.
func rotateResult(center, canvas geom.Point, mods Modifiers) float64 {
	d := canvas.Sub(center)
	deg := diagram.NormalizeRotation(geom.RadToDeg(math.Atan2(d.X, -d.Y)))
	if !mods.FreeRotate {
		deg = diagram.NormalizeRotation(math.Round(deg/rotationSnap) * rotationSnap)
	}
	return deg
}

// PointerUp feeds a pointer release. hit is the element under the pointer at
// release time. Completed gestures commit here; no-op gestures commit
// nothing.
func (c *Controller) PointerUp(hit Hit, screen geom.Point, mods Modifiers) {
	canvas := c.toCanvas(screen)

	if c.connecting {
		c.completeConnection(hit)
		return
	}

	g := c.g
	c.g = gesture{}
	c.boxActive = false

	switch g.kind {
	case gestureDrag:
		delta := canvas.Sub(g.start)
		if math.Abs(delta.X) <= boxSelectThreshold && math.Abs(delta.Y) <= boxSelectThreshold {
			// A movement-free press is a plain click: it replaces the
			// selection with the pressed node instead of committing.
			for id := range g.snapshots {
				delete(c.overlay, id)
			}
			if _, ok := c.nodes[g.nodeID]; ok {
				c.selected = map[string]struct{}{g.nodeID: {}}
				c.selectedEdge = ""
			}
			return
		}
		c.commitDrag(g, canvas)

	case gestureResize:
		w, h := c.resizeResult(g, canvas.Sub(g.start))
		delete(c.overlay, g.nodeID)
		if w != g.startW || h != g.startH {
			if err := c.mutator.UpdateSize(c.ctx, g.nodeID, w, h); err != nil {
				c.reporter.ReportError(userMessage(err))
			}
		}

	case gestureRotate:
		deg := rotateResult(g.center, canvas, mods)
		delete(c.overlay, g.nodeID)
		if deg != g.startRot {
			if err := c.mutator.UpdateRotation(c.ctx, g.nodeID, deg); err != nil {
				c.reporter.ReportError(userMessage(err))
			}
		}

	case gestureBox:
		box := rectBetween(g.start, canvas)
		if box.Width <= boxSelectThreshold && box.Height <= boxSelectThreshold {
			// Too small: a plain deselecting click.
			c.selected = map[string]struct{}{}
			c.selectedEdge = ""
			return
		}
		c.selected = map[string]struct{}{}
		c.selectedEdge = ""
		for _, id := range c.order {
			if box.intersects(c.nodes[id]) {
				c.selected[id] = struct{}{}
			}
		}
	}
}

func (c *Controller) commitDrag(g gesture, canvas geom.Point) {
	delta := canvas.Sub(g.start)
	var moves []diagram.NodeMove
	for _, id := range c.order {
		snap, ok := g.snapshots[id]
		if !ok {
			continue
		}
		delete(c.overlay, id)
		x, y := c.dragResult(snap, delta)
		if x != snap.x || y != snap.y {
			moves = append(moves, diagram.NodeMove{ID: id, X: x, Y: y})
		}
	}
	switch len(moves) {
	case 0:
	case 1:
		if err := c.mutator.UpdatePosition(c.ctx, moves[0].ID, moves[0].X, moves[0].Y); err != nil {
			c.reporter.ReportError(userMessage(err))
		}
	default:
		if err := c.mutator.MoveMany(c.ctx, moves); err != nil {
			c.reporter.ReportError(userMessage(err))
		}
	}
}

func (c *Controller) completeConnection(hit Hit) {
	source, side := c.connectSource, c.connectSide
	c.cancelConnection()

	var target string
	targetSide := diagram.SideAuto
	switch hit.Kind {
	case TargetConnectHandle:
		target, targetSide = hit.NodeID, hit.Side
	case TargetNode:
		target = hit.NodeID
	default:
		return // empty canvas or edge: cancelled
	}
	if target == "" || target == source {
		return // dropping on the source cancels
	}
	if err := c.mutator.CreateEdge(c.ctx, source, side, target, targetSide); err != nil {
		c.reporter.ReportError(userMessage(err))
	}
}

// Cancel unwinds Escape-cancellable gestures: connection mode, resize, and
// rotate discard their transient state with no mutation. A drag is not
// cancellable; releasing the pointer always attempts a commit. Box-select
// is discarded.
func (c *Controller) Cancel() {
	if c.connecting {
		c.cancelConnection()
		return
	}
	switch c.g.kind {
	case gestureResize, gestureRotate:
		delete(c.overlay, c.g.nodeID)
		c.g = gesture{}
	case gestureBox:
		c.g = gesture{}
		c.boxActive = false
	}
}

// SelectionBox returns the live box-select rectangle, if one is active.
func (c *Controller) SelectionBox() (Rect, bool) {
	if c.g.kind != gestureBox {
		return Rect{}, false
	}
	return rectBetween(c.g.start, c.g.current), true
}

// GestureActive reports whether any drag/resize/rotate/box gesture is live.
func (c *Controller) GestureActive() bool { return c.g.kind != gestureNone }
