package interaction

import (
	"context"
	"fmt"
	"testing"

	"draftboard/pkg/diagram"
	"draftboard/pkg/errors"
	"draftboard/pkg/geom"
)

// recordingMutator records every commit call and can be primed to fail.
type recordingMutator struct {
	calls []string
	fail  error
}

func (r *recordingMutator) record(s string) error {
	r.calls = append(r.calls, s)
	return r.fail
}

func (r *recordingMutator) UpdatePosition(_ context.Context, id string, x, y float64) error {
	return r.record(fmt.Sprintf("pos %s %g %g", id, x, y))
}

func (r *recordingMutator) UpdateSize(_ context.Context, id string, w, h float64) error {
	return r.record(fmt.Sprintf("size %s %g %g", id, w, h))
}

func (r *recordingMutator) UpdateRotation(_ context.Context, id string, deg float64) error {
	return r.record(fmt.Sprintf("rot %s %g", id, deg))
}

func (r *recordingMutator) MoveMany(_ context.Context, moves []diagram.NodeMove) error {
	s := "movemany"
	for _, m := range moves {
		s += fmt.Sprintf(" %s:%g,%g", m.ID, m.X, m.Y)
	}
	return r.record(s)
}

func (r *recordingMutator) CreateEdge(_ context.Context, src string, srcSide diagram.Side, dst string, dstSide diagram.Side) error {
	return r.record(fmt.Sprintf("edge %s %s %s %s", src, srcSide, dst, dstSide))
}

func node(id string, x, y, w, h float64) *diagram.Node {
	return &diagram.Node{ID: id, Shape: diagram.ShapeRectangle, X: x, Y: y, Width: w, Height: h}
}

func newTestController(t *testing.T, nodes ...*diagram.Node) (*Controller, *recordingMutator) {
	t.Helper()
	m := &recordingMutator{}
	c := NewController(context.Background(), m, nil)
	c.SyncNodes(nodes)
	return c, m
}

func pt(x, y float64) geom.Point { return geom.Point{X: x, Y: y} }

func nodeHit(id string) Hit { return Hit{Kind: TargetNode, NodeID: id} }

func TestDragSnapsAndCommits(t *testing.T) {
	// Start at (100,100), move by (37,-12) with grid 20: the raw result
	// (137,88) snaps per axis to the nearest grid line, (140,80).
	c, m := newTestController(t, node("a", 100, 100, 150, 80))
	c.SetGridSize(20)

	c.PointerDown(nodeHit("a"), pt(10, 10), Modifiers{})
	c.PointerMove(pt(47, -2), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(47, -2), Modifiers{})

	want := "pos a 140 80"
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
}

func TestDragRoundsToNearestGridLine(t *testing.T) {
	// Delta (17,-8): raw result (117,92) rounds down on x and up on y,
	// landing on (120,100).
	c, m := newTestController(t, node("a", 100, 100, 150, 80))
	c.SetGridSize(20)

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerMove(pt(17, -8), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(17, -8), Modifiers{})

	want := "pos a 120 100"
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
}

func TestDragNoNetMovementCommitsNothing(t *testing.T) {
	c, m := newTestController(t, node("a", 100, 100, 150, 80))
	c.SetGridSize(20)

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerMove(pt(3, 4), Modifiers{}) // rounds back to (100,100)
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(3, 4), Modifiers{})

	if len(m.calls) != 0 {
		t.Errorf("no-op drag committed %v, want nothing", m.calls)
	}
}

func TestDragClampsToOrigin(t *testing.T) {
	c, m := newTestController(t, node("a", 10, 10, 150, 80))

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(-50, -50), Modifiers{})

	want := "pos a 0 0"
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
}

func TestDragTransientOverlay(t *testing.T) {
	c, _ := newTestController(t, node("a", 100, 100, 150, 80))

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerMove(pt(30, 40), Modifiers{})

	v, ok := c.NodeView("a")
	if !ok || !v.Transient {
		t.Fatalf("NodeView = %+v, %v, want transient view", v, ok)
	}
	if v.X != 130 || v.Y != 140 {
		t.Errorf("transient position = (%g, %g), want (130, 140)", v.X, v.Y)
	}

	c.PointerUp(Hit{Kind: TargetCanvas}, pt(30, 40), Modifiers{})
	v, _ = c.NodeView("a")
	if v.Transient {
		t.Error("overlay not discarded after commit")
	}
}

func TestDragZoomDividesDelta(t *testing.T) {
	c, m := newTestController(t, node("a", 100, 100, 150, 80))
	c.SetViewport(2, 0, 0) // canvas delta = screen delta / 2

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(80, 0), Modifiers{})

	want := "pos a 140 100"
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
}

func TestGroupDragPerNodeSnap(t *testing.T) {
	// Two nodes with different grid phases: the shared raw delta is snapped
	// per node, so each lands on its own nearest grid line.
	c, m := newTestController(t,
		node("a", 100, 100, 100, 60),
		node("b", 108, 100, 100, 60),
	)
	c.SetGridSize(20)
	c.ToggleNode("a")
	c.ToggleNode("b")

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(37, 0), Modifiers{})

	want := "movemany a:140,100 b:140,100"
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
}

func TestGroupDragSkipsUnmovedNodes(t *testing.T) {
	c, m := newTestController(t,
		node("a", 100, 100, 100, 60),
		node("b", 300, 100, 100, 60),
	)
	c.ToggleNode("a")
	c.ToggleNode("b")

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(50, 0), Modifiers{})

	want := "movemany a:150,100 b:350,100"
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
}

func TestResizeClampsToFloor(t *testing.T) {
	c, m := newTestController(t, node("a", 100, 100, 150, 80))

	c.PointerDown(Hit{Kind: TargetResizeHandle, NodeID: "a"}, pt(0, 0), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(-200, -200), Modifiers{})

	want := fmt.Sprintf("size a %g %g", diagram.MinNodeWidth, diagram.MinNodeHeight)
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
}

func TestResizeNoChangeCommitsNothing(t *testing.T) {
	c, m := newTestController(t, node("a", 100, 100, 150, 80))

	c.PointerDown(Hit{Kind: TargetResizeHandle, NodeID: "a"}, pt(0, 0), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(0, 0), Modifiers{})

	if len(m.calls) != 0 {
		t.Errorf("no-op resize committed %v", m.calls)
	}
}

func TestRotateSnapsTo15Degrees(t *testing.T) {
	// Node center (150, 130). Pointer straight right of center = 90°,
	// pointer at 40°ish snaps to 45°.
	c, m := newTestController(t, node("a", 100, 100, 100, 60))

	c.PointerDown(Hit{Kind: TargetRotateHandle, NodeID: "a"}, pt(150, 30), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(250, 130), Modifiers{})

	want := "rot a 90"
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
}

func TestRotateFreeModifier(t *testing.T) {
	c, m := newTestController(t, node("a", 100, 100, 100, 60))

	c.PointerDown(Hit{Kind: TargetRotateHandle, NodeID: "a"}, pt(150, 30), Modifiers{})
	// Pointer at center + (100, -100): atan2(100, 100) = 45°; nudge so the
	// free angle is not a multiple of 15.
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(250, 40), Modifiers{FreeRotate: true})

	if len(m.calls) != 1 {
		t.Fatalf("calls = %v, want one rotation", m.calls)
	}
	var deg float64
	if _, err := fmt.Sscanf(m.calls[0], "rot a %g", &deg); err != nil {
		t.Fatalf("unexpected call %q", m.calls[0])
	}
	if deg == 0 || deg == 45 || deg == 90 {
		t.Errorf("free rotation snapped to %g", deg)
	}
}

func TestEscapeCancelsRotate(t *testing.T) {
	c, m := newTestController(t, node("a", 100, 100, 100, 60))

	c.PointerDown(Hit{Kind: TargetRotateHandle, NodeID: "a"}, pt(150, 30), Modifiers{})
	c.PointerMove(pt(250, 130), Modifiers{})
	c.Cancel()

	if len(m.calls) != 0 {
		t.Errorf("cancelled rotate committed %v", m.calls)
	}
	if v, _ := c.NodeView("a"); v.Transient {
		t.Error("overlay survived cancel")
	}
	if c.GestureActive() {
		t.Error("gesture still active after cancel")
	}
}

func TestConnectionGesture(t *testing.T) {
	c, m := newTestController(t,
		node("a", 0, 0, 100, 60),
		node("b", 300, 0, 100, 60),
	)

	c.PointerDown(Hit{Kind: TargetConnectHandle, NodeID: "a", Side: diagram.SideRight}, pt(100, 30), Modifiers{})
	if _, _, active := c.Connecting(); !active {
		t.Fatal("connection mode not active after handle press")
	}
	if got := c.SelectedNodes(); len(got) != 1 || got[0] != "a" {
		t.Errorf("selection = %v, want [a]", got)
	}

	c.PointerUp(Hit{Kind: TargetConnectHandle, NodeID: "b", Side: diagram.SideTop}, pt(350, 0), Modifiers{})

	want := "edge a right b top"
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
	if _, _, active := c.Connecting(); active {
		t.Error("connection mode still active after completion")
	}
}

func TestConnectionDropOnBodyUsesAutoSide(t *testing.T) {
	c, m := newTestController(t,
		node("a", 0, 0, 100, 60),
		node("b", 300, 0, 100, 60),
	)

	c.PointerDown(Hit{Kind: TargetConnectHandle, NodeID: "a", Side: diagram.SideRight}, pt(100, 30), Modifiers{})
	c.PointerUp(nodeHit("b"), pt(320, 30), Modifiers{})

	want := "edge a right b "
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%q]", m.calls, want)
	}
}

func TestConnectionSameNodeCancels(t *testing.T) {
	c, m := newTestController(t, node("a", 0, 0, 100, 60))

	c.PointerDown(Hit{Kind: TargetConnectHandle, NodeID: "a", Side: diagram.SideRight}, pt(100, 30), Modifiers{})
	c.PointerUp(nodeHit("a"), pt(50, 30), Modifiers{})

	if len(m.calls) != 0 {
		t.Errorf("same-node drop committed %v", m.calls)
	}
	if _, _, active := c.Connecting(); active {
		t.Error("connection mode still active")
	}
}

func TestConnectionEscapeCancels(t *testing.T) {
	c, m := newTestController(t, node("a", 0, 0, 100, 60))

	c.PointerDown(Hit{Kind: TargetConnectHandle, NodeID: "a", Side: diagram.SideLeft}, pt(0, 30), Modifiers{})
	c.Cancel()
	if _, _, active := c.Connecting(); active {
		t.Error("connection mode survived Escape")
	}
	if len(m.calls) != 0 {
		t.Errorf("cancelled connection committed %v", m.calls)
	}
}

func TestBoxSelectBelowThresholdDeselects(t *testing.T) {
	c, _ := newTestController(t, node("a", 0, 0, 100, 60))
	c.SelectNode("a")

	c.PointerDown(Hit{Kind: TargetCanvas}, pt(500, 500), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(503, 503), Modifiers{})

	if got := c.SelectedNodes(); len(got) != 0 {
		t.Errorf("selection = %v, want empty (3×3 box is a click)", got)
	}
}

func TestBoxSelectIntersectsAABB(t *testing.T) {
	c, _ := newTestController(t,
		node("a", 0, 0, 100, 60),     // intersects
		node("b", 120, 120, 100, 60), // outside
		node("c", 40, 40, 100, 60),   // intersects
	)

	c.PointerDown(Hit{Kind: TargetCanvas}, pt(10, 10), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(60, 60), Modifiers{})

	got := c.SelectedNodes()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("selection = %v, want [a c]", got)
	}
}

func TestSelectionToggle(t *testing.T) {
	c, _ := newTestController(t,
		node("a", 0, 0, 100, 60),
		node("b", 300, 0, 100, 60),
	)

	c.PointerDown(nodeHit("a"), pt(50, 30), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(50, 30), Modifiers{})
	c.PointerDown(nodeHit("b"), pt(350, 30), Modifiers{Multi: true})
	if got := c.SelectedNodes(); len(got) != 2 {
		t.Fatalf("selection = %v, want [a b]", got)
	}

	c.PointerDown(nodeHit("a"), pt(50, 30), Modifiers{Multi: true})
	if got := c.SelectedNodes(); len(got) != 1 || got[0] != "b" {
		t.Errorf("selection = %v, want [b]", got)
	}
}

func TestEdgeSelectionExclusive(t *testing.T) {
	c, _ := newTestController(t, node("a", 0, 0, 100, 60))
	c.SelectNode("a")

	c.PointerDown(Hit{Kind: TargetEdge, EdgeID: "e1"}, pt(200, 200), Modifiers{})
	if got := c.SelectedNodes(); len(got) != 0 {
		t.Errorf("node selection = %v, want empty after edge select", got)
	}
	if c.SelectedEdge() != "e1" {
		t.Errorf("selected edge = %q, want e1", c.SelectedEdge())
	}

	c.SelectNode("a")
	if c.SelectedEdge() != "" {
		t.Error("edge selection survived node select")
	}
}

func TestSelectionChangeCancelsConnection(t *testing.T) {
	c, _ := newTestController(t,
		node("a", 0, 0, 100, 60),
		node("b", 300, 0, 100, 60),
	)
	c.PointerDown(Hit{Kind: TargetConnectHandle, NodeID: "a", Side: diagram.SideRight}, pt(100, 30), Modifiers{})
	c.SelectNode("b")
	if _, _, active := c.Connecting(); active {
		t.Error("connection mode survived selection change")
	}
}

func TestCommitFailureReported(t *testing.T) {
	var reported []string
	m := &recordingMutator{fail: errors.New(errors.ErrCodeNodeNotFound, "node a not found")}
	c := NewController(context.Background(), m, ReporterFunc(func(msg string) {
		reported = append(reported, msg)
	}))
	c.SyncNodes([]*diagram.Node{node("a", 100, 100, 150, 80)})

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(50, 0), Modifiers{})

	if len(reported) != 1 {
		t.Fatalf("reported = %v, want one message", reported)
	}
	if c.GestureActive() {
		t.Error("gesture still active after failed commit")
	}
	// Transient state already reverted: rendering shows committed data.
	if v, _ := c.NodeView("a"); v.Transient || v.X != 100 {
		t.Errorf("view = %+v, want committed (100, 100)", v)
	}
}

func TestClickOnMultiSelectionCollapsesToClickedNode(t *testing.T) {
	c, m := newTestController(t,
		node("a", 0, 0, 100, 60),
		node("b", 300, 0, 100, 60),
	)
	c.ToggleNode("a")
	c.ToggleNode("b")

	// Press and release on "a" without moving: the group stays put and the
	// selection collapses to the clicked node.
	c.PointerDown(nodeHit("a"), pt(50, 30), Modifiers{})
	c.PointerUp(Hit{Kind: TargetNode, NodeID: "a"}, pt(52, 31), Modifiers{})

	if len(m.calls) != 0 {
		t.Errorf("click committed %v, want nothing", m.calls)
	}
	if got := c.SelectedNodes(); len(got) != 1 || got[0] != "a" {
		t.Errorf("selection = %v, want [a]", got)
	}
}

func TestMultiSelectionSurvivesGroupDrag(t *testing.T) {
	c, _ := newTestController(t,
		node("a", 0, 0, 100, 60),
		node("b", 300, 0, 100, 60),
	)
	c.ToggleNode("a")
	c.ToggleNode("b")

	c.PointerDown(nodeHit("a"), pt(50, 30), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(150, 30), Modifiers{})

	if got := c.SelectedNodes(); len(got) != 2 {
		t.Errorf("selection = %v, want both nodes after a real drag", got)
	}
}

func TestSyncPreservesActiveOverlay(t *testing.T) {
	c, _ := newTestController(t, node("a", 100, 100, 150, 80))

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerMove(pt(30, 0), Modifiers{})

	// An authoritative refresh lands mid-gesture.
	c.SyncNodes([]*diagram.Node{node("a", 500, 500, 150, 80)})

	v, _ := c.NodeView("a")
	if !v.Transient || v.X != 130 {
		t.Errorf("view = %+v, want transient x=130 preferred over sync", v)
	}
}

func TestSyncDroppingDraggedNodeCancelsGesture(t *testing.T) {
	c, m := newTestController(t, node("a", 100, 100, 150, 80))

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerMove(pt(30, 0), Modifiers{})

	// A refresh deletes the node out from under the drag.
	c.SyncNodes(nil)

	c.PointerMove(pt(60, 0), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(60, 0), Modifiers{})

	if c.GestureActive() {
		t.Error("gesture survived losing its only node")
	}
	if len(m.calls) != 0 {
		t.Errorf("vanished node committed %v", m.calls)
	}
}

func TestSyncShrinksGroupDragToSurvivors(t *testing.T) {
	c, m := newTestController(t,
		node("a", 100, 100, 100, 60),
		node("b", 300, 100, 100, 60),
	)
	c.ToggleNode("a")
	c.ToggleNode("b")

	c.PointerDown(nodeHit("a"), pt(0, 0), Modifiers{})
	c.PointerMove(pt(25, 0), Modifiers{})

	c.SyncNodes([]*diagram.Node{node("b", 300, 100, 100, 60)})

	c.PointerMove(pt(50, 0), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(50, 0), Modifiers{})

	want := "pos b 350 100"
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
}

func TestSyncDroppingResizedNodeCancelsGesture(t *testing.T) {
	c, m := newTestController(t, node("a", 100, 100, 150, 80))

	c.PointerDown(Hit{Kind: TargetResizeHandle, NodeID: "a"}, pt(0, 0), Modifiers{})
	c.SyncNodes(nil)

	c.PointerMove(pt(40, 40), Modifiers{})
	c.PointerUp(Hit{Kind: TargetCanvas}, pt(40, 40), Modifiers{})

	if c.GestureActive() || len(m.calls) != 0 {
		t.Errorf("resize survived node removal: active=%v calls=%v", c.GestureActive(), m.calls)
	}
}

func TestSyncDroppingConnectionSourceCancels(t *testing.T) {
	c, m := newTestController(t,
		node("a", 0, 0, 100, 60),
		node("b", 300, 0, 100, 60),
	)

	c.PointerDown(Hit{Kind: TargetConnectHandle, NodeID: "a", Side: diagram.SideRight}, pt(100, 30), Modifiers{})
	c.SyncNodes([]*diagram.Node{node("b", 300, 0, 100, 60)})

	if _, _, active := c.Connecting(); active {
		t.Error("connection mode survived losing its source")
	}
	c.PointerUp(nodeHit("b"), pt(320, 30), Modifiers{})
	if len(m.calls) != 0 {
		t.Errorf("vanished source committed %v", m.calls)
	}
}
