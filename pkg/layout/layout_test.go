package layout

import (
	"math"
	"testing"

	"draftboard/pkg/diagram"
)

func node(id string, x, y, w, h float64) *diagram.Node {
	return &diagram.Node{ID: id, Shape: diagram.ShapeRectangle, X: x, Y: y, Width: w, Height: h}
}

func edge(src, dst string) *diagram.Edge {
	return diagram.NewEdge(src, dst)
}

func nodesN(count int) []*diagram.Node {
	out := make([]*diagram.Node, count)
	for i := range out {
		out[i] = node(string(rune('a'+i)), 0, 0, 100, 60)
	}
	return out
}

func TestGridPlacement(t *testing.T) {
	nodes := nodesN(5) // 5 nodes → 3 columns
	Grid(nodes, Options{})

	wants := []struct{ x, y float64 }{
		{100, 100}, {300, 100}, {500, 100},
		{100, 250}, {300, 250},
	}
	for i, want := range wants {
		if nodes[i].X != want.x || nodes[i].Y != want.y {
			t.Errorf("node %d at (%g, %g), want (%g, %g)", i, nodes[i].X, nodes[i].Y, want.x, want.y)
		}
	}
}

func TestGridExplicitColumns(t *testing.T) {
	nodes := nodesN(4)
	Grid(nodes, Options{Columns: 2, SpacingX: 100, SpacingY: 100, StartX: 10, StartY: 10})

	if nodes[2].X != 10 || nodes[2].Y != 110 {
		t.Errorf("node 2 at (%g, %g), want (10, 110)", nodes[2].X, nodes[2].Y)
	}
}

func TestTreeLevels(t *testing.T) {
	// a → b, a → c, b → d: a is the root, b/c level 1, d level 2.
	nodes := []*diagram.Node{
		node("a", 0, 0, 100, 60),
		node("b", 0, 0, 100, 60),
		node("c", 0, 0, 100, 60),
		node("d", 0, 0, 100, 60),
	}
	edges := []*diagram.Edge{edge("a", "b"), edge("a", "c"), edge("b", "d")}
	Tree(nodes, edges, Options{})

	byID := map[string]*diagram.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	if byID["a"].Y != 100 {
		t.Errorf("root y = %g, want 100", byID["a"].Y)
	}
	if byID["b"].Y != 250 || byID["c"].Y != 250 {
		t.Errorf("level-1 y = %g, %g, want 250", byID["b"].Y, byID["c"].Y)
	}
	if byID["d"].Y != 400 {
		t.Errorf("level-2 y = %g, want 400", byID["d"].Y)
	}
	if byID["b"].X == byID["c"].X {
		t.Error("siblings share an x position")
	}
}

func TestTreeHorizontal(t *testing.T) {
	nodes := []*diagram.Node{node("a", 0, 0, 100, 60), node("b", 0, 0, 100, 60)}
	Tree(nodes, []*diagram.Edge{edge("a", "b")}, Options{Orientation: Horizontal})

	if nodes[0].X != 100 || nodes[1].X != 300 {
		t.Errorf("x = %g, %g, want 100, 300 (levels advance on x)", nodes[0].X, nodes[1].X)
	}
}

func TestTreeCycleFallsBackToFirstNode(t *testing.T) {
	nodes := []*diagram.Node{node("a", 0, 0, 100, 60), node("b", 0, 0, 100, 60)}
	edges := []*diagram.Edge{edge("a", "b"), edge("b", "a")}
	Tree(nodes, edges, Options{})

	if nodes[0].Y != 100 {
		t.Errorf("cycle root y = %g, want 100", nodes[0].Y)
	}
	if nodes[1].Y != 250 {
		t.Errorf("cycle child y = %g, want 250", nodes[1].Y)
	}
}

func TestForceDeterministic(t *testing.T) {
	build := func() ([]*diagram.Node, []*diagram.Edge) {
		nodes := nodesN(4)
		return nodes, []*diagram.Edge{edge("a", "b"), edge("b", "c")}
	}

	n1, e1 := build()
	Force(n1, e1, ForceOptions{})
	n2, e2 := build()
	Force(n2, e2, ForceOptions{})

	for i := range n1 {
		if n1[i].X != n2[i].X || n1[i].Y != n2[i].Y {
			t.Fatalf("non-deterministic result for node %d", i)
		}
	}
}

func TestForceSeparatesNodes(t *testing.T) {
	nodes := nodesN(3)
	Force(nodes, nil, ForceOptions{})

	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			if d := math.Hypot(a.X-b.X, a.Y-b.Y); d < 50 {
				t.Errorf("nodes %s and %s only %g apart", a.ID, b.ID, d)
			}
		}
	}
}

func TestAlign(t *testing.T) {
	tests := []struct {
		name      string
		alignment Alignment
		check     func(t *testing.T, a, b *diagram.Node)
	}{
		{"Left", AlignLeft, func(t *testing.T, a, b *diagram.Node) {
			if a.X != 50 || b.X != 50 {
				t.Errorf("x = %g, %g, want both 50", a.X, b.X)
			}
		}},
		{"Right", AlignRight, func(t *testing.T, a, b *diagram.Node) {
			if a.X+a.Width != 400 || b.X+b.Width != 400 {
				t.Errorf("right edges = %g, %g, want both 400", a.X+a.Width, b.X+b.Width)
			}
		}},
		{"Top", AlignTop, func(t *testing.T, a, b *diagram.Node) {
			if a.Y != 20 || b.Y != 20 {
				t.Errorf("y = %g, %g, want both 20", a.Y, b.Y)
			}
		}},
		{"Bottom", AlignBottom, func(t *testing.T, a, b *diagram.Node) {
			if a.Y+a.Height != 160 || b.Y+b.Height != 160 {
				t.Errorf("bottom edges = %g, %g, want both 160", a.Y+a.Height, b.Y+b.Height)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := node("a", 50, 20, 100, 60)
			b := node("b", 300, 100, 100, 60)
			nodes := []*diagram.Node{a, b}
			if err := Align(nodes, []string{"a", "b"}, tt.alignment); err != nil {
				t.Fatalf("Align() error = %v", err)
			}
			tt.check(t, a, b)
		})
	}
}

func TestAlignCenterH(t *testing.T) {
	a := node("a", 0, 0, 100, 60)   // center x = 50
	b := node("b", 200, 0, 100, 60) // center x = 250
	if err := Align([]*diagram.Node{a, b}, []string{"a", "b"}, AlignCenterH); err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	// Shared center = 150.
	if a.X != 100 || b.X != 100 {
		t.Errorf("x = %g, %g, want both 100", a.X, b.X)
	}
}

func TestAlignNeedsTwoNodes(t *testing.T) {
	a := node("a", 0, 0, 100, 60)
	if err := Align([]*diagram.Node{a}, []string{"a"}, AlignLeft); err == nil {
		t.Error("Align() with one node did not fail")
	}
	if err := Align([]*diagram.Node{a}, []string{"a", "ghost"}, AlignLeft); err == nil {
		t.Error("Align() with unresolved ids did not fail")
	}
}

func TestAlignUnknownAlignment(t *testing.T) {
	a := node("a", 0, 0, 100, 60)
	b := node("b", 10, 0, 100, 60)
	if err := Align([]*diagram.Node{a, b}, []string{"a", "b"}, "diagonal"); err == nil {
		t.Error("unknown alignment did not fail")
	}
}

func TestDistributeHorizontal(t *testing.T) {
	a := node("a", 0, 0, 100, 60)
	b := node("b", 700, 0, 100, 60)
	c := node("c", 900, 0, 100, 60)
	if err := Distribute([]*diagram.Node{a, b, c}, []string{"a", "b", "c"}, AxisHorizontal); err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if a.X != 0 || b.X != 450 || c.X != 900 {
		t.Errorf("x = %g, %g, %g, want 0, 450, 900", a.X, b.X, c.X)
	}
}

func TestDistributeNeedsThreeNodes(t *testing.T) {
	a := node("a", 0, 0, 100, 60)
	b := node("b", 10, 0, 100, 60)
	if err := Distribute([]*diagram.Node{a, b}, []string{"a", "b"}, AxisHorizontal); err == nil {
		t.Error("Distribute() with two nodes did not fail")
	}
}

func TestSnapToGrid(t *testing.T) {
	a := node("a", 17, 92, 100, 60)
	SnapToGrid([]*diagram.Node{a}, 20)
	if a.X != 20 || a.Y != 100 {
		t.Errorf("snapped to (%g, %g), want (20, 100)", a.X, a.Y)
	}

	b := node("b", 17, 92, 100, 60)
	SnapToGrid([]*diagram.Node{b}, 0)
	if b.X != 17 || b.Y != 92 {
		t.Error("grid size 0 must leave positions untouched")
	}
}

func TestPackWraps(t *testing.T) {
	wide := []*diagram.Node{
		node("a", 0, 0, 500, 100),
		node("b", 0, 0, 500, 100),
		node("c", 0, 0, 500, 100),
	}
	Pack(wide, 20, Options{})

	// Two 500-wide nodes fit a 1200-wide row from x=100; the third wraps.
	if wide[0].Y != wide[1].Y {
		t.Errorf("first two nodes not on one row: y = %g, %g", wide[0].Y, wide[1].Y)
	}
	if wide[2].Y <= wide[0].Y {
		t.Errorf("third node did not wrap: y = %g", wide[2].Y)
	}
}

func TestApplyUnknownAlgorithm(t *testing.T) {
	d := diagram.New("t")
	if err := Apply("spiral", d, Options{}); err == nil {
		t.Error("unknown algorithm did not fail")
	}
}
