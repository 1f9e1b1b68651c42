package interaction

import (
	"context"
	"testing"

	"draftboard/pkg/diagram"
)

func TestManagerMutator(t *testing.T) {
	ctx := context.Background()
	mgr := diagram.NewManager(0)
	for _, id := range []string{"a", "b"} {
		n := diagram.NewNode()
		n.ID = id
		if _, err := mgr.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	mm := NewManagerMutator(mgr)

	if err := mm.UpdatePosition(ctx, "a", 200, 60); err != nil {
		t.Fatalf("UpdatePosition() error = %v", err)
	}
	if err := mm.UpdateSize(ctx, "a", 300, 120); err != nil {
		t.Fatalf("UpdateSize() error = %v", err)
	}
	if err := mm.UpdateRotation(ctx, "a", 45); err != nil {
		t.Fatalf("UpdateRotation() error = %v", err)
	}
	n, err := mgr.GetNode("a")
	if err != nil {
		t.Fatal(err)
	}
	if n.X != 200 || n.Width != 300 || n.Rotation != 45 {
		t.Errorf("node = %+v, want x=200 width=300 rotation=45", n)
	}

	if err := mm.MoveMany(ctx, []diagram.NodeMove{{ID: "a", X: 10, Y: 10}, {ID: "b", X: 20, Y: 20}}); err != nil {
		t.Fatalf("MoveMany() error = %v", err)
	}

	if err := mm.CreateEdge(ctx, "a", diagram.SideRight, "b", diagram.SideTop); err != nil {
		t.Fatalf("CreateEdge() error = %v", err)
	}
	edges := mgr.EdgesForNode("a")
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}
	e := edges[0]
	if e.SourceSide != diagram.SideRight || e.TargetSide != diagram.SideTop {
		t.Errorf("edge sides = (%q, %q), want (right, top)", e.SourceSide, e.TargetSide)
	}

	if err := mm.UpdatePosition(ctx, "ghost", 0, 0); err == nil {
		t.Error("UpdatePosition(ghost) did not fail")
	}
}
