package diagram

import (
	"reflect"
	"testing"
)

// chain builds a diagram with the given directed edges over auto-created nodes.
func chain(edges ...[2]string) *Diagram {
	d := New("analysis")
	seen := map[string]bool{}
	addNode := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		n := NewNode()
		n.ID = id
		n.Label = "node " + id
		d.Nodes = append(d.Nodes, n)
	}
	for i, e := range edges {
		addNode(e[0])
		addNode(e[1])
		edge := NewEdge(e[0], e[1])
		edge.ID = "e" + string(rune('0'+i))
		d.Edges = append(d.Edges, edge)
	}
	return d
}

func TestComponents(t *testing.T) {
	d := chain([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"x", "y"})
	lone := NewNode()
	lone.ID = "z"
	d.Nodes = append(d.Nodes, lone)

	comps := Components(d)
	if len(comps) != 3 {
		t.Fatalf("Components() = %d components, want 3", len(comps))
	}
	sizes := map[int]int{}
	for _, c := range comps {
		sizes[len(c)]++
	}
	if sizes[3] != 1 || sizes[2] != 1 || sizes[1] != 1 {
		t.Errorf("component sizes = %v, want one each of 3, 2, 1", sizes)
	}
}

func TestConnections(t *testing.T) {
	d := chain([2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "c"})
	conns := Connections(d)

	if got := conns["a"]; got.Outgoing != 2 || got.Incoming != 0 {
		t.Errorf("a = %+v, want 2 outgoing, 0 incoming", got)
	}
	if got := conns["c"]; got.Incoming != 2 || got.Outgoing != 0 {
		t.Errorf("c = %+v, want 2 incoming, 0 outgoing", got)
	}
	if got := conns["b"]; got.Total() != 2 {
		t.Errorf("b total = %d, want 2", got.Total())
	}
}

func TestSummarize(t *testing.T) {
	d := chain([2]string{"a", "b"}, [2]string{"a", "c"})
	d.Nodes[0].Tags = []string{"web", "prod"}
	d.Nodes[1].Tags = []string{"prod"}
	d.Nodes[1].Type = TypeDatabase
	lone := NewNode()
	lone.ID = "z"
	d.Nodes = append(d.Nodes, lone)

	s := Summarize(d, 5)
	if s.TotalNodes != 4 || s.TotalEdges != 2 {
		t.Errorf("totals = %d nodes, %d edges, want 4, 2", s.TotalNodes, s.TotalEdges)
	}
	if s.NodesByType["database"] != 1 || s.NodesByType["component"] != 3 {
		t.Errorf("NodesByType = %v", s.NodesByType)
	}
	if !reflect.DeepEqual(s.TagsInUse, []string{"prod", "web"}) {
		t.Errorf("TagsInUse = %v, want [prod web]", s.TagsInUse)
	}
	if s.Components != 2 {
		t.Errorf("Components = %d, want 2", s.Components)
	}
	if s.OrphanCount != 1 {
		t.Errorf("OrphanCount = %d, want 1", s.OrphanCount)
	}
	if len(s.MostConnected) == 0 || s.MostConnected[0].NodeID != "a" {
		t.Errorf("MostConnected = %+v, want a first", s.MostConnected)
	}
	for _, c := range s.MostConnected {
		if c.NodeID == "z" {
			t.Error("orphan listed among most connected")
		}
	}
}

func TestSummarizeTopN(t *testing.T) {
	d := chain([2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"a", "d"})
	s := Summarize(d, 2)
	if len(s.MostConnected) != 2 {
		t.Errorf("MostConnected = %d entries, want 2", len(s.MostConnected))
	}
}

func TestPaths(t *testing.T) {
	d := chain([2]string{"a", "b"}, [2]string{"b", "d"}, [2]string{"a", "c"}, [2]string{"c", "d"})
	paths := Paths(d, "a", "d", 10)
	if len(paths) != 2 {
		t.Fatalf("Paths() = %d paths, want 2: %v", len(paths), paths)
	}
	for _, p := range paths {
		if p[0] != "a" || p[len(p)-1] != "d" {
			t.Errorf("path %v does not run a..d", p)
		}
	}
}

func TestPathsMaxDepth(t *testing.T) {
	d := chain([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})
	if paths := Paths(d, "a", "d", 2); len(paths) != 0 {
		t.Errorf("Paths() with depth 2 = %v, want none", paths)
	}
}

func TestCycles(t *testing.T) {
	d := chain([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"}, [2]string{"c", "d"})
	cycles := Cycles(d)
	if len(cycles) != 1 {
		t.Fatalf("Cycles() = %d cycles, want 1: %v", len(cycles), cycles)
	}
	c := cycles[0]
	if len(c) != 4 || c[0] != c[len(c)-1] {
		t.Errorf("cycle %v is not closed over 3 nodes", c)
	}
}

func TestCyclesNone(t *testing.T) {
	d := chain([2]string{"a", "b"}, [2]string{"b", "c"})
	if cycles := Cycles(d); len(cycles) != 0 {
		t.Errorf("Cycles() on a DAG = %v, want none", cycles)
	}
}
