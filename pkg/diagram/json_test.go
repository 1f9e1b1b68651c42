package diagram

import (
	"path/filepath"
	"strings"
	"testing"
)

func sampleDiagram() *Diagram {
	d := New("Test")
	a := NewNode()
	a.ID = "n0000000a"
	a.Label = "API"
	b := NewNode()
	b.ID = "n0000000b"
	b.Label = "DB"
	b.Shape = ShapeEllipse
	b.X, b.Y = 400, 200
	d.Nodes = append(d.Nodes, a, b)
	e := NewEdge(a.ID, b.ID)
	e.ID = "e0000000a"
	d.Edges = append(d.Edges, e)
	return d
}

func TestRoundTrip(t *testing.T) {
	d := sampleDiagram()
	data, err := Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Name != d.Name {
		t.Errorf("name = %q, want %q", got.Name, d.Name)
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges, want 2, 1", len(got.Nodes), len(got.Edges))
	}
	if got.Edges[0].Source != "n0000000a" || got.Edges[0].Target != "n0000000b" {
		t.Errorf("edge endpoints = (%q, %q)", got.Edges[0].Source, got.Edges[0].Target)
	}
}

func TestFileRoundTrip(t *testing.T) {
	d := sampleDiagram()
	path := filepath.Join(t.TempDir(), "test.json")
	if err := WriteFile(d, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got.ID != d.ID || len(got.Nodes) != len(d.Nodes) {
		t.Errorf("round trip lost data: id %q vs %q, %d nodes vs %d",
			got.ID, d.ID, len(got.Nodes), len(d.Nodes))
	}
}

func TestUnmarshalFillsDefaults(t *testing.T) {
	got, err := Unmarshal([]byte(`{"name":"Bare"}`))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.ID == "" {
		t.Error("missing id was not generated")
	}
	if got.Nodes == nil || got.Edges == nil {
		t.Error("nodes/edges slices must be non-nil after load")
	}
}

func TestUnmarshalClampsNodes(t *testing.T) {
	data := []byte(`{
		"name": "Clamped",
		"nodes": [{"id": "n1", "x": -50, "y": 10, "width": 5, "height": 5, "rotation": -90}],
		"edges": []
	}`)
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	n := got.Nodes[0]
	if n.X != 0 {
		t.Errorf("x = %g, want 0", n.X)
	}
	if n.Width != MinNodeWidth || n.Height != MinNodeHeight {
		t.Errorf("size = %gx%g, want %gx%g", n.Width, n.Height, MinNodeWidth, MinNodeHeight)
	}
	if n.Rotation != 270 {
		t.Errorf("rotation = %g, want 270", n.Rotation)
	}
}

func TestUnmarshalLegacyEdges(t *testing.T) {
	data := []byte(`{
		"name": "Legacy",
		"nodes": [
			{"id": "a", "x": 0, "y": 0, "width": 100, "height": 50},
			{"id": "b", "x": 200, "y": 0, "width": 100, "height": 50}
		],
		"edges": [{"id": "e1", "from": "a", "to": "b"}]
	}`)
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	e := got.Edges[0]
	if e.Source != "a" || e.Target != "b" {
		t.Errorf("edge endpoints = (%q, %q), want (a, b)", e.Source, e.Target)
	}
	// Canonical names on re-encode.
	out, err := Marshal(got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), `"source"`) {
		t.Error("re-encoded edge missing canonical source field")
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte("not json")); err == nil {
		t.Error("Unmarshal(garbage) did not fail")
	}
}
