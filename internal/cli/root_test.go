package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"draftboard/pkg/diagram"
)

// writeTestDiagram builds a small diagram file for command tests.
func writeTestDiagram(t *testing.T, dir string) string {
	t.Helper()
	d := diagram.New("Test Architecture")
	a := diagram.NewNode()
	a.ID, a.Label = "a", "API"
	b := diagram.NewNode()
	b.ID, b.Label, b.Shape = "b", "DB", diagram.ShapeEllipse
	b.X, b.Y = 400, 100
	d.Nodes = append(d.Nodes, a, b)
	d.Edges = append(d.Edges, diagram.NewEdge("a", "b"))

	path := filepath.Join(dir, "test.json")
	if err := diagram.WriteFile(d, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewCommandCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.json")
	cmd := newNewCmd()
	cmd.SetArgs([]string{path, "--name", "My Diagram", "--grid", "10"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	d, err := diagram.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "My Diagram" {
		t.Errorf("name = %q, want My Diagram", d.Name)
	}
	if d.Metadata.GridSize != 10 {
		t.Errorf("grid = %d, want 10", d.Metadata.GridSize)
	}
}

func TestNewCommandRefusesOverwrite(t *testing.T) {
	path := writeTestDiagram(t, t.TempDir())
	cmd := newNewCmd()
	cmd.SetArgs([]string{path})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected refusal without --force")
	}

	force := newNewCmd()
	force.SetArgs([]string{path, "--force"})
	if err := force.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestInfoCommand(t *testing.T) {
	path := writeTestDiagram(t, t.TempDir())

	var out bytes.Buffer
	cmd := newInfoCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--validate"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	text := out.String()
	for _, want := range []string{"Test Architecture", "Nodes: 2", "Edges: 1", "no issues found"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestExportCommandWritesSVG(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDiagram(t, dir)

	configPath := ""
	cmd := newExportCmd(&configPath)
	out := filepath.Join(dir, "out.svg")
	cmd.SetArgs([]string{path, "--format", "svg", "--output", out, "--no-cache"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("output is not SVG")
	}
	if !strings.Contains(string(data), ">API</text>") {
		t.Error("output missing node label")
	}
}

func TestExportCommandRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDiagram(t, dir)

	configPath := ""
	cmd := newExportCmd(&configPath)
	cmd.SetArgs([]string{path, "--format", "bmp"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestLayoutCommandGrid(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDiagram(t, dir)

	cmd := newLayoutCmd()
	cmd.SetArgs([]string{path, "--strategy", "grid"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	d, err := diagram.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	positions := map[[2]float64]bool{}
	for _, n := range d.Nodes {
		positions[[2]float64{n.X, n.Y}] = true
	}
	if len(positions) != len(d.Nodes) {
		t.Error("grid layout produced overlapping positions")
	}
}

func TestLayoutCommandAlign(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDiagram(t, dir)

	cmd := newLayoutCmd()
	cmd.SetArgs([]string{path, "--align", "left", "--nodes", "a,b"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	d, err := diagram.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.Node("a").X != d.Node("b").X {
		t.Errorf("align left: a.X=%v b.X=%v", d.Node("a").X, d.Node("b").X)
	}
}

func TestLayoutCommandRequiresOperation(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDiagram(t, dir)

	cmd := newLayoutCmd()
	cmd.SetArgs([]string{path})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected error with no operation selected")
	}
}
