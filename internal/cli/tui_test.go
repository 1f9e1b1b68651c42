package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"draftboard/pkg/diagram"
)

// newTestEditor builds an editor over an in-memory manager with two nodes.
func newTestEditor(t *testing.T) (*editorModel, *diagram.Manager) {
	t.Helper()
	m := diagram.NewManager(0)

	a := diagram.NewNode()
	a.ID, a.Label = "a", "API"
	a.X, a.Y, a.Width, a.Height = 100, 100, 120, 60
	if _, err := m.AddNode(a); err != nil {
		t.Fatal(err)
	}
	b := diagram.NewNode()
	b.ID, b.Label = "b", "DB"
	b.X, b.Y, b.Width, b.Height = 400, 100, 120, 60
	if _, err := m.AddNode(b); err != nil {
		t.Fatal(err)
	}

	em := newEditorModel(context.Background(), m, "")
	em.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return em, m
}

func press(em *editorModel, x, y int) {
	em.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func drag(em *editorModel, x, y int) {
	em.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
}

func release(em *editorModel, x, y int) {
	em.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func key(em *editorModel, s string) {
	em.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// Node "a" spans canvas (100,100)-(220,160). With 10x20 unit cells and the
// title bar on row 0, that is columns 10-22, rows 6-8 on screen.
func TestEditorDragMovesNode(t *testing.T) {
	em, m := newTestEditor(t)

	press(em, 15, 7)
	drag(em, 25, 7)
	release(em, 25, 7)

	n, err := m.GetNode("a")
	if err != nil {
		t.Fatal(err)
	}
	// 100 canvas units right, snapped to the 20-unit grid.
	if n.X != 200 {
		t.Errorf("a.X = %v, want 200", n.X)
	}
	if n.Y != 100 {
		t.Errorf("a.Y = %v, want 100", n.Y)
	}
}

func TestEditorClickSelects(t *testing.T) {
	em, _ := newTestEditor(t)

	press(em, 15, 7)
	release(em, 15, 7)

	if !em.ctrl.IsSelected("a") {
		t.Error("click did not select node a")
	}
	if em.ctrl.IsSelected("b") {
		t.Error("node b should not be selected")
	}
}

func TestEditorConnectCreatesEdge(t *testing.T) {
	em, m := newTestEditor(t)

	key(em, "c")
	if !em.connectMode {
		t.Fatal("c did not enter connect mode")
	}

	press(em, 15, 7)   // source: node a
	drag(em, 30, 7)
	release(em, 45, 7) // target: node b

	d := m.Diagram()
	if len(d.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(d.Edges))
	}
	e := d.Edges[0]
	if e.Source != "a" || e.Target != "b" {
		t.Errorf("edge = %s -> %s, want a -> b", e.Source, e.Target)
	}
	if em.connectMode {
		t.Error("connect mode should end after the edge is made")
	}
}

func TestEditorAddAndUndo(t *testing.T) {
	em, m := newTestEditor(t)

	key(em, "n")
	if got := len(m.Diagram().Nodes); got != 3 {
		t.Fatalf("nodes after add = %d, want 3", got)
	}

	key(em, "u")
	if got := len(m.Diagram().Nodes); got != 2 {
		t.Errorf("nodes after undo = %d, want 2", got)
	}
}

func TestEditorDeleteSelection(t *testing.T) {
	em, m := newTestEditor(t)

	press(em, 15, 7)
	release(em, 15, 7)
	key(em, "d")

	if _, err := m.GetNode("a"); err == nil {
		t.Error("node a should be deleted")
	}
	if _, err := m.GetNode("b"); err != nil {
		t.Error("node b should survive")
	}
}

func TestEditorViewShowsLabels(t *testing.T) {
	em, _ := newTestEditor(t)

	view := em.View()
	if !strings.Contains(view, "API") {
		t.Error("view missing label API")
	}
	if !strings.Contains(view, "DB") {
		t.Error("view missing label DB")
	}
	if !strings.Contains(view, "2 nodes, 0 edges") {
		t.Errorf("title missing counts: %s", strings.SplitN(view, "\n", 2)[0])
	}
}

func TestEditorBoxSelect(t *testing.T) {
	em, _ := newTestEditor(t)

	// Sweep a box over both nodes from empty canvas.
	press(em, 5, 3)
	drag(em, 60, 12)
	release(em, 60, 12)

	sel := em.ctrl.SelectedNodes()
	if len(sel) != 2 {
		t.Errorf("box select = %v, want both nodes", sel)
	}
}
