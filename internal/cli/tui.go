package cli

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"draftboard/pkg/diagram"
	"draftboard/pkg/geom"
	"draftboard/pkg/interaction"
)

// One terminal cell covers cellW x cellH diagram units. The 1:2 ratio
// roughly matches character glyph proportions, so squares look square.
const (
	cellW = 10.0
	cellH = 20.0
)

// Cell styles used by the canvas painter.
const (
	paintNone uint8 = iota
	paintDim
	paintNode
	paintSelected
	paintTransient
	paintEdge
	paintEdgeSelected
	paintHandle
	paintLabel
)

var paintStyles = map[uint8]lipgloss.Style{
	paintDim:          lipgloss.NewStyle().Foreground(colorDim),
	paintNode:         lipgloss.NewStyle().Foreground(colorWhite),
	paintSelected:     lipgloss.NewStyle().Foreground(colorCyan).Bold(true),
	paintTransient:    lipgloss.NewStyle().Foreground(colorYellow),
	paintEdge:         lipgloss.NewStyle().Foreground(colorGray),
	paintEdgeSelected: lipgloss.NewStyle().Foreground(colorCyan),
	paintHandle:       lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	paintLabel:        lipgloss.NewStyle().Foreground(colorWhite),
}

var shapeGlyphs = map[diagram.Shape]rune{
	diagram.ShapeRectangle: '□',
	diagram.ShapeEllipse:   '○',
	diagram.ShapeDiamond:   '◇',
	diagram.ShapeTriangle:  '△',
	diagram.ShapeArrow:     '▷',
	diagram.ShapePill:      '▢',
}

// editorModel is the bubbletea model for the terminal editor. Mouse events
// become pointer gestures on the interaction controller; the controller
// commits finished gestures through the manager, which feeds the next frame.
type editorModel struct {
	manager *diagram.Manager
	ctrl    *interaction.Controller
	d       *diagram.Diagram
	path    string

	width, height int
	connectMode   bool
	showGrid      bool
	showHelp      bool
	status        string
	saved         int
}

func newEditorModel(ctx context.Context, m *diagram.Manager, path string) *editorModel {
	em := &editorModel{manager: m, path: path}
	reporter := interaction.ReporterFunc(func(msg string) { em.status = msg })
	em.ctrl = interaction.NewController(ctx, interaction.NewManagerMutator(m), reporter)
	em.sync()
	em.showGrid = em.d.Metadata.ShowGrid
	return em
}

// sync pulls the authoritative diagram state into the controller.
func (m *editorModel) sync() {
	m.d = m.manager.Diagram()
	m.ctrl.SyncNodes(m.d.Nodes)
	m.ctrl.SetGridSize(float64(m.d.Metadata.GridSize))
}

func (m *editorModel) Init() tea.Cmd { return nil }

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	m.sync()
	return m, nil
}

func (m *editorModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc":
		m.ctrl.Cancel()
		m.connectMode = false
		m.status = ""
	case "?":
		m.showHelp = !m.showHelp
	case "s":
		if _, err := m.manager.Save(""); err != nil {
			m.status = err.Error()
		} else {
			m.saved++
			m.status = "saved"
		}
	case "n":
		n := diagram.NewNode()
		n.X, n.Y = m.freeSpot()
		if created, err := m.manager.AddNode(n); err != nil {
			m.status = err.Error()
		} else {
			m.sync()
			m.ctrl.SelectNode(created.ID)
		}
	case "c":
		m.connectMode = !m.connectMode
		if m.connectMode {
			m.status = "connect: click a source node, then a target"
		} else {
			m.ctrl.Cancel()
			m.status = ""
		}
	case "d", "delete", "backspace":
		m.deleteSelection()
	case "u":
		if err := m.manager.Undo(); err != nil {
			m.status = err.Error()
		}
	case "ctrl+r":
		if err := m.manager.Redo(); err != nil {
			m.status = err.Error()
		}
	case "g":
		m.showGrid = !m.showGrid
	case "tab":
		m.cycleSelection()
	}
	return nil
}

// freeSpot picks a position for a new node below the current bottommost one.
func (m *editorModel) freeSpot() (x, y float64) {
	x, y = 100, 100
	for _, n := range m.d.Nodes {
		if bottom := n.Y + n.Height + 40; bottom > y {
			y = bottom
		}
	}
	return x, y
}

func (m *editorModel) deleteSelection() {
	if id := m.ctrl.SelectedEdge(); id != "" {
		if err := m.manager.DeleteEdge(id); err != nil {
			m.status = err.Error()
		}
	}
	for _, id := range m.ctrl.SelectedNodes() {
		if err := m.manager.DeleteNode(id); err != nil {
			m.status = err.Error()
		}
	}
	m.ctrl.ClearSelection()
}

func (m *editorModel) cycleSelection() {
	nodes := m.zOrdered()
	if len(nodes) == 0 {
		return
	}
	selected := m.ctrl.SelectedNodes()
	next := 0
	if len(selected) == 1 {
		for i, n := range nodes {
			if n.ID == selected[0] {
				next = (i + 1) % len(nodes)
				break
			}
		}
	}
	m.ctrl.SelectNode(nodes[next].ID)
}

// =============================================================================
// Mouse handling
// =============================================================================

func (m *editorModel) handleMouse(msg tea.MouseMsg) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionMotion {
		return
	}
	p := m.toCanvas(msg.X, msg.Y)
	mods := interaction.Modifiers{Multi: msg.Shift, FreeRotate: msg.Alt}

	switch msg.Action {
	case tea.MouseActionPress:
		m.ctrl.PointerDown(m.hitTest(p), p, mods)
	case tea.MouseActionMotion:
		m.ctrl.PointerMove(p, mods)
	case tea.MouseActionRelease:
		m.ctrl.PointerUp(m.hitTest(p), p, mods)
		if m.connectMode {
			if _, _, active := m.ctrl.Connecting(); !active {
				m.connectMode = false
			}
		}
	}
}

// toCanvas maps a terminal cell to diagram coordinates. Row 0 is the title
// bar, so the canvas starts one row down.
func (m *editorModel) toCanvas(x, y int) geom.Point {
	return geom.Point{
		X: (float64(x) + 0.5) * cellW,
		Y: (float64(y-1) + 0.5) * cellH,
	}
}

// zOrdered returns nodes back to front.
func (m *editorModel) zOrdered() []*diagram.Node {
	nodes := make([]*diagram.Node, len(m.d.Nodes))
	copy(nodes, m.d.Nodes)
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].ZIndex != nodes[j].ZIndex {
			return nodes[i].ZIndex < nodes[j].ZIndex
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// hitTest resolves what sits under a canvas point, topmost node first.
// Handle zones only exist on selected nodes, matching the rendered handles.
func (m *editorModel) hitTest(p geom.Point) interaction.Hit {
	nodes := m.zOrdered()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		selected := m.ctrl.IsSelected(n.ID)

		if selected {
			cx, _ := n.Center()
			if math.Abs(p.X-cx) <= cellW && p.Y < n.Y && p.Y >= n.Y-1.5*cellH {
				return interaction.Hit{Kind: interaction.TargetRotateHandle, NodeID: n.ID}
			}
		}

		inside := p.X >= n.X && p.X <= n.X+n.Width && p.Y >= n.Y && p.Y <= n.Y+n.Height
		if !inside {
			continue
		}
		if selected && p.X > n.X+n.Width-cellW && p.Y > n.Y+n.Height-cellH {
			return interaction.Hit{Kind: interaction.TargetResizeHandle, NodeID: n.ID}
		}
		if m.connectMode {
			return interaction.Hit{
				Kind:   interaction.TargetConnectHandle,
				NodeID: n.ID,
				Side:   geom.SideOfPoint(n, p),
			}
		}
		return interaction.Hit{Kind: interaction.TargetNode, NodeID: n.ID}
	}

	if id := m.edgeAt(p); id != "" {
		return interaction.Hit{Kind: interaction.TargetEdge, EdgeID: id}
	}
	return interaction.Hit{Kind: interaction.TargetCanvas}
}

// edgeAt finds an edge whose curve passes within half a cell of p.
func (m *editorModel) edgeAt(p geom.Point) string {
	for _, e := range m.d.Edges {
		src, dst := m.d.Node(e.Source), m.d.Node(e.Target)
		if src == nil || dst == nil {
			continue
		}
		for _, q := range geom.RouteForEdge(e, src, dst).Flatten(24) {
			if p.Dist(q) <= cellH/2 {
				return e.ID
			}
		}
	}
	return ""
}

// =============================================================================
// Rendering
// =============================================================================

type cell struct {
	r  rune
	st uint8
}

func (m *editorModel) View() string {
	if m.width == 0 || m.height < 4 {
		return ""
	}
	rows := m.height - 2
	grid := make([][]cell, rows)
	for i := range grid {
		grid[i] = make([]cell, m.width)
		for j := range grid[i] {
			grid[i][j] = cell{r: ' '}
		}
	}

	if m.showGrid {
		m.paintGrid(grid)
	}
	m.paintEdges(grid)
	for _, n := range m.zOrdered() {
		m.paintNodeBox(grid, n)
	}
	m.paintConnection(grid)
	m.paintSelectionBox(grid)

	var b strings.Builder
	b.WriteString(m.titleBar())
	b.WriteByte('\n')
	for _, row := range grid {
		b.WriteString(renderRow(row))
		b.WriteByte('\n')
	}
	if m.showHelp {
		return b.String() + m.helpBar()
	}
	return b.String() + m.statusBar()
}

func renderRow(row []cell) string {
	var b strings.Builder
	// Batch runs of equally-styled cells so each row renders with a handful
	// of escape sequences instead of one per cell.
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i].st == row[start].st {
			continue
		}
		var run strings.Builder
		for _, c := range row[start:i] {
			run.WriteRune(c.r)
		}
		if st, ok := paintStyles[row[start].st]; ok {
			b.WriteString(st.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		start = i
	}
	return b.String()
}

func (m *editorModel) plot(grid [][]cell, col, row int, r rune, st uint8) {
	if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
		return
	}
	grid[row][col] = cell{r: r, st: st}
}

func toCell(p geom.Point) (col, row int) {
	return int(p.X / cellW), int(p.Y / cellH)
}

func (m *editorModel) paintGrid(grid [][]cell) {
	if m.d.Metadata.GridSize <= 0 {
		return
	}
	stepX := int(math.Max(1, float64(m.d.Metadata.GridSize)/cellW))
	stepY := int(math.Max(1, float64(m.d.Metadata.GridSize)/cellH))
	for row := 0; row < len(grid); row += stepY {
		for col := 0; col < len(grid[row]); col += stepX {
			grid[row][col] = cell{r: '·', st: paintDim}
		}
	}
}

func (m *editorModel) paintEdges(grid [][]cell) {
	selected := m.ctrl.SelectedEdge()
	for _, e := range m.d.Edges {
		src, dst := m.viewNode(e.Source), m.viewNode(e.Target)
		if src == nil || dst == nil {
			continue
		}
		st := paintEdge
		if e.ID == selected {
			st = paintEdgeSelected
		}
		points := geom.RouteForEdge(e, src, dst).Flatten(48)
		for _, q := range points {
			col, row := toCell(q)
			m.plot(grid, col, row, edgeRune(e.Style), st)
		}
		if e.ArrowEnd != diagram.ArrowNone && len(points) > 0 {
			col, row := toCell(points[len(points)-1])
			m.plot(grid, col, row, '▸', st)
		}
	}
}

func edgeRune(style diagram.LineStyle) rune {
	switch style {
	case diagram.LineDotted:
		return '·'
	case diagram.LineDashed:
		return '╌'
	}
	return '─'
}

// viewNode returns a copy of the node carrying transient gesture geometry,
// so edges and boxes track the pointer mid-drag.
func (m *editorModel) viewNode(id string) *diagram.Node {
	n := m.d.Node(id)
	if n == nil {
		return nil
	}
	view, ok := m.ctrl.NodeView(id)
	if !ok {
		return n
	}
	c := *n
	c.X, c.Y = view.X, view.Y
	c.Width, c.Height = view.Width, view.Height
	c.Rotation = view.Rotation
	return &c
}

func (m *editorModel) paintNodeBox(grid [][]cell, n *diagram.Node) {
	n = m.viewNode(n.ID)
	selected := m.ctrl.IsSelected(n.ID)

	st := paintNode
	if view, ok := m.ctrl.NodeView(n.ID); ok && view.Transient {
		st = paintTransient
	} else if selected {
		st = paintSelected
	}

	left, top := toCell(geom.Point{X: n.X, Y: n.Y})
	right, bottom := toCell(geom.Point{X: n.X + n.Width, Y: n.Y + n.Height})
	if right <= left {
		right = left + 1
	}
	if bottom <= top {
		bottom = top + 1
	}

	for col := left; col <= right; col++ {
		m.plot(grid, col, top, '─', st)
		m.plot(grid, col, bottom, '─', st)
	}
	for row := top; row <= bottom; row++ {
		m.plot(grid, left, row, '│', st)
		m.plot(grid, right, row, '│', st)
	}
	m.plot(grid, left, top, '┌', st)
	m.plot(grid, right, top, '┐', st)
	m.plot(grid, left, bottom, '└', st)
	m.plot(grid, right, bottom, '┘', st)

	// Interior fill keeps grid dots and edges from showing through.
	for row := top + 1; row < bottom; row++ {
		for col := left + 1; col < right; col++ {
			m.plot(grid, col, row, ' ', paintNone)
		}
	}

	label := fmt.Sprintf("%c %s", shapeGlyphs[n.Shape], n.Label)
	if n.Rotation != 0 {
		label += fmt.Sprintf(" ∠%.0f°", n.Rotation)
	}
	maxLen := right - left - 1
	if maxLen > 0 {
		runes := []rune(label)
		if len(runes) > maxLen {
			runes = runes[:maxLen]
		}
		mid := (top + bottom) / 2
		start := left + 1 + (maxLen-len(runes))/2
		for i, r := range runes {
			m.plot(grid, start+i, mid, r, paintLabel)
		}
	}

	if selected {
		m.plot(grid, right, bottom, '◢', paintHandle)
		m.plot(grid, (left+right)/2, top-1, '⟳', paintHandle)
	}
}

func (m *editorModel) paintConnection(grid [][]cell) {
	source, side, active := m.ctrl.Connecting()
	if !active {
		return
	}
	n := m.d.Node(source)
	if n == nil {
		return
	}
	from := geom.SidePoint(n, side)
	to := m.ctrl.ConnectionPointer()
	steps := int(from.Dist(to)/cellH) + 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		q := geom.Point{X: from.X + (to.X-from.X)*t, Y: from.Y + (to.Y-from.Y)*t}
		col, row := toCell(q)
		m.plot(grid, col, row, '+', paintHandle)
	}
}

func (m *editorModel) paintSelectionBox(grid [][]cell) {
	box, active := m.ctrl.SelectionBox()
	if !active {
		return
	}
	left, top := toCell(geom.Point{X: box.X, Y: box.Y})
	right, bottom := toCell(geom.Point{X: box.X + box.Width, Y: box.Y + box.Height})
	for col := left; col <= right; col++ {
		m.plot(grid, col, top, '┄', paintDim)
		m.plot(grid, col, bottom, '┄', paintDim)
	}
	for row := top; row <= bottom; row++ {
		m.plot(grid, left, row, '┆', paintDim)
		m.plot(grid, right, row, '┆', paintDim)
	}
}

// =============================================================================
// Chrome
// =============================================================================

func (m *editorModel) titleBar() string {
	state := m.manager.State()
	name := state.DiagramName
	if state.Dirty {
		name += " *"
	}
	title := styleTitle.Render(name)
	info := styleDim.Render(fmt.Sprintf("%d nodes, %d edges", len(m.d.Nodes), len(m.d.Edges)))
	return title + "  " + info
}

func (m *editorModel) statusBar() string {
	parts := []string{}
	if m.connectMode {
		parts = append(parts, styleWarning.Render("CONNECT"))
	}
	if sel := m.ctrl.SelectedNodes(); len(sel) > 0 {
		parts = append(parts, styleValue.Render(fmt.Sprintf("%d selected", len(sel))))
	}
	if m.status != "" {
		parts = append(parts, styleError.Render(m.status))
	}
	parts = append(parts, styleDim.Render("? help"))
	return strings.Join(parts, styleDim.Render("  │  "))
}

func (m *editorModel) helpBar() string {
	return styleDim.Render(
		"drag move  shift+click multi  corner resize  ⟳ rotate (alt = free)  " +
			"n node  c connect  d delete  u undo  ctrl+r redo  s save  g grid  tab cycle  q quit")
}
