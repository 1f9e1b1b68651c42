package diagram

import (
	"sort"
	"strings"
	"sync"
	"time"

	"draftboard/pkg/errors"
)

// DefaultMaxHistory bounds the undo stack.
const DefaultMaxHistory = 100

// NodeUpdate is a partial node update. Nil fields are left untouched.
type NodeUpdate struct {
	Label       *string
	Type        *NodeType
	Shape       *Shape
	Color       *string
	X           *float64
	Y           *float64
	Width       *float64
	Height      *float64
	Tags        *[]string
	Description *string
	BorderStyle *BorderStyle
	FillOpacity *float64
	ZIndex      *int
	Rotation    *float64
}

// EdgeUpdate is a partial edge update. Nil fields are left untouched.
type EdgeUpdate struct {
	Label      *string
	Color      *string
	Width      *float64
	Style      *LineStyle
	ArrowStart *ArrowKind
	ArrowEnd   *ArrowKind
	ArrowSize  *float64
	SourceSide *Side
	TargetSide *Side
}

// NodeMove is one entry of a batched multi-node move.
type NodeMove struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// SnapshotInfo describes a named restore point.
type SnapshotInfo struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// State is a summary of the manager's current condition.
type State struct {
	DiagramID   string `json:"diagram_id"`
	DiagramName string `json:"diagram_name"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	Dirty       bool   `json:"dirty"`
	CanUndo     bool   `json:"can_undo"`
	CanRedo     bool   `json:"can_redo"`
	FilePath    string `json:"file_path,omitempty"`
}

// Manager owns a single open diagram and serializes all mutations to it.
//
// The history system works via snapshots: each mutation stores a full JSON
// snapshot of the prior state, undo restores the previous snapshot, redo
// re-applies one from the future stack. Indexes give O(1) node/edge lookup
// and O(degree) cascade deletion.
//
// Manager is safe for concurrent use; the HTTP server calls it from
// concurrent handlers.
type Manager struct {
	mu         sync.Mutex
	d          *Diagram
	filePath   string
	history    [][]byte
	future     [][]byte
	maxHistory int
	dirty      bool
	snapshots  map[string][]byte
	snapTimes  map[string]time.Time
	onChange   []func()

	nodeIndex   map[string]*Node
	edgeIndex   map[string]*Edge
	tagIndex    map[string]map[string]struct{}
	typeIndex   map[NodeType]map[string]struct{}
	edgesByNode map[string]map[string]struct{}
}

// NewManager creates a manager with an empty untitled diagram.
// maxHistory ≤ 0 selects DefaultMaxHistory.
func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	m := &Manager{
		maxHistory: maxHistory,
		snapshots:  map[string][]byte{},
		snapTimes:  map[string]time.Time{},
	}
	m.d = New("")
	m.rebuildIndexes()
	return m
}

// OnChange registers a callback invoked after every committed mutation.
// Callbacks run outside the manager lock and must not block for long; the
// sync broadcaster uses this to push the authoritative state to clients.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

func (m *Manager) notify() {
	m.mu.Lock()
	cbs := make([]func(), len(m.onChange))
	copy(cbs, m.onChange)
	m.mu.Unlock()
	for _, fn := range cbs {
		fn()
	}
}

// Diagram returns a deep copy of the current diagram for reading.
// Mutations must go through manager methods so history and indexes stay
// consistent.
func (m *Manager) Diagram() *Diagram {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cloneLocked()
}

func (m *Manager) cloneLocked() *Diagram {
	data, err := Marshal(m.d)
	if err != nil {
		return New(m.d.Name) // unreachable for a valid in-memory diagram
	}
	d, err := Unmarshal(data)
	if err != nil {
		return New(m.d.Name)
	}
	return d
}

// State returns a summary of the current manager state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		DiagramID:   m.d.ID,
		DiagramName: m.d.Name,
		Nodes:       len(m.d.Nodes),
		Edges:       len(m.d.Edges),
		Dirty:       m.dirty,
		CanUndo:     len(m.history) > 0,
		CanRedo:     len(m.future) > 0,
		FilePath:    m.filePath,
	}
}

// =============================================================================
// Index Management
// =============================================================================

func (m *Manager) rebuildIndexes() {
	m.nodeIndex = map[string]*Node{}
	m.edgeIndex = map[string]*Edge{}
	m.tagIndex = map[string]map[string]struct{}{}
	m.typeIndex = map[NodeType]map[string]struct{}{}
	m.edgesByNode = map[string]map[string]struct{}{}

	for _, n := range m.d.Nodes {
		m.indexNode(n)
	}
	for _, e := range m.d.Edges {
		m.indexEdge(e)
	}
}

func (m *Manager) indexNode(n *Node) {
	m.nodeIndex[n.ID] = n
	for _, tag := range n.Tags {
		if m.tagIndex[tag] == nil {
			m.tagIndex[tag] = map[string]struct{}{}
		}
		m.tagIndex[tag][n.ID] = struct{}{}
	}
	if m.typeIndex[n.Type] == nil {
		m.typeIndex[n.Type] = map[string]struct{}{}
	}
	m.typeIndex[n.Type][n.ID] = struct{}{}
}

func (m *Manager) unindexNode(n *Node) {
	delete(m.nodeIndex, n.ID)
	for _, tag := range n.Tags {
		if ids := m.tagIndex[tag]; ids != nil {
			delete(ids, n.ID)
		}
	}
	if ids := m.typeIndex[n.Type]; ids != nil {
		delete(ids, n.ID)
	}
}

func (m *Manager) indexEdge(e *Edge) {
	m.edgeIndex[e.ID] = e
	for _, nid := range []string{e.Source, e.Target} {
		if m.edgesByNode[nid] == nil {
			m.edgesByNode[nid] = map[string]struct{}{}
		}
		m.edgesByNode[nid][e.ID] = struct{}{}
	}
}

func (m *Manager) unindexEdge(e *Edge) {
	delete(m.edgeIndex, e.ID)
	for _, nid := range []string{e.Source, e.Target} {
		if ids := m.edgesByNode[nid]; ids != nil {
			delete(ids, e.ID)
		}
	}
}

// =============================================================================
// History
// =============================================================================

func (m *Manager) saveHistoryLocked() {
	data, err := Marshal(m.d)
	if err != nil {
		return
	}
	m.history = append(m.history, data)
	if len(m.history) > m.maxHistory {
		m.history = m.history[1:]
	}
	m.future = m.future[:0]
}

func (m *Manager) restoreLocked(snapshot []byte) error {
	d, err := Unmarshal(snapshot)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "corrupt history snapshot")
	}
	m.d = d
	m.rebuildIndexes()
	m.dirty = true
	return nil
}

// CanUndo reports whether an undo step is available.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history) > 0
}

// CanRedo reports whether a redo step is available.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// Undo restores the previous state. Returns ErrCodeNothingToUndo when the
// history stack is empty.
func (m *Manager) Undo() error {
	m.mu.Lock()
	if len(m.history) == 0 {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeNothingToUndo, "nothing to undo")
	}
	current, err := Marshal(m.d)
	if err == nil {
		m.future = append(m.future, current)
	}
	snapshot := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	err = m.restoreLocked(snapshot)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.notify()
	return nil
}

// Redo re-applies the next state from the future stack. Returns
// ErrCodeNothingToRedo when empty.
func (m *Manager) Redo() error {
	m.mu.Lock()
	if len(m.future) == 0 {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeNothingToRedo, "nothing to redo")
	}
	current, err := Marshal(m.d)
	if err == nil {
		m.history = append(m.history, current)
	}
	snapshot := m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	err = m.restoreLocked(snapshot)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.notify()
	return nil
}

// =============================================================================
// Diagram Lifecycle
// =============================================================================

// NewDiagram replaces the open diagram with a fresh one, discarding history.
func (m *Manager) NewDiagram(name string) *Diagram {
	m.mu.Lock()
	m.d = New(name)
	m.filePath = ""
	m.history = nil
	m.future = nil
	m.dirty = false
	m.rebuildIndexes()
	out := m.cloneLocked()
	m.mu.Unlock()
	m.notify()
	return out
}

// Open loads a diagram from a JSON file, discarding history.
func (m *Manager) Open(path string) (*Diagram, error) {
	d, err := ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open diagram")
	}
	m.mu.Lock()
	m.d = d
	m.filePath = path
	m.history = nil
	m.future = nil
	m.dirty = false
	m.rebuildIndexes()
	out := m.cloneLocked()
	m.mu.Unlock()
	m.notify()
	return out, nil
}

// Save writes the diagram to path, or to the path it was opened from when
// path is empty. Returns the path written.
func (m *Manager) Save(path string) (string, error) {
	m.mu.Lock()
	if path == "" {
		path = m.filePath
	}
	if path == "" {
		m.mu.Unlock()
		return "", errors.New(errors.ErrCodeInvalidPath, "no file path: save with an explicit path first")
	}
	m.d.Touch()
	d := m.d
	if err := WriteFile(d, path); err != nil {
		m.mu.Unlock()
		return "", errors.Wrap(errors.ErrCodeStorage, err, "save diagram")
	}
	m.filePath = path
	m.dirty = false
	m.mu.Unlock()
	return path, nil
}

// UpdateInfo updates diagram-level settings. Nil fields are left untouched.
func (m *Manager) UpdateInfo(name *string, gridSize *int, showGrid *bool) {
	m.mu.Lock()
	m.saveHistoryLocked()
	if name != nil {
		m.d.Name = *name
	}
	if gridSize != nil {
		m.d.Metadata.GridSize = *gridSize
	}
	if showGrid != nil {
		m.d.Metadata.ShowGrid = *showGrid
	}
	m.d.Touch()
	m.dirty = true
	m.mu.Unlock()
	m.notify()
}

// GridSize returns the diagram's snap-to-grid size.
func (m *Manager) GridSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.Metadata.GridSize
}

// =============================================================================
// Node Operations
// =============================================================================

// AddNode adds a node to the diagram. A nil node gets full defaults; a node
// without an id gets a fresh one. The node is clamped to the geometric
// invariants before insertion.
func (m *Manager) AddNode(n *Node) (*Node, error) {
	if n == nil {
		n = NewNode()
	}
	if n.ID == "" {
		n.ID = NewNodeID()
	}
	if n.Shape == "" {
		n.Shape = ShapeRectangle
	}
	if !n.Shape.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidShape, "unknown shape: %s", n.Shape)
	}
	if err := errors.ValidateID(n.ID); err != nil {
		return nil, err
	}
	if err := errors.ValidateColor(n.Color); err != nil {
		return nil, err
	}
	n.Clamp()

	m.mu.Lock()
	if _, exists := m.nodeIndex[n.ID]; exists {
		m.mu.Unlock()
		return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node id: %s", n.ID)
	}
	m.saveHistoryLocked()
	m.d.Nodes = append(m.d.Nodes, n)
	m.indexNode(n)
	m.d.Touch()
	m.dirty = true
	out := *n
	m.mu.Unlock()
	m.notify()
	return &out, nil
}

// UpdateNode applies a partial update to a node.
func (m *Manager) UpdateNode(id string, upd NodeUpdate) (*Node, error) {
	if upd.Shape != nil && !upd.Shape.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidShape, "unknown shape: %s", *upd.Shape)
	}
	if upd.Color != nil {
		if err := errors.ValidateColor(*upd.Color); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	n, ok := m.nodeIndex[id]
	if !ok {
		m.mu.Unlock()
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id)
	}
	m.saveHistoryLocked()
	m.unindexNode(n)
	if upd.Label != nil {
		n.Label = *upd.Label
	}
	if upd.Type != nil {
		n.Type = *upd.Type
	}
	if upd.Shape != nil {
		n.Shape = *upd.Shape
	}
	if upd.Color != nil {
		n.Color = *upd.Color
	}
	if upd.X != nil {
		n.X = *upd.X
	}
	if upd.Y != nil {
		n.Y = *upd.Y
	}
	if upd.Width != nil {
		n.Width = *upd.Width
	}
	if upd.Height != nil {
		n.Height = *upd.Height
	}
	if upd.Tags != nil {
		n.Tags = append([]string(nil), (*upd.Tags)...)
	}
	if upd.Description != nil {
		n.Description = *upd.Description
	}
	if upd.BorderStyle != nil {
		n.BorderStyle = *upd.BorderStyle
	}
	if upd.FillOpacity != nil {
		n.FillOpacity = *upd.FillOpacity
	}
	if upd.ZIndex != nil {
		n.ZIndex = *upd.ZIndex
	}
	if upd.Rotation != nil {
		n.Rotation = *upd.Rotation
	}
	n.Clamp()
	m.indexNode(n)
	m.d.Touch()
	m.dirty = true
	out := *n
	m.mu.Unlock()
	m.notify()
	return &out, nil
}

// DeleteNode removes a node and cascade-deletes every edge that references it.
func (m *Manager) DeleteNode(id string) error {
	m.mu.Lock()
	n, ok := m.nodeIndex[id]
	if !ok {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id)
	}
	m.saveHistoryLocked()

	// Cascade: collect edge ids first, the index mutates during removal.
	var doomed []string
	for eid := range m.edgesByNode[id] {
		doomed = append(doomed, eid)
	}
	for _, eid := range doomed {
		if e := m.edgeIndex[eid]; e != nil {
			m.unindexEdge(e)
			m.removeEdgeLocked(eid)
		}
	}
	delete(m.edgesByNode, id)

	m.unindexNode(n)
	for i, cand := range m.d.Nodes {
		if cand.ID == id {
			m.d.Nodes = append(m.d.Nodes[:i], m.d.Nodes[i+1:]...)
			break
		}
	}
	m.d.Touch()
	m.dirty = true
	m.mu.Unlock()
	m.notify()
	return nil
}

// GetNode returns a copy of the node with the given id.
func (m *Manager) GetNode(id string) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodeIndex[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id)
	}
	out := *n
	return &out, nil
}

// =============================================================================
// Gesture Commit Operations
// =============================================================================

// MoveNode commits a new position for a node. This is the commit target of a
// completed drag gesture; the value is clamped, one history entry is taken.
func (m *Manager) MoveNode(id string, x, y float64) error {
	m.mu.Lock()
	n, ok := m.nodeIndex[id]
	if !ok {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id)
	}
	m.saveHistoryLocked()
	n.X, n.Y = x, y
	n.Clamp()
	m.d.Touch()
	m.dirty = true
	m.mu.Unlock()
	m.notify()
	return nil
}

// MoveMany commits a batched multi-node move (group drag). The batch is
// validated up front and applied atomically with a single history entry.
func (m *Manager) MoveMany(moves []NodeMove) error {
	if len(moves) == 0 {
		return nil
	}
	m.mu.Lock()
	for _, mv := range moves {
		if _, ok := m.nodeIndex[mv.ID]; !ok {
			m.mu.Unlock()
			return errors.New(errors.ErrCodeNodeNotFound, "node %s not found", mv.ID)
		}
	}
	m.saveHistoryLocked()
	for _, mv := range moves {
		n := m.nodeIndex[mv.ID]
		n.X, n.Y = mv.X, mv.Y
		n.Clamp()
	}
	m.d.Touch()
	m.dirty = true
	m.mu.Unlock()
	m.notify()
	return nil
}

// ResizeNode commits a new size for a node, clamped to the minimum floor.
func (m *Manager) ResizeNode(id string, w, h float64) error {
	m.mu.Lock()
	n, ok := m.nodeIndex[id]
	if !ok {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id)
	}
	m.saveHistoryLocked()
	n.Width, n.Height = w, h
	n.Clamp()
	m.d.Touch()
	m.dirty = true
	m.mu.Unlock()
	m.notify()
	return nil
}

// RotateNode commits a new rotation for a node, normalized to [0, 360).
func (m *Manager) RotateNode(id string, deg float64) error {
	m.mu.Lock()
	n, ok := m.nodeIndex[id]
	if !ok {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id)
	}
	m.saveHistoryLocked()
	n.Rotation = NormalizeRotation(deg)
	m.d.Touch()
	m.dirty = true
	m.mu.Unlock()
	m.notify()
	return nil
}

// =============================================================================
// Edge Operations
// =============================================================================

// AddEdge adds an edge. Both endpoints must exist; sides must be cardinal or
// auto. Missing styling fields get the canonical defaults.
func (m *Manager) AddEdge(e *Edge) (*Edge, error) {
	if e == nil || e.Source == "" || e.Target == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "edge requires source and target")
	}
	if !e.SourceSide.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidSide, "unknown side: %s", e.SourceSide)
	}
	if !e.TargetSide.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidSide, "unknown side: %s", e.TargetSide)
	}
	if e.ID == "" {
		e.ID = NewEdgeID()
	}
	if e.Color == "" {
		e.Color = DefaultEdgeColor
	}
	if e.Width == 0 {
		e.Width = DefaultEdgeWidth
	}
	if e.Style == "" {
		e.Style = LineSolid
	}
	if e.ArrowStart == "" {
		e.ArrowStart = ArrowNone
	}
	if e.ArrowEnd == "" {
		e.ArrowEnd = ArrowFilled
	}
	if e.ArrowSize == 0 {
		e.ArrowSize = DefaultArrowSize
	}

	m.mu.Lock()
	if _, ok := m.nodeIndex[e.Source]; !ok {
		m.mu.Unlock()
		return nil, errors.New(errors.ErrCodeNodeNotFound, "source node %s not found", e.Source)
	}
	if _, ok := m.nodeIndex[e.Target]; !ok {
		m.mu.Unlock()
		return nil, errors.New(errors.ErrCodeNodeNotFound, "target node %s not found", e.Target)
	}
	if _, exists := m.edgeIndex[e.ID]; exists {
		m.mu.Unlock()
		return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate edge id: %s", e.ID)
	}
	m.saveHistoryLocked()
	m.d.Edges = append(m.d.Edges, e)
	m.indexEdge(e)
	m.d.Touch()
	m.dirty = true
	out := *e
	m.mu.Unlock()
	m.notify()
	return &out, nil
}

// UpdateEdge applies a partial update to an edge.
func (m *Manager) UpdateEdge(id string, upd EdgeUpdate) (*Edge, error) {
	if upd.SourceSide != nil && !upd.SourceSide.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidSide, "unknown side: %s", *upd.SourceSide)
	}
	if upd.TargetSide != nil && !upd.TargetSide.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidSide, "unknown side: %s", *upd.TargetSide)
	}
	if upd.ArrowStart != nil && !upd.ArrowStart.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidArrow, "unknown arrow kind: %s", *upd.ArrowStart)
	}
	if upd.ArrowEnd != nil && !upd.ArrowEnd.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidArrow, "unknown arrow kind: %s", *upd.ArrowEnd)
	}

	m.mu.Lock()
	e, ok := m.edgeIndex[id]
	if !ok {
		m.mu.Unlock()
		return nil, errors.New(errors.ErrCodeEdgeNotFound, "edge %s not found", id)
	}
	m.saveHistoryLocked()
	if upd.Label != nil {
		e.Label = *upd.Label
	}
	if upd.Color != nil {
		e.Color = *upd.Color
	}
	if upd.Width != nil {
		e.Width = *upd.Width
	}
	if upd.Style != nil {
		e.Style = *upd.Style
	}
	if upd.ArrowStart != nil {
		e.ArrowStart = *upd.ArrowStart
	}
	if upd.ArrowEnd != nil {
		e.ArrowEnd = *upd.ArrowEnd
	}
	if upd.ArrowSize != nil {
		e.ArrowSize = *upd.ArrowSize
	}
	if upd.SourceSide != nil {
		e.SourceSide = *upd.SourceSide
	}
	if upd.TargetSide != nil {
		e.TargetSide = *upd.TargetSide
	}
	m.d.Touch()
	m.dirty = true
	out := *e
	m.mu.Unlock()
	m.notify()
	return &out, nil
}

// DeleteEdge removes an edge.
func (m *Manager) DeleteEdge(id string) error {
	m.mu.Lock()
	e, ok := m.edgeIndex[id]
	if !ok {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeEdgeNotFound, "edge %s not found", id)
	}
	m.saveHistoryLocked()
	m.unindexEdge(e)
	m.removeEdgeLocked(id)
	m.d.Touch()
	m.dirty = true
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *Manager) removeEdgeLocked(id string) {
	for i, e := range m.d.Edges {
		if e.ID == id {
			m.d.Edges = append(m.d.Edges[:i], m.d.Edges[i+1:]...)
			return
		}
	}
}

// GetEdge returns a copy of the edge with the given id.
func (m *Manager) GetEdge(id string) (*Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.edgeIndex[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeEdgeNotFound, "edge %s not found", id)
	}
	out := *e
	return &out, nil
}

// EdgesForNode returns copies of all edges touching the given node.
func (m *Manager) EdgesForNode(nodeID string) []*Edge {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Edge
	for eid := range m.edgesByNode[nodeID] {
		if e := m.edgeIndex[eid]; e != nil {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// =============================================================================
// Queries
// =============================================================================

// SearchNodes returns copies of nodes matching the query (case-insensitive
// substring of label or description), optionally filtered by tag and type.
// Empty arguments match everything.
func (m *Manager) SearchNodes(query, tag string, typ NodeType) []*Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []*Node
	for _, n := range m.d.Nodes {
		if q != "" &&
			!strings.Contains(strings.ToLower(n.Label), q) &&
			!strings.Contains(strings.ToLower(n.Description), q) {
			continue
		}
		if tag != "" && !n.HasTag(tag) {
			continue
		}
		if typ != "" && n.Type != typ {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out
}

// NodesByTag returns copies of all nodes carrying the given tag.
func (m *Manager) NodesByTag(tag string) []*Node {
	return m.SearchNodes("", tag, "")
}

// NodesByType returns copies of all nodes with the given logical type.
func (m *Manager) NodesByType(typ NodeType) []*Node {
	return m.SearchNodes("", "", typ)
}

// BulkUpdateTags adds and removes tags on a set of nodes in one history step.
// Unknown node ids are skipped; the number of nodes touched is returned.
func (m *Manager) BulkUpdateTags(ids []string, add, remove []string) int {
	m.mu.Lock()
	touched := 0
	for _, id := range ids {
		n, ok := m.nodeIndex[id]
		if !ok {
			continue
		}
		// History is snapshotted only once something will actually change,
		// so a bulk update matching nothing is not an undo step.
		if touched == 0 {
			m.saveHistoryLocked()
		}
		m.unindexNode(n)
		for _, tag := range add {
			if !n.HasTag(tag) {
				n.Tags = append(n.Tags, tag)
			}
		}
		for _, tag := range remove {
			for i, t := range n.Tags {
				if t == tag {
					n.Tags = append(n.Tags[:i], n.Tags[i+1:]...)
					break
				}
			}
		}
		m.indexNode(n)
		touched++
	}
	if touched > 0 {
		m.d.Touch()
		m.dirty = true
	}
	m.mu.Unlock()
	if touched > 0 {
		m.notify()
	}
	return touched
}

// =============================================================================
// Named Snapshots
// =============================================================================

// CreateSnapshot stores the current state under a name for manual restore.
func (m *Manager) CreateSnapshot(name string) error {
	if name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot name cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := Marshal(m.d)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "snapshot diagram")
	}
	m.snapshots[name] = data
	m.snapTimes[name] = time.Now().UTC()
	return nil
}

// ListSnapshots returns the named restore points, sorted by name.
func (m *Manager) ListSnapshots() []SnapshotInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SnapshotInfo, 0, len(m.snapshots))
	for name := range m.snapshots {
		out = append(out, SnapshotInfo{Name: name, CreatedAt: m.snapTimes[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RestoreSnapshot replaces the current state with a named snapshot.
// The replaced state goes onto the undo stack.
func (m *Manager) RestoreSnapshot(name string) error {
	m.mu.Lock()
	data, ok := m.snapshots[name]
	if !ok {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", name)
	}
	m.saveHistoryLocked()
	err := m.restoreLocked(data)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.notify()
	return nil
}

// DeleteSnapshot removes a named restore point.
func (m *Manager) DeleteSnapshot(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snapshots[name]; !ok {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", name)
	}
	delete(m.snapshots, name)
	delete(m.snapTimes, name)
	return nil
}
