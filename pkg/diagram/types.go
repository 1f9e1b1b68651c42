package diagram

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Shape is the visual shape of a node on the canvas.
type Shape string

// Visual shapes for nodes.
const (
	ShapeRectangle Shape = "rectangle"
	ShapeEllipse   Shape = "ellipse"
	ShapeDiamond   Shape = "diamond"
	ShapePill      Shape = "pill"
	ShapeArrow     Shape = "arrow"
	ShapeTriangle  Shape = "triangle"
)

// Shapes lists all valid node shapes.
func Shapes() []Shape {
	return []Shape{ShapeRectangle, ShapeEllipse, ShapeDiamond, ShapePill, ShapeArrow, ShapeTriangle}
}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	switch s {
	case ShapeRectangle, ShapeEllipse, ShapeDiamond, ShapePill, ShapeArrow, ShapeTriangle:
		return true
	}
	return false
}

// Side is one of the four cardinal faces of a node's un-rotated bounding box.
// The zero value SideAuto means "pick automatically".
type Side string

// Connection sides.
const (
	SideAuto   Side = ""
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// Sides lists the four cardinal sides (SideAuto excluded).
func Sides() []Side {
	return []Side{SideTop, SideRight, SideBottom, SideLeft}
}

// Valid reports whether s is a cardinal side or SideAuto.
func (s Side) Valid() bool {
	switch s {
	case SideAuto, SideTop, SideRight, SideBottom, SideLeft:
		return true
	}
	return false
}

// ArrowKind selects the arrowhead drawn at an edge endpoint.
type ArrowKind string

// Arrow kinds for edge endpoints.
const (
	ArrowNone    ArrowKind = "none"
	ArrowOpen    ArrowKind = "arrow"   // open "V" shape
	ArrowFilled  ArrowKind = "filled"  // solid triangle
	ArrowDiamond ArrowKind = "diamond" // diamond outline
	ArrowCircle  ArrowKind = "circle"  // circle
)

// Valid reports whether k is a known arrow kind.
func (k ArrowKind) Valid() bool {
	switch k {
	case ArrowNone, ArrowOpen, ArrowFilled, ArrowDiamond, ArrowCircle:
		return true
	}
	return false
}

// LineStyle is the stroke style of an edge.
type LineStyle string

// Line styles for edges.
const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

// BorderStyle is the stroke style of a node border.
type BorderStyle string

// Border styles for nodes.
const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

// NodeType is the logical (semantic) type of a node.
type NodeType string

// Logical node types.
const (
	TypeComponent NodeType = "component"
	TypeService   NodeType = "service"
	TypeDatabase  NodeType = "database"
	TypeUser      NodeType = "user"
	TypeExternal  NodeType = "external"
	TypeProcess   NodeType = "process"
	TypeDecision  NodeType = "decision"
	TypeNote      NodeType = "note"
	TypeZone      NodeType = "zone" // container/grouping area
)

// NodeTypes lists all valid logical node types.
func NodeTypes() []NodeType {
	return []NodeType{TypeComponent, TypeService, TypeDatabase, TypeUser,
		TypeExternal, TypeProcess, TypeDecision, TypeNote, TypeZone}
}

// Geometric invariants enforced on every mutation path.
const (
	// MinNodeWidth is the floor below which a node width never drops.
	MinNodeWidth = 60.0
	// MinNodeHeight is the floor below which a node height never drops.
	MinNodeHeight = 40.0
)

// Node defaults applied by NewNode.
const (
	DefaultNodeWidth  = 150.0
	DefaultNodeHeight = 80.0
	DefaultNodeLabel  = "New Node"
	DefaultNodeColor  = "#3478f6"
	DefaultEdgeColor  = "#666666"
	DefaultEdgeWidth  = 2.0
	DefaultArrowSize  = 12.0
	DefaultGridSize   = 20
)

// NewNodeID generates a unique node id of the form "n" + 8 hex chars.
func NewNodeID() string { return "n" + uuid.New().String()[:8] }

// NewEdgeID generates a unique edge id of the form "e" + 8 hex chars.
func NewEdgeID() string { return "e" + uuid.New().String()[:8] }

// NewDiagramID generates a unique diagram id.
func NewDiagramID() string { return "diagram-" + uuid.New().String()[:8] }

// Node is a shaped, positioned, sized, rotatable entity on the diagram.
// Position is the top-left corner in diagram-space units; rotation is in
// degrees, applied about the center, stored normalized to [0, 360).
type Node struct {
	ID          string      `json:"id" bson:"id"`
	Label       string      `json:"label" bson:"label"`
	Type        NodeType    `json:"type" bson:"type"`
	Shape       Shape       `json:"shape" bson:"shape"`
	Color       string      `json:"color" bson:"color"`
	X           float64     `json:"x" bson:"x"`
	Y           float64     `json:"y" bson:"y"`
	Width       float64     `json:"width" bson:"width"`
	Height      float64     `json:"height" bson:"height"`
	Tags        []string    `json:"tags,omitempty" bson:"tags,omitempty"`
	Description string      `json:"description,omitempty" bson:"description,omitempty"`
	BorderStyle BorderStyle `json:"border_style,omitempty" bson:"border_style,omitempty"`
	FillOpacity float64     `json:"fill_opacity" bson:"fill_opacity"` // 0 = hollow, 1 = solid
	ZIndex      int         `json:"z_index" bson:"z_index"`           // lower = further back
	Rotation    float64     `json:"rotation" bson:"rotation"`         // degrees, [0, 360)
}

// NewNode creates a node with a fresh id and the canonical defaults.
func NewNode() *Node {
	return &Node{
		ID:          NewNodeID(),
		Label:       DefaultNodeLabel,
		Type:        TypeComponent,
		Shape:       ShapeRectangle,
		Color:       DefaultNodeColor,
		X:           100,
		Y:           100,
		Width:       DefaultNodeWidth,
		Height:      DefaultNodeHeight,
		BorderStyle: BorderSolid,
		FillOpacity: 1.0,
	}
}

// Center returns the node's center point.
func (n *Node) Center() (x, y float64) {
	return n.X + n.Width/2, n.Y + n.Height/2
}

// Bounds returns the un-rotated bounding box (x, y, right, bottom).
func (n *Node) Bounds() (x, y, right, bottom float64) {
	return n.X, n.Y, n.X + n.Width, n.Y + n.Height
}

// Clamp enforces the geometric invariants in place: position ≥ 0 on each
// axis, size at least MinNodeWidth×MinNodeHeight, rotation in [0, 360).
func (n *Node) Clamp() {
	n.X = math.Max(n.X, 0)
	n.Y = math.Max(n.Y, 0)
	n.Width = math.Max(n.Width, MinNodeWidth)
	n.Height = math.Max(n.Height, MinNodeHeight)
	n.Rotation = NormalizeRotation(n.Rotation)
}

// HasTag reports whether the node carries the given tag.
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizeRotation maps an angle in degrees onto [0, 360).
func NormalizeRotation(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Edge is a directed, styled connector between two nodes. It references the
// nodes by id only; deleting a node cascade-deletes its edges in the Manager.
type Edge struct {
	ID         string    `json:"id" bson:"id"`
	Source     string    `json:"source" bson:"source"`
	Target     string    `json:"target" bson:"target"`
	Label      string    `json:"label,omitempty" bson:"label,omitempty"`
	SourceSide Side      `json:"source_side,omitempty" bson:"source_side,omitempty"`
	TargetSide Side      `json:"target_side,omitempty" bson:"target_side,omitempty"`
	Color      string    `json:"color" bson:"color"`
	Width      float64   `json:"width" bson:"width"`
	Style      LineStyle `json:"style" bson:"style"`
	ArrowStart ArrowKind `json:"arrow_start" bson:"arrow_start"`
	ArrowEnd   ArrowKind `json:"arrow_end" bson:"arrow_end"`
	ArrowSize  float64   `json:"arrow_size" bson:"arrow_size"`
}

// NewEdge creates an edge between two nodes with a fresh id and default styling.
func NewEdge(source, target string) *Edge {
	return &Edge{
		ID:         NewEdgeID(),
		Source:     source,
		Target:     target,
		Color:      DefaultEdgeColor,
		Width:      DefaultEdgeWidth,
		Style:      LineSolid,
		ArrowStart: ArrowNone,
		ArrowEnd:   ArrowFilled,
		ArrowSize:  DefaultArrowSize,
	}
}

// edgeJSON mirrors Edge for decoding, with the legacy from/to aliases.
type edgeJSON struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Target     string    `json:"target"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Label      string    `json:"label"`
	SourceSide Side      `json:"source_side"`
	TargetSide Side      `json:"target_side"`
	Color      string    `json:"color"`
	Width      float64   `json:"width"`
	Style      LineStyle `json:"style"`
	ArrowStart ArrowKind `json:"arrow_start"`
	ArrowEnd   ArrowKind `json:"arrow_end"`
	ArrowSize  float64   `json:"arrow_size"`
}

// UnmarshalJSON decodes an edge, converting legacy `from`/`to` field names
// to `source`/`target` when the canonical names are absent.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var raw edgeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Source == "" {
		raw.Source = raw.From
	}
	if raw.Target == "" {
		raw.Target = raw.To
	}
	*e = Edge{
		ID:         raw.ID,
		Source:     raw.Source,
		Target:     raw.Target,
		Label:      raw.Label,
		SourceSide: raw.SourceSide,
		TargetSide: raw.TargetSide,
		Color:      raw.Color,
		Width:      raw.Width,
		Style:      raw.Style,
		ArrowStart: raw.ArrowStart,
		ArrowEnd:   raw.ArrowEnd,
		ArrowSize:  raw.ArrowSize,
	}
	return nil
}

// Metadata carries diagram-level settings and timestamps.
type Metadata struct {
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	GridSize  int       `json:"grid_size" bson:"grid_size"` // snap-to-grid size (0 = disabled)
	ShowGrid  bool      `json:"show_grid" bson:"show_grid"`
}

// Diagram is the complete diagram structure: what gets saved to and loaded
// from JSON files, stored in backends, and broadcast to sync clients.
type Diagram struct {
	ID       string   `json:"id" bson:"_id"`
	Name     string   `json:"name" bson:"name"`
	Nodes    []*Node  `json:"nodes" bson:"nodes"`
	Edges    []*Edge  `json:"edges" bson:"edges"`
	Metadata Metadata `json:"metadata" bson:"metadata"`
}

// New creates an empty named diagram with default metadata.
func New(name string) *Diagram {
	if name == "" {
		name = "Untitled Diagram"
	}
	now := time.Now().UTC()
	return &Diagram{
		ID:    NewDiagramID(),
		Name:  name,
		Nodes: []*Node{},
		Edges: []*Edge{},
		Metadata: Metadata{
			CreatedAt: now,
			UpdatedAt: now,
			GridSize:  DefaultGridSize,
			ShowGrid:  true,
		},
	}
}

// Node returns the node with the given id, or nil. O(n); use Manager for
// indexed access.
func (d *Diagram) Node(id string) *Node {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Edge returns the edge with the given id, or nil. O(n); use Manager for
// indexed access.
func (d *Diagram) Edge(id string) *Edge {
	for _, e := range d.Edges {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Touch updates the modification timestamp.
func (d *Diagram) Touch() {
	d.Metadata.UpdatedAt = time.Now().UTC()
}
