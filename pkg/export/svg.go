package export

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"draftboard/pkg/diagram"
	"draftboard/pkg/geom"
)

// Default framing for exported images.
const (
	defaultMargin    = 50.0
	emptyCanvasW     = 400.0
	emptyCanvasH     = 300.0
	nodeCornerRadius = 4.0
	nodeStrokeWidth  = 2.0
	labelFontSize    = 14.0
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	margin     float64
	showGrid   bool
}

// WithBackground sets a solid background color (default transparent).
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithMargin overrides the whitespace around the diagram content.
func WithMargin(px float64) SVGOption {
	return func(r *svgRenderer) { r.margin = px }
}

// WithGridLines draws the diagram's snap grid behind the content.
func WithGridLines() SVGOption {
	return func(r *svgRenderer) { r.showGrid = true }
}

// RenderSVG renders the diagram to a standalone SVG document. Nodes are
// painted back to front by z-index, edges underneath, labels on top. Node
// rotation is expressed as an SVG transform about the node center, so the
// markup stays readable and editable.
func RenderSVG(d *diagram.Diagram, opts ...SVGOption) []byte {
	r := svgRenderer{margin: defaultMargin}
	for _, opt := range opts {
		opt(&r)
	}

	minX, minY, w, h := contentBounds(d, r.margin)

	nodes := slices.Clone(d.Nodes)
	slices.SortStableFunc(nodes, func(a, b *diagram.Node) int {
		if c := cmp.Compare(a.ZIndex, b.ZIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		minX, minY, w, h, w, h)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			minX, minY, w, h, r.background)
	}
	if r.showGrid && d.Metadata.GridSize > 0 {
		renderGrid(&buf, d.Metadata.GridSize, minX, minY, w, h)
	}

	for _, e := range d.Edges {
		renderEdgeSVG(&buf, d, e)
	}
	for _, n := range nodes {
		renderNodeSVG(&buf, n)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// contentBounds returns the top-left corner and size of the framed content
// area. Rotated nodes contribute their rotated corners, not the raw box.
func contentBounds(d *diagram.Diagram, margin float64) (minX, minY, w, h float64) {
	if len(d.Nodes) == 0 {
		return 0, 0, emptyCanvasW, emptyCanvasH
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range d.Nodes {
		for _, p := range nodeCorners(n) {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	return minX - margin, minY - margin, maxX - minX + 2*margin, maxY - minY + 2*margin
}

func nodeCorners(n *diagram.Node) []geom.Point {
	c := geom.Center(n)
	corners := []geom.Point{
		{X: n.X, Y: n.Y},
		{X: n.X + n.Width, Y: n.Y},
		{X: n.X + n.Width, Y: n.Y + n.Height},
		{X: n.X, Y: n.Y + n.Height},
	}
	rad := geom.DegToRad(n.Rotation)
	for i, p := range corners {
		corners[i] = p.RotateAround(c, rad)
	}
	return corners
}

func renderGrid(buf *bytes.Buffer, grid int, minX, minY, w, h float64) {
	g := float64(grid)
	fmt.Fprintf(buf, `  <defs><pattern id="grid" width="%.1f" height="%.1f" patternUnits="userSpaceOnUse">`+
		`<path d="M %.1f 0 L 0 0 0 %.1f" fill="none" stroke="#e5e7eb" stroke-width="1"/></pattern></defs>`+"\n",
		g, g, g, g)
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="url(#grid)"/>`+"\n",
		minX, minY, w, h)
}

// =============================================================================
// Nodes
// =============================================================================

func renderNodeSVG(buf *bytes.Buffer, n *diagram.Node) {
	cx, cy := n.Center()

	buf.WriteString("  <g")
	if n.Rotation != 0 {
		fmt.Fprintf(buf, ` transform="rotate(%.1f %.1f %.1f)"`, n.Rotation, cx, cy)
	}
	buf.WriteString(">\n")

	style := shapeStyle(n)
	switch n.Shape {
	case diagram.ShapeEllipse:
		fmt.Fprintf(buf, `    <ellipse cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" %s/>`+"\n",
			cx, cy, n.Width/2, n.Height/2, style)
	case diagram.ShapeDiamond:
		fmt.Fprintf(buf, `    <polygon points="%s" %s/>`+"\n", pointList(diamondPoints(n)), style)
	case diagram.ShapeTriangle:
		fmt.Fprintf(buf, `    <polygon points="%s" %s/>`+"\n", pointList(trianglePoints(n)), style)
	case diagram.ShapeArrow:
		fmt.Fprintf(buf, `    <polygon points="%s" %s/>`+"\n", pointList(arrowPoints(n)), style)
	case diagram.ShapePill:
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" %s/>`+"\n",
			n.X, n.Y, n.Width, n.Height, math.Min(n.Width, n.Height)/2, style)
	default: // rectangle
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" %s/>`+"\n",
			n.X, n.Y, n.Width, n.Height, nodeCornerRadius, style)
	}

	if n.Label != "" {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" `+
			`font-family="sans-serif" font-size="%.0f" fill="#1f2937">%s</text>`+"\n",
			cx, cy, labelFontSize, xmlEscape(n.Label))
	}
	buf.WriteString("  </g>\n")
}

func shapeStyle(n *diagram.Node) string {
	s := fmt.Sprintf(`fill="%s" fill-opacity="%.2f" stroke="%s" stroke-width="%.1f"`,
		n.Color, n.FillOpacity, n.Color, nodeStrokeWidth)
	if dash := borderDash(n.BorderStyle); dash != "" {
		s += fmt.Sprintf(` stroke-dasharray="%s"`, dash)
	}
	return s
}

func borderDash(style diagram.BorderStyle) string {
	switch style {
	case diagram.BorderDashed:
		return "8 4"
	case diagram.BorderDotted:
		return "2 3"
	}
	return ""
}

func diamondPoints(n *diagram.Node) []geom.Point {
	cx, cy := n.Center()
	return []geom.Point{
		{X: cx, Y: n.Y},
		{X: n.X + n.Width, Y: cy},
		{X: cx, Y: n.Y + n.Height},
		{X: n.X, Y: cy},
	}
}

func trianglePoints(n *diagram.Node) []geom.Point {
	cx, _ := n.Center()
	return []geom.Point{
		{X: cx, Y: n.Y},
		{X: n.X + n.Width, Y: n.Y + n.Height},
		{X: n.X, Y: n.Y + n.Height},
	}
}

// arrowPoints builds a right-pointing chevron filling the node box.
func arrowPoints(n *diagram.Node) []geom.Point {
	_, cy := n.Center()
	notch := math.Min(n.Width*0.25, n.Height/2)
	right := n.X + n.Width
	bottom := n.Y + n.Height
	return []geom.Point{
		{X: n.X, Y: n.Y},
		{X: right - notch, Y: n.Y},
		{X: right, Y: cy},
		{X: right - notch, Y: bottom},
		{X: n.X, Y: bottom},
		{X: n.X + notch, Y: cy},
	}
}

func pointList(pts []geom.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// Edges
// =============================================================================

func renderEdgeSVG(buf *bytes.Buffer, d *diagram.Diagram, e *diagram.Edge) {
	src := d.Node(e.Source)
	dst := d.Node(e.Target)
	if src == nil || dst == nil {
		return
	}
	route := geom.RouteForEdge(e, src, dst)

	dash := lineDash(e.Style, e.Width)
	fmt.Fprintf(buf, `  <path d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f" fill="none" stroke="%s" stroke-width="%.1f"%s/>`+"\n",
		route.Start.X, route.Start.Y,
		route.Control1.X, route.Control1.Y,
		route.Control2.X, route.Control2.Y,
		route.End.X, route.End.Y,
		e.Color, e.Width, dash)

	renderArrowheadSVG(buf, route.StartArrowhead(e.ArrowStart, e.ArrowSize), e)
	renderArrowheadSVG(buf, route.EndArrowhead(e.ArrowEnd, e.ArrowSize), e)

	if e.Label != "" {
		mid := route.PointAt(0.5)
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" `+
			`font-family="sans-serif" font-size="12" fill="%s">%s</text>`+"\n",
			mid.X, mid.Y-8, e.Color, xmlEscape(e.Label))
	}
}

func lineDash(style diagram.LineStyle, width float64) string {
	switch style {
	case diagram.LineDashed:
		return ` stroke-dasharray="8 4"`
	case diagram.LineDotted:
		return fmt.Sprintf(` stroke-dasharray="%.1f %.1f"`, width, width*2)
	}
	return ""
}

func renderArrowheadSVG(buf *bytes.Buffer, head geom.ArrowPrimitive, e *diagram.Edge) {
	switch head.Kind {
	case diagram.ArrowOpen:
		fmt.Fprintf(buf, `  <polyline points="%s" fill="none" stroke="%s" stroke-width="%.1f"/>`+"\n",
			pointList(head.Points), e.Color, e.Width)
	case diagram.ArrowFilled, diagram.ArrowDiamond:
		fmt.Fprintf(buf, `  <polygon points="%s" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
			pointList(head.Points), e.Color, e.Color, e.Width)
	case diagram.ArrowCircle:
		fmt.Fprintf(buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n",
			head.Center.X, head.Center.Y, head.Radius, e.Color)
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func xmlEscape(s string) string { return xmlEscaper.Replace(s) }
