package export

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"draftboard/pkg/diagram"
	"draftboard/pkg/errors"
	"draftboard/pkg/geom"
)

// PNGOption configures RenderPNG.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background string
	margin     float64
}

// WithScale sets the raster scale factor. 2.0 produces a 2x resolution image
// suitable for high-DPI displays.
func WithScale(scale float64) PNGOption {
	return func(r *pngRenderer) { r.scale = scale }
}

// WithPNGBackground sets the background color (default white; PNG has no
// transparency story worth the surprise of invisible white labels).
func WithPNGBackground(color string) PNGOption {
	return func(r *pngRenderer) { r.background = color }
}

// WithPNGMargin overrides the whitespace around the diagram content.
func WithPNGMargin(px float64) PNGOption {
	return func(r *pngRenderer) { r.margin = px }
}

// RenderPNG rasterizes the diagram. The draw order matches the SVG renderer:
// edges first, then nodes back to front by z-index, labels on top of their
// shapes.
func RenderPNG(d *diagram.Diagram, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1.0, background: "#ffffff", margin: defaultMargin}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", r.scale)
	}

	minX, minY, w, h := contentBounds(d, r.margin)
	dc := gg.NewContext(int(math.Ceil(w*r.scale)), int(math.Ceil(h*r.scale)))

	if r.background != "" {
		dc.SetHexColor(r.background)
		dc.Clear()
	}

	dc.Scale(r.scale, r.scale)
	dc.Translate(-minX, -minY)

	face, err := labelFace(labelFontSize)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	for _, e := range d.Edges {
		drawEdge(dc, d, e)
	}

	nodes := slices.Clone(d.Nodes)
	slices.SortStableFunc(nodes, func(a, b *diagram.Node) int {
		if c := cmp.Compare(a.ZIndex, b.ZIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for _, n := range nodes {
		drawNode(dc, n)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func labelFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse label font")
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// =============================================================================
// Nodes
// =============================================================================

func drawNode(dc *gg.Context, n *diagram.Node) {
	cx, cy := n.Center()

	dc.Push()
	if n.Rotation != 0 {
		dc.RotateAbout(gg.Radians(n.Rotation), cx, cy)
	}

	tracePath(dc, n)

	fr, fg, fb, ok := parseHexColor(n.Color)
	if !ok {
		fr, fg, fb = 0.2, 0.47, 0.96
	}
	dc.SetRGBA(fr, fg, fb, n.FillOpacity)
	dc.FillPreserve()

	setDash(dc, string(n.BorderStyle))
	dc.SetRGBA(fr, fg, fb, 1)
	dc.SetLineWidth(nodeStrokeWidth)
	dc.Stroke()
	dc.SetDash()

	if n.Label != "" {
		dc.SetRGB(0.12, 0.16, 0.22)
		dc.DrawStringAnchored(n.Label, cx, cy, 0.5, 0.5)
	}
	dc.Pop()
}

func tracePath(dc *gg.Context, n *diagram.Node) {
	switch n.Shape {
	case diagram.ShapeEllipse:
		cx, cy := n.Center()
		dc.DrawEllipse(cx, cy, n.Width/2, n.Height/2)
	case diagram.ShapeDiamond:
		tracePolygon(dc, diamondPoints(n))
	case diagram.ShapeTriangle:
		tracePolygon(dc, trianglePoints(n))
	case diagram.ShapeArrow:
		tracePolygon(dc, arrowPoints(n))
	case diagram.ShapePill:
		dc.DrawRoundedRectangle(n.X, n.Y, n.Width, n.Height, math.Min(n.Width, n.Height)/2)
	default:
		dc.DrawRoundedRectangle(n.X, n.Y, n.Width, n.Height, nodeCornerRadius)
	}
}

func tracePolygon(dc *gg.Context, pts []geom.Point) {
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
}

// =============================================================================
// Edges
// =============================================================================

func drawEdge(dc *gg.Context, d *diagram.Diagram, e *diagram.Edge) {
	src := d.Node(e.Source)
	dst := d.Node(e.Target)
	if src == nil || dst == nil {
		return
	}
	route := geom.RouteForEdge(e, src, dst)

	er, eg, eb, ok := parseHexColor(e.Color)
	if !ok {
		er, eg, eb = 0.4, 0.4, 0.4
	}
	dc.SetRGB(er, eg, eb)
	dc.SetLineWidth(e.Width)
	setDash(dc, string(e.Style))

	dc.MoveTo(route.Start.X, route.Start.Y)
	dc.CubicTo(
		route.Control1.X, route.Control1.Y,
		route.Control2.X, route.Control2.Y,
		route.End.X, route.End.Y)
	dc.Stroke()
	dc.SetDash()

	drawArrowhead(dc, route.StartArrowhead(e.ArrowStart, e.ArrowSize), e.Width)
	drawArrowhead(dc, route.EndArrowhead(e.ArrowEnd, e.ArrowSize), e.Width)

	if e.Label != "" {
		mid := route.PointAt(0.5)
		dc.DrawStringAnchored(e.Label, mid.X, mid.Y-8, 0.5, 0.5)
	}
}

func drawArrowhead(dc *gg.Context, head geom.ArrowPrimitive, lineWidth float64) {
	switch head.Kind {
	case diagram.ArrowOpen:
		dc.MoveTo(head.Points[0].X, head.Points[0].Y)
		dc.LineTo(head.Points[1].X, head.Points[1].Y)
		dc.LineTo(head.Points[2].X, head.Points[2].Y)
		dc.SetLineWidth(lineWidth)
		dc.Stroke()
	case diagram.ArrowFilled, diagram.ArrowDiamond:
		tracePolygon(dc, head.Points)
		dc.Fill()
	case diagram.ArrowCircle:
		dc.DrawCircle(head.Center.X, head.Center.Y, head.Radius)
		dc.Fill()
	}
}

func setDash(dc *gg.Context, style string) {
	switch style {
	case "dashed":
		dc.SetDash(8, 4)
	case "dotted":
		dc.SetDash(2, 3)
	default:
		dc.SetDash()
	}
}

// parseHexColor decodes #rgb and #rrggbb into [0,1] channels.
func parseHexColor(s string) (r, g, b float64, ok bool) {
	if len(s) == 0 || s[0] != '#' {
		return 0, 0, 0, false
	}
	hex := s[1:]
	var ri, gi, bi int
	switch len(hex) {
	case 3:
		if _, err := fmt.Sscanf(hex, "%1x%1x%1x", &ri, &gi, &bi); err != nil {
			return 0, 0, 0, false
		}
		ri, gi, bi = ri*17, gi*17, bi*17
	case 6:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &ri, &gi, &bi); err != nil {
			return 0, 0, 0, false
		}
	default:
		return 0, 0, 0, false
	}
	return float64(ri) / 255, float64(gi) / 255, float64(bi) / 255, true
}
