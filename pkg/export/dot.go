package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"draftboard/pkg/diagram"
	"draftboard/pkg/errors"
)

// ToDOT converts a diagram to Graphviz DOT format. Positions are discarded;
// Graphviz computes its own layout. Shape, color, border style, and edge
// arrowheads are mapped onto the closest Graphviz equivalents, so the result
// reads like the same diagram even though the geometry differs.
func ToDOT(d *diagram.Diagram) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  label=%q;\n", d.Name)
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(dotNodeAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(dotEdgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotNodeAttrs(n *diagram.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.Label)}

	shape, rounded := dotShape(n.Shape)
	attrs = append(attrs, fmt.Sprintf("shape=%s", shape))

	styles := []string{"filled"}
	if rounded {
		styles = append(styles, "rounded")
	}
	switch n.BorderStyle {
	case diagram.BorderDashed:
		styles = append(styles, "dashed")
	case diagram.BorderDotted:
		styles = append(styles, "dotted")
	}
	attrs = append(attrs, fmt.Sprintf("style=%q", strings.Join(styles, ",")))

	if n.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Color), "fontcolor=white")
	}
	return attrs
}

func dotShape(s diagram.Shape) (name string, rounded bool) {
	switch s {
	case diagram.ShapeEllipse:
		return "ellipse", false
	case diagram.ShapeDiamond:
		return "diamond", false
	case diagram.ShapePill:
		return "box", true
	case diagram.ShapeTriangle:
		return "triangle", false
	case diagram.ShapeArrow:
		return "rarrow", false
	default:
		return "box", false
	}
}

func dotEdgeAttrs(e *diagram.Edge) []string {
	attrs := []string{
		fmt.Sprintf("arrowhead=%s", dotArrow(e.ArrowEnd)),
		fmt.Sprintf("arrowtail=%s", dotArrow(e.ArrowStart)),
		"dir=both",
	}
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", e.Color))
	}
	switch e.Style {
	case diagram.LineDashed:
		attrs = append(attrs, "style=dashed")
	case diagram.LineDotted:
		attrs = append(attrs, "style=dotted")
	}
	return attrs
}

func dotArrow(k diagram.ArrowKind) string {
	switch k {
	case diagram.ArrowOpen:
		return "vee"
	case diagram.ArrowFilled:
		return "normal"
	case diagram.ArrowDiamond:
		return "diamond"
	case diagram.ArrowCircle:
		return "dot"
	default:
		return "none"
	}
}

// RenderGraphvizSVG lays the diagram out with Graphviz and renders it to SVG.
// This produces a layout-independent view useful for diagrams whose manual
// positions have drifted.
func RenderGraphvizSVG(ctx context.Context, d *diagram.Diagram) ([]byte, error) {
	svg, err := renderGraphviz(ctx, d, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderGraphvizPNG lays the diagram out with Graphviz and renders it to PNG.
func RenderGraphvizPNG(ctx context.Context, d *diagram.Diagram) ([]byte, error) {
	return renderGraphviz(ctx, d, graphviz.PNG)
}

func renderGraphviz(ctx context.Context, d *diagram.Diagram, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(ToDOT(d)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render graphviz")
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz SVG root element so the viewBox
// starts at the origin and the pixel size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
