package geom

import (
	"math"

	"draftboard/pkg/diagram"
)

// Control-point tuning for routed curves.
const (
	controlFactor    = 0.4
	maxControlOffset = 120.0
)

// Route is a routed edge: a cubic Bézier anchored on both node boundaries,
// with the tangent angles needed to orient arrowheads.
type Route struct {
	Start    Point
	End      Point
	Control1 Point
	Control2 Point

	// Resolved connection sides, after auto-side derivation.
	SourceSide diagram.Side
	TargetSide diagram.Side

	// StartAngle is the outward tangent at the source; EndAngle is the
	// inward tangent at the target.
	StartAngle float64
	EndAngle   float64
}

// RouteEdge routes a curve between two nodes. An explicit cardinal side pins
// the anchor to that side's midpoint; SideAuto anchors on the shape boundary
// along the line toward the other node's center and derives the side from
// the anchor's quadrant.
//
// The control points sit along each endpoint's outward tangent at an offset
// of min(0.4·distance, 120), so the curve leaves and enters roughly
// perpendicular to the node faces. Coincident nodes collapse the offset to
// zero and yield a degenerate point curve.
func RouteEdge(src, dst *diagram.Node, srcSide, dstSide diagram.Side) Route {
	srcCenter := Center(src)
	dstCenter := Center(dst)

	start, sSide := anchor(src, srcSide, dstCenter)
	end, tSide := anchor(dst, dstSide, srcCenter)

	startAngle := OutwardAngle(sSide, src.Rotation)
	endOutward := OutwardAngle(tSide, dst.Rotation)

	offset := math.Min(start.Dist(end)*controlFactor, maxControlOffset)

	return Route{
		Start:      start,
		End:        end,
		Control1:   start.Add(Unit(startAngle).Scale(offset)),
		Control2:   end.Add(Unit(endOutward).Scale(offset)),
		SourceSide: sSide,
		TargetSide: tSide,
		StartAngle: startAngle,
		EndAngle:   endOutward + math.Pi,
	}
}

func anchor(n *diagram.Node, side diagram.Side, toward Point) (Point, diagram.Side) {
	if side != diagram.SideAuto {
		return SidePoint(n, side), side
	}
	p := BoundaryPoint(n, toward)
	return p, SideOfPoint(n, p)
}

// RouteForEdge routes an edge between its resolved endpoint nodes, honoring
// any pinned sides on the edge.
func RouteForEdge(e *diagram.Edge, src, dst *diagram.Node) Route {
	return RouteEdge(src, dst, e.SourceSide, e.TargetSide)
}

// PointAt evaluates the cubic Bézier at t ∈ [0, 1].
func (r Route) PointAt(t float64) Point {
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return Point{
		X: b0*r.Start.X + b1*r.Control1.X + b2*r.Control2.X + b3*r.End.X,
		Y: b0*r.Start.Y + b1*r.Control1.Y + b2*r.Control2.Y + b3*r.End.Y,
	}
}

// Flatten samples the curve into n+1 points from start to end, for renderers
// that draw polylines instead of native Béziers.
func (r Route) Flatten(n int) []Point {
	if n < 1 {
		n = 1
	}
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, r.PointAt(float64(i)/float64(n)))
	}
	return pts
}

// StartArrowhead builds the arrowhead primitive for the source end of the
// route. The head faces outward, away from the source node.
func (r Route) StartArrowhead(kind diagram.ArrowKind, size float64) ArrowPrimitive {
	return Arrowhead(r.Start, r.StartAngle, kind, size)
}

// EndArrowhead builds the arrowhead primitive for the target end of the
// route. The head faces into the target node.
func (r Route) EndArrowhead(kind diagram.ArrowKind, size float64) ArrowPrimitive {
	return Arrowhead(r.End, r.EndAngle, kind, size)
}
