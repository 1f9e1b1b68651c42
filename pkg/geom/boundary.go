package geom

import (
	"math"

	"draftboard/pkg/diagram"
)

// =============================================================================
// Shape Boundary Resolution
// =============================================================================

// Center returns a node's center point.
func Center(n *diagram.Node) Point {
	x, y := n.Center()
	return Point{x, y}
}

// BoundaryPoint returns the point where a ray from the node's center toward
// the given diagram-space point exits the node's shape outline, honoring the
// node's rotation. A degenerate direction (toward the center itself) resolves
// to the center.
func BoundaryPoint(n *diagram.Node, toward Point) Point {
	c := Center(n)
	dir := toward.Sub(c)
	if dir.X == 0 && dir.Y == 0 {
		return c
	}
	rad := DegToRad(n.Rotation)
	local := dir.Rotate(-rad)
	hit := localBoundary(n.Shape, n.Width/2, n.Height/2, local.X, local.Y)
	return hit.Rotate(rad).Add(c)
}

// localBoundary resolves the ray (dx, dy) from the origin against the shape
// outline in the node's local frame. All six shapes dispatch through this one
// switch so the formulas stay auditable side by side.
func localBoundary(shape diagram.Shape, hw, hh, dx, dy float64) Point {
	switch shape {
	case diagram.ShapeEllipse:
		t := 1 / math.Sqrt((dx/hw)*(dx/hw)+(dy/hh)*(dy/hh))
		return Point{dx * t, dy * t}

	case diagram.ShapeDiamond, diagram.ShapeTriangle, diagram.ShapeArrow:
		// Rhombus with vertices at (±hw, 0) and (0, ±hh). Triangle and
		// arrow reuse the same L1 solve as an approximation of their true
		// outlines; see DESIGN.md.
		t := 1 / (math.Abs(dx)/hw + math.Abs(dy)/hh)
		return Point{dx * t, dy * t}

	case diagram.ShapePill:
		return pillBoundary(hw, hh, dx, dy)

	default: // rectangle
		return rectBoundary(hw, hh, dx, dy)
	}
}

func rectBoundary(hw, hh, dx, dy float64) Point {
	t := math.Inf(1)
	if dx != 0 {
		t = hw / math.Abs(dx)
	}
	if dy != 0 {
		if ty := hh / math.Abs(dy); ty < t {
			t = ty
		}
	}
	return Point{dx * t, dy * t}
}

// pillBoundary intersects the ray with a stadium: a rectangle capped by
// semicircles on its longer axis. The ray either hits a flat face (plain
// box intersection against the reduced extent) or a cap (ray/circle
// quadratic, positive root).
func pillBoundary(hw, hh, dx, dy float64) Point {
	if hw >= hh {
		// Horizontal pill: caps at (±rectHw, 0) with radius hh.
		r := hh
		rectHw := hw - r
		if math.Abs(dx)*hh <= math.Abs(dy)*rectHw {
			// Flat top/bottom face.
			t := hh / math.Abs(dy)
			return Point{dx * t, dy * t}
		}
		cx := math.Copysign(rectHw, dx)
		return rayCircle(dx, dy, cx, 0, r)
	}

	// Vertical pill: caps at (0, ±rectHh) with radius hw.
	r := hw
	rectHh := hh - r
	if math.Abs(dy)*hw <= math.Abs(dx)*rectHh {
		// Flat left/right face.
		t := hw / math.Abs(dx)
		return Point{dx * t, dy * t}
	}
	cy := math.Copysign(rectHh, dy)
	return rayCircle(dx, dy, 0, cy, r)
}

// rayCircle solves |t·(dx,dy) − (cx,cy)|² = r² for the largest positive t.
// The origin lies inside the stadium, so a positive root always exists.
func rayCircle(dx, dy, cx, cy, r float64) Point {
	a := dx*dx + dy*dy
	b := -2 * (dx*cx + dy*cy)
	c := cx*cx + cy*cy - r*r
	disc := b*b - 4*a*c
	if disc < 0 {
		disc = 0
	}
	t := (-b + math.Sqrt(disc)) / (2 * a)
	return Point{dx * t, dy * t}
}

// =============================================================================
// Side Classification
// =============================================================================

// SideOfPoint classifies which cardinal side of the node a diagram-space
// point belongs to: the point is un-rotated into the local frame, normalized
// by the half-extents, and assigned to the dominant axis. Ties break toward
// the horizontal sides.
func SideOfPoint(n *diagram.Node, p Point) diagram.Side {
	c := Center(n)
	local := p.Sub(c).Rotate(-DegToRad(n.Rotation))
	nx := local.X / (n.Width / 2)
	ny := local.Y / (n.Height / 2)
	if math.Abs(nx) >= math.Abs(ny) {
		if nx >= 0 {
			return diagram.SideRight
		}
		return diagram.SideLeft
	}
	if ny >= 0 {
		return diagram.SideBottom
	}
	return diagram.SideTop
}

// SidePoint returns the midpoint of the given cardinal side of the node's
// bounding box, rotated into diagram space. SideAuto resolves to the center.
func SidePoint(n *diagram.Node, side diagram.Side) Point {
	c := Center(n)
	hw, hh := n.Width/2, n.Height/2
	var local Point
	switch side {
	case diagram.SideTop:
		local = Point{0, -hh}
	case diagram.SideRight:
		local = Point{hw, 0}
	case diagram.SideBottom:
		local = Point{0, hh}
	case diagram.SideLeft:
		local = Point{-hw, 0}
	default:
		return c
	}
	return local.Rotate(DegToRad(n.Rotation)).Add(c)
}
