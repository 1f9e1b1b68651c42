package geom

import (
	"math"

	"draftboard/pkg/diagram"
)

// =============================================================================
// Connection-Side Tangents
// =============================================================================

// OutwardAngle returns the direction, in radians, pointing away from the node
// through the given connection side, honoring the node's rotation in degrees.
// SideAuto is treated as SideRight.
func OutwardAngle(side diagram.Side, rotationDeg float64) float64 {
	var base float64
	switch side {
	case diagram.SideTop:
		base = -math.Pi / 2
	case diagram.SideBottom:
		base = math.Pi / 2
	case diagram.SideLeft:
		base = math.Pi
	default: // right, auto
		base = 0
	}
	return base + DegToRad(rotationDeg)
}

// InwardAngle returns the direction pointing into the node through the given
// side. It differs from OutwardAngle by exactly π.
func InwardAngle(side diagram.Side, rotationDeg float64) float64 {
	return OutwardAngle(side, rotationDeg) + math.Pi
}

// =============================================================================
// Arrowhead Primitives
// =============================================================================

// Angular half-spread of arrowhead wings.
const (
	vWingSpread       = 0.4         // open "V" and filled triangle
	diamondWingSpread = math.Pi / 4 // diamond outline
)

// ArrowPrimitive is the deterministic render primitive for one arrowhead.
// Open "V" heads fill Points as a polyline; filled and diamond heads fill
// Points as a closed polygon; circle heads fill Center and Radius instead.
// ArrowNone yields a zero primitive with no points.
type ArrowPrimitive struct {
	Kind   diagram.ArrowKind
	Points []Point
	Center Point
	Radius float64
}

// Arrowhead builds the primitive for an arrowhead whose tip sits at the
// given anchor, facing the given angle. For an edge-end arrow the facing
// angle is the inward tangent of the target side; for an edge-start arrow
// it is the outward source tangent, so the head faces away from the source.
func Arrowhead(tip Point, facing float64, kind diagram.ArrowKind, size float64) ArrowPrimitive {
	back := facing + math.Pi
	switch kind {
	case diagram.ArrowOpen:
		return ArrowPrimitive{
			Kind: kind,
			Points: []Point{
				tip.Add(Unit(back - vWingSpread).Scale(size)),
				tip,
				tip.Add(Unit(back + vWingSpread).Scale(size)),
			},
		}

	case diagram.ArrowFilled:
		return ArrowPrimitive{
			Kind: kind,
			Points: []Point{
				tip,
				tip.Add(Unit(back - vWingSpread).Scale(size)),
				tip.Add(Unit(back + vWingSpread).Scale(size)),
			},
		}

	case diagram.ArrowDiamond:
		w1 := Unit(back - diamondWingSpread).Scale(size)
		w2 := Unit(back + diamondWingSpread).Scale(size)
		return ArrowPrimitive{
			Kind: kind,
			Points: []Point{
				tip,
				tip.Add(w1),
				tip.Add(w1).Add(w2),
				tip.Add(w2),
			},
		}

	case diagram.ArrowCircle:
		return ArrowPrimitive{
			Kind:   kind,
			Center: tip.Add(Unit(back).Scale(size / 2)),
			Radius: size / 2,
		}
	}
	return ArrowPrimitive{Kind: diagram.ArrowNone}
}
