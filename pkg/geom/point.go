package geom

import "math"

// Point is a position or vector in diagram space (x right, y down).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Len returns the vector length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }

// Rotate returns p rotated about the origin by rad radians.
// Positive angles rotate clockwise on screen (y grows down).
func (p Point) Rotate(rad float64) Point {
	sin, cos := math.Sincos(rad)
	return Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// RotateAround returns p rotated about c by rad radians.
func (p Point) RotateAround(c Point, rad float64) Point {
	return p.Sub(c).Rotate(rad).Add(c)
}

// Unit returns the unit vector at the given angle in radians.
func Unit(rad float64) Point {
	sin, cos := math.Sincos(rad)
	return Point{X: cos, Y: sin}
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }
