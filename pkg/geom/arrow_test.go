package geom

import (
	"math"
	"testing"

	"draftboard/pkg/diagram"
)

func TestOutwardAngle(t *testing.T) {
	tests := []struct {
		name string
		side diagram.Side
		rot  float64
		want float64
	}{
		{"Top", diagram.SideTop, 0, -math.Pi / 2},
		{"Right", diagram.SideRight, 0, 0},
		{"Bottom", diagram.SideBottom, 0, math.Pi / 2},
		{"Left", diagram.SideLeft, 0, math.Pi},
		{"TopRotated90", diagram.SideTop, 90, 0},
		{"RightRotated45", diagram.SideRight, 45, math.Pi / 4},
		{"AutoDefaultsRight", diagram.SideAuto, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutwardAngle(tt.side, tt.rot); !approx(got, tt.want) {
				t.Errorf("OutwardAngle(%q, %g) = %g, want %g", tt.side, tt.rot, got, tt.want)
			}
		})
	}
}

func TestInwardOutwardDifferByPi(t *testing.T) {
	for _, side := range diagram.Sides() {
		for _, rot := range []float64{0, 15, 90, 180, 293.5} {
			out := OutwardAngle(side, rot)
			in := InwardAngle(side, rot)
			if !approx(in-out, math.Pi) {
				t.Errorf("side %q rot %g: inward-outward = %g, want π", side, rot, in-out)
			}
		}
	}
}

func TestArrowheadOpen(t *testing.T) {
	tip := Point{100, 100}
	// Facing right: legs trail back-left, symmetric about the x axis.
	p := Arrowhead(tip, 0, diagram.ArrowOpen, 10)
	if len(p.Points) != 3 {
		t.Fatalf("open head has %d points, want 3", len(p.Points))
	}
	if !approxPt(p.Points[1], tip) {
		t.Errorf("apex = %+v, want tip %+v", p.Points[1], tip)
	}
	a, b := p.Points[0], p.Points[2]
	if a.X >= tip.X || b.X >= tip.X {
		t.Errorf("legs %+v, %+v do not trail behind the tip", a, b)
	}
	if !approx(a.Y-tip.Y, -(b.Y - tip.Y)) {
		t.Errorf("legs %+v, %+v not symmetric about facing axis", a, b)
	}
	if !approx(a.Dist(tip), 10) || !approx(b.Dist(tip), 10) {
		t.Errorf("leg lengths = %g, %g, want 10", a.Dist(tip), b.Dist(tip))
	}
}

func TestArrowheadFilled(t *testing.T) {
	tip := Point{0, 0}
	p := Arrowhead(tip, math.Pi/2, diagram.ArrowFilled, 12)
	if len(p.Points) != 3 {
		t.Fatalf("filled head has %d points, want 3", len(p.Points))
	}
	if !approxPt(p.Points[0], tip) {
		t.Errorf("first vertex = %+v, want tip", p.Points[0])
	}
	// Facing down: base vertices sit above the tip.
	for _, v := range p.Points[1:] {
		if v.Y >= 0 {
			t.Errorf("base vertex %+v not behind a downward-facing tip", v)
		}
	}
}

func TestArrowheadDiamond(t *testing.T) {
	tip := Point{50, 50}
	p := Arrowhead(tip, 0, diagram.ArrowDiamond, 10)
	if len(p.Points) != 4 {
		t.Fatalf("diamond head has %d points, want 4", len(p.Points))
	}
	// Back vertex sits 2·size·cos(π/4) behind the tip along the facing axis.
	back := p.Points[2]
	want := Point{50 - 2*10*math.Cos(math.Pi/4), 50}
	if !approxPt(back, want) {
		t.Errorf("back vertex = %+v, want %+v", back, want)
	}
}

func TestArrowheadCircle(t *testing.T) {
	tip := Point{100, 0}
	p := Arrowhead(tip, 0, diagram.ArrowCircle, 12)
	if !approx(p.Radius, 6) {
		t.Errorf("radius = %g, want 6", p.Radius)
	}
	if !approxPt(p.Center, Point{94, 0}) {
		t.Errorf("center = %+v, want (94, 0)", p.Center)
	}
}

func TestArrowheadNone(t *testing.T) {
	p := Arrowhead(Point{1, 2}, 1.5, diagram.ArrowNone, 12)
	if len(p.Points) != 0 || p.Radius != 0 {
		t.Errorf("none head = %+v, want empty primitive", p)
	}
}
