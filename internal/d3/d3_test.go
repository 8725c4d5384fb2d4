package d3

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBox(t *testing.T) {
	b := Box{Min: r3.Vec{X: -1, Y: 0, Z: 1}, Max: r3.Vec{X: 1, Y: 2, Z: 4}}
	if got := b.Center(); got != (r3.Vec{X: 0, Y: 1, Z: 2.5}) {
		t.Errorf("center %v", got)
	}
	if !b.Contains(b.Max) || b.Contains(r3.Vec{X: 1.01, Y: 1, Z: 2}) {
		t.Error("contains on boundary/outside")
	}
	if !b.ContainsTol(r3.Vec{X: 1.01, Y: 1, Z: 2}, 0.02) {
		t.Error("contains with tolerance")
	}
	if got := b.Clamp(r3.Vec{X: 5, Y: -5, Z: 2}); got != (r3.Vec{X: 1, Y: 0, Z: 2}) {
		t.Errorf("clamp %v", got)
	}
	v := b.Vertices()
	if v[0] != b.Min || v[6] != b.Max || v[3] != (r3.Vec{X: -1, Y: 2, Z: 1}) {
		t.Errorf("vertices %v", v)
	}
	grown := b.Include(r3.Vec{X: 3, Y: -1, Z: 2})
	if grown.Max.X != 3 || grown.Min.Y != -1 || grown.Min.Z != 1 {
		t.Errorf("include %v", grown)
	}
}

func TestAxis(t *testing.T) {
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	for axis := 0; axis < 3; axis++ {
		w := SetAxis(v, axis, -1)
		if Axis(w, axis) != -1 || Axis(v, axis) != float64(axis+1) {
			t.Errorf("axis %d: %v", axis, w)
		}
	}
	if Unit(r3.Vec{}) != (r3.Vec{}) {
		t.Error("unit of zero vector must be zero")
	}
	if got := Unit(r3.Vec{Y: 3}); got != (r3.Vec{Y: 1}) {
		t.Errorf("unit %v", got)
	}
}

func TestTriangle(t *testing.T) {
	tri := Triangle{{}, {X: 2}, {Y: 2}}
	if tri.Area() != 2 || tri.Normal() != (r3.Vec{Z: 1}) {
		t.Errorf("area %g normal %v", tri.Area(), tri.Normal())
	}
	if tri.Degenerate(1e-9) || !(Triangle{{}, {}, {Y: 1}}).Degenerate(0) {
		t.Error("degenerate")
	}
}
