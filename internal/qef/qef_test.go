package qef

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSolveCorner(t *testing.T) {
	want := r3.Vec{X: 0.3, Y: 0.4, Z: 0.5}
	var q QEF
	q.Add(r3.Vec{X: 0.3, Y: 0.9, Z: 0.1}, r3.Vec{X: 1})
	q.Add(r3.Vec{X: 0, Y: 0.4, Z: 0.7}, r3.Vec{Y: 1})
	q.Add(r3.Vec{X: 0.2, Y: 0.2, Z: 0.5}, r3.Vec{Z: 1})
	got, err := q.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if !d3.EqualWithin(got, want, 1e-12) {
		t.Errorf("got %v, want %v", got, want)
	}
	if res := q.Residual(got); res > 1e-12 {
		t.Errorf("expected zero residual at solution, got %g", res)
	}
}

func TestSolveOverdetermined(t *testing.T) {
	// Two pairs of opposing planes: the least squares solution is midway.
	var q QEF
	q.Add(r3.Vec{X: 0}, r3.Vec{X: 1})
	q.Add(r3.Vec{X: 1}, r3.Vec{X: 1})
	q.Add(r3.Vec{Y: 2}, r3.Vec{Y: 1})
	q.Add(r3.Vec{Z: -1}, r3.Vec{Z: 1})
	got, err := q.Solve()
	if err != nil {
		t.Fatal(err)
	}
	want := r3.Vec{X: 0.5, Y: 2, Z: -1}
	if !d3.EqualWithin(got, want, 1e-12) {
		t.Errorf("got %v, want %v", got, want)
	}
	if res := q.Residual(got); math.Abs(res-math.Sqrt(0.5)) > 1e-12 {
		t.Errorf("got residual %g, want %g", res, math.Sqrt(0.5))
	}
}

func TestSolveDegenerate(t *testing.T) {
	var q QEF
	n := r3.Vec{Z: 1}
	q.Add(r3.Vec{X: 0, Y: 0, Z: 0.5}, n)
	q.Add(r3.Vec{X: 1, Y: 0, Z: 0.5}, n)
	q.Add(r3.Vec{X: 1, Y: 1, Z: 0.5}, n)
	got, err := q.Solve()
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
	// Minimum norm solution lies on the plane.
	if math.Abs(got.Z-0.5) > 1e-12 || math.Abs(got.X) > 1e-12 || math.Abs(got.Y) > 1e-12 {
		t.Errorf("unexpected minimum norm solution %v", got)
	}

	// Bias determines the remaining axes.
	q.AddBias(0.01)
	got, err = q.Solve()
	if err != nil {
		t.Fatal(err)
	}
	mass := r3.Vec{X: 2. / 3., Y: 1. / 3., Z: 0.5}
	if !d3.EqualWithin(got, mass, 1e-9) {
		t.Errorf("biased solution got %v, want mass point %v", got, mass)
	}
}

func TestSolveEmpty(t *testing.T) {
	var q QEF
	_, err := q.Solve()
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate for empty system, got %v", err)
	}
	if q.MassPoint() != (r3.Vec{}) {
		t.Error("expected zero mass point for empty system")
	}
}

func TestSolveBox(t *testing.T) {
	box := r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	for _, test := range []struct {
		name   string
		points [3]r3.Vec // plane points for x, y, z normal planes.
		want   r3.Vec
	}{
		{
			name:   "inside",
			points: [3]r3.Vec{{X: 0.25}, {Y: 0.5}, {Z: 0.75}},
			want:   r3.Vec{X: 0.25, Y: 0.5, Z: 0.75},
		},
		{
			name:   "face",
			points: [3]r3.Vec{{X: 2}, {Y: 0.5}, {Z: 0.5}},
			want:   r3.Vec{X: 1, Y: 0.5, Z: 0.5},
		},
		{
			name:   "edge",
			points: [3]r3.Vec{{X: -3}, {Y: 4}, {Z: 0.5}},
			want:   r3.Vec{X: 0, Y: 1, Z: 0.5},
		},
		{
			name:   "corner",
			points: [3]r3.Vec{{X: -3}, {Y: 4}, {Z: 9}},
			want:   r3.Vec{X: 0, Y: 1, Z: 1},
		},
	} {
		var q QEF
		q.Add(test.points[0], r3.Vec{X: 1})
		q.Add(test.points[1], r3.Vec{Y: 1})
		q.Add(test.points[2], r3.Vec{Z: 1})
		got := q.SolveBox(box)
		if !d3.EqualWithin(got, test.want, 1e-9) {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}
}

func TestSolveBoxOblique(t *testing.T) {
	// Nearly parallel planes intersect far outside the unit cell.
	box := r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	var q QEF
	q.Add(r3.Vec{Z: 0.2}, d3.Unit(r3.Vec{Z: 1}))
	q.Add(r3.Vec{Y: 1, Z: 0.2}, d3.Unit(r3.Vec{X: -0.1, Z: 1}))
	q.Add(r3.Vec{X: 1, Z: 0.8}, d3.Unit(r3.Vec{Y: -0.1, Z: 1}))
	q.Add(r3.Vec{X: 1, Y: 1, Z: 0.9}, d3.Unit(r3.Vec{X: -0.1, Y: -0.1, Z: 1}))
	free, err := q.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if d3.Box(box).Contains(free) {
		t.Fatalf("expected unconstrained solution outside of box, got %v", free)
	}
	got := q.SolveBox(box)
	if !d3.Box(box).Contains(got) {
		t.Errorf("constrained solution %v outside box", got)
	}
	if q.Residual(got) < q.Residual(free) {
		t.Error("constrained residual cannot be smaller than unconstrained residual")
	}
}

func TestReset(t *testing.T) {
	var q QEF
	q.Add(r3.Vec{X: 1}, r3.Vec{X: 1})
	q.AddBias(1)
	q.Reset()
	if q.Len() != 0 || q.MassPoint() != (r3.Vec{}) {
		t.Errorf("reset did not empty QEF: %d equations", q.Len())
	}
}
