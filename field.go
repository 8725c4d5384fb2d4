package implicit

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Field is a scalar field whose zero level set defines a surface.
// Evaluate must be deterministic for a given field instance and free of side effects.
// The value is negative for points inside the surface.
type Field interface {
	Evaluate(p r3.Vec) (float64, error)
}

// FieldFunc adapts a pure function of three coordinates to a Field.
type FieldFunc func(x, y, z float64) float64

// Evaluate calls f(p.X, p.Y, p.Z). It never returns an error; non-finite
// results are reported by the extractors.
func (f FieldFunc) Evaluate(p r3.Vec) (float64, error) {
	return f(p.X, p.Y, p.Z), nil
}

// ValidateBounds returns a *BoundsError if min >= max on any axis of b
// or if any of the bounds is not a finite number.
func ValidateBounds(b r3.Box) error {
	mins := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	maxs := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	for axis := range mins {
		lo, hi := mins[axis], maxs[axis]
		if !finite(lo) || !finite(hi) || lo >= hi {
			return &BoundsError{Axis: axis, Min: lo, Max: hi}
		}
	}
	return nil
}

// Cube returns the box [-limit, limit] on all three axes.
func Cube(limit float64) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: -limit, Y: -limit, Z: -limit},
		Max: r3.Vec{X: limit, Y: limit, Z: limit},
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
