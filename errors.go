package implicit

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrFieldEvaluation is matched by errors returned when the field fails or
	// returns a non-finite value. Extraction is aborted and no mesh is returned.
	ErrFieldEvaluation = errors.New("field evaluation failed")
	// ErrInvalidBounds is matched by errors returned for bounds with min >= max on some axis.
	ErrInvalidBounds = errors.New("invalid bounds")
	// ErrUnsupportedAlgorithm is matched by errors returned for unknown algorithm selectors.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	// ErrTooManyCells is returned when a grid would exceed Config.MaxCells.
	ErrTooManyCells = errors.New("grid exceeds maximum cell count")
	// ErrInvalidConfig is matched by errors returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")
)

// FieldError is returned when evaluating the field at Point failed.
type FieldError struct {
	Point r3.Vec
	// Value is the non-finite value returned by the field, if any.
	Value float64
	// Err is the underlying error returned by the field or recovered from a panic.
	// It is nil for non-finite results.
	Err error
}

func (e *FieldError) Error() string {
	p := e.Point
	if e.Err != nil {
		return fmt.Sprintf("field evaluation at (%g, %g, %g): %s", p.X, p.Y, p.Z, e.Err)
	}
	return fmt.Sprintf("field evaluation at (%g, %g, %g): non-finite value %g", p.X, p.Y, p.Z, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Err }

func (e *FieldError) Is(target error) bool { return target == ErrFieldEvaluation }

// BoundsError is returned for a degenerate or non-finite bounding box.
type BoundsError struct {
	Axis     int
	Min, Max float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("invalid bounds on %c axis: min %g must be less than max %g", "xyz"[e.Axis], e.Min, e.Max)
}

func (e *BoundsError) Is(target error) bool { return target == ErrInvalidBounds }

// AlgorithmError is returned when an algorithm selector is not recognized.
type AlgorithmError struct {
	Name string
}

func (e *AlgorithmError) Error() string {
	return fmt.Sprintf("unsupported algorithm %q: want one of %q, %q", e.Name, MarchingCubes, DualContour)
}

func (e *AlgorithmError) Is(target error) bool { return target == ErrUnsupportedAlgorithm }
