// Package form3 provides analytic fields for testing and demonstrating the
// extractors. Constructors return an error for invalid parameters.
package form3

import (
	"fmt"
	"runtime/debug"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/form3/must3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Shape is a field with a known bounding box.
type Shape interface {
	implicit.Field
	Bounds() r3.Box
}

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// catch converts a panic of a must3 constructor into a *shapeErr.
func catch(err *error) {
	if a := recover(); a != nil {
		*err = &shapeErr{
			panicObj: a,
			stack:    string(debug.Stack()),
		}
	}
}

// Box returns a box centered at the origin (rounded corners with round > 0).
func Box(size r3.Vec, round float64) (s Shape, err error) {
	defer catch(&err)
	return must3.Box(size, round), err
}

// Sphere returns a sphere centered at the origin.
func Sphere(radius float64) (s Shape, err error) {
	defer catch(&err)
	return must3.Sphere(radius), err
}

// Cylinder returns a cylinder along z (rounded edges with round > 0).
func Cylinder(height, radius, round float64) (s Shape, err error) {
	defer catch(&err)
	return must3.Cylinder(height, radius, round), err
}

// Capsule returns a cylinder with hemispherical caps.
func Capsule(height, radius float64) (Shape, error) {
	return Cylinder(height, radius, radius)
}

// Torus returns a torus around the z axis.
func Torus(major, minor float64) (s Shape, err error) {
	defer catch(&err)
	return must3.Torus(major, minor), err
}

// Gyroid returns a gyroid with the given period.
func Gyroid(period float64) (f implicit.Field, err error) {
	defer catch(&err)
	return must3.Gyroid(period), err
}

// Plane returns the half space n·p <= offset.
func Plane(normal r3.Vec, offset float64) (f implicit.Field, err error) {
	defer catch(&err)
	return must3.Plane(normal, offset), err
}

// Union returns the union of fields.
func Union(fields ...implicit.Field) (f implicit.Field, err error) {
	defer catch(&err)
	return must3.Union(fields...), err
}

// Intersect returns the intersection of fields.
func Intersect(fields ...implicit.Field) (f implicit.Field, err error) {
	defer catch(&err)
	return must3.Intersect(fields...), err
}

// Difference returns a with b removed.
func Difference(a, b implicit.Field) (f implicit.Field, err error) {
	defer catch(&err)
	return must3.Difference(a, b), err
}

// Translate moves f by offset.
func Translate(f implicit.Field, offset r3.Vec) (implicit.Field, error) {
	if f == nil {
		return nil, &shapeErr{panicObj: "nil field"}
	}
	return must3.Translate(f, offset), nil
}
