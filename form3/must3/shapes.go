package must3

import (
	"math"

	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// box is a 3d box.
type box struct {
	size  r3.Vec
	round float64
	bb    r3.Box
}

// Box returns the field of a box centered at the origin (rounded corners with round > 0).
func Box(size r3.Vec, round float64) *box {
	if d3.Min(size) <= 0 {
		panic("size <= 0")
	}
	if round < 0 {
		panic("round < 0")
	}
	size = r3.Scale(0.5, size)
	if round > d3.Min(size) {
		panic("round > half the smallest side")
	}
	return &box{
		size:  r3.Sub(size, d3.Elem(round)),
		round: round,
		bb:    r3.Box{Min: r3.Scale(-1, size), Max: size},
	}
}

// Evaluate returns the signed distance to the box.
func (s *box) Evaluate(p r3.Vec) (float64, error) {
	q := r3.Sub(d3.AbsElem(p), s.size)
	outside := r3.Norm(d3.MaxElem(q, r3.Vec{}))
	inside := math.Min(d3.Max(q), 0)
	return outside + inside - s.round, nil
}

// Bounds returns the bounding box of the box.
func (s *box) Bounds() r3.Box { return s.bb }

// sphere is a sphere (exact distance field).
type sphere struct {
	radius float64
	bb     r3.Box
}

// Sphere returns the field of a sphere centered at the origin.
func Sphere(radius float64) *sphere {
	if radius <= 0 {
		panic("radius <= 0")
	}
	d := d3.Elem(radius)
	return &sphere{
		radius: radius,
		bb:     r3.Box{Min: r3.Scale(-1, d), Max: d},
	}
}

// Evaluate returns the signed distance to the sphere.
func (s *sphere) Evaluate(p r3.Vec) (float64, error) {
	return r3.Norm(p) - s.radius, nil
}

// Bounds returns the bounding box of the sphere.
func (s *sphere) Bounds() r3.Box { return s.bb }

// cylinder is a cylinder along the z axis.
type cylinder struct {
	height float64
	radius float64
	round  float64
	bb     r3.Box
}

// Cylinder returns the field of a cylinder along z (rounded edges with round > 0).
func Cylinder(height, radius, round float64) *cylinder {
	switch {
	case radius <= 0:
		panic("radius <= 0")
	case round < 0:
		panic("round < 0")
	case round > radius:
		panic("round > radius")
	case height < 2*round:
		panic("height < 2 * round")
	}
	d := r3.Vec{X: radius, Y: radius, Z: height / 2}
	return &cylinder{
		height: height/2 - round,
		radius: radius - round,
		round:  round,
		bb:     r3.Box{Min: r3.Scale(-1, d), Max: d},
	}
}

// Evaluate returns the signed distance to the cylinder.
func (s *cylinder) Evaluate(p r3.Vec) (float64, error) {
	dx := math.Hypot(p.X, p.Y) - s.radius
	dz := math.Abs(p.Z) - s.height
	outside := math.Hypot(math.Max(dx, 0), math.Max(dz, 0))
	return outside + math.Min(math.Max(dx, dz), 0) - s.round, nil
}

// Bounds returns the bounding box of the cylinder.
func (s *cylinder) Bounds() r3.Box { return s.bb }

// torus is a ring around the z axis.
type torus struct {
	major, minor float64
	bb           r3.Box
}

// Torus returns the field of a torus around the z axis. major is the
// distance from the origin to the tube center and minor the tube radius.
func Torus(major, minor float64) *torus {
	if minor <= 0 {
		panic("minor radius <= 0")
	}
	if major < minor {
		panic("major radius < minor radius")
	}
	d := r3.Vec{X: major + minor, Y: major + minor, Z: minor}
	return &torus{
		major: major,
		minor: minor,
		bb:    r3.Box{Min: r3.Scale(-1, d), Max: d},
	}
}

// Evaluate returns the signed distance to the torus.
func (s *torus) Evaluate(p r3.Vec) (float64, error) {
	q := math.Hypot(p.X, p.Y) - s.major
	return math.Hypot(q, p.Z) - s.minor, nil
}

// Bounds returns the bounding box of the torus.
func (s *torus) Bounds() r3.Box { return s.bb }

// gyroid is a triply periodic minimal surface. It has no bounds.
type gyroid struct {
	k float64
}

// Gyroid returns sin(kx)cos(ky) + sin(ky)cos(kz) + sin(kz)cos(kx)
// with k = 2π/period. The field is not a distance.
func Gyroid(period float64) *gyroid {
	if period <= 0 {
		panic("period <= 0")
	}
	return &gyroid{k: 2 * math.Pi / period}
}

// Evaluate returns the gyroid field value at p.
func (s *gyroid) Evaluate(p r3.Vec) (float64, error) {
	x, y, z := s.k*p.X, s.k*p.Y, s.k*p.Z
	return math.Sin(x)*math.Cos(y) + math.Sin(y)*math.Cos(z) + math.Sin(z)*math.Cos(x), nil
}

// plane is a half space.
type plane struct {
	normal r3.Vec
	offset float64
}

// Plane returns the half space n·p <= offset. The field is positive
// on the side normal points to.
func Plane(normal r3.Vec, offset float64) *plane {
	if r3.Norm(normal) == 0 {
		panic("zero plane normal")
	}
	return &plane{normal: r3.Unit(normal), offset: offset}
}

// Evaluate returns the signed distance to the plane.
func (s *plane) Evaluate(p r3.Vec) (float64, error) {
	return r3.Dot(s.normal, p) - s.offset, nil
}
