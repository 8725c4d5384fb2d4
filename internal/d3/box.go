package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is a 3d axis aligned bounding box.
type Box r3.Box

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// ContainsTol checks if the box enlarged by tol on every side contains v.
func (a Box) ContainsTol(v r3.Vec, tol float64) bool {
	t := Elem(tol)
	return Box{Min: r3.Sub(a.Min, t), Max: r3.Add(a.Max, t)}.Contains(v)
}

// Clamp returns the point of the box closest to v.
func (a Box) Clamp(v r3.Vec) r3.Vec {
	return Clamp(v, a.Min, a.Max)
}

// Vertices returns the box corners in the order
//  (0,0,0),(1,0,0),(1,1,0),(0,1,0),(0,0,1),(1,0,1),(1,1,1),(0,1,1)
// where 0 stands for the Min component and 1 for the Max component.
func (a Box) Vertices() [8]r3.Vec {
	return [8]r3.Vec{
		a.Min,
		{X: a.Max.X, Y: a.Min.Y, Z: a.Min.Z},
		{X: a.Max.X, Y: a.Max.Y, Z: a.Min.Z},
		{X: a.Min.X, Y: a.Max.Y, Z: a.Min.Z},
		{X: a.Min.X, Y: a.Min.Y, Z: a.Max.Z},
		{X: a.Max.X, Y: a.Min.Y, Z: a.Max.Z},
		a.Max,
		{X: a.Min.X, Y: a.Max.Y, Z: a.Max.Z},
	}
}
