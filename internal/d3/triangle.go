package d3

import "gonum.org/v1/gonum/spatial/r3"

// Triangle is a 3D triangle. Vertices are ordered counter-clockwise
// when viewed from the side the normal points to.
type Triangle [3]r3.Vec

// Normal returns the unit normal of the triangle following the right hand rule.
func (t Triangle) Normal() r3.Vec {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return Unit(r3.Cross(e1, e2))
}

// Area returns the surface area of the triangle.
func (t Triangle) Area() float64 {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return 0.5 * r3.Norm(r3.Cross(e1, e2))
}

// Centroid returns the mean of the triangle's vertices.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1./3., r3.Add(t[0], r3.Add(t[1], t[2])))
}

// Degenerate returns true if two of the triangle's vertices are within tol of eachother.
func (t Triangle) Degenerate(tol float64) bool {
	return EqualWithin(t[0], t[1], tol) ||
		EqualWithin(t[1], t[2], tol) ||
		EqualWithin(t[2], t[0], tol)
}
