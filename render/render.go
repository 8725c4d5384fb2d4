package render

import (
	"github.com/soypat/implicit/internal/d3"
)

// Triangle3 is a triangle with vertices ordered counter-clockwise when viewed
// from outside the surface.
type Triangle3 = d3.Triangle

// Renderer streams the triangles of a surface.
// ReadTriangles returns io.EOF once all triangles have been read.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}
