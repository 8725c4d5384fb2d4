// Package meshstat measures meshes produced by the render package:
// topology checks, surface statistics and distances between point sets.
package meshstat

import (
	"fmt"
	"math"

	"github.com/soypat/implicit/internal/d3"
	"github.com/soypat/implicit/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stats summarizes a mesh.
type Stats struct {
	Vertices  int
	Triangles int
	Quads     int
	Area      float64
	Bounds    r3.Box
}

// Compute returns the statistics of m. Bounds is the zero box for a mesh without vertices.
func Compute(m *render.Mesh) Stats {
	st := Stats{
		Vertices: len(m.Vertices),
		Area:     m.Area(),
	}
	for _, f := range m.Faces {
		if f.IsQuad() {
			st.Quads++
		} else {
			st.Triangles++
		}
	}
	if len(m.Vertices) > 0 {
		bb := d3.Box{Min: m.Vertices[0], Max: m.Vertices[0]}
		for _, v := range m.Vertices[1:] {
			bb = bb.Include(v)
		}
		st.Bounds = r3.Box(bb)
	}
	return st
}

type edgeKey struct{ a, b r3.Vec }

// CheckManifold returns an error if m is not a closed, consistently wound
// 2-manifold. Vertices are identified by their exact position so meshes
// that do not share vertices between cells can be checked: every directed
// edge must appear exactly once and its reverse exactly once.
func CheckManifold(m *render.Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	directed := make(map[edgeKey]int)
	for fi, f := range m.Faces {
		idx := f.Indices()
		for i := range idx {
			a, b := m.Vertices[idx[i]], m.Vertices[idx[(i+1)%len(idx)]]
			if a == b {
				return fmt.Errorf("face %d has zero length edge at %v", fi, a)
			}
			k := edgeKey{a, b}
			directed[k]++
			if directed[k] > 1 {
				return fmt.Errorf("face %d: edge %v->%v used more than once in the same direction", fi, a, b)
			}
		}
	}
	for k := range directed {
		if directed[edgeKey{k.b, k.a}] != 1 {
			return fmt.Errorf("edge %v->%v has no opposite edge", k.a, k.b)
		}
	}
	return nil
}

// MaxFieldError returns the largest absolute field value at the mesh vertices.
// For signed distance fields this is the largest vertex distance to the surface.
func MaxFieldError(m *render.Mesh, f func(r3.Vec) float64) float64 {
	var worst float64
	for _, v := range m.Vertices {
		worst = math.Max(worst, math.Abs(f(v)))
	}
	return worst
}
