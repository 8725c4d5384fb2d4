package render

import (
	"context"
	"errors"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"github.com/soypat/implicit/internal/qef"
	"gonum.org/v1/gonum/spatial/r3"
)

// DualContour extracts the zero level set of f within bounds as a quad mesh.
// One vertex is placed in every cell with a sign change on one of its edges and
// one quad joins the vertices of the four cells around every crossing grid edge.
//
// With cfg.Adaptive unset vertices sit at the cell midpoint. Otherwise each
// vertex minimizes the squared distance to the tangent planes at the cell's
// crossing points, optionally pulled toward their centroid (cfg.Bias),
// constrained to the cell (cfg.Boundary) and clamped to the cell (cfg.Clip).
// With cfg.Triangulate set every quad is split into two triangles.
func DualContour(ctx context.Context, f implicit.Field, bounds r3.Box, cfg implicit.Config) (*Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := newGridConfig(bounds, cfg)
	if err != nil {
		return nil, err
	}
	s := sampler{field: f}
	values, err := s.sampleGrid(ctx, g, cfg.NumWorkers())
	if err != nil {
		return nil, err
	}
	return dualContour(ctx, s, g, values, cfg)
}

// dcCell is the dual contouring vertex of a grid cell.
type dcCell struct {
	v      r3.Vec
	active bool
}

func dualContour(ctx context.Context, s sampler, g Grid, values []float64, cfg implicit.Config) (*Mesh, error) {
	cells, err := dcVertices(ctx, s, g, values, cfg)
	if err != nil {
		return nil, err
	}
	mesh := &Mesh{}
	index := make([]int, len(cells))
	for i, c := range cells {
		index[i] = -1
		if c.active {
			index[i] = mesh.AddVertex(c.v)
		}
	}
	dcFaces(mesh, g, values, index, cfg.Triangulate)
	return mesh, nil
}

// dcVertices computes the vertex of every cell, indexed by Grid.cellIndex.
// Cells are independent so z-slabs are solved concurrently.
func dcVertices(ctx context.Context, s sampler, g Grid, values []float64, cfg implicit.Config) ([]dcCell, error) {
	cells := make([]dcCell, g.NumCells())
	err := forSlabs(ctx, cfg.NumWorkers(), g.N[2], func(ctx context.Context, _, k0, k1 int) error {
		var q qef.QEF
		for k := k0; k < k1; k++ {
			for j := 0; j < g.N[1]; j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for i := 0; i < g.N[0]; i++ {
					v, active, err := dcVertex(&q, s, g, values, cfg, i, j, k)
					if err != nil {
						return err
					}
					cells[g.cellIndex(i, j, k)] = dcCell{v: v, active: active}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cells, nil
}

// dcVertex places the vertex of cell (i,j,k). active is false when the cell has
// no crossing edges. q is scratch space.
func dcVertex(q *qef.QEF, s sampler, g Grid, values []float64, cfg implicit.Config, i, j, k int) (v r3.Vec, active bool, err error) {
	corners := g.cellCorners(i, j, k)
	var vals [8]float64
	var nout int
	for c, idx := range corners {
		vals[c] = values[idx]
		if outside(vals[c]) {
			nout++
		}
	}
	if nout == 0 || nout == 8 {
		return r3.Vec{}, false, nil
	}
	box := g.CellBox(i, j, k)
	if !cfg.Adaptive {
		return d3.Box(box).Center(), true, nil
	}
	refine := cfg.RefineSteps
	pts := g.cellPoints(i, j, k)
	q.Reset()
	for _, e := range mcEdges {
		a, b := e[0], e[1]
		if outside(vals[a]) == outside(vals[b]) {
			continue
		}
		p, err := s.crossing(pts[a], pts[b], vals[a], vals[b], refine)
		if err != nil {
			return r3.Vec{}, false, err
		}
		n, err := s.gradient(p)
		if err != nil {
			return r3.Vec{}, false, err
		}
		q.Add(p, d3.Unit(n))
	}
	if cfg.Bias {
		q.AddBias(cfg.BiasStrength)
	}
	v, err = q.Solve()
	switch {
	case errors.Is(err, qef.ErrDegenerate):
		v = q.MassPoint()
	case cfg.Boundary && !d3.Box(box).Contains(v):
		v = q.SolveBox(box)
	}
	if cfg.Clip {
		v = d3.Box(box).Clamp(v)
	}
	return v, true, nil
}

// quadOffsets are the (u,w) offsets of the four cells around a grid edge along
// axis a, counter-clockwise around +a where (a,u,w) is right handed.
var quadOffsets = [4][2]int{{-1, -1}, {0, -1}, {0, 0}, {-1, 0}}

// dcFaces appends one quad for each grid edge with a sign change whose four
// neighbouring cells exist. index maps cell indices to vertex indices.
// Quads are wound so their normal points from the inside end of the edge to the outside end.
func dcFaces(mesh *Mesh, g Grid, values []float64, index []int, triangulate bool) {
	for a := 0; a < 3; a++ {
		u, w := (a+1)%3, (a+2)%3
		var p [3]int
		for p[w] = 1; p[w] < g.N[w]; p[w]++ {
			for p[u] = 1; p[u] < g.N[u]; p[u]++ {
				for p[a] = 0; p[a] < g.N[a]; p[a]++ {
					q := p
					q[a]++
					lo := values[g.pointIndex(p[0], p[1], p[2])]
					hi := values[g.pointIndex(q[0], q[1], q[2])]
					if outside(lo) == outside(hi) {
						continue
					}
					var quad [4]int
					for n, off := range quadOffsets {
						c := p
						c[u] += off[0]
						c[w] += off[1]
						quad[n] = index[g.cellIndex(c[0], c[1], c[2])]
					}
					if !outside(hi) {
						quad[1], quad[3] = quad[3], quad[1]
					}
					if triangulate {
						mesh.AddTriangle(quad[0], quad[1], quad[2])
						mesh.AddTriangle(quad[0], quad[2], quad[3])
					} else {
						mesh.AddQuad(quad[0], quad[1], quad[2], quad[3])
					}
				}
			}
		}
	}
}
