package render

import (
	"context"

	"github.com/soypat/implicit"
	"gonum.org/v1/gonum/spatial/r3"
)

// MarchingCubes extracts the zero level set of f within bounds as a triangle mesh.
// Every cell is classified by the sign of its eight corner samples and the
// triangles for that configuration are emitted with vertices on the crossing
// edges. Vertices are not shared between cells. When cfg.Adaptive is set
// crossings are refined with cfg.RefineSteps false position steps, otherwise
// they are the linear interpolation of the corner samples.
func MarchingCubes(ctx context.Context, f implicit.Field, bounds r3.Box, cfg implicit.Config) (*Mesh, error) {
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
	return marchingCubes(ctx, s, g, values, cfg)
}

func marchingCubes(ctx context.Context, s sampler, g Grid, values []float64, cfg implicit.Config) (*Mesh, error) {
	refine := 0
	if cfg.Adaptive {
		refine = cfg.RefineSteps
	}
	workers := cfg.NumWorkers()
	parts := make([]Mesh, numSlabs(workers, g.N[2]))
	err := forSlabs(ctx, workers, g.N[2], func(ctx context.Context, slab, k0, k1 int) error {
		part := &parts[slab]
		for k := k0; k < k1; k++ {
			for j := 0; j < g.N[1]; j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for i := 0; i < g.N[0]; i++ {
					if err := mcCell(part, s, g, values, refine, i, j, k); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	mesh := &Mesh{}
	for i := range parts {
		mesh.Append(&parts[i])
	}
	return mesh, nil
}

// mcCell appends the triangles of cell (i,j,k) to dst.
func mcCell(dst *Mesh, s sampler, g Grid, values []float64, refine, i, j, k int) error {
	corners := g.cellCorners(i, j, k)
	var vals [8]float64
	var config uint8
	for c, idx := range corners {
		vals[c] = values[idx]
		if outside(vals[c]) {
			config |= 1 << c
		}
	}
	tris := mcTriangleTable[config]
	if len(tris) == 0 {
		return nil
	}
	pts := g.cellPoints(i, j, k)
	var vertex [12]int
	for e := range vertex {
		vertex[e] = -1
	}
	for _, e := range tris {
		if vertex[e] >= 0 {
			continue
		}
		a, b := mcEdges[e][0], mcEdges[e][1]
		p, err := s.crossing(pts[a], pts[b], vals[a], vals[b], refine)
		if err != nil {
			return err
		}
		vertex[e] = dst.AddVertex(p)
	}
	for t := 0; t < len(tris); t += 3 {
		dst.AddTriangle(vertex[tris[t]], vertex[tris[t+1]], vertex[tris[t+2]])
	}
	return nil
}
