package render

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/soypat/implicit"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// gradientStep is the central difference step used to estimate field gradients.
	gradientStep = 1e-5
	// crossingMargin is the smallest distance between a crossing and either
	// end of its edge, as a fraction of the edge length. Crossings on a grid
	// point would collapse the triangles sharing it.
	crossingMargin = 1e-6
)

// sampler evaluates a field and turns every way it can fail into a *implicit.FieldError.
type sampler struct {
	field implicit.Field
}

// at evaluates the field at p. Panics within the field are recovered.
func (s sampler) at(p r3.Vec) (v float64, err error) {
	defer func() {
		if a := recover(); a != nil {
			v, err = 0, &implicit.FieldError{Point: p, Err: fmt.Errorf("panic: %v", a)}
		}
	}()
	v, err = s.field.Evaluate(p)
	if err != nil {
		var ferr *implicit.FieldError
		if errors.As(err, &ferr) {
			return 0, err
		}
		return 0, &implicit.FieldError{Point: p, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &implicit.FieldError{Point: p, Value: v}
	}
	return v, nil
}

// gradient estimates the field gradient at p by central differences.
func (s sampler) gradient(p r3.Vec) (r3.Vec, error) {
	const h = gradientStep
	var g [3]float64
	for axis, e := range [3]r3.Vec{{X: h}, {Y: h}, {Z: h}} {
		fp, err := s.at(r3.Add(p, e))
		if err != nil {
			return r3.Vec{}, err
		}
		fm, err := s.at(r3.Sub(p, e))
		if err != nil {
			return r3.Vec{}, err
		}
		g[axis] = (fp - fm) / (2 * h)
	}
	return r3.Vec{X: g[0], Y: g[1], Z: g[2]}, nil
}

// crossing returns the zero crossing on the segment a-b given the field values at
// its ends, which must classify differently. The point is found by linear interpolation
// followed by refineSteps false position steps.
// The point never lies closer than crossingMargin to either end, even when
// one end samples exactly zero.
// Callers pass the ends in a fixed order so that all cells sharing an edge get the same point.
func (s sampler) crossing(a, b r3.Vec, fa, fb float64, refineSteps int) (r3.Vec, error) {
	a0, b0 := a, b
	p := lerp(a, b, fa/(fa-fb))
	for i := 0; i < refineSteps; i++ {
		fp, err := s.at(p)
		if err != nil {
			return r3.Vec{}, err
		}
		if fp == 0 {
			break
		}
		if outside(fp) == outside(fa) {
			a, fa = p, fp
		} else {
			b, fb = p, fp
		}
		p = lerp(a, b, fa/(fa-fb))
	}
	return edgeInterior(a0, b0, p), nil
}

// edgeInterior returns p, which lies on segment a-b, moved away from the
// segment ends by at least crossingMargin of its length.
func edgeInterior(a, b, p r3.Vec) r3.Vec {
	d := r3.Sub(b, a)
	t := r3.Dot(r3.Sub(p, a), d) / r3.Norm2(d)
	switch {
	case t < crossingMargin:
		return lerp(a, b, crossingMargin)
	case t > 1-crossingMargin:
		return lerp(a, b, 1-crossingMargin)
	}
	return p
}

// outside classifies a field value. Zero is outside.
func outside(v float64) bool { return v >= 0 }

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// sampleGrid evaluates the field at every grid point and returns the values
// indexed by Grid.pointIndex.
func (s sampler) sampleGrid(ctx context.Context, g Grid, workers int) ([]float64, error) {
	values := make([]float64, g.NumPoints())
	err := forSlabs(ctx, workers, g.N[2]+1, func(ctx context.Context, _, k0, k1 int) error {
		for k := k0; k < k1; k++ {
			for j := 0; j <= g.N[1]; j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for i := 0; i <= g.N[0]; i++ {
					v, err := s.at(g.Point(i, j, k))
					if err != nil {
						return err
					}
					values[g.pointIndex(i, j, k)] = v
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// numSlabs returns the number of slabs n layers are split into for the given workers.
func numSlabs(workers, n int) int {
	slabs := 4 * workers
	if slabs > n {
		slabs = n
	}
	if slabs < 1 {
		slabs = 1
	}
	return slabs
}

// forSlabs splits the layers [0,n) into contiguous slabs and calls fn for each
// slab with at most workers concurrent calls. fn receives the slab number and the
// layer range [k0,k1). The first error returned cancels the context passed to
// the remaining calls and is returned.
func forSlabs(ctx context.Context, workers, n int, fn func(ctx context.Context, slab, k0, k1 int) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slabs := numSlabs(workers, n)
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for slab := 0; slab < slabs; slab++ {
		slab := slab
		k0 := slab * n / slabs
		k1 := (slab + 1) * n / slabs
		grp.Go(func() error {
			return fn(gctx, slab, k0, k1)
		})
	}
	return grp.Wait()
}
