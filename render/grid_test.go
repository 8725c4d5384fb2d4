package render

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewGrid(t *testing.T) {
	bounds := r3.Box{Min: r3.Vec{X: -1, Y: 0, Z: 2}, Max: r3.Vec{X: 1, Y: 3, Z: 2.5}}
	g, err := NewGrid(bounds, [3]int{4, 3, 5})
	if err != nil {
		t.Fatal(err)
	}
	if g.NumCells() != 60 || g.NumPoints() != 5*4*6 {
		t.Errorf("got %d cells and %d points", g.NumCells(), g.NumPoints())
	}
	if got := g.Point(4, 3, 5); !d3.EqualWithin(got, bounds.Max, 1e-12) {
		t.Errorf("last grid point %v, want %v", got, bounds.Max)
	}
	if got := g.Point(0, 0, 0); got != bounds.Min {
		t.Errorf("first grid point %v, want %v", got, bounds.Min)
	}
	cell := g.CellBox(1, 1, 1)
	if !d3.EqualWithin(r3.Sub(cell.Max, cell.Min), g.Step, 1e-12) {
		t.Errorf("cell size %v, want step %v", r3.Sub(cell.Max, cell.Min), g.Step)
	}
	corners := g.cellCorners(2, 1, 3)
	for c, off := range cornerOffsets {
		want := g.pointIndex(2+off[0], 1+off[1], 3+off[2])
		if corners[c] != want {
			t.Errorf("corner %d: got point index %d, want %d", c, corners[c], want)
		}
	}

	_, err = NewGrid(bounds, [3]int{4, 0, 5})
	if err == nil {
		t.Error("expected error for zero cell count")
	}
	_, err = NewGrid(r3.Box{Max: r3.Vec{X: 1, Y: 1}}, [3]int{1, 1, 1})
	var berr *implicit.BoundsError
	if !errors.As(err, &berr) || berr.Axis != 2 {
		t.Errorf("expected bounds error on z axis, got %v", err)
	}
}

func TestNewGridConfig(t *testing.T) {
	cfg := implicit.DefaultConfig()
	cfg.CellSize = 0.3
	g, err := newGridConfig(implicit.Cube(1), cfg)
	if err != nil {
		t.Fatal(err)
	}
	// 2/0.3 = 6.67 rounds up so the step never exceeds the cell size.
	if g.N != [3]int{7, 7, 7} {
		t.Errorf("got %v cells", g.N)
	}
	if g.Step.X > cfg.CellSize {
		t.Errorf("step %g exceeds cell size %g", g.Step.X, cfg.CellSize)
	}
	cfg.CellSize = 0.5
	g, err = newGridConfig(implicit.Cube(1), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if g.N != [3]int{4, 4, 4} {
		t.Errorf("exact division: got %v cells", g.N)
	}
	cfg.MaxCells = 63
	_, err = newGridConfig(implicit.Cube(1), cfg)
	if !errors.Is(err, implicit.ErrTooManyCells) {
		t.Errorf("expected too many cells error, got %v", err)
	}
}

func TestSamplerErrors(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	fieldErr := errors.New("no value here")
	for _, test := range []struct {
		name  string
		field implicit.Field
		isErr error
	}{
		{name: "error", field: errField{err: fieldErr}, isErr: fieldErr},
		{name: "nan", field: implicit.FieldFunc(func(x, y, z float64) float64 { return math.NaN() })},
		{name: "inf", field: implicit.FieldFunc(func(x, y, z float64) float64 { return math.Inf(-1) })},
		{name: "panic", field: implicit.FieldFunc(func(x, y, z float64) float64 { panic("boom") })},
	} {
		_, err := sampler{field: test.field}.at(p)
		if !errors.Is(err, implicit.ErrFieldEvaluation) {
			t.Errorf("%s: expected field evaluation error, got %v", test.name, err)
			continue
		}
		var ferr *implicit.FieldError
		if !errors.As(err, &ferr) || ferr.Point != p {
			t.Errorf("%s: expected *FieldError at %v, got %v", test.name, p, err)
		}
		if test.isErr != nil && !errors.Is(err, test.isErr) {
			t.Errorf("%s: error %v does not wrap %v", test.name, err, test.isErr)
		}
	}
	// Field errors reported by nested fields keep the point they report.
	inner := &implicit.FieldError{Point: r3.Vec{X: -1}, Err: fieldErr}
	_, err := sampler{field: errField{err: inner}}.at(p)
	if err != inner {
		t.Errorf("nested field error was rewrapped: %v", err)
	}
}

func TestSamplerCrossing(t *testing.T) {
	s := sampler{field: implicit.FieldFunc(func(x, y, z float64) float64 { return x*x - 0.5 })}
	a, b := r3.Vec{}, r3.Vec{X: 1}
	fa, _ := s.at(a)
	fb, _ := s.at(b)
	want := math.Sqrt(0.5)
	var prevErr = math.Inf(1)
	for steps := 0; steps < 6; steps++ {
		p, err := s.crossing(a, b, fa, fb, steps)
		if err != nil {
			t.Fatal(err)
		}
		e := math.Abs(p.X - want)
		if e > prevErr {
			t.Errorf("refining %d steps increased error from %g to %g", steps, prevErr, e)
		}
		prevErr = e
	}
	if prevErr > 1e-4 {
		t.Errorf("refined crossing off by %g", prevErr)
	}
	// Zero samples at an edge end keep the crossing inside the edge.
	for _, steps := range []int{0, 2} {
		lo := sampler{field: implicit.FieldFunc(func(x, y, z float64) float64 { return -x })}
		p, err := lo.crossing(a, b, 0, -1, steps)
		if err != nil {
			t.Fatal(err)
		}
		if p == a || p.X < crossingMargin/2 || p.X > 2*crossingMargin {
			t.Errorf("crossing at zero start: got %v", p)
		}
		hi := sampler{field: implicit.FieldFunc(func(x, y, z float64) float64 { return x - 1 })}
		p, err = hi.crossing(a, b, -1, 0, steps)
		if err != nil {
			t.Fatal(err)
		}
		if p == b || 1-p.X < crossingMargin/2 || 1-p.X > 2*crossingMargin {
			t.Errorf("crossing at zero end: got %v", p)
		}
	}
	g, err := s.gradient(r3.Vec{X: 0.25, Y: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !d3.EqualWithin(g, r3.Vec{X: 0.5}, 1e-6) {
		t.Errorf("gradient %v, want (0.5,0,0)", g)
	}
}

func TestSampleGrid(t *testing.T) {
	var calls atomic.Int64
	f := implicit.FieldFunc(func(x, y, z float64) float64 {
		calls.Add(1)
		return x + 2*y + 3*z
	})
	g, err := NewGrid(implicit.Cube(1), [3]int{3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{1, 3, 16} {
		calls.Store(0)
		values, err := sampler{field: f}.sampleGrid(context.Background(), g, workers)
		if err != nil {
			t.Fatal(err)
		}
		if int(calls.Load()) != g.NumPoints() {
			t.Errorf("workers=%d: %d evaluations for %d points", workers, calls.Load(), g.NumPoints())
		}
		for k := 0; k <= g.N[2]; k++ {
			for j := 0; j <= g.N[1]; j++ {
				for i := 0; i <= g.N[0]; i++ {
					p := g.Point(i, j, k)
					want := p.X + 2*p.Y + 3*p.Z
					if got := values[g.pointIndex(i, j, k)]; got != want {
						t.Fatalf("workers=%d: value at %v is %g, want %g", workers, p, got, want)
					}
				}
			}
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls.Store(0)
	_, err = sampler{field: f}.sampleGrid(ctx, g, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context canceled, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("canceled sampling evaluated the field %d times", calls.Load())
	}
}

func TestForSlabs(t *testing.T) {
	const n = 37
	var covered [n]int32
	err := forSlabs(context.Background(), 3, n, func(_ context.Context, slab, k0, k1 int) error {
		for k := k0; k < k1; k++ {
			atomic.AddInt32(&covered[k], 1)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for k, c := range covered {
		if c != 1 {
			t.Errorf("layer %d visited %d times", k, c)
		}
	}
	stop := errors.New("stop")
	err = forSlabs(context.Background(), 2, n, func(ctx context.Context, slab, _, _ int) error {
		if slab == 0 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected first error to be returned, got %v", err)
	}
}

type errField struct{ err error }

func (f errField) Evaluate(r3.Vec) (float64, error) { return 0, f.err }
