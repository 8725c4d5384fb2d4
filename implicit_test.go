package implicit_test

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/soypat/implicit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestParseAlgorithm(t *testing.T) {
	for _, alg := range []implicit.Algorithm{implicit.MarchingCubes, implicit.DualContour} {
		got, err := implicit.ParseAlgorithm(alg.String())
		require.NoError(t, err)
		assert.Equal(t, alg, got)
		text, err := alg.MarshalText()
		require.NoError(t, err)
		var back implicit.Algorithm
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, alg, back)
	}
	for _, name := range []string{"", "marching cubes", "Dual_Contour", "octree"} {
		_, err := implicit.ParseAlgorithm(name)
		assert.ErrorIs(t, err, implicit.ErrUnsupportedAlgorithm, name)
		var aerr *implicit.AlgorithmError
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, name, aerr.Name)
	}
	assert.False(t, implicit.Algorithm(0).Valid())
	assert.Equal(t, "Algorithm(7)", implicit.Algorithm(7).String())
	_, err := implicit.Algorithm(7).MarshalText()
	assert.ErrorIs(t, err, implicit.ErrUnsupportedAlgorithm)
}

func TestValidateBounds(t *testing.T) {
	assert.NoError(t, implicit.ValidateBounds(implicit.Cube(1)))
	for axis := 0; axis < 3; axis++ {
		for _, hi := range []float64{-1, -2, math.NaN(), math.Inf(1)} {
			b := implicit.Cube(1)
			switch axis {
			case 0:
				b.Max.X = hi
			case 1:
				b.Max.Y = hi
			case 2:
				b.Max.Z = hi
			}
			err := implicit.ValidateBounds(b)
			require.ErrorIs(t, err, implicit.ErrInvalidBounds)
			var berr *implicit.BoundsError
			require.ErrorAs(t, err, &berr)
			assert.Equal(t, axis, berr.Axis)
		}
	}
}

func TestFieldError(t *testing.T) {
	cause := errors.New("cause")
	err := fmt.Errorf("extracting: %w", &implicit.FieldError{Point: r3.Vec{X: 1}, Err: cause})
	assert.ErrorIs(t, err, implicit.ErrFieldEvaluation)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cause")

	err = &implicit.FieldError{Value: math.Inf(-1)}
	assert.ErrorIs(t, err, implicit.ErrFieldEvaluation)
	assert.Contains(t, err.Error(), "-Inf")
	assert.NotErrorIs(t, err, implicit.ErrInvalidBounds)
}

func TestFieldFunc(t *testing.T) {
	f := implicit.FieldFunc(func(x, y, z float64) float64 { return x - 2*y + 3*z })
	v, err := f.Evaluate(r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestReadConfig(t *testing.T) {
	const doc = `
adaptive: false
bias_strength: 0.5
cell_size: 0.25
bounds:
  min: {x: -1, y: -2, z: -3}
  max: {x: 1, y: 2, z: 3}
workers: 3
`
	cfg, err := implicit.ReadConfig(strings.NewReader(doc))
	require.NoError(t, err)
	want := implicit.DefaultConfig()
	want.Adaptive = false
	want.BiasStrength = 0.5
	want.CellSize = 0.25
	want.Bounds = r3.Box{Min: r3.Vec{X: -1, Y: -2, Z: -3}, Max: r3.Vec{X: 1, Y: 2, Z: 3}}
	want.Workers = 3
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, cfg.NumWorkers())

	cfg, err = implicit.ReadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, implicit.DefaultConfig(), cfg)

	for _, doc := range []string{
		"cell_size: -1\n",
		"unknown_field: 1\n",
		"workers: [1, 2]\n",
		"bounds: {min: {x: 1}, max: {x: 0}}\n",
	} {
		_, err := implicit.ReadConfig(strings.NewReader(doc))
		assert.ErrorIs(t, err, implicit.ErrInvalidConfig, doc)
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, implicit.DefaultConfig().Validate())
	for name, modify := range map[string]func(*implicit.Config){
		"bias":      func(c *implicit.Config) { c.BiasStrength = -1 },
		"bias nan":  func(c *implicit.Config) { c.BiasStrength = math.NaN() },
		"cell size": func(c *implicit.Config) { c.CellSize = 0 },
		"cell inf":  func(c *implicit.Config) { c.CellSize = math.Inf(1) },
		"refine":    func(c *implicit.Config) { c.RefineSteps = -1 },
		"workers":   func(c *implicit.Config) { c.Workers = -2 },
		"max cells": func(c *implicit.Config) { c.MaxCells = 0 },
	} {
		cfg := implicit.DefaultConfig()
		modify(&cfg)
		assert.ErrorIs(t, cfg.Validate(), implicit.ErrInvalidConfig, name)
	}
	// Bounds are passed to every extraction so a config may leave them unset.
	assert.NoError(t, implicit.Config{CellSize: 0.5, MaxCells: 1e6}.Validate())
}

func TestCellCount(t *testing.T) {
	cfg := implicit.DefaultConfig()
	cfg.CellSize = 0.1
	assert.Equal(t, 10, cfg.CellCount(1))
	assert.Equal(t, 11, cfg.CellCount(1.05))
	assert.Equal(t, 1, cfg.CellCount(0.01))
	cfg.CellSize = 4.0 / 17
	assert.Equal(t, 17, cfg.CellCount(4))
}
