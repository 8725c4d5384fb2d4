package main

import (
	"context"
	"fmt"
	"math"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/form3"
	"github.com/soypat/implicit/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var (
	convergeRadius float64
	convergeCells  []float64
	convergeOutput string
)

var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Chart surface area error of a sphere against cell size",
	Long: `Meshes a sphere at several cell sizes with both algorithms and reports the
relative error of the mesh area against 4πr². With --out the errors are
plotted to an image file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		series, err := areaConvergence(cmd.Context(), cfg, convergeRadius, convergeCells)
		if err != nil {
			return err
		}
		for _, s := range series {
			for _, pt := range s.Points {
				logger.Info("area error",
					zap.Stringer("algorithm", s.Algorithm),
					zap.Float64("cell_size", pt.X),
					zap.Float64("relative_error", pt.Y),
				)
			}
		}
		if convergeOutput == "" {
			return nil
		}
		return plotConvergence(convergeOutput, series)
	},
}

func init() {
	f := convergeCmd.Flags()
	f.Float64Var(&convergeRadius, "radius", 1, "sphere radius")
	f.Float64SliceVar(&convergeCells, "cells", []float64{0.4, 0.3, 0.2, 0.15, 0.1}, "cell sizes relative to the radius")
	f.StringVarP(&convergeOutput, "out", "o", "", "chart output file (.png, .svg or .pdf)")
}

// convergenceSeries holds the relative area error of one algorithm per cell size.
type convergenceSeries struct {
	Algorithm implicit.Algorithm
	Points    plotter.XYs
}

// areaConvergence meshes a sphere of the given radius for each relative cell size.
func areaConvergence(ctx context.Context, cfg implicit.Config, radius float64, cells []float64) ([]convergenceSeries, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("radius %g must be positive", radius)
	}
	sphere, err := form3.Sphere(radius)
	if err != nil {
		return nil, err
	}
	want := 4 * math.Pi * radius * radius
	// Pad the bounds so the grid never samples exactly on the surface.
	bounds := implicit.Cube(1.5*radius + 1e-3)
	var series []convergenceSeries
	for _, alg := range []implicit.Algorithm{implicit.MarchingCubes, implicit.DualContour} {
		s := convergenceSeries{Algorithm: alg}
		for _, rel := range cells {
			cfg.CellSize = rel * radius
			mesh, err := render.Extract(ctx, sphere, bounds, alg, cfg)
			if err != nil {
				return nil, fmt.Errorf("%s at cell size %g: %w", alg, cfg.CellSize, err)
			}
			s.Points = append(s.Points, plotter.XY{X: cfg.CellSize, Y: math.Abs(mesh.Area()-want) / want})
		}
		series = append(series, s)
	}
	return series, nil
}

func plotConvergence(path string, series []convergenceSeries) error {
	p := plot.New()
	p.Title.Text = "Sphere area convergence"
	p.X.Label.Text = "cell size"
	p.Y.Label.Text = "relative area error"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{}
	p.Add(plotter.NewGrid())
	for i, s := range series {
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			// Log scale requires positive values.
			xys[j] = plotter.XY{X: pt.X, Y: math.Max(pt.Y, 1e-12)}
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(s.Algorithm.String(), line, points)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
