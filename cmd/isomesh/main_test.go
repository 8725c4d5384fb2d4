package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/render"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	logger = zap.NewNop()
}

func TestSelectField(t *testing.T) {
	f, err := selectField([]string{"x^2 + y^2 + z^2 - 1"}, "")
	require.NoError(t, err)
	v, err := f.Evaluate(implicit.Cube(1).Max)
	require.NoError(t, err)
	require.InDelta(t, 2, v, 1e-12)

	for _, name := range shapeNames() {
		f, err := selectField(nil, name)
		require.NoError(t, err, name)
		require.NotNil(t, f, name)
	}
	require.Len(t, shapes, len(shapeNames()))

	_, err = selectField(nil, "")
	require.Error(t, err)
	_, err = selectField([]string{"x"}, "sphere")
	require.Error(t, err)
	_, err = selectField(nil, "teapot")
	require.Error(t, err)
	_, err = selectField([]string{"import os"}, "")
	require.Error(t, err)
}

func TestWriteMesh(t *testing.T) {
	f, err := selectField(nil, "sphere")
	require.NoError(t, err)
	cfg := implicit.DefaultConfig()
	mesh, err := render.Extract(context.Background(), f, implicit.Cube(6.5), implicit.MarchingCubes, cfg)
	require.NoError(t, err)
	require.False(t, mesh.Empty())

	var stdout bytes.Buffer
	require.NoError(t, writeMesh(&stdout, "", mesh))
	require.True(t, strings.HasPrefix(stdout.String(), "v "))

	dir := t.TempDir()
	for _, name := range []string{"out.obj", "out.stl", "out.png"} {
		path := filepath.Join(dir, name)
		require.NoError(t, writeMesh(&stdout, path, mesh), name)
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.NotZero(t, info.Size(), name)
	}
	fp, err := os.Open(filepath.Join(dir, "out.stl"))
	require.NoError(t, err)
	defer fp.Close()
	tris, _ := render.ReadSTL(fp)
	require.Len(t, tris, len(mesh.Triangles()))

	require.Error(t, writeMesh(&stdout, filepath.Join(dir, "out.ply"), mesh))
}

func TestAreaConvergence(t *testing.T) {
	cfg := implicit.DefaultConfig()
	cfg.Workers = 2
	series, err := areaConvergence(context.Background(), cfg, 2, []float64{0.4, 0.2, 0.1})
	require.NoError(t, err)
	require.Len(t, series, 2)
	for _, s := range series {
		require.Len(t, s.Points, 3)
	}
	mc, dc := series[0].Points, series[1].Points
	for i := 1; i < len(mc); i++ {
		require.Less(t, mc[i].Y, mc[i-1].Y, "marching cubes error must shrink with cell size")
	}
	require.Less(t, dc[2].Y, dc[0].Y)
	require.NoError(t, plotConvergence(filepath.Join(t.TempDir(), "chart.png"), series))

	_, err = areaConvergence(context.Background(), cfg, -1, []float64{0.1})
	require.Error(t, err)
}
