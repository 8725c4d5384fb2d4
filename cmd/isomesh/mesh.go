package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/expr"
	"github.com/soypat/implicit/form3"
	"github.com/soypat/implicit/helpers/meshstat"
	"github.com/soypat/implicit/helpers/preview"
	"github.com/soypat/implicit/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	meshAlgorithm   string
	meshLimits      float64
	meshShape       string
	meshOutput      string
	meshTriangulate bool
)

var meshCmd = &cobra.Command{
	Use:   "mesh [formula]",
	Short: "Mesh a formula or built in shape and write OBJ, STL or PNG",
	Long: `Meshes the zero level set of a formula such as "x^2 + y^2 + z^2 - 25"
or of a built in shape selected with --shape. The output format is chosen by
the extension of --out: .obj, .stl or .png. Without --out OBJ text is written
to standard output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMesh,
}

func init() {
	f := meshCmd.Flags()
	f.StringVarP(&meshAlgorithm, "algorithm", "a", implicit.DualContour.String(), "marching_cubes or dual_contour")
	f.Float64VarP(&meshLimits, "limits", "l", 0, "mesh within [-limits, limits] on every axis (overrides config bounds)")
	f.StringVar(&meshShape, "shape", "", "built in shape: "+strings.Join(shapeNames(), ", "))
	f.StringVarP(&meshOutput, "out", "o", "", "output file (.obj, .stl or .png)")
	f.BoolVar(&meshTriangulate, "triangulate", false, "split dual contouring quads into triangles")
}

func runMesh(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("triangulate") {
		cfg.Triangulate = meshTriangulate
	}
	alg, err := implicit.ParseAlgorithm(meshAlgorithm)
	if err != nil {
		return err
	}
	field, err := selectField(args, meshShape)
	if err != nil {
		return err
	}
	bounds := cfg.Bounds
	if meshLimits != 0 {
		bounds = implicit.Cube(meshLimits)
	}
	start := time.Now()
	mesh, err := render.Extract(cmd.Context(), field, bounds, alg, cfg)
	if err != nil {
		return err
	}
	st := meshstat.Compute(mesh)
	logger.Info("meshed",
		zap.Stringer("algorithm", alg),
		zap.Int("vertices", st.Vertices),
		zap.Int("triangles", st.Triangles),
		zap.Int("quads", st.Quads),
		zap.Float64("area", st.Area),
		zap.Duration("elapsed", time.Since(start)),
	)
	return writeMesh(cmd.OutOrStdout(), meshOutput, mesh)
}

// selectField returns the field of a formula argument or a named shape.
func selectField(args []string, shape string) (implicit.Field, error) {
	switch {
	case len(args) == 1 && shape != "":
		return nil, errors.New("got both a formula and --shape")
	case len(args) == 1:
		e, err := expr.Parse(args[0])
		if err != nil {
			return nil, err
		}
		return e, nil
	case shape != "":
		build, ok := shapes[shape]
		if !ok {
			return nil, fmt.Errorf("unknown shape %q, want one of %s", shape, strings.Join(shapeNames(), ", "))
		}
		return build()
	}
	return nil, errors.New("need a formula argument or --shape")
}

// writeMesh writes the mesh to path in the format given by its extension,
// or as OBJ to stdout if path is empty.
func writeMesh(stdout io.Writer, path string, mesh *render.Mesh) error {
	if path == "" || path == "-" {
		return render.WriteOBJ(stdout, mesh)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obj", ".png":
	case ".stl":
		return render.CreateSTL(path, mesh.Reader())
	default:
		return fmt.Errorf("unknown output format %q", ext)
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if ext == ".png" {
		err = preview.WritePNG(fp, mesh, preview.DefaultView)
	} else {
		err = render.WriteOBJ(fp, mesh)
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}

var shapes = map[string]func() (implicit.Field, error){
	"sphere": func() (implicit.Field, error) { return form3.Sphere(5) },
	"box": func() (implicit.Field, error) {
		return form3.Box(r3.Vec{X: 12, Y: 8, Z: 6}, 1)
	},
	"torus":   func() (implicit.Field, error) { return form3.Torus(5, 2) },
	"capsule": func() (implicit.Field, error) { return form3.Capsule(12, 3) },
	"gyroid": func() (implicit.Field, error) {
		g, err := form3.Gyroid(6)
		if err != nil {
			return nil, err
		}
		s, err := form3.Sphere(8)
		if err != nil {
			return nil, err
		}
		return form3.Intersect(g, s)
	},
	"bead": func() (implicit.Field, error) {
		s, err := form3.Sphere(5)
		if err != nil {
			return nil, err
		}
		c, err := form3.Cylinder(12, 2, 0)
		if err != nil {
			return nil, err
		}
		return form3.Difference(s, c)
	},
}

func shapeNames() []string {
	return []string{"bead", "box", "capsule", "gyroid", "sphere", "torus"}
}
