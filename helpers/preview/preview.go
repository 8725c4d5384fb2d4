// Package preview renders shaded PNG images of meshes.
package preview

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/implicit/internal/d3"
	"github.com/soypat/implicit/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// View describes the camera and output image.
type View struct {
	Width, Height int
	// Supersample renders at Supersample times the output size and
	// downsamples the result for antialiasing.
	Supersample int
	// LookAt is the point the camera looks at. The mesh is fit in a bi-unit cube
	// centered at the origin before rendering.
	LookAt r3.Vec
	Up     r3.Vec
	Eye    r3.Vec
	Near   float64
	Far    float64
	// Fovy is the vertical field of view in degrees.
	Fovy       float64
	Color      string
	Background string
}

// DefaultView is an isometric view of the mesh.
var DefaultView = View{
	Width:       768,
	Height:      432,
	Supersample: 2,
	Up:          r3.Vec{Z: 1},
	Eye:         d3.Elem(2.4),
	Near:        1,
	Far:         10,
	Fovy:        30,
	Color:       "#468966",
	Background:  "#FFF8E3",
}

// Image renders the mesh as seen from view.
func Image(m *render.Mesh, view View) (image.Image, error) {
	if m.Empty() {
		return nil, errors.New("empty mesh")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("image dimensions must be positive")
	}
	scale := view.Supersample
	if scale < 1 {
		scale = 1
	}
	tris := m.Triangles()
	ftris := make([]*fauxgl.Triangle, 0, len(tris))
	for _, t := range tris {
		if t.Degenerate(0) {
			continue
		}
		ftris = append(ftris, fauxgl.NewTriangleForPoints(vec(t[0]), vec(t[1]), vec(t[2])))
	}
	mesh := fauxgl.NewTriangleMesh(ftris)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()

	var (
		eye   = vec(view.Eye)
		light = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	ctx := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	ctx.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, vec(view.LookAt), vec(view.Up)).Perspective(view.Fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	ctx.Shader = shader
	ctx.DrawMesh(mesh)
	img := ctx.Image()
	if scale > 1 {
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// WritePNG renders the mesh and writes it to w as a PNG.
func WritePNG(w io.Writer, m *render.Mesh, view View) error {
	img, err := Image(m, view)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func vec(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
