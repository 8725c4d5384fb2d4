/*
Package implicit defines the inputs to the isosurface extraction engine:
scalar fields, extraction configuration, algorithm selection and the
errors an extraction may fail with.

The extractors themselves live in the render package:

	field := implicit.FieldFunc(func(x, y, z float64) float64 {
		return x*x + y*y + z*z - 1
	})
	mesh, err := render.Extract(ctx, field, bounds, implicit.DualContour, implicit.DefaultConfig())

A field is negative inside the surface and positive outside. Meshes are
wound so that face normals point towards positive field values.
*/
package implicit
