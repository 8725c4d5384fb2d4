// Package render extracts polygon meshes from the zero level set of
// implicit fields and encodes them as OBJ and STL.
package render

import (
	"context"

	"github.com/soypat/implicit"
	"gonum.org/v1/gonum/spatial/r3"
)

// Extract meshes the zero level set of f within bounds with the selected algorithm.
// Bounds and algorithm are validated before the field is evaluated.
// The returned mesh belongs to the caller.
func Extract(ctx context.Context, f implicit.Field, bounds r3.Box, alg implicit.Algorithm, cfg implicit.Config) (*Mesh, error) {
	if !alg.Valid() {
		return nil, &implicit.AlgorithmError{Name: alg.String()}
	}
	if err := implicit.ValidateBounds(bounds); err != nil {
		return nil, err
	}
	switch alg {
	case implicit.DualContour:
		return DualContour(ctx, f, bounds, cfg)
	default:
		return MarchingCubes(ctx, f, bounds, cfg)
	}
}
