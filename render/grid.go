package render

import (
	"fmt"

	"github.com/soypat/implicit"
	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is a regular grid of cells spanning an axis aligned box.
// Grid points are addressed by integer indices (i,j,k) with 0 <= i <= N[0] and
// cells by the index of their lowest corner with 0 <= i < N[0].
type Grid struct {
	Bounds r3.Box
	// N is the number of cells along each axis.
	N [3]int
	// Step is the cell size along each axis.
	Step r3.Vec
}

// NewGrid returns a grid over bounds with the given number of cells per axis.
func NewGrid(bounds r3.Box, cells [3]int) (Grid, error) {
	if err := implicit.ValidateBounds(bounds); err != nil {
		return Grid{}, err
	}
	for axis, n := range cells {
		if n <= 0 {
			return Grid{}, fmt.Errorf("non-positive cell count %d on %c axis", n, "xyz"[axis])
		}
	}
	size := r3.Sub(bounds.Max, bounds.Min)
	return Grid{
		Bounds: bounds,
		N:      cells,
		Step: r3.Vec{
			X: size.X / float64(cells[0]),
			Y: size.Y / float64(cells[1]),
			Z: size.Z / float64(cells[2]),
		},
	}, nil
}

// newGridConfig returns the grid used to extract a surface within bounds with cfg.
func newGridConfig(bounds r3.Box, cfg implicit.Config) (Grid, error) {
	if err := implicit.ValidateBounds(bounds); err != nil {
		return Grid{}, err
	}
	size := r3.Sub(bounds.Max, bounds.Min)
	cells := [3]int{cfg.CellCount(size.X), cfg.CellCount(size.Y), cfg.CellCount(size.Z)}
	total := float64(cells[0]) * float64(cells[1]) * float64(cells[2])
	if total > float64(cfg.MaxCells) {
		return Grid{}, fmt.Errorf("%w: %dx%dx%d cells, max %d", implicit.ErrTooManyCells, cells[0], cells[1], cells[2], cfg.MaxCells)
	}
	return NewGrid(bounds, cells)
}

// NumCells returns the total amount of cells in the grid.
func (g Grid) NumCells() int { return g.N[0] * g.N[1] * g.N[2] }

// NumPoints returns the total amount of grid points.
func (g Grid) NumPoints() int { return (g.N[0] + 1) * (g.N[1] + 1) * (g.N[2] + 1) }

// Point returns the position of grid point (i,j,k). The position is a pure function
// of the indices so cells sharing a point see the exact same coordinates.
func (g Grid) Point(i, j, k int) r3.Vec {
	return r3.Vec{
		X: g.Bounds.Min.X + float64(i)*g.Step.X,
		Y: g.Bounds.Min.Y + float64(j)*g.Step.Y,
		Z: g.Bounds.Min.Z + float64(k)*g.Step.Z,
	}
}

// CellBox returns the bounds of cell (i,j,k).
func (g Grid) CellBox(i, j, k int) r3.Box {
	return r3.Box{Min: g.Point(i, j, k), Max: g.Point(i+1, j+1, k+1)}
}

// pointIndex returns the index of grid point (i,j,k) in flat point arenas.
func (g Grid) pointIndex(i, j, k int) int {
	return i + (g.N[0]+1)*(j+(g.N[1]+1)*k)
}

// cellIndex returns the index of cell (i,j,k) in flat cell arenas.
func (g Grid) cellIndex(i, j, k int) int {
	return i + g.N[0]*(j+g.N[1]*k)
}

// cellCorners returns the point arena indices of the corners of cell (i,j,k) in
// the order (0,0,0),(1,0,0),(1,1,0),(0,1,0),(0,0,1),(1,0,1),(1,1,1),(0,1,1).
func (g Grid) cellCorners(i, j, k int) [8]int {
	return [8]int{
		g.pointIndex(i, j, k),
		g.pointIndex(i+1, j, k),
		g.pointIndex(i+1, j+1, k),
		g.pointIndex(i, j+1, k),
		g.pointIndex(i, j, k+1),
		g.pointIndex(i+1, j, k+1),
		g.pointIndex(i+1, j+1, k+1),
		g.pointIndex(i, j+1, k+1),
	}
}

// cornerOffsets are the integer offsets of cell corners in cellCorners order.
var cornerOffsets = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// cellPoints returns the positions of the corners of cell (i,j,k).
func (g Grid) cellPoints(i, j, k int) (p [8]r3.Vec) {
	for c, off := range cornerOffsets {
		p[c] = g.Point(i+off[0], j+off[1], k+off[2])
	}
	return p
}
