package meshstat

import (
	"math"

	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// PointTree answers nearest neighbour queries over a fixed point set.
type PointTree struct {
	tree *kdtree.Tree
}

// NewPointTree builds a tree over pts. pts is reordered.
func NewPointTree(pts []r3.Vec) *PointTree {
	kd := make(kdPoints, len(pts))
	for i := range pts {
		kd[i] = kdPoint(pts[i])
	}
	return &PointTree{tree: kdtree.New(kd, true)}
}

// Nearest returns the point closest to v and its distance to v.
func (t *PointTree) Nearest(v r3.Vec) (r3.Vec, float64) {
	got, d2 := t.tree.Nearest(kdPoint(v))
	if got == nil {
		return r3.Vec{}, math.Inf(1)
	}
	return r3.Vec(got.(kdPoint)), math.Sqrt(d2)
}

// DirectedHausdorff returns the largest distance from a point of from to its
// nearest point in to. It is +Inf if to is empty and from is not.
func DirectedHausdorff(from, to []r3.Vec) float64 {
	if len(from) == 0 {
		return 0
	}
	if len(to) == 0 {
		return math.Inf(1)
	}
	tree := NewPointTree(append([]r3.Vec(nil), to...))
	var worst float64
	for _, v := range from {
		_, d := tree.Nearest(v)
		worst = math.Max(worst, d)
	}
	return worst
}

// Hausdorff returns the symmetric Hausdorff distance between two point sets.
func Hausdorff(a, b []r3.Vec) float64 {
	return math.Max(DirectedHausdorff(a, b), DirectedHausdorff(b, a))
}

var (
	_ kdtree.Interface  = kdPoints{}
	_ kdtree.Bounder    = kdPoints{}
	_ kdtree.Comparable = kdPoint{}
)

type kdPoints []kdPoint

type kdPoint r3.Vec

func (k kdPoints) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdPoints) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdPoints) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), points: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdPoints) Slice(start, end int) kdtree.Interface { return k[start:end] }

func (k kdPoints) Bounds() *kdtree.Bounding {
	if len(k) == 0 {
		return nil
	}
	bb := d3.Box{Min: r3.Vec(k[0]), Max: r3.Vec(k[0])}
	for _, p := range k[1:] {
		bb = bb.Include(r3.Vec(p))
	}
	return &kdtree.Bounding{Min: kdPoint(bb.Min), Max: kdPoint(bb.Max)}
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdPoint) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return d3.Axis(r3.Vec(a), int(d)) - d3.Axis(r3.Vec(b.(kdPoint)), int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdPoint) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(r3.Vec(a), r3.Vec(b.(kdPoint))))
}

type kdPlane struct {
	dim    int
	points kdPoints
}

func (p kdPlane) Less(i, j int) bool {
	return d3.Axis(r3.Vec(p.points[i]), p.dim) < d3.Axis(r3.Vec(p.points[j]), p.dim)
}
func (p kdPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p kdPlane) Len() int { return len(p.points) }
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
