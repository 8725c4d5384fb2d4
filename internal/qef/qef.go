// Package qef implements the quadratic error function used to place
// dual contouring vertices.
//
// A QEF holds plane equations n·v = n·p, one per surface sample p with
// normal n. Solving it finds the point v minimizing the sum of squared
// distances to all planes, which lands on sharp features where the planes
// intersect.
package qef

import (
	"errors"
	"math"

	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerate is returned by Solve when the system does not determine
// all three coordinates of the solution.
var ErrDegenerate = errors.New("qef: rank deficient system")

// rcond is the relative singular value threshold below which
// directions are considered undetermined.
const rcond = 1e-6

type row struct {
	n r3.Vec
	b float64
}

// QEF accumulates linear constraints. The zero value is an empty QEF ready to use.
// A QEF is not safe for concurrent use.
type QEF struct {
	rows    []row
	massSum r3.Vec
	nmass   int
}

// Reset empties the QEF keeping allocated memory.
func (q *QEF) Reset() {
	q.rows = q.rows[:0]
	q.massSum = r3.Vec{}
	q.nmass = 0
}

// Add adds the plane through p with normal n. p also contributes to the mass point.
func (q *QEF) Add(p, n r3.Vec) {
	q.rows = append(q.rows, row{n: n, b: r3.Dot(n, p)})
	q.massSum = r3.Add(q.massSum, p)
	q.nmass++
}

// AddBias adds three equations pulling the solution towards the mass
// point with the given strength. Equations added by Add have unit strength when
// their normals are unit vectors.
func (q *QEF) AddBias(strength float64) {
	m := q.MassPoint()
	q.rows = append(q.rows,
		row{n: r3.Vec{X: strength}, b: strength * m.X},
		row{n: r3.Vec{Y: strength}, b: strength * m.Y},
		row{n: r3.Vec{Z: strength}, b: strength * m.Z},
	)
}

// Len returns the number of equations in the QEF.
func (q *QEF) Len() int { return len(q.rows) }

// MassPoint returns the centroid of the points added with Add.
func (q *QEF) MassPoint() r3.Vec {
	if q.nmass == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/float64(q.nmass), q.massSum)
}

// Residual returns the norm of the residual vector of the system at v.
func (q *QEF) Residual(v r3.Vec) float64 {
	var sum float64
	for _, r := range q.rows {
		e := r3.Dot(r.n, v) - r.b
		sum += e * e
	}
	return math.Sqrt(sum)
}

// Solve returns the least squares solution of the system. If the system is rank
// deficient the minimum norm solution is returned together with ErrDegenerate.
func (q *QEF) Solve() (r3.Vec, error) {
	v, rank := q.solveFixed([3]bool{}, r3.Vec{})
	if rank < 3 {
		return v, ErrDegenerate
	}
	return v, nil
}

// SolveBox returns the point within box minimizing the residual.
// If the unconstrained solution lies in box it is returned.
// Otherwise the system is solved on each of the 6 box faces, then on each of the
// 12 box edges and finally evaluated at the 8 box corners, stopping at the first stage
// that yields solutions inside the box and returning the one with least residual.
func (q *QEF) SolveBox(box r3.Box) r3.Vec {
	b := d3.Box(box)
	tol := 1e-9 * d3.Max(b.Size())
	v, _ := q.solveFixed([3]bool{}, r3.Vec{})
	if b.ContainsTol(v, tol) {
		return b.Clamp(v)
	}
	best := r3.Vec{}
	bestRes := math.Inf(1)
	consider := func(v r3.Vec) {
		if !b.ContainsTol(v, tol) {
			return
		}
		v = b.Clamp(v)
		if res := q.Residual(v); res < bestRes {
			best, bestRes = v, res
		}
	}
	// Faces: fix one axis.
	for axis := 0; axis < 3; axis++ {
		for _, bound := range [2]r3.Vec{b.Min, b.Max} {
			var fixed [3]bool
			fixed[axis] = true
			v, _ := q.solveFixed(fixed, bound)
			consider(v)
		}
	}
	if !math.IsInf(bestRes, 1) {
		return best
	}
	// Edges: fix two axes.
	corners := b.Vertices()
	for free := 0; free < 3; free++ {
		var fixed [3]bool
		fixed[(free+1)%3] = true
		fixed[(free+2)%3] = true
		// Corners 0, 2, 5, 7 cover all four combinations of min/max
		// on any pair of axes.
		for _, c := range [4]int{0, 2, 5, 7} {
			v, _ := q.solveFixed(fixed, corners[c])
			consider(v)
		}
	}
	if !math.IsInf(bestRes, 1) {
		return best
	}
	for _, c := range corners {
		consider(c)
	}
	return best
}

// solveFixed solves the least squares problem over the axes not marked as fixed.
// Fixed axes take their value from values. It returns the solution and the
// rank of the reduced system, counting fixed axes as determined.
func (q *QEF) solveFixed(fixed [3]bool, values r3.Vec) (r3.Vec, int) {
	var free []int
	nfixed := 0
	for axis := 0; axis < 3; axis++ {
		if fixed[axis] {
			nfixed++
			continue
		}
		free = append(free, axis)
	}
	sol := r3.Vec{}
	for axis := 0; axis < 3; axis++ {
		if fixed[axis] {
			sol = d3.SetAxis(sol, axis, d3.Axis(values, axis))
		}
	}
	m := len(q.rows)
	if len(free) == 0 || m == 0 {
		return sol, nfixed
	}
	A := mat.NewDense(m, len(free), nil)
	b := mat.NewVecDense(m, nil)
	for i, r := range q.rows {
		bi := r.b
		for axis := 0; axis < 3; axis++ {
			if fixed[axis] {
				// Move fixed terms to the right hand side.
				bi -= d3.Axis(r.n, axis) * d3.Axis(values, axis)
			}
		}
		for j, axis := range free {
			A.Set(i, j, d3.Axis(r.n, axis))
		}
		b.SetVec(i, bi)
	}
	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDThin) {
		return sol, nfixed
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return sol, nfixed
	}
	x := mat.NewVecDense(len(free), nil)
	svd.SolveVecTo(x, b, rank)
	for j, axis := range free {
		sol = d3.SetAxis(sol, axis, x.AtVec(j))
	}
	return sol, nfixed + rank
}
