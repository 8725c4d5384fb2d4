package render

// Cube corners are numbered as in cornerOffsets. Edges are stored with their
// lower grid point first so crossings are always interpolated in the same direction.
var mcEdges = [12][2]uint8{
	{0, 1}, {1, 2}, {3, 2}, {0, 3},
	{4, 5}, {5, 6}, {7, 6}, {4, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// mcFaces lists the corners of each cube face counter-clockwise as seen from outside the cube.
var mcFaces = [6][4]uint8{
	{0, 3, 2, 1}, // z=0
	{4, 5, 6, 7}, // z=1
	{0, 1, 5, 4}, // y=0
	{3, 7, 6, 2}, // y=1
	{0, 4, 7, 3}, // x=0
	{1, 2, 6, 5}, // x=1
}

// marchingCubesMaxTriangles is the largest number of triangles any configuration produces.
const marchingCubesMaxTriangles = 5

// mcTriangleTable maps a corner configuration to a list of edge triples, one per
// triangle. Bit c of the configuration is set when corner c is outside.
var mcTriangleTable [256][]uint8

func init() {
	for cfg := range mcTriangleTable {
		mcTriangleTable[cfg] = mcTriangulate(uint8(cfg))
	}
}

// mcTriangulate builds the triangles for a corner configuration.
// On each face the surface contour runs from the edge where the boundary walk
// enters the inside region to the next edge where it exits. Inside corners
// touching only diagonally on a face stay separated, which keeps the
// surface consistent between neighbouring cells. Contours are chained into
// closed loops which are triangulated keeping the loop winding, so normals
// point toward the outside corners.
func mcTriangulate(cfg uint8) []uint8 {
	const (
		none = iota
		enter
		exit
	)
	isOutside := func(c uint8) bool { return cfg&(1<<c) != 0 }
	var next [12]int
	for i := range next {
		next[i] = -1
	}
	for _, face := range mcFaces {
		var kind [4]int
		for k := 0; k < 4; k++ {
			a, b := face[k], face[(k+1)%4]
			switch {
			case isOutside(a) && !isOutside(b):
				kind[k] = enter
			case !isOutside(a) && isOutside(b):
				kind[k] = exit
			}
		}
		for k := 0; k < 4; k++ {
			if kind[k] != enter {
				continue
			}
			for d := 1; d < 4; d++ {
				m := (k + d) % 4
				if kind[m] == exit {
					from := mcEdgeBetween(face[k], face[(k+1)%4])
					next[from] = mcEdgeBetween(face[m], face[(m+1)%4])
					break
				}
			}
		}
	}
	var tris []uint8
	var visited [12]bool
	for start := range next {
		if next[start] < 0 || visited[start] {
			continue
		}
		var loop []uint8
		for e := start; !visited[e]; e = next[e] {
			visited[e] = true
			loop = append(loop, uint8(e))
		}
		var ok bool
		tris, ok = mcTriangulateLoop(tris, loop, 0, len(loop)-1)
		if !ok {
			panic("no valid loop triangulation")
		}
	}
	return tris
}

// mcTriangulateLoop appends a triangulation of loop[i:j+1] to dst.
// A diagonal never joins two crossings on the same cube face: it would lie
// in the face and overlap the triangles of the neighbouring cell.
// ok is false if no such triangulation exists.
func mcTriangulateLoop(dst, loop []uint8, i, j int) (_ []uint8, ok bool) {
	if j-i < 2 {
		return dst, true
	}
	allowed := func(a, b int) bool {
		return b == a+1 || (a == 0 && b == len(loop)-1) || !mcShareFace(loop[a], loop[b])
	}
	for k := i + 1; k < j; k++ {
		if !allowed(i, k) || !allowed(k, j) {
			continue
		}
		tris := append(dst, loop[i], loop[k], loop[j])
		tris, ok = mcTriangulateLoop(tris, loop, i, k)
		if !ok {
			continue
		}
		tris, ok = mcTriangulateLoop(tris, loop, k, j)
		if ok {
			return tris, true
		}
	}
	return dst, false
}

// mcShareFace returns true if cube edges a and b lie on a common cube face.
func mcShareFace(a, b uint8) bool {
	for _, face := range mcFaces {
		var na, nb bool
		for k := range face {
			e := uint8(mcEdgeBetween(face[k], face[(k+1)%4]))
			na = na || e == a
			nb = nb || e == b
		}
		if na && nb {
			return true
		}
	}
	return false
}

func mcEdgeBetween(a, b uint8) int {
	for i, e := range mcEdges {
		if (e[0] == a && e[1] == b) || (e[0] == b && e[1] == a) {
			return i
		}
	}
	panic("corners do not share a cube edge")
}
