package implicit

import "strconv"

// Algorithm selects an isosurface extraction algorithm.
// The zero value is not a valid algorithm.
type Algorithm uint8

const (
	// MarchingCubes extracts triangles per grid cell from a sign configuration table.
	MarchingCubes Algorithm = iota + 1
	// DualContour places one vertex per active cell by least squares fitting and
	// joins vertices around crossing edges with quads.
	DualContour
)

// ParseAlgorithm returns the algorithm named by s. Accepted names are
// "marching_cubes" and "dual_contour". Any other name returns an *AlgorithmError.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "marching_cubes":
		return MarchingCubes, nil
	case "dual_contour":
		return DualContour, nil
	}
	return 0, &AlgorithmError{Name: s}
}

// String returns the name accepted by ParseAlgorithm.
func (a Algorithm) String() string {
	switch a {
	case MarchingCubes:
		return "marching_cubes"
	case DualContour:
		return "dual_contour"
	}
	return "Algorithm(" + strconv.Itoa(int(a)) + ")"
}

// Valid returns true if a is one of the declared algorithms.
func (a Algorithm) Valid() bool {
	return a == MarchingCubes || a == DualContour
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, &AlgorithmError{Name: a.String()}
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(b []byte) (err error) {
	*a, err = ParseAlgorithm(string(b))
	return err
}
