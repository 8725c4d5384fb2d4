package render

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

// Face is a polygon of 3 or 4 zero-based vertex indices ordered counter-clockwise
// when viewed from outside the surface.
type Face struct {
	V [4]int
	// N is the number of vertices in the face, 3 or 4.
	N int
}

// Indices returns the face's vertex indices.
func (f Face) Indices() []int { return f.V[:f.N] }

// IsQuad returns true for four sided faces.
func (f Face) IsQuad() bool { return f.N == 4 }

// Mesh is an indexed polygon mesh.
type Mesh struct {
	Vertices []r3.Vec
	Faces    []Face
}

// AddVertex appends v to the mesh vertices and returns its index.
func (m *Mesh) AddVertex(v r3.Vec) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddTriangle appends a triangular face.
func (m *Mesh) AddTriangle(a, b, c int) {
	m.Faces = append(m.Faces, Face{V: [4]int{a, b, c}, N: 3})
}

// AddQuad appends a quadrilateral face.
func (m *Mesh) AddQuad(a, b, c, d int) {
	m.Faces = append(m.Faces, Face{V: [4]int{a, b, c, d}, N: 4})
}

// Append adds the vertices and faces of other to m, offsetting other's indices.
func (m *Mesh) Append(other *Mesh) {
	off := len(m.Vertices)
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, f := range other.Faces {
		for i := 0; i < f.N; i++ {
			f.V[i] += off
		}
		m.Faces = append(m.Faces, f)
	}
}

// Empty returns true if the mesh has no faces.
func (m *Mesh) Empty() bool { return len(m.Faces) == 0 }

// Validate checks every face has 3 or 4 in-range indices.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		if f.N != 3 && f.N != 4 {
			return fmt.Errorf("face %d has %d vertices", i, f.N)
		}
		for _, v := range f.Indices() {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("face %d references vertex %d out of range [0, %d)", i, v, len(m.Vertices))
			}
		}
	}
	return nil
}

// Triangles returns the faces of the mesh as triangles. Quads (a,b,c,d)
// are split into (a,b,c) and (a,c,d).
func (m *Mesh) Triangles() []Triangle3 {
	tris := make([]Triangle3, 0, len(m.Faces)+len(m.Faces)/2)
	for _, f := range m.Faces {
		v := m.Vertices
		tris = append(tris, Triangle3{v[f.V[0]], v[f.V[1]], v[f.V[2]]})
		if f.N == 4 {
			tris = append(tris, Triangle3{v[f.V[0]], v[f.V[2]], v[f.V[3]]})
		}
	}
	return tris
}

// Area returns the total area of the mesh faces.
func (m *Mesh) Area() (area float64) {
	for _, t := range m.Triangles() {
		area += t.Area()
	}
	return area
}

// Reader returns a Renderer that streams the mesh triangles.
func (m *Mesh) Reader() Renderer {
	return &triangle3Buffer{buf: m.Triangles()}
}

// RenderAll reads the full contents of a Renderer and returns the slice read.
// It does not return error on io.EOF, like io.ReadAll.
func RenderAll(r Renderer) ([]Triangle3, error) {
	var err error
	var nt int
	result := make([]Triangle3, 0, 1<<12)
	buf := make([]Triangle3, 1024)
	for {
		nt, err = r.ReadTriangles(buf)
		result = append(result, buf[:nt]...)
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

type triangle3Buffer struct {
	buf []Triangle3
}

// ReadTriangles reads from this buffer. io.EOF is returned once the buffer is drained.
func (b *triangle3Buffer) ReadTriangles(t []Triangle3) (int, error) {
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(t, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}
