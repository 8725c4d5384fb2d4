package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// WriteOBJ writes the mesh in Wavefront OBJ text format: one "v x y z" line per
// vertex followed by one "f a b c [d]" line per face with 1-based indices.
// An empty mesh writes nothing.
func WriteOBJ(w io.Writer, m *Mesh) error {
	if len(m.Vertices) == 0 && len(m.Faces) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)
	var buf []byte
	for _, v := range m.Vertices {
		buf = append(buf[:0], 'v')
		for _, f := range [3]float64{v.X, v.Y, v.Z} {
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, f, 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	for _, f := range m.Faces {
		buf = append(buf[:0], 'f')
		for _, idx := range f.Indices() {
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(idx+1), 10)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// OBJ returns the mesh in OBJ text format as written by WriteOBJ.
func (m *Mesh) OBJ() string {
	var sb strings.Builder
	WriteOBJ(&sb, m) // strings.Builder never fails.
	return sb.String()
}

// ParseOBJ reads vertex and face records of an OBJ file. Other records are ignored.
// Face vertices may carry texture and normal references ("1/2/3") which are discarded.
// Negative indices are resolved relative to the vertices read so far.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj line %d: vertex needs 3 coordinates", line)
			}
			var c [3]float64
			for i := range c {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("obj line %d: %w", line, err)
				}
				c[i] = f
			}
			m.AddVertex(r3.Vec{X: c[0], Y: c[1], Z: c[2]})
		case "f":
			n := len(fields) - 1
			if n != 3 && n != 4 {
				return nil, fmt.Errorf("obj line %d: face with %d vertices, want 3 or 4", line, n)
			}
			face := Face{N: n}
			for i := 0; i < n; i++ {
				ref, _, _ := strings.Cut(fields[i+1], "/")
				idx, err := strconv.Atoi(ref)
				if err != nil {
					return nil, fmt.Errorf("obj line %d: %w", line, err)
				}
				if idx < 0 {
					idx += len(m.Vertices) + 1
				}
				if idx < 1 || idx > len(m.Vertices) {
					return nil, fmt.Errorf("obj line %d: vertex index %s out of range", line, ref)
				}
				face.V[i] = idx - 1
			}
			m.Faces = append(m.Faces, face)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
