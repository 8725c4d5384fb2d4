package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
	// trianglesInBuffer is the number of triangles encoded per write.
	trianglesInBuffer = 1 << 10
	// maxNormalMismatches is the number of stored normals disagreeing with the
	// vertex winding tolerated by ReadSTL before giving up.
	maxNormalMismatches = 10_000
)

var errCalculatedNormalMismatch = errors.New("stl: stored normal differs from vertex winding")

// stlHeader is the 80 byte comment followed by the triangle count.
type stlHeader struct {
	_     [80]uint8
	Count uint32
}

// stlTriangle is one 50 byte binary STL record.
type stlTriangle struct {
	Normal, V1, V2, V3 [3]float32
}

// CreateSTL writes the triangles read from r to a binary STL file at path.
// The triangle count is not known in advance so the header is written last.
func CreateSTL(path string, r Renderer) (err error) {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err = fp.Seek(stlHeaderSize, io.SeekStart); err != nil {
		return err
	}
	enc := &stlEncoder{r: r}
	n, err := io.CopyBuffer(fp, enc, make([]byte, stlTriangleSize*trianglesInBuffer))
	if err != nil {
		return err
	}
	if _, err = fp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return binary.Write(fp, binary.LittleEndian, &stlHeader{Count: uint32(n / stlTriangleSize)})
}

// WriteSTL writes model to w in binary STL format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errors.New("stl: no triangles to write")
	}
	if err := binary.Write(w, binary.LittleEndian, &stlHeader{Count: uint32(len(model))}); err != nil {
		return err
	}
	var rec [stlTriangleSize]byte
	for _, t := range model {
		stlRecord(t).put(rec[:])
		if _, err := w.Write(rec[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadSTL reads the triangles of a binary STL file. Triangles whose stored
// normal disagrees with their winding are kept; the returned error then
// reports the mismatch along with the full model.
func ReadSTL(r io.Reader) ([]Triangle3, error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("stl: reading header: %w", err)
	}
	if header.Count == 0 {
		return nil, errors.New("stl: header declares no triangles")
	}
	var (
		rec        [stlTriangleSize]byte
		t          stlTriangle
		mismatches int
		mismatch   error
	)
	model := make([]Triangle3, 0, min(int(header.Count), 1<<16))
	for i := 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, fmt.Errorf("stl: triangle %d of %d: %w", i+1, header.Count, err)
		}
		t.get(rec[:])
		err := t.validate()
		switch {
		case errors.Is(err, errCalculatedNormalMismatch):
			mismatches++
			if mismatches > maxNormalMismatches {
				return model, fmt.Errorf("stl: %d normal mismatches: %w", mismatches, err)
			}
			mismatch = err
		case err != nil:
			return nil, fmt.Errorf("stl: triangle %d of %d: %w", i+1, header.Count, err)
		}
		model = append(model, t.triangle())
	}
	return model, mismatch
}

// stlEncoder is an io.Reader producing binary STL records from a Renderer.
type stlEncoder struct {
	r   Renderer
	buf [trianglesInBuffer]Triangle3
	err error
}

func (e *stlEncoder) Read(b []byte) (n int, err error) {
	if e.err != nil {
		return 0, e.err
	}
	maxTris := min(len(b)/stlTriangleSize, len(e.buf))
	if maxTris == 0 {
		return 0, io.ErrShortBuffer
	}
	nt, err := e.r.ReadTriangles(e.buf[:maxTris])
	for _, t := range e.buf[:nt] {
		stlRecord(t).put(b[n:])
		n += stlTriangleSize
	}
	e.err = err
	if err == io.EOF && n > 0 {
		// Report EOF on the next call so the caller writes these records.
		return n, nil
	}
	return n, err
}

func stlRecord(t Triangle3) stlTriangle {
	return stlTriangle{
		Normal: f32From3(t.Normal()),
		V1:     f32From3(t[0]),
		V2:     f32From3(t[1]),
		V3:     f32From3(t[2]),
	}
}

func (t stlTriangle) put(b []byte) {
	_ = b[stlTriangleSize-1]
	for i, v := range [4][3]float32{t.Normal, t.V1, t.V2, t.V3} {
		for j, f := range v {
			binary.LittleEndian.PutUint32(b[12*i+4*j:], math.Float32bits(f))
		}
	}
	// Attribute byte count is always zero.
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	_ = b[stlTriangleSize-1]
	for i, v := range [4]*[3]float32{&t.Normal, &t.V1, &t.V2, &t.V3} {
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(b[12*i+4*j:]))
		}
	}
}

func (t stlTriangle) validate() error {
	const (
		degenerateTol = 1e-12
		normalTol     = 5e-2
	)
	if !finite32(t.Normal) {
		return errors.New("non-finite normal")
	}
	if !finite32(t.V1) || !finite32(t.V2) || !finite32(t.V3) {
		return errors.New("non-finite vertex")
	}
	if equalWithin32(t.V1, t.V2, degenerateTol) || equalWithin32(t.V2, t.V3, degenerateTol) ||
		equalWithin32(t.V3, t.V1, degenerateTol) {
		return errors.New("degenerate triangle")
	}
	// Scaled so the normal of small triangles survives float32 rounding.
	tri := d3.Triangle{r3.Scale(10, r3From32(t.V1)), r3.Scale(10, r3From32(t.V2)), r3.Scale(10, r3From32(t.V3))}
	n := f32From3(tri.Normal())
	flipped := [3]float32{-n[0], -n[1], -n[2]}
	if !equalWithin32(n, t.Normal, normalTol) && !equalWithin32(flipped, t.Normal, normalTol) {
		return errCalculatedNormalMismatch
	}
	return nil
}

func (t stlTriangle) triangle() Triangle3 {
	return Triangle3{r3From32(t.V1), r3From32(t.V2), r3From32(t.V3)}
}

func finite32(f [3]float32) bool {
	for _, v := range f {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func equalWithin32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func r3From32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func f32From3(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
