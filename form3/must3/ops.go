package must3

import (
	"math"

	"github.com/soypat/implicit"
	"gonum.org/v1/gonum/spatial/r3"
)

type union struct {
	fields []implicit.Field
}

// Union returns the union of fields: the minimum of their values.
func Union(fields ...implicit.Field) implicit.Field {
	if len(fields) == 0 {
		panic("union of no fields")
	}
	return &union{fields: fields}
}

func (u *union) Evaluate(p r3.Vec) (float64, error) {
	d := math.Inf(1)
	for _, f := range u.fields {
		v, err := f.Evaluate(p)
		if err != nil {
			return 0, err
		}
		d = math.Min(d, v)
	}
	return d, nil
}

type intersection struct {
	fields []implicit.Field
}

// Intersect returns the intersection of fields: the maximum of their values.
func Intersect(fields ...implicit.Field) implicit.Field {
	if len(fields) == 0 {
		panic("intersection of no fields")
	}
	return &intersection{fields: fields}
}

func (s *intersection) Evaluate(p r3.Vec) (float64, error) {
	d := math.Inf(-1)
	for _, f := range s.fields {
		v, err := f.Evaluate(p)
		if err != nil {
			return 0, err
		}
		d = math.Max(d, v)
	}
	return d, nil
}

type difference struct {
	a, b implicit.Field
}

// Difference returns a with b carved out.
func Difference(a, b implicit.Field) implicit.Field {
	if a == nil || b == nil {
		panic("nil field")
	}
	return &difference{a: a, b: b}
}

func (s *difference) Evaluate(p r3.Vec) (float64, error) {
	va, err := s.a.Evaluate(p)
	if err != nil {
		return 0, err
	}
	vb, err := s.b.Evaluate(p)
	if err != nil {
		return 0, err
	}
	return math.Max(va, -vb), nil
}

type translation struct {
	f      implicit.Field
	offset r3.Vec
}

// Translate moves f by offset.
func Translate(f implicit.Field, offset r3.Vec) implicit.Field {
	if f == nil {
		panic("nil field")
	}
	return &translation{f: f, offset: offset}
}

func (s *translation) Evaluate(p r3.Vec) (float64, error) {
	return s.f.Evaluate(r3.Sub(p, s.offset))
}
