package expr

import (
	"math"
	"strconv"
	"strings"
)

type node interface {
	eval(v *[3]float64) (float64, error)
	format(sb *strings.Builder)
	vars(used *[3]bool)
}

type constant float64

func (c constant) eval(*[3]float64) (float64, error) { return float64(c), nil }
func (c constant) format(sb *strings.Builder) {
	sb.WriteString(strconv.FormatFloat(float64(c), 'g', -1, 64))
}
func (c constant) vars(*[3]bool) {}

// variable indexes x, y, z.
type variable uint8

func (v variable) eval(xyz *[3]float64) (float64, error) { return xyz[v], nil }
func (v variable) format(sb *strings.Builder)           { sb.WriteByte("xyz"[v]) }
func (v variable) vars(used *[3]bool)                   { used[v] = true }

type negate struct {
	arg node
}

func (n *negate) eval(v *[3]float64) (float64, error) {
	a, err := n.arg.eval(v)
	return -a, err
}

func (n *negate) format(sb *strings.Builder) {
	sb.WriteString("(-")
	n.arg.format(sb)
	sb.WriteByte(')')
}

func (n *negate) vars(used *[3]bool) { n.arg.vars(used) }

type binary struct {
	op       byte // one of + - * / % ^
	lhs, rhs node
}

func (b *binary) eval(v *[3]float64) (float64, error) {
	l, err := b.lhs.eval(v)
	if err != nil {
		return 0, err
	}
	r, err := b.rhs.eval(v)
	if err != nil {
		return 0, err
	}
	switch b.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l / r, nil
	case '%':
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return floorMod(l, r), nil
	case '^':
		return math.Pow(l, r), nil
	}
	panic("unknown operator " + string(b.op))
}

func (b *binary) format(sb *strings.Builder) {
	sb.WriteByte('(')
	b.lhs.format(sb)
	sb.WriteByte(' ')
	sb.WriteByte(b.op)
	sb.WriteByte(' ')
	b.rhs.format(sb)
	sb.WriteByte(')')
}

func (b *binary) vars(used *[3]bool) {
	b.lhs.vars(used)
	b.rhs.vars(used)
}

// floorMod returns a modulo b with the sign of b.
func floorMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
