// Package expr parses arithmetic formulas in x, y and z into fields.
//
// The accepted language is deliberately small: decimal numbers, the variables
// x, y and z (case insensitive), parentheses, unary + and -, the binary
// operators + - * / % and exponentiation written ^ or **. Exponentiation is
// right associative and binds tighter than unary minus on its left, so
// -x^2 is -(x^2) and 2^-1 is 0.5. Modulo follows floored division: the result
// takes the sign of the divisor.
package expr

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// MaxLength is the longest formula accepted by Parse.
	MaxLength = 4096
	// maxDepth bounds expression nesting.
	maxDepth = 256
)

var (
	// ErrDivisionByZero is returned when evaluating a division or modulo by zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// Expr is a parsed formula. It implements implicit.Field and is safe for concurrent use.
type Expr struct {
	root node
	src  string
}

// Parse parses a formula. Input is lowercased before parsing.
func Parse(formula string) (*Expr, error) {
	if len(formula) > MaxLength {
		return nil, &SyntaxError{Pos: MaxLength, Msg: fmt.Sprintf("formula longer than %d bytes", MaxLength)}
	}
	src := strings.ToLower(formula)
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := parser{toks: toks}
	root, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected " + t.String()}
	}
	return &Expr{root: root, src: src}, nil
}

// Eval evaluates the formula at (x,y,z).
func (e *Expr) Eval(x, y, z float64) (float64, error) {
	return e.root.eval(&[3]float64{x, y, z})
}

// Evaluate evaluates the formula at p.
func (e *Expr) Evaluate(p r3.Vec) (float64, error) {
	return e.root.eval(&[3]float64{p.X, p.Y, p.Z})
}

// String returns the formula fully parenthesized.
func (e *Expr) String() string {
	var sb strings.Builder
	e.root.format(&sb)
	return sb.String()
}

// Source returns the normalized formula text that was parsed.
func (e *Expr) Source() string { return e.src }

// Vars returns the variables the formula references, in x, y, z order.
func (e *Expr) Vars() []string {
	var used [3]bool
	e.root.vars(&used)
	var names []string
	for i, u := range used {
		if u {
			names = append(names, string("xyz"[i]))
		}
	}
	return names
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

// expr parses a sum of terms.
func (p *parser) expr(depth int) (node, error) {
	if depth > maxDepth {
		return nil, &SyntaxError{Pos: p.peek().pos, Msg: "expression nested too deeply"}
	}
	lhs, err := p.term(depth)
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text[0]
		rhs, err := p.term(depth)
		if err != nil {
			return nil, err
		}
		lhs = &binary{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

// term parses a product of unary expressions.
func (p *parser) term(depth int) (node, error) {
	lhs, err := p.unary(depth)
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/", "%") {
		op := p.next().text[0]
		rhs, err := p.unary(depth)
		if err != nil {
			return nil, err
		}
		lhs = &binary{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) unary(depth int) (node, error) {
	if depth > maxDepth {
		return nil, &SyntaxError{Pos: p.peek().pos, Msg: "expression nested too deeply"}
	}
	if p.isOp("-", "+") {
		op := p.next().text[0]
		arg, err := p.unary(depth + 1)
		if err != nil {
			return nil, err
		}
		if op == '+' {
			return arg, nil
		}
		return &negate{arg: arg}, nil
	}
	return p.power(depth)
}

func (p *parser) power(depth int) (node, error) {
	base, err := p.primary(depth)
	if err != nil {
		return nil, err
	}
	if p.isOp("^", "**") {
		p.next()
		exp, err := p.unary(depth + 1)
		if err != nil {
			return nil, err
		}
		return &binary{op: '^', lhs: base, rhs: exp}, nil
	}
	return base, nil
}

func (p *parser) primary(depth int) (node, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return constant(t.num), nil
	case tokVar:
		return variable(t.text[0] - 'x'), nil
	case tokLParen:
		inner, err := p.expr(depth + 1)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: "expected \")\", got " + closing.String()}
		}
		return inner, nil
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: "expected number, variable or \"(\", got " + t.String()}
}
