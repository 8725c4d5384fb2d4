package expr

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNum
	tokVar
	tokOp // + - * / % ^ **
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	pos  int
	text string
	num  float64
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

// SyntaxError reports a malformed formula.
type SyntaxError struct {
	// Pos is the byte offset of the offending input.
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("formula syntax error at offset %d: %s", e.Pos, e.Msg)
}

// lex splits a lowercased formula into tokens. Only numbers, the variables
// x, y and z, the operators + - * / % ^ ** and parentheses are accepted.
func lex(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			dots := 0
			for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
				if s[i] == '.' {
					dots++
				}
				i++
			}
			text := s[start:i]
			if dots > 1 || text == "." {
				return nil, &SyntaxError{Pos: start, Msg: "malformed number " + strconv.Quote(text)}
			}
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &SyntaxError{Pos: start, Msg: "malformed number " + strconv.Quote(text)}
			}
			toks = append(toks, token{kind: tokNum, pos: start, text: text, num: f})
		case c == 'x' || c == 'y' || c == 'z':
			toks = append(toks, token{kind: tokVar, pos: i, text: s[i : i+1]})
			i++
		case c == '*' && strings.HasPrefix(s[i:], "**"):
			toks = append(toks, token{kind: tokOp, pos: i, text: "**"})
			i += 2
		case strings.IndexByte("+-*/%^", c) >= 0:
			toks = append(toks, token{kind: tokOp, pos: i, text: s[i : i+1]})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i, text: ")"})
			i++
		default:
			return nil, &SyntaxError{Pos: i, Msg: "unexpected character " + strconv.QuoteRune(rune(c))}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(s)})
	return toks, nil
}
