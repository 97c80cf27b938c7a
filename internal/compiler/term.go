package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
)

// Term syntax, as written inside CUE strings:
//
//	term      = NAME [ "(" term { "," term } ")" ] | VARIABLE | NUMBER
//	condition = "not" condition | term [ CMP term ]
//	CMP       = "==" | "!=" | "<=" | ">=" | "<" | ">"
//
// NAME starts lower-case, VARIABLE starts upper-case or with "_". Identifiers
// are NFC-normalised so visually identical names form identical signatures.

// ParseTerm parses a single term.
func ParseTerm(src string, pos ast.Position) (*ast.Term, error) {
	p := newTermParser(src, pos)
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseCondition parses a literal, a negation, or a comparison.
func ParseCondition(src string, pos ast.Position) (*ast.Condition, error) {
	p := newTermParser(src, pos)
	c, err := p.condition()
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return c, nil
}

// SyntaxError reports malformed term text.
type SyntaxError struct {
	Src    string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("term %q at offset %d: %s", e.Src, e.Offset, e.Msg)
}

type termParser struct {
	src []rune
	raw string
	off int
	pos ast.Position
}

func newTermParser(src string, pos ast.Position) *termParser {
	normalized := norm.NFC.String(src)
	return &termParser{src: []rune(normalized), raw: src, pos: pos}
}

func (p *termParser) errorf(format string, args ...any) error {
	return &SyntaxError{Src: p.raw, Offset: p.off, Msg: fmt.Sprintf(format, args...)}
}

func (p *termParser) skipSpace() {
	for p.off < len(p.src) && unicode.IsSpace(p.src[p.off]) {
		p.off++
	}
}

func (p *termParser) peek() rune {
	p.skipSpace()
	if p.off >= len(p.src) {
		return 0
	}
	return p.src[p.off]
}

func (p *termParser) end() error {
	if p.peek() != 0 {
		return p.errorf("unexpected %q", string(p.src[p.off:]))
	}
	return nil
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *termParser) ident() string {
	start := p.off
	for p.off < len(p.src) && isIdentRune(p.src[p.off]) {
		p.off++
	}
	return string(p.src[start:p.off])
}

func (p *termParser) number() string {
	start := p.off
	if p.src[p.off] == '-' {
		p.off++
	}
	for p.off < len(p.src) && unicode.IsDigit(p.src[p.off]) {
		p.off++
	}
	return string(p.src[start:p.off])
}

func (p *termParser) term() (*ast.Term, error) {
	r := p.peek()
	switch {
	case r == 0:
		return nil, p.errorf("expected term, found end of input")
	case unicode.IsDigit(r) || (r == '-' && p.off+1 < len(p.src) && unicode.IsDigit(p.src[p.off+1])):
		return &ast.Term{Position: p.pos, TermKind: ast.Constant, Name: p.number()}, nil
	case r == '_' || unicode.IsUpper(r):
		return &ast.Term{Position: p.pos, TermKind: ast.Variable, Name: p.ident()}, nil
	case unicode.IsLetter(r):
		name := p.ident()
		if p.peek() != '(' {
			return &ast.Term{Position: p.pos, TermKind: ast.Constant, Name: name}, nil
		}
		p.off++
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		return &ast.Term{Position: p.pos, TermKind: ast.Compound, Name: name, Args: args}, nil
	default:
		return nil, p.errorf("unexpected %q", string(r))
	}
}

func (p *termParser) args() ([]*ast.Term, error) {
	var args []*ast.Term
	if p.peek() == ')' {
		return nil, p.errorf("empty argument list")
	}
	for {
		arg, err := p.term()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch p.peek() {
		case ',':
			p.off++
		case ')':
			p.off++
			return args, nil
		default:
			return nil, p.errorf("expected ',' or ')'")
		}
	}
}

func (p *termParser) condition() (*ast.Condition, error) {
	p.skipSpace()
	if p.keyword("not") {
		inner, err := p.condition()
		if err != nil {
			return nil, err
		}
		return &ast.Condition{Position: p.pos, Op: ast.CondNot, Operands: []*ast.Condition{inner}}, nil
	}

	left, err := p.term()
	if err != nil {
		return nil, err
	}
	op := p.comparison()
	if op == "" {
		return &ast.Condition{Position: p.pos, Op: ast.CondLiteral, Term: left}, nil
	}
	right, err := p.term()
	if err != nil {
		return nil, err
	}
	cmp := &ast.Term{Position: p.pos, TermKind: ast.Operator, Name: op, Args: []*ast.Term{left, right}}
	return &ast.Condition{Position: p.pos, Op: ast.CondCompare, Term: cmp}, nil
}

// keyword consumes word if it appears next as a whole identifier.
func (p *termParser) keyword(word string) bool {
	rest := string(p.src[p.off:])
	if !strings.HasPrefix(rest, word) {
		return false
	}
	next := p.off + len([]rune(word))
	if next < len(p.src) && isIdentRune(p.src[next]) {
		return false
	}
	p.off = next
	return true
}

func (p *termParser) comparison() string {
	p.skipSpace()
	rest := string(p.src[p.off:])
	for _, op := range ast.ComparisonOperators {
		if strings.HasPrefix(rest, op) {
			p.off += len(op)
			return op
		}
	}
	return ""
}
