package ast

import (
	"fmt"
	"strings"
)

// Signature is the (name, arity) identity of a declaration or use.
type Signature struct {
	Name  string `json:"name"`
	Arity int    `json:"arity"`
}

func (s Signature) String() string {
	return fmt.Sprintf("%s/%d", s.Name, s.Arity)
}

// TermKind distinguishes the shapes a Term can take.
type TermKind int

const (
	Constant TermKind = iota
	Variable
	Compound
	// Operator is a comparison such as X != Y. Name holds the operator.
	Operator
)

func (k TermKind) String() string {
	switch k {
	case Constant:
		return "constant"
	case Variable:
		return "variable"
	case Compound:
		return "compound"
	case Operator:
		return "operator"
	default:
		return fmt.Sprintf("TermKind(%d)", int(k))
	}
}

// ComparisonOperators lists the operator names a Term of kind Operator may carry.
var ComparisonOperators = []string{"==", "!=", "<=", ">=", "<", ">"}

// Term is a constant, a variable, a compound application, or a comparison.
type Term struct {
	Position
	TermKind TermKind
	Name     string
	Args     []*Term
}

func (*Term) Kind() Kind         { return KindTerm }
func (t *Term) Children() []Node { return termNodes(t.Args...) }
func (*Term) node()              {}

// Signature returns the term's name and arity.
func (t *Term) Signature() Signature {
	if t == nil {
		return Signature{}
	}
	return Signature{Name: t.Name, Arity: len(t.Args)}
}

// IsVariable reports whether t is a variable.
func (t *Term) IsVariable() bool { return t != nil && t.TermKind == Variable }

// IsOperator reports whether t is a comparison.
func (t *Term) IsOperator() bool { return t != nil && t.TermKind == Operator }

// Variables returns the distinct variable names in t, in first-occurrence order.
func (t *Term) Variables() []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(*Term)
	walk = func(cur *Term) {
		if cur == nil {
			return
		}
		if cur.TermKind == Variable {
			if !seen[cur.Name] {
				seen[cur.Name] = true
				out = append(out, cur.Name)
			}
			return
		}
		for _, a := range cur.Args {
			walk(a)
		}
	}
	walk(t)
	return out
}

func (t *Term) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.TermKind == Operator && len(t.Args) == 2 {
		return fmt.Sprintf("%s %s %s", t.Args[0], t.Name, t.Args[1])
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(parts, ", "))
}

// Equivalent reports whether a and b have the same structure once variables
// are renamed consistently. flu(X, Y) and flu(A, B) are equivalent; flu(X, X)
// and flu(A, B) are not.
func Equivalent(a, b *Term) bool {
	return equivalent(a, b, make(map[string]string), make(map[string]string))
}

func equivalent(a, b *Term, fwd, back map[string]string) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.TermKind != b.TermKind {
		return false
	}
	if a.TermKind == Variable {
		if mapped, ok := fwd[a.Name]; ok {
			return mapped == b.Name
		}
		if mapped, ok := back[b.Name]; ok {
			return mapped == a.Name
		}
		fwd[a.Name] = b.Name
		back[b.Name] = a.Name
		return true
	}
	if a.Name != b.Name || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !equivalent(a.Args[i], b.Args[i], fwd, back) {
			return false
		}
	}
	return true
}

// CondOp is the operator of a Condition node.
type CondOp int

const (
	// CondLiteral holds when its Term holds.
	CondLiteral CondOp = iota
	// CondNot negates its single operand.
	CondNot
	// CondAnd holds when every operand holds.
	CondAnd
	// CondCompare is a comparison; Term has kind Operator.
	CondCompare
)

func (op CondOp) String() string {
	switch op {
	case CondLiteral:
		return "literal"
	case CondNot:
		return "not"
	case CondAnd:
		return "and"
	case CondCompare:
		return "compare"
	default:
		return fmt.Sprintf("CondOp(%d)", int(op))
	}
}

// Condition is a guard or transient-rule body element.
type Condition struct {
	Position
	Op       CondOp
	Term     *Term
	Operands []*Condition
}

func (*Condition) Kind() Kind { return KindCondition }
func (c *Condition) Children() []Node {
	if c.Term != nil {
		return append(termNodes(c.Term), conditionNodes(c.Operands)...)
	}
	return conditionNodes(c.Operands)
}
func (*Condition) node() {}

// Literals returns the non-comparison terms reachable through and/not.
func (c *Condition) Literals() []*Term {
	if c == nil {
		return nil
	}
	switch c.Op {
	case CondLiteral:
		if c.Term == nil || c.Term.IsOperator() {
			return nil
		}
		return []*Term{c.Term}
	case CondCompare:
		return nil
	default:
		var out []*Term
		for _, o := range c.Operands {
			out = append(out, o.Literals()...)
		}
		return out
	}
}

func (c *Condition) String() string {
	if c == nil {
		return "<nil>"
	}
	switch c.Op {
	case CondNot:
		if len(c.Operands) == 1 {
			return "not " + c.Operands[0].String()
		}
		return "not(?)"
	case CondAnd:
		parts := make([]string, len(c.Operands))
		for i, o := range c.Operands {
			parts[i] = o.String()
		}
		return strings.Join(parts, ", ")
	default:
		return c.Term.String()
	}
}

// Lit is shorthand for a literal condition over t.
func Lit(t *Term) *Condition {
	return &Condition{Position: t.Position, Op: CondLiteral, Term: t}
}

// Not is shorthand for a negated condition.
func Not(c *Condition) *Condition {
	return &Condition{Position: c.Position, Op: CondNot, Operands: []*Condition{c}}
}

// And is shorthand for a conjunction.
func And(cs ...*Condition) *Condition {
	var pos Position
	if len(cs) > 0 && cs[0] != nil {
		pos = cs[0].Position
	}
	return &Condition{Position: pos, Op: CondAnd, Operands: cs}
}
