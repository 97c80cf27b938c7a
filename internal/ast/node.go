package ast

import "fmt"

// Position locates a node in its source file. The zero value means unknown.
type Position struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// Pos returns p. Embedding Position gives every node its Pos method.
func (p Position) Pos() Position { return p }

// IsValid reports whether p carries a line number.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	switch {
	case !p.IsValid() && p.File == "":
		return "-"
	case !p.IsValid():
		return p.File
	case p.File == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// Node is implemented by every syntax tree variant.
type Node interface {
	Kind() Kind
	Pos() Position
	// Children returns the direct children in visiting order.
	Children() []Node
	node()
}

// TypeDec declares a type name, e.g. `type Person;`.
type TypeDec struct {
	Position
	Head *Term
}

func (*TypeDec) Kind() Kind         { return KindTypeDec }
func (d *TypeDec) Children() []Node { return termNodes(d.Head) }
func (*TypeDec) node()              {}

// Signature returns the declared type's signature.
func (d *TypeDec) Signature() Signature { return d.Head.Signature() }

// EventKind distinguishes the three event declarations.
type EventKind int

const (
	Exogenous EventKind = iota
	Institutional
	Violation
)

func (k EventKind) String() string {
	switch k {
	case Exogenous:
		return "exogenous"
	case Institutional:
		return "inst"
	case Violation:
		return "violation"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event declares an event. Head arguments name parameter types.
type Event struct {
	Position
	EventKind EventKind
	Head      *Term
}

func (*Event) Kind() Kind         { return KindEvent }
func (e *Event) Children() []Node { return termNodes(e.Head) }
func (*Event) node()              {}

// Signature returns the declared event's signature.
func (e *Event) Signature() Signature { return e.Head.Signature() }

// FluentKind distinguishes inertial, transient and cross fluents.
type FluentKind int

const (
	Inertial FluentKind = iota
	Transient
	Cross
)

func (k FluentKind) String() string {
	switch k {
	case Inertial:
		return "inertial"
	case Transient:
		return "noninertial"
	case Cross:
		return "cross"
	default:
		return fmt.Sprintf("FluentKind(%d)", int(k))
	}
}

// Fluent declares a fluent. Head arguments name parameter types.
type Fluent struct {
	Position
	FluentKind FluentKind
	Head       *Term
}

func (*Fluent) Kind() Kind         { return KindFluent }
func (f *Fluent) Children() []Node { return termNodes(f.Head) }
func (*Fluent) node()              {}

// Signature returns the declared fluent's signature.
func (f *Fluent) Signature() Signature { return f.Head.Signature() }

// Initial lists fluents holding in the first state, optionally guarded.
type Initial struct {
	Position
	Fluents    []*Term
	Conditions []*Condition
}

func (*Initial) Kind() Kind { return KindInitial }
func (i *Initial) Children() []Node {
	return append(termNodes(i.Fluents...), conditionNodes(i.Conditions)...)
}
func (*Initial) node() {}

// Institution is a named normative model.
type Institution struct {
	Position
	Name     string
	Types    []*TypeDec
	Fluents  []*Fluent
	Events   []*Event
	Rules    []Rule
	Initials []*Initial
}

func (*Institution) Kind() Kind { return KindInstitution }

// Children visits types, fluents, events, rules and initial facts in that order.
func (in *Institution) Children() []Node {
	out := make([]Node, 0, len(in.Types)+len(in.Fluents)+len(in.Events)+len(in.Rules)+len(in.Initials))
	for _, t := range in.Types {
		if t != nil {
			out = append(out, t)
		}
	}
	for _, f := range in.Fluents {
		if f != nil {
			out = append(out, f)
		}
	}
	for _, e := range in.Events {
		if e != nil {
			out = append(out, e)
		}
	}
	for _, r := range in.Rules {
		if r != nil {
			out = append(out, r)
		}
	}
	for _, i := range in.Initials {
		if i != nil {
			out = append(out, i)
		}
	}
	return out
}
func (*Institution) node() {}

// Signature identifies the institution by name.
func (in *Institution) Signature() Signature { return Signature{Name: in.Name} }

// LinkDirection says which side of a bridge a link names.
type LinkDirection int

const (
	Source LinkDirection = iota
	Sink
)

func (d LinkDirection) String() string {
	if d == Sink {
		return "sink"
	}
	return "source"
}

// Link is a bridge's reference to another institution.
type Link struct {
	Position
	Direction   LinkDirection
	Institution string
}

func (*Link) Kind() Kind       { return KindLink }
func (*Link) Children() []Node { return nil }
func (*Link) node()            {}

// Bridge is an institution that connects source institutions to sinks.
type Bridge struct {
	Institution
	Links []*Link
}

func (*Bridge) Kind() Kind { return KindBridge }

// Children visits the institution sections and then the links.
func (b *Bridge) Children() []Node {
	out := b.Institution.Children()
	for _, l := range b.Links {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

// Targets returns the institution names linked in direction d, in order.
func (b *Bridge) Targets(d LinkDirection) []string {
	var names []string
	for _, l := range b.Links {
		if l != nil && l.Direction == d {
			names = append(names, l.Institution)
		}
	}
	return names
}

// AsInstitution returns the institution part of an Institution or Bridge node.
func AsInstitution(n Node) (*Institution, bool) {
	switch v := n.(type) {
	case *Institution:
		return v, v != nil
	case *Bridge:
		if v == nil {
			return nil, false
		}
		return &v.Institution, true
	default:
		return nil, false
	}
}

// Query is one observed exogenous event, optionally pinned to a time step.
type Query struct {
	Position
	Head *Term
	// Step is the time step of the observation; negative when unspecified.
	Step int
}

func (*Query) Kind() Kind         { return KindQuery }
func (q *Query) Children() []Node { return termNodes(q.Head) }
func (*Query) node()              {}

// Domain maps type names to the literals that ground them.
type Domain struct {
	Position
	Types map[string][]string
}

func (*Domain) Kind() Kind       { return KindDomain }
func (*Domain) Children() []Node { return nil }
func (*Domain) node()            {}

func termNodes(terms ...*Term) []Node {
	out := make([]Node, 0, len(terms))
	for _, t := range terms {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

func conditionNodes(conds []*Condition) []Node {
	out := make([]Node, 0, len(conds))
	for _, c := range conds {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
