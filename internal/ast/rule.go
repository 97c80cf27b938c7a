package ast

import "fmt"

// Rule is implemented by the four rule variants.
type Rule interface {
	Node
	// Head is the triggering event, or the fluent for a transient rule.
	Head() *Term
	// Body lists the generated events or affected fluents. Transient rules
	// have no body terms; their conditions are the body.
	Body() []*Term
	// Guards lists the rule's conditions.
	Guards() []*Condition
}

// GenerationRule: Event generates Generates if Conditions.
type GenerationRule struct {
	Position
	Event      *Term
	Generates  []*Term
	Conditions []*Condition
}

func (*GenerationRule) Kind() Kind { return KindGenerationRule }
func (r *GenerationRule) Children() []Node {
	return ruleChildren(r.Event, r.Generates, r.Conditions)
}
func (*GenerationRule) node()                  {}
func (r *GenerationRule) Head() *Term          { return r.Event }
func (r *GenerationRule) Body() []*Term        { return r.Generates }
func (r *GenerationRule) Guards() []*Condition { return r.Conditions }

// InertialOp selects initiates or terminates.
type InertialOp int

const (
	Initiates InertialOp = iota
	Terminates
)

func (op InertialOp) String() string {
	if op == Terminates {
		return "terminates"
	}
	return "initiates"
}

// InertialRule: Event initiates|terminates Fluents if Conditions.
type InertialRule struct {
	Position
	Op         InertialOp
	Event      *Term
	Fluents    []*Term
	Conditions []*Condition
}

func (*InertialRule) Kind() Kind { return KindInertialRule }
func (r *InertialRule) Children() []Node {
	return ruleChildren(r.Event, r.Fluents, r.Conditions)
}
func (*InertialRule) node()                  {}
func (r *InertialRule) Head() *Term          { return r.Event }
func (r *InertialRule) Body() []*Term        { return r.Fluents }
func (r *InertialRule) Guards() []*Condition { return r.Conditions }

// TransientRule: Fluent when Conditions.
type TransientRule struct {
	Position
	Fluent     *Term
	Conditions []*Condition
}

func (*TransientRule) Kind() Kind { return KindTransientRule }
func (r *TransientRule) Children() []Node {
	return ruleChildren(r.Fluent, nil, r.Conditions)
}
func (*TransientRule) node()                  {}
func (r *TransientRule) Head() *Term          { return r.Fluent }
func (r *TransientRule) Body() []*Term        { return nil }
func (r *TransientRule) Guards() []*Condition { return r.Conditions }

// CrossOp selects the bridge rule form.
type CrossOp int

const (
	XGenerates CrossOp = iota
	XInitiates
	XTerminates
)

func (op CrossOp) String() string {
	switch op {
	case XGenerates:
		return "xgenerates"
	case XInitiates:
		return "xinitiates"
	case XTerminates:
		return "xterminates"
	default:
		return fmt.Sprintf("CrossOp(%d)", int(op))
	}
}

// CrossRule propagates a source institution's event into a sink institution.
type CrossRule struct {
	Position
	Op         CrossOp
	Event      *Term
	Targets    []*Term
	Conditions []*Condition
}

func (*CrossRule) Kind() Kind { return KindCrossRule }
func (r *CrossRule) Children() []Node {
	return ruleChildren(r.Event, r.Targets, r.Conditions)
}
func (*CrossRule) node()                  {}
func (r *CrossRule) Head() *Term          { return r.Event }
func (r *CrossRule) Body() []*Term        { return r.Targets }
func (r *CrossRule) Guards() []*Condition { return r.Conditions }

// RuleLiterals returns every predicate term a rule mentions: head, body and
// the literals of its guards. Comparisons are skipped.
func RuleLiterals(r Rule) []*Term {
	var out []*Term
	if h := r.Head(); h != nil {
		out = append(out, h)
	}
	for _, b := range r.Body() {
		if b != nil {
			out = append(out, b)
		}
	}
	for _, g := range r.Guards() {
		out = append(out, g.Literals()...)
	}
	return out
}

func ruleChildren(head *Term, body []*Term, conds []*Condition) []Node {
	out := termNodes(head)
	out = append(out, termNodes(body...)...)
	return append(out, conditionNodes(conds)...)
}
