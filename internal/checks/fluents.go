package checks

import (
	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// Fluents warns about inertial fluents that nothing initiates or terminates,
// and transient fluents that no `when` rule defines. Cross fluents are
// declared in the sink institutions of a bridge, where BridgeFluents looks
// them up; this check ignores them.
type Fluents struct {
	check.Base
	inertial   *declared[*ast.Fluent]
	transient  *declared[*ast.Fluent]
	initiated  usedSet
	terminated usedSet
	defined    usedSet
}

// NewFluents returns a Fluents check.
func NewFluents() *Fluents {
	c := &Fluents{Base: check.NewBase("fluents")}
	c.Clear()
	return c
}

func (c *Fluents) Clear() {
	c.Base.Clear()
	c.inertial = newDeclared[*ast.Fluent]()
	c.transient = newDeclared[*ast.Fluent]()
	c.initiated = usedSet{}
	c.terminated = usedSet{}
	c.defined = usedSet{}
}

func (c *Fluents) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindFluent:        {c.fluent},
		ast.KindInertialRule:  {c.inertialRule},
		ast.KindTransientRule: {c.transientRule},
		ast.KindCrossRule:     {c.crossRule},
	}
}

func (c *Fluents) fluent(v *visitor.Visitor, n ast.Node) error {
	fl := n.(*ast.Fluent)
	k := sigKey{owner: owner(v), sig: fl.Signature()}
	switch fl.FluentKind {
	case ast.Inertial:
		c.inertial.add(k, fl)
	case ast.Transient:
		c.transient.add(k, fl)
	}
	return nil
}

func (c *Fluents) inertialRule(v *visitor.Visitor, n ast.Node) error {
	r := n.(*ast.InertialRule)
	set := c.initiated
	if r.Op == ast.Terminates {
		set = c.terminated
	}
	o := owner(v)
	for _, f := range r.Fluents {
		set.mark(o, f.Signature())
	}
	return nil
}

func (c *Fluents) transientRule(v *visitor.Visitor, n ast.Node) error {
	r := n.(*ast.TransientRule)
	if r.Fluent != nil {
		c.defined.mark(owner(v), r.Fluent.Signature())
	}
	return nil
}

// crossRule discharges sink fluents affected through a bridge.
func (c *Fluents) crossRule(v *visitor.Visitor, n ast.Node) error {
	r := n.(*ast.CrossRule)
	var set usedSet
	switch r.Op {
	case ast.XInitiates:
		set = c.initiated
	case ast.XTerminates:
		set = c.terminated
	default:
		return nil
	}
	b, ok := enclosingBridge(v)
	if !ok {
		return nil
	}
	for _, sink := range b.Targets(ast.Sink) {
		for _, t := range r.Targets {
			set.mark(sink, t.Signature())
		}
	}
	return nil
}

func (c *Fluents) Finalize() error {
	for _, k := range c.inertial.order {
		fl, _ := c.inertial.get(k)
		data := map[string]any{"institution": k.owner, "signature": k.sig.String()}
		if !c.initiated[k] {
			c.EmitData(check.SeverityWarning, fl, data, "Non-Initiated Inertial Fluent")
		}
		if !c.terminated[k] {
			c.EmitData(check.SeverityWarning, fl, data, "Non-Terminated Inertial Fluent")
		}
	}
	for _, k := range c.transient.order {
		if !c.defined[k] {
			fl, _ := c.transient.get(k)
			c.EmitData(check.SeverityWarning, fl, map[string]any{"institution": k.owner, "signature": k.sig.String()},
				"Unmentioned Transient Fluent")
		}
	}
	return nil
}
