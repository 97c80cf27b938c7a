package checks

import (
	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// Events warns about exogenous events that never trigger a generation rule
// and institutional events that no rule generates. An exogenous event
// declared in a bridge is reported and otherwise ignored.
type Events struct {
	check.Base
	exogenous     *declared[*ast.Event]
	institutional *declared[*ast.Event]
	triggered     usedSet
	generated     usedSet
}

// NewEvents returns an Events check.
func NewEvents() *Events {
	c := &Events{Base: check.NewBase("events")}
	c.Clear()
	return c
}

func (c *Events) Clear() {
	c.Base.Clear()
	c.exogenous = newDeclared[*ast.Event]()
	c.institutional = newDeclared[*ast.Event]()
	c.triggered = usedSet{}
	c.generated = usedSet{}
}

func (c *Events) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindEvent:          {c.event},
		ast.KindGenerationRule: {c.generationRule},
		ast.KindCrossRule:      {c.crossRule},
	}
}

func (c *Events) event(v *visitor.Visitor, n ast.Node) error {
	ev := n.(*ast.Event)
	o := owner(v)
	k := sigKey{owner: o, sig: ev.Signature()}
	switch ev.EventKind {
	case ast.Exogenous:
		if _, inBridge := enclosingBridge(v); inBridge {
			c.EmitData(check.SeverityWarning, ev, map[string]any{"bridge": o, "signature": ev.Signature().String()},
				"Bridge declares an exogenous event")
			return nil
		}
		c.exogenous.add(k, ev)
	case ast.Institutional:
		c.institutional.add(k, ev)
	}
	return nil
}

func (c *Events) generationRule(v *visitor.Visitor, n ast.Node) error {
	r := n.(*ast.GenerationRule)
	o := owner(v)
	if r.Event != nil {
		c.triggered.mark(o, r.Event.Signature())
	}
	for _, g := range r.Generates {
		c.generated.mark(o, g.Signature())
	}
	return nil
}

// crossRule discharges institutional events generated into sink institutions.
func (c *Events) crossRule(v *visitor.Visitor, n ast.Node) error {
	r := n.(*ast.CrossRule)
	if r.Op != ast.XGenerates {
		return nil
	}
	b, ok := enclosingBridge(v)
	if !ok {
		return nil
	}
	for _, sink := range b.Targets(ast.Sink) {
		for _, t := range r.Targets {
			c.generated.mark(sink, t.Signature())
		}
	}
	return nil
}

func (c *Events) Finalize() error {
	for _, k := range c.exogenous.order {
		if !c.triggered[k] {
			ev, _ := c.exogenous.get(k)
			c.EmitData(check.SeverityWarning, ev, map[string]any{"institution": k.owner, "signature": k.sig.String()},
				"Unused External Event")
		}
	}
	for _, k := range c.institutional.order {
		if !c.generated[k] {
			ev, _ := c.institutional.get(k)
			c.EmitData(check.SeverityWarning, ev, map[string]any{"institution": k.owner, "signature": k.sig.String()},
				"Institutional Event is not generated")
		}
	}
	return nil
}
