package checks

import (
	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// NameDuplication reports signatures declared twice within an institution,
// either twice in the same universe (events, fluents, types) or once in each
// of two universes.
type NameDuplication struct {
	check.Base
	events  *declared[ast.Node]
	fluents *declared[ast.Node]
	types   *declared[ast.Node]
}

// NewNameDuplication returns a NameDuplication check.
func NewNameDuplication() *NameDuplication {
	c := &NameDuplication{Base: check.NewBase("name-duplication")}
	c.Clear()
	return c
}

func (c *NameDuplication) Clear() {
	c.Base.Clear()
	c.events = newDeclared[ast.Node]()
	c.fluents = newDeclared[ast.Node]()
	c.types = newDeclared[ast.Node]()
}

func (c *NameDuplication) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindEvent: {func(v *visitor.Visitor, n ast.Node) error {
			ev := n.(*ast.Event)
			c.declare(c.events, owner(v), ev, ev.Head, "Duplicate Event Declaration")
			return nil
		}},
		ast.KindFluent: {func(v *visitor.Visitor, n ast.Node) error {
			fl := n.(*ast.Fluent)
			c.declare(c.fluents, owner(v), fl, fl.Head, "Duplicate Fluent Declaration")
			return nil
		}},
		ast.KindTypeDec: {func(v *visitor.Visitor, n ast.Node) error {
			td := n.(*ast.TypeDec)
			c.declare(c.types, owner(v), td, td.Head, "Duplicate TypeDec Declaration")
			return nil
		}},
	}
}

func (c *NameDuplication) declare(universe *declared[ast.Node], o string, n ast.Node, head *ast.Term, msg string) {
	if head == nil {
		return
	}
	k := sigKey{owner: o, sig: head.Signature()}
	if universe.add(k, n) {
		return
	}
	first, _ := universe.get(k)
	c.EmitData(check.SeverityError, n, map[string]any{
		"institution": o,
		"signature":   k.sig.String(),
		"first":       first.Pos().String(),
		"identical":   ast.Equivalent(headOf(first), head),
	}, "%s", msg)
}

func (c *NameDuplication) Finalize() error {
	pairs := []struct {
		a, b         *declared[ast.Node]
		aName, bName string
	}{
		{c.events, c.fluents, "event", "fluent"},
		{c.events, c.types, "event", "type"},
		{c.fluents, c.types, "fluent", "type"},
	}
	for _, p := range pairs {
		for _, k := range p.a.order {
			other, ok := p.b.get(k)
			if !ok {
				continue
			}
			first, _ := p.a.get(k)
			c.EmitData(check.SeverityError, other, map[string]any{
				"institution": k.owner,
				"signature":   k.sig.String(),
				"first":       first.Pos().String(),
				"universes":   []string{p.aName, p.bName},
			}, "Declaration Conflict")
		}
	}
	return nil
}

// headOf returns the declared head term of a declaration node.
func headOf(n ast.Node) *ast.Term {
	switch d := n.(type) {
	case *ast.Event:
		return d.Head
	case *ast.Fluent:
		return d.Head
	case *ast.TypeDec:
		return d.Head
	default:
		return nil
	}
}
