package checks

import (
	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// BridgeStructure warns about bridges whose links name institutions that are
// not part of the checked forest, and about bridges with no links at all.
type BridgeStructure struct {
	check.Base
	institutions map[string]bool
	bridges      []*ast.Bridge
}

// NewBridgeStructure returns a BridgeStructure check.
func NewBridgeStructure() *BridgeStructure {
	c := &BridgeStructure{Base: check.NewBase("bridge-structure")}
	c.Clear()
	return c
}

func (c *BridgeStructure) Clear() {
	c.Base.Clear()
	c.institutions = make(map[string]bool)
	c.bridges = nil
}

func (c *BridgeStructure) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindInstitution: {func(_ *visitor.Visitor, n ast.Node) error {
			if n.Kind() == ast.KindInstitution {
				c.institutions[n.(*ast.Institution).Name] = true
			}
			return nil
		}},
		ast.KindBridge: {func(_ *visitor.Visitor, n ast.Node) error {
			c.bridges = append(c.bridges, n.(*ast.Bridge))
			return nil
		}},
	}
}

func (c *BridgeStructure) Finalize() error {
	for _, b := range c.bridges {
		if len(b.Links) == 0 {
			c.Emit(check.SeverityWarning, b, "Bridge declares no source or sink")
			continue
		}
		for _, l := range b.Links {
			if c.institutions[l.Institution] {
				continue
			}
			msg := "Bridge Source declared but not defined"
			if l.Direction == ast.Sink {
				msg = "Bridge Sink declared but not defined"
			}
			c.EmitData(check.SeverityWarning, l, map[string]any{"bridge": b.Name, "institution": l.Institution}, "%s", msg)
		}
	}
	return nil
}

// crossUse is a cross rule together with the bridge that owns it.
type crossUse struct {
	rule   *ast.CrossRule
	bridge *ast.Bridge
}

func recordCross(uses *[]crossUse) visitor.Action {
	return func(v *visitor.Visitor, n ast.Node) error {
		b, _ := enclosingBridge(v)
		*uses = append(*uses, crossUse{rule: n.(*ast.CrossRule), bridge: b})
		return nil
	}
}

// linked returns the bridge's link targets in direction d. A cross rule found
// outside a bridge has none.
func (u crossUse) linked(d ast.LinkDirection) []string {
	if u.bridge == nil {
		return nil
	}
	return u.bridge.Targets(d)
}

// BridgeEvents checks that cross rules only mention declared events:
// xgenerates must connect institutional events of a source and a sink, and
// xinitiates/xterminates must be triggered by an event of a source.
type BridgeEvents struct {
	check.Base
	events map[sigKey]ast.EventKind
	uses   []crossUse
}

// NewBridgeEvents returns a BridgeEvents check.
func NewBridgeEvents() *BridgeEvents {
	c := &BridgeEvents{Base: check.NewBase("bridge-events")}
	c.Clear()
	return c
}

func (c *BridgeEvents) Clear() {
	c.Base.Clear()
	c.events = make(map[sigKey]ast.EventKind)
	c.uses = nil
}

func (c *BridgeEvents) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindEvent: {func(v *visitor.Visitor, n ast.Node) error {
			ev := n.(*ast.Event)
			c.events[sigKey{owner: owner(v), sig: ev.Signature()}] = ev.EventKind
			return nil
		}},
		ast.KindCrossRule: {recordCross(&c.uses)},
	}
}

// declaredIn reports whether sig is an event in any of owners, optionally
// requiring it to be institutional.
func (c *BridgeEvents) declaredIn(owners []string, sig ast.Signature, institutional bool) bool {
	for _, o := range owners {
		kind, ok := c.events[sigKey{owner: o, sig: sig}]
		if ok && (!institutional || kind == ast.Institutional) {
			return true
		}
	}
	return false
}

func (c *BridgeEvents) Finalize() error {
	for _, u := range c.uses {
		sources, sinks := u.linked(ast.Source), u.linked(ast.Sink)
		head := u.rule.Event

		if u.rule.Op != ast.XGenerates {
			if head != nil && !c.declaredIn(sources, head.Signature(), false) {
				c.EmitData(check.SeverityError, head, map[string]any{"signature": head.Signature().String(), "role": "source"},
					"Undeclared event used in bridge")
			}
			continue
		}

		if head != nil && !c.declaredIn(sources, head.Signature(), true) {
			c.EmitData(check.SeverityError, head, map[string]any{"signature": head.Signature().String(), "role": "source"},
				"Undeclared institutional event used in bridge")
		}
		for _, target := range u.rule.Targets {
			if !c.declaredIn(sinks, target.Signature(), true) {
				c.EmitData(check.SeverityError, target, map[string]any{"signature": target.Signature().String(), "role": "sink"},
					"Undeclared institutional event used in bridge")
			}
		}
	}
	return nil
}

// BridgeFluents checks that xinitiates/xterminates only target fluents
// declared as cross fluents in a sink institution.
type BridgeFluents struct {
	check.Base
	fluents map[sigKey]ast.FluentKind
	uses    []crossUse
}

// NewBridgeFluents returns a BridgeFluents check.
func NewBridgeFluents() *BridgeFluents {
	c := &BridgeFluents{Base: check.NewBase("bridge-fluents")}
	c.Clear()
	return c
}

func (c *BridgeFluents) Clear() {
	c.Base.Clear()
	c.fluents = make(map[sigKey]ast.FluentKind)
	c.uses = nil
}

func (c *BridgeFluents) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindFluent: {func(v *visitor.Visitor, n ast.Node) error {
			fl := n.(*ast.Fluent)
			c.fluents[sigKey{owner: owner(v), sig: fl.Signature()}] = fl.FluentKind
			return nil
		}},
		ast.KindCrossRule: {recordCross(&c.uses)},
	}
}

func (c *BridgeFluents) Finalize() error {
	for _, u := range c.uses {
		if u.rule.Op == ast.XGenerates {
			continue
		}
		sinks := u.linked(ast.Sink)
		for _, target := range u.rule.Targets {
			data := map[string]any{"signature": target.Signature().String(), "op": u.rule.Op.String()}
			found := false
			for _, s := range sinks {
				kind, ok := c.fluents[sigKey{owner: s, sig: target.Signature()}]
				if !ok {
					continue
				}
				if kind == ast.Cross {
					found = true
					break
				}
				data["declared_kind"] = kind.String()
			}
			if !found {
				c.EmitData(check.SeverityError, target, data, "Undeclared fluent used in bridge")
			}
		}
	}
	return nil
}
