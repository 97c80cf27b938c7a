package checks

import (
	"fmt"
	"strings"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// Occurs rejects transient fluents that depend on themselves. Each `when`
// rule adds an edge from its head fluent to every literal of its conditions;
// any cycle in the resulting graph is fatal.
type Occurs struct {
	check.Base
	graphs map[string]dependencyGraph
	// heads maps owner -> head signature -> first rule defining it.
	heads map[string]map[string]*ast.TransientRule
}

// NewOccurs returns an Occurs check.
func NewOccurs() *Occurs {
	c := &Occurs{Base: check.NewBase("occurs")}
	c.Clear()
	return c
}

func (c *Occurs) Clear() {
	c.Base.Clear()
	c.graphs = make(map[string]dependencyGraph)
	c.heads = make(map[string]map[string]*ast.TransientRule)
}

func (c *Occurs) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindTransientRule: {c.transientRule},
	}
}

func (c *Occurs) transientRule(v *visitor.Visitor, n ast.Node) error {
	r := n.(*ast.TransientRule)
	if r.Fluent == nil {
		return nil
	}
	o := owner(v)
	g, ok := c.graphs[o]
	if !ok {
		g = make(dependencyGraph)
		c.graphs[o] = g
		c.heads[o] = make(map[string]*ast.TransientRule)
	}

	head := r.Fluent.Signature().String()
	if _, seen := c.heads[o][head]; !seen {
		c.heads[o][head] = r
	}
	if _, ok := g[head]; !ok {
		g[head] = nil
	}
	for _, cond := range r.Conditions {
		for _, lit := range cond.Literals() {
			g.addEdge(head, lit.Signature().String())
		}
	}
	return nil
}

func (c *Occurs) Finalize() error {
	for _, o := range sortedKeys(c.graphs) {
		found := cycles(c.graphs[o])
		if len(found) == 0 {
			continue
		}
		path := found[0]
		var node ast.Node
		if r, ok := c.heads[o][path[0]]; ok {
			node = r
		}
		msg := fmt.Sprintf("cyclic transient fluent dependency: %s", strings.Join(path, " → "))
		if o != "" {
			msg = fmt.Sprintf("%s in %s", msg, o)
		}
		return &check.FatalError{
			Checker: c.Name(),
			Message: msg,
			Node:    node,
			Path:    path,
		}
	}
	return nil
}
