package checks

import (
	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// Query rejects observations of events that no institution declares as
// exogenous.
type Query struct {
	check.Base
	exogenous map[ast.Signature]bool
	queries   []*ast.Query
}

// NewQuery returns a Query check.
func NewQuery() *Query {
	c := &Query{Base: check.NewBase("query")}
	c.Clear()
	return c
}

func (c *Query) Clear() {
	c.Base.Clear()
	c.exogenous = make(map[ast.Signature]bool)
	c.queries = nil
}

func (c *Query) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindEvent: {func(_ *visitor.Visitor, n ast.Node) error {
			if ev := n.(*ast.Event); ev.EventKind == ast.Exogenous {
				c.exogenous[ev.Signature()] = true
			}
			return nil
		}},
		ast.KindQuery: {func(_ *visitor.Visitor, n ast.Node) error {
			c.queries = append(c.queries, n.(*ast.Query))
			return nil
		}},
	}
}

func (c *Query) Finalize() error {
	for _, q := range c.queries {
		if q.Head == nil || c.exogenous[q.Head.Signature()] {
			continue
		}
		data := map[string]any{"signature": q.Head.Signature().String()}
		if q.Step >= 0 {
			data["step"] = q.Step
		}
		c.EmitData(check.SeverityError, q, data, "Undeclared Event used in Query")
	}
	return nil
}
