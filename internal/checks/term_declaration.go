package checks

import (
	"sort"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// TermDeclaration matches every term used in a rule, initial fact or query
// against the declared events and fluents of the whole forest. A use whose
// arity differs from every declaration of that name counts as undeclared.
type TermDeclaration struct {
	check.Base
	decls   *declared[*ast.Term]
	arities map[string][]int
	used    usedSet
	uses    []*ast.Term
}

// NewTermDeclaration returns a TermDeclaration check.
func NewTermDeclaration() *TermDeclaration {
	c := &TermDeclaration{Base: check.NewBase("term-declaration")}
	c.Clear()
	return c
}

func (c *TermDeclaration) Clear() {
	c.Base.Clear()
	c.decls = newDeclared[*ast.Term]()
	c.arities = make(map[string][]int)
	c.used = usedSet{}
	c.uses = nil
}

func (c *TermDeclaration) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindEvent: {func(_ *visitor.Visitor, n ast.Node) error {
			c.declare(n.(*ast.Event).Head)
			return nil
		}},
		ast.KindFluent: {func(_ *visitor.Visitor, n ast.Node) error {
			c.declare(n.(*ast.Fluent).Head)
			return nil
		}},
		ast.KindRule: {func(_ *visitor.Visitor, n ast.Node) error {
			c.use(ast.RuleLiterals(n.(ast.Rule))...)
			return nil
		}},
		ast.KindInitial: {func(_ *visitor.Visitor, n ast.Node) error {
			in := n.(*ast.Initial)
			c.use(in.Fluents...)
			for _, cond := range in.Conditions {
				c.use(cond.Literals()...)
			}
			return nil
		}},
		ast.KindQuery: {func(_ *visitor.Visitor, n ast.Node) error {
			c.use(n.(*ast.Query).Head)
			return nil
		}},
	}
}

func (c *TermDeclaration) declare(head *ast.Term) {
	if head == nil {
		return
	}
	sig := head.Signature()
	if c.decls.add(sigKey{sig: sig}, head) {
		c.arities[sig.Name] = append(c.arities[sig.Name], sig.Arity)
	}
}

func (c *TermDeclaration) use(terms ...*ast.Term) {
	for _, t := range terms {
		if t == nil || t.IsVariable() || t.IsOperator() {
			continue
		}
		c.uses = append(c.uses, t)
	}
}

func (c *TermDeclaration) Finalize() error {
	for _, t := range c.uses {
		sig := t.Signature()
		if _, ok := c.decls.get(sigKey{sig: sig}); ok {
			c.used.mark("", sig)
			continue
		}
		arities := append([]int(nil), c.arities[sig.Name]...)
		sort.Ints(arities)
		c.EmitData(check.SeverityError, t, map[string]any{
			"signature":        sig.String(),
			"declared_arities": arities,
		}, "Term used without declaration")
	}
	for _, k := range c.decls.order {
		if !c.used[k] {
			head, _ := c.decls.get(k)
			c.EmitData(check.SeverityWarning, head, map[string]any{"signature": k.sig.String()},
				"Term declared without use")
		}
	}
	return nil
}
