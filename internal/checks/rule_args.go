package checks

import (
	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// RuleArgs checks rule terms against their declarations: the number of
// arguments must match, and one variable may not stand for two different
// declared types within a rule. Transient rules are not checked.
type RuleArgs struct {
	check.Base
	// decls maps owner -> term name -> declarations in order.
	decls map[string]map[string][]*ast.Term
	rules []ruleSite
}

type ruleSite struct {
	rule ast.Rule
	// scope lists the institutions whose declarations apply, own first.
	scope []string
}

// NewRuleArgs returns a RuleArgs check.
func NewRuleArgs() *RuleArgs {
	c := &RuleArgs{Base: check.NewBase("rule-args")}
	c.Clear()
	return c
}

func (c *RuleArgs) Clear() {
	c.Base.Clear()
	c.decls = make(map[string]map[string][]*ast.Term)
	c.rules = nil
}

func (c *RuleArgs) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindEvent: {func(v *visitor.Visitor, n ast.Node) error {
			c.declare(owner(v), n.(*ast.Event).Head)
			return nil
		}},
		ast.KindFluent: {func(v *visitor.Visitor, n ast.Node) error {
			c.declare(owner(v), n.(*ast.Fluent).Head)
			return nil
		}},
		ast.KindRule: {c.rule},
	}
}

func (c *RuleArgs) declare(o string, head *ast.Term) {
	if head == nil {
		return
	}
	byName, ok := c.decls[o]
	if !ok {
		byName = make(map[string][]*ast.Term)
		c.decls[o] = byName
	}
	byName[head.Name] = append(byName[head.Name], head)
}

func (c *RuleArgs) rule(v *visitor.Visitor, n ast.Node) error {
	if n.Kind() == ast.KindTransientRule {
		return nil
	}
	site := ruleSite{rule: n.(ast.Rule), scope: []string{owner(v)}}
	if b, ok := enclosingBridge(v); ok {
		site.scope = append(site.scope, b.Targets(ast.Source)...)
		site.scope = append(site.scope, b.Targets(ast.Sink)...)
	}
	c.rules = append(c.rules, site)
	return nil
}

// resolve finds the declaration for t. When no declaration has t's arity the
// first declaration of that name is returned with exact set to false.
func (c *RuleArgs) resolve(scope []string, t *ast.Term) (decl *ast.Term, exact bool) {
	for _, o := range scope {
		for _, d := range c.decls[o][t.Name] {
			if len(d.Args) == len(t.Args) {
				return d, true
			}
			if decl == nil {
				decl = d
			}
		}
	}
	return decl, false
}

func (c *RuleArgs) Finalize() error {
	for _, site := range c.rules {
		bound := make(map[string]string)
		reported := make(map[string]bool)
		for _, t := range ast.RuleLiterals(site.rule) {
			if t.IsVariable() || t.IsOperator() {
				continue
			}
			decl, exact := c.resolve(site.scope, t)
			if decl == nil {
				continue
			}
			if !exact {
				c.EmitData(check.SeverityError, t, map[string]any{
					"term":     t.String(),
					"declared": decl.String(),
					"expected": len(decl.Args),
					"actual":   len(t.Args),
				}, "Argument count mismatch")
				continue
			}
			for i, arg := range t.Args {
				if !arg.IsVariable() || arg.Name == "_" {
					continue
				}
				typ := decl.Args[i].Name
				prev, seen := bound[arg.Name]
				if !seen {
					bound[arg.Name] = typ
					continue
				}
				if prev != typ && !reported[arg.Name] {
					reported[arg.Name] = true
					c.EmitData(check.SeverityError, arg, map[string]any{
						"variable": arg.Name,
						"types":    []string{prev, typ},
					}, "Variable type collision")
				}
			}
		}
	}
	return nil
}
