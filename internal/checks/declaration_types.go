package checks

import (
	"sort"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// DeclarationTypes gathers, per signature, the variables bound at each use
// site and the declared type names. It reports nothing; the collected data is
// exposed for callers that want to build type consistency rules on top.
type DeclarationTypes struct {
	check.Base
	variables map[ast.Signature]map[string]bool
	types     map[ast.Signature]bool
}

// NewDeclarationTypes returns a DeclarationTypes check.
func NewDeclarationTypes() *DeclarationTypes {
	c := &DeclarationTypes{Base: check.NewBase("declaration-types")}
	c.Clear()
	return c
}

func (c *DeclarationTypes) Clear() {
	c.Base.Clear()
	c.variables = make(map[ast.Signature]map[string]bool)
	c.types = make(map[ast.Signature]bool)
}

func (c *DeclarationTypes) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindTypeDec: {func(_ *visitor.Visitor, n ast.Node) error {
			c.types[n.(*ast.TypeDec).Signature()] = true
			return nil
		}},
		ast.KindRule: {func(_ *visitor.Visitor, n ast.Node) error {
			for _, t := range ast.RuleLiterals(n.(ast.Rule)) {
				c.collect(t)
			}
			return nil
		}},
	}
}

func (c *DeclarationTypes) collect(t *ast.Term) {
	if t == nil || t.IsVariable() || t.IsOperator() {
		return
	}
	sig := t.Signature()
	vars, ok := c.variables[sig]
	if !ok {
		vars = make(map[string]bool)
		c.variables[sig] = vars
	}
	for _, name := range t.Variables() {
		vars[name] = true
	}
}

// Variables returns the sorted variable names bound by uses of sig.
func (c *DeclarationTypes) Variables(sig ast.Signature) []string {
	return sortedKeys(c.variables[sig])
}

// Signatures returns every used signature, sorted by name then arity.
func (c *DeclarationTypes) Signatures() []ast.Signature {
	out := make([]ast.Signature, 0, len(c.variables))
	for sig := range c.variables {
		out = append(out, sig)
	}
	sortSignatures(out)
	return out
}

// Types returns the declared type signatures, sorted.
func (c *DeclarationTypes) Types() []ast.Signature {
	out := make([]ast.Signature, 0, len(c.types))
	for sig := range c.types {
		out = append(out, sig)
	}
	sortSignatures(out)
	return out
}

func sortSignatures(sigs []ast.Signature) {
	sort.Slice(sigs, func(i, j int) bool {
		if sigs[i].Name != sigs[j].Name {
			return sigs[i].Name < sigs[j].Name
		}
		return sigs[i].Arity < sigs[j].Arity
	})
}
