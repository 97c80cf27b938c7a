package checks

import (
	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// InstitutionStructure warns once for each empty section of an institution.
// Bridges are not institutions for this purpose.
type InstitutionStructure struct {
	check.Base
}

// NewInstitutionStructure returns an InstitutionStructure check.
func NewInstitutionStructure() *InstitutionStructure {
	return &InstitutionStructure{Base: check.NewBase("institution-structure")}
}

func (c *InstitutionStructure) Actions() visitor.Actions {
	return visitor.Actions{
		ast.KindInstitution: {c.institution},
	}
}

func (c *InstitutionStructure) institution(_ *visitor.Visitor, n ast.Node) error {
	if n.Kind() != ast.KindInstitution {
		return nil
	}
	in := n.(*ast.Institution)
	data := map[string]any{"institution": in.Name}
	if len(in.Fluents) == 0 {
		c.EmitData(check.SeverityWarning, in, data, "Institution has no fluents")
	}
	if len(in.Events) == 0 {
		c.EmitData(check.SeverityWarning, in, data, "Institution has no events")
	}
	if len(in.Types) == 0 {
		c.EmitData(check.SeverityWarning, in, data, "Institution has no types")
	}
	if len(in.Rules) == 0 {
		c.EmitData(check.SeverityWarning, in, data, "Institution has no rules")
	}
	if len(in.Initials) == 0 {
		c.EmitData(check.SeverityWarning, in, data, "Institution has no initial facts")
	}
	return nil
}
