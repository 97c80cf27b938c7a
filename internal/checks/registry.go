package checks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jgrey4296/instal-stable-sub001/internal/check"
)

// Entry describes a registered check.
type Entry struct {
	Name        string
	Description string
	New         func() check.Checker
}

var registry = []Entry{
	{"bridge-structure", "bridge sources and sinks name defined institutions",
		func() check.Checker { return NewBridgeStructure() }},
	{"bridge-events", "xgenerates connects institutional events of a source and a sink",
		func() check.Checker { return NewBridgeEvents() }},
	{"bridge-fluents", "xinitiates/xterminates target cross fluents of a sink",
		func() check.Checker { return NewBridgeFluents() }},
	{"events", "exogenous events trigger rules and institutional events are generated",
		func() check.Checker { return NewEvents() }},
	{"fluents", "inertial fluents are initiated and terminated, transient fluents defined",
		func() check.Checker { return NewFluents() }},
	{"name-duplication", "signatures are declared once per institution",
		func() check.Checker { return NewNameDuplication() }},
	{"term-declaration", "every used term is declared with the same arity",
		func() check.Checker { return NewTermDeclaration() }},
	{"institution-structure", "institutions declare every section",
		func() check.Checker { return NewInstitutionStructure() }},
	{"query", "queries observe declared exogenous events",
		func() check.Checker { return NewQuery() }},
	{"occurs", "transient fluents do not depend on themselves",
		func() check.Checker { return NewOccurs() }},
	{"declaration-types", "collects variable bindings per signature",
		func() check.Checker { return NewDeclarationTypes() }},
	{"rule-args", "rule terms match declared argument counts and types",
		func() check.Checker { return NewRuleArgs() }},
}

// All returns the registered checks in their default run order.
func All() []Entry {
	return append([]Entry(nil), registry...)
}

// Names returns the registered check names in run order.
func Names() []string {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.Name
	}
	return names
}

// Lookup finds a registered check by name.
func Lookup(name string) (Entry, bool) {
	for _, e := range registry {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Select builds fresh checkers in run order. An empty enable list means every
// check; names in disable are then removed. Unknown names are an error.
func Select(enable, disable []string) ([]check.Checker, error) {
	var unknown []string
	for _, name := range append(append([]string(nil), enable...), disable...) {
		if _, ok := Lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown check(s): %s", strings.Join(unknown, ", "))
	}

	on := make(map[string]bool)
	for _, name := range enable {
		on[name] = true
	}
	off := make(map[string]bool)
	for _, name := range disable {
		off[name] = true
	}

	var out []check.Checker
	for _, e := range registry {
		if len(enable) > 0 && !on[e.Name] {
			continue
		}
		if off[e.Name] {
			continue
		}
		out = append(out, e.New())
	}
	return out, nil
}
