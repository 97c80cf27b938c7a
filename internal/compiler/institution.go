package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
)

// Fields accepted in an institution body. Bridges accept these plus the
// bridge fields.
var institutionFields = map[string]bool{
	"types": true, "events": true, "fluents": true,
	"generates": true, "initiates": true, "terminates": true,
	"when": true, "initially": true,
}

var bridgeFields = map[string]bool{
	"source": true, "sink": true,
	"xgenerates": true, "xinitiates": true, "xterminates": true,
}

// CompileInstitution parses a CUE value into an Institution.
//
// The value should be the institution struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`institution: library: { ... }`)
//	in, err := CompileInstitution(v.LookupPath(cue.ParsePath("institution.library")))
func CompileInstitution(v cue.Value) (*ast.Institution, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkFields(v, institutionFields); err != nil {
		return nil, err
	}
	in := &ast.Institution{Position: position(v), Name: labelOf(v)}
	if err := compileSections(v, in); err != nil {
		return nil, err
	}
	return in, nil
}

// CompileBridge parses a CUE value into a Bridge.
func CompileBridge(v cue.Value) (*ast.Bridge, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	allowed := make(map[string]bool, len(institutionFields)+len(bridgeFields))
	for k := range institutionFields {
		allowed[k] = true
	}
	for k := range bridgeFields {
		allowed[k] = true
	}
	if err := checkFields(v, allowed); err != nil {
		return nil, err
	}

	b := &ast.Bridge{Institution: ast.Institution{Position: position(v), Name: labelOf(v)}}
	if err := compileSections(v, &b.Institution); err != nil {
		return nil, err
	}

	for _, dir := range []ast.LinkDirection{ast.Source, ast.Sink} {
		links, err := parseLinks(v, dir)
		if err != nil {
			return nil, err
		}
		b.Links = append(b.Links, links...)
	}

	for _, op := range []ast.CrossOp{ast.XGenerates, ast.XInitiates, ast.XTerminates} {
		rules, err := parseCrossRules(v, op)
		if err != nil {
			return nil, err
		}
		for _, r := range rules {
			b.Rules = append(b.Rules, r)
		}
	}
	return b, nil
}

func compileSections(v cue.Value, in *ast.Institution) error {
	var err error
	if in.Types, err = parseTypes(v); err != nil {
		return err
	}
	if in.Events, err = parseEvents(v); err != nil {
		return err
	}
	if in.Fluents, err = parseFluents(v); err != nil {
		return err
	}

	gens, err := parseGenerationRules(v)
	if err != nil {
		return err
	}
	for _, r := range gens {
		in.Rules = append(in.Rules, r)
	}
	for _, op := range []ast.InertialOp{ast.Initiates, ast.Terminates} {
		rules, err := parseInertialRules(v, op)
		if err != nil {
			return err
		}
		for _, r := range rules {
			in.Rules = append(in.Rules, r)
		}
	}
	whens, err := parseTransientRules(v)
	if err != nil {
		return err
	}
	for _, r := range whens {
		in.Rules = append(in.Rules, r)
	}

	in.Initials, err = parseInitials(v)
	return err
}

// checkFields rejects fields outside allowed, reporting them in sorted order.
func checkFields(v cue.Value, allowed map[string]bool) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	var unknown []string
	var first cue.Value
	for iter.Next() {
		if !allowed[iter.Selector().Unquoted()] {
			if len(unknown) == 0 {
				first = iter.Value()
			}
			unknown = append(unknown, iter.Selector().Unquoted())
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &CompileError{
		Field:   unknown[0],
		Message: fmt.Sprintf("unknown field(s) %v", unknown),
		Pos:     first.Pos(),
	}
}

// labelOf returns the last path selector of v, unquoted.
func labelOf(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return sels[len(sels)-1].Unquoted()
}

// stringList reads an optional list of strings at path. A single string is
// accepted as a one-element list.
func stringList(v cue.Value, path string) ([]string, []cue.Value, error) {
	field := v.LookupPath(cue.ParsePath(path))
	if !field.Exists() {
		return nil, nil, nil
	}
	return listOfStrings(field, path)
}

// listOfStrings reads field as a string or list of strings. path names the
// field in errors.
func listOfStrings(field cue.Value, path string) ([]string, []cue.Value, error) {
	if s, err := field.String(); err == nil {
		return []string{s}, []cue.Value{field}, nil
	}
	iter, err := field.List()
	if err != nil {
		return nil, nil, &CompileError{Field: path, Message: "must be a string or a list of strings", Pos: field.Pos(), Err: err}
	}
	var strs []string
	var vals []cue.Value
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, nil, &CompileError{Field: path, Message: "list elements must be strings", Pos: iter.Value().Pos(), Err: err}
		}
		strs = append(strs, s)
		vals = append(vals, iter.Value())
	}
	return strs, vals, nil
}

// terms parses an optional list of term strings at path.
func terms(v cue.Value, path string) ([]*ast.Term, error) {
	strs, vals, err := stringList(v, path)
	if err != nil {
		return nil, err
	}
	out := make([]*ast.Term, 0, len(strs))
	for i, s := range strs {
		t, err := ParseTerm(s, position(vals[i]))
		if err != nil {
			return nil, &CompileError{Field: path, Message: err.Error(), Pos: vals[i].Pos(), Err: err}
		}
		out = append(out, t)
	}
	return out, nil
}

// conditions parses the optional `conditions` list of a rule.
func conditions(v cue.Value) ([]*ast.Condition, error) {
	strs, vals, err := stringList(v, "conditions")
	if err != nil {
		return nil, err
	}
	out := make([]*ast.Condition, 0, len(strs))
	for i, s := range strs {
		c, err := ParseCondition(s, position(vals[i]))
		if err != nil {
			return nil, &CompileError{Field: "conditions", Message: err.Error(), Pos: vals[i].Pos(), Err: err}
		}
		out = append(out, c)
	}
	return out, nil
}

// requiredTerm parses the single term at path, which must exist.
func requiredTerm(v cue.Value, path string) (*ast.Term, error) {
	field := v.LookupPath(cue.ParsePath(path))
	if !field.Exists() {
		return nil, &CompileError{Field: path, Message: path + " is required", Pos: v.Pos()}
	}
	s, err := field.String()
	if err != nil {
		return nil, &CompileError{Field: path, Message: "must be a string", Pos: field.Pos(), Err: err}
	}
	t, err := ParseTerm(s, position(field))
	if err != nil {
		return nil, &CompileError{Field: path, Message: err.Error(), Pos: field.Pos(), Err: err}
	}
	return t, nil
}

// eachRule calls fn for every struct in the optional list at path.
func eachRule(v cue.Value, path string, fn func(cue.Value) error) error {
	field := v.LookupPath(cue.ParsePath(path))
	if !field.Exists() {
		return nil
	}
	iter, err := field.List()
	if err != nil {
		return &CompileError{Field: path, Message: "must be a list of rules", Pos: field.Pos(), Err: err}
	}
	for iter.Next() {
		if err := fn(iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func parseTypes(v cue.Value) ([]*ast.TypeDec, error) {
	names, vals, err := stringList(v, "types")
	if err != nil {
		return nil, err
	}
	out := make([]*ast.TypeDec, 0, len(names))
	for i, name := range names {
		head, err := ParseTerm(name, position(vals[i]))
		if err != nil {
			return nil, &CompileError{Field: "types", Message: err.Error(), Pos: vals[i].Pos(), Err: err}
		}
		if len(head.Args) > 0 {
			return nil, &CompileError{Field: "types", Message: fmt.Sprintf("type %q takes no arguments", name), Pos: vals[i].Pos()}
		}
		head.TermKind = ast.Constant
		out = append(out, &ast.TypeDec{Position: head.Position, Head: head})
	}
	return out, nil
}

var eventSections = []struct {
	path string
	kind ast.EventKind
}{
	{"events.exogenous", ast.Exogenous},
	{"events.inst", ast.Institutional},
	{"events.violation", ast.Violation},
}

func parseEvents(v cue.Value) ([]*ast.Event, error) {
	var out []*ast.Event
	for _, sec := range eventSections {
		heads, err := terms(v, sec.path)
		if err != nil {
			return nil, err
		}
		for _, h := range heads {
			out = append(out, &ast.Event{Position: h.Position, EventKind: sec.kind, Head: h})
		}
	}
	return out, nil
}

var fluentSections = []struct {
	path string
	kind ast.FluentKind
}{
	{"fluents.inertial", ast.Inertial},
	{"fluents.noninertial", ast.Transient},
	{"fluents.cross", ast.Cross},
}

func parseFluents(v cue.Value) ([]*ast.Fluent, error) {
	var out []*ast.Fluent
	for _, sec := range fluentSections {
		heads, err := terms(v, sec.path)
		if err != nil {
			return nil, err
		}
		for _, h := range heads {
			out = append(out, &ast.Fluent{Position: h.Position, FluentKind: sec.kind, Head: h})
		}
	}
	return out, nil
}

func parseGenerationRules(v cue.Value) ([]*ast.GenerationRule, error) {
	var out []*ast.GenerationRule
	err := eachRule(v, "generates", func(rv cue.Value) error {
		ev, err := requiredTerm(rv, "event")
		if err != nil {
			return err
		}
		body, err := terms(rv, "generates")
		if err != nil {
			return err
		}
		conds, err := conditions(rv)
		if err != nil {
			return err
		}
		out = append(out, &ast.GenerationRule{Position: position(rv), Event: ev, Generates: body, Conditions: conds})
		return nil
	})
	return out, err
}

func parseInertialRules(v cue.Value, op ast.InertialOp) ([]*ast.InertialRule, error) {
	var out []*ast.InertialRule
	err := eachRule(v, op.String(), func(rv cue.Value) error {
		ev, err := requiredTerm(rv, "event")
		if err != nil {
			return err
		}
		body, err := terms(rv, "fluents")
		if err != nil {
			return err
		}
		conds, err := conditions(rv)
		if err != nil {
			return err
		}
		out = append(out, &ast.InertialRule{Position: position(rv), Op: op, Event: ev, Fluents: body, Conditions: conds})
		return nil
	})
	return out, err
}

func parseTransientRules(v cue.Value) ([]*ast.TransientRule, error) {
	var out []*ast.TransientRule
	err := eachRule(v, "when", func(rv cue.Value) error {
		fl, err := requiredTerm(rv, "fluent")
		if err != nil {
			return err
		}
		conds, err := conditions(rv)
		if err != nil {
			return err
		}
		out = append(out, &ast.TransientRule{Position: position(rv), Fluent: fl, Conditions: conds})
		return nil
	})
	return out, err
}

func parseInitials(v cue.Value) ([]*ast.Initial, error) {
	var out []*ast.Initial
	err := eachRule(v, "initially", func(rv cue.Value) error {
		fluents, err := terms(rv, "fluents")
		if err != nil {
			return err
		}
		conds, err := conditions(rv)
		if err != nil {
			return err
		}
		out = append(out, &ast.Initial{Position: position(rv), Fluents: fluents, Conditions: conds})
		return nil
	})
	return out, err
}

func parseLinks(v cue.Value, dir ast.LinkDirection) ([]*ast.Link, error) {
	names, vals, err := stringList(v, dir.String())
	if err != nil {
		return nil, err
	}
	out := make([]*ast.Link, 0, len(names))
	for i, name := range names {
		out = append(out, &ast.Link{Position: position(vals[i]), Direction: dir, Institution: name})
	}
	return out, nil
}

func parseCrossRules(v cue.Value, op ast.CrossOp) ([]*ast.CrossRule, error) {
	var out []*ast.CrossRule
	err := eachRule(v, op.String(), func(rv cue.Value) error {
		ev, err := requiredTerm(rv, "event")
		if err != nil {
			return err
		}
		targets, err := terms(rv, "targets")
		if err != nil {
			return err
		}
		conds, err := conditions(rv)
		if err != nil {
			return err
		}
		out = append(out, &ast.CrossRule{Position: position(rv), Op: op, Event: ev, Targets: targets, Conditions: conds})
		return nil
	})
	return out, err
}
