// Package compiler builds syntax trees from CUE specifications.
//
// A specification is a CUE value with up to four top-level fields:
//
//	institution: library: {
//		types: ["Person", "Book"]
//		events: exogenous: ["borrow(Person, Book)"]
//		events: inst: ["lend(Person, Book)"]
//		fluents: inertial: ["onloan(Book)"]
//		generates: [{event: "borrow(P, B)", generates: ["lend(P, B)"], conditions: ["not onloan(B)"]}]
//		initiates: [{event: "lend(P, B)", fluents: ["onloan(B)"]}]
//	}
//	bridge: lib2shop: {source: "library", sink: "shop", xgenerates: [...]}
//	query: ["borrow(alice, dune)"]
//	domain: Person: ["alice", "bob"]
//
// Compilation stops at the first malformed element. Well-formedness beyond
// shape (duplicates, dangling references, cycles) is the job of the checks.
package compiler

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
)

var topLevelFields = map[string]bool{
	"institution": true,
	"bridge":      true,
	"query":       true,
	"domain":      true,
}

// Compile builds a forest from a specification value. Institutions come
// first, then bridges, queries and the domain, each in declaration order.
func Compile(v cue.Value) ([]ast.Node, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkFields(v, topLevelFields); err != nil {
		return nil, err
	}

	var forest []ast.Node

	err := eachField(v, "institution", func(fv cue.Value) error {
		in, err := CompileInstitution(fv)
		if err != nil {
			return err
		}
		forest = append(forest, in)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "bridge", func(fv cue.Value) error {
		b, err := CompileBridge(fv)
		if err != nil {
			return err
		}
		forest = append(forest, b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	queries, err := CompileQueries(v.LookupPath(cue.ParsePath("query")))
	if err != nil {
		return nil, err
	}
	for _, q := range queries {
		forest = append(forest, q)
	}

	domain, err := CompileDomain(v.LookupPath(cue.ParsePath("domain")))
	if err != nil {
		return nil, err
	}
	if domain != nil {
		forest = append(forest, domain)
	}

	return forest, nil
}

// CompileString compiles CUE source text. filename is used for positions.
func CompileString(src, filename string) ([]ast.Node, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	return Compile(v)
}

// CompileQueries parses a list of observations. Each element is either a term
// string or a struct {event: string, step?: int}.
func CompileQueries(v cue.Value) ([]*ast.Query, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: "query", Message: "must be a list of observations", Pos: v.Pos(), Err: err}
	}
	var out []*ast.Query
	for iter.Next() {
		ov := iter.Value()
		q := &ast.Query{Position: position(ov), Step: -1}
		if s, err := ov.String(); err == nil {
			if q.Head, err = ParseTerm(s, position(ov)); err != nil {
				return nil, &CompileError{Field: "query", Message: err.Error(), Pos: ov.Pos(), Err: err}
			}
			out = append(out, q)
			continue
		}
		if q.Head, err = requiredTerm(ov, "event"); err != nil {
			return nil, err
		}
		if step := ov.LookupPath(cue.ParsePath("step")); step.Exists() {
			n, err := step.Int64()
			if err != nil {
				return nil, &CompileError{Field: "step", Message: "must be an integer", Pos: step.Pos(), Err: err}
			}
			q.Step = int(n)
		}
		out = append(out, q)
	}
	return out, nil
}

// CompileDomain parses a type name -> literals map. A missing value yields nil.
func CompileDomain(v cue.Value) (*ast.Domain, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{Field: "domain", Message: "must be a struct", Pos: v.Pos(), Err: err}
	}
	d := &ast.Domain{Position: position(v), Types: make(map[string][]string)}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		lits, _, err := listOfStrings(iter.Value(), "domain."+name)
		if err != nil {
			return nil, err
		}
		d.Types[name] = lits
	}
	return d, nil
}

// eachField calls fn for each regular field of the struct at path.
func eachField(v cue.Value, path string, fn func(cue.Value) error) error {
	field := v.LookupPath(cue.ParsePath(path))
	if !field.Exists() {
		return nil
	}
	iter, err := field.Fields()
	if err != nil {
		return &CompileError{Field: path, Message: "must be a struct", Pos: field.Pos(), Err: err}
	}
	for iter.Next() {
		if err := fn(iter.Value()); err != nil {
			return err
		}
	}
	return nil
}
