package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
)

// CompileFiles compiles each CUE file on its own and concatenates the
// forests. Institutions and bridges with the same name in several files are
// merged section by section, so an institution may be spread over files and
// a declaration repeated in two files stays visible to the checks. Queries are
// concatenated and domains are merged by type. Positions keep their
// originating file names.
func CompileFiles(paths ...string) ([]ast.Node, error) {
	if len(paths) == 0 {
		return nil, &CompileError{Field: "files", Message: "no CUE files to compile"}
	}

	ctx := cuecontext.New()
	var m forestMerger
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		forest, err := Compile(ctx.CompileBytes(src, cue.Filename(path)))
		if err != nil {
			return nil, err
		}
		m.add(forest)
	}
	return m.forest(), nil
}

// forestMerger accumulates per-file forests, keeping first-seen order within
// each node kind.
type forestMerger struct {
	institutions []*ast.Institution
	bridges      []*ast.Bridge
	queries      []*ast.Query
	domain       *ast.Domain
}

func (m *forestMerger) add(forest []ast.Node) {
	for _, n := range forest {
		switch n := n.(type) {
		case *ast.Bridge:
			if prev := m.bridge(n.Name); prev != nil {
				mergeSections(&prev.Institution, &n.Institution)
				prev.Links = append(prev.Links, n.Links...)
				continue
			}
			m.bridges = append(m.bridges, n)
		case *ast.Institution:
			if prev := m.institution(n.Name); prev != nil {
				mergeSections(prev, n)
				continue
			}
			m.institutions = append(m.institutions, n)
		case *ast.Query:
			m.queries = append(m.queries, n)
		case *ast.Domain:
			if m.domain == nil {
				m.domain = &ast.Domain{Position: n.Position, Types: map[string][]string{}}
			}
			for typ, lits := range n.Types {
				m.domain.Types[typ] = append(m.domain.Types[typ], lits...)
			}
		}
	}
}

func (m *forestMerger) institution(name string) *ast.Institution {
	for _, in := range m.institutions {
		if in.Name == name {
			return in
		}
	}
	return nil
}

func (m *forestMerger) bridge(name string) *ast.Bridge {
	for _, b := range m.bridges {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func (m *forestMerger) forest() []ast.Node {
	out := make([]ast.Node, 0, len(m.institutions)+len(m.bridges)+len(m.queries)+1)
	for _, in := range m.institutions {
		out = append(out, in)
	}
	for _, b := range m.bridges {
		out = append(out, b)
	}
	for _, q := range m.queries {
		out = append(out, q)
	}
	if m.domain != nil {
		out = append(out, m.domain)
	}
	return out
}

// mergeSections appends src's declarations, rules and initial facts to dst.
func mergeSections(dst, src *ast.Institution) {
	dst.Types = append(dst.Types, src.Types...)
	dst.Fluents = append(dst.Fluents, src.Fluents...)
	dst.Events = append(dst.Events, src.Events...)
	dst.Rules = append(dst.Rules, src.Rules...)
	dst.Initials = append(dst.Initials, src.Initials...)
}
