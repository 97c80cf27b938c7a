package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
)

// Severity orders diagnostics from least to most serious.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	// SeverityHardFailure marks a checker that crashed during Finalize.
	SeverityHardFailure
)

var severityNames = map[Severity]string{
	SeverityDebug:       "debug",
	SeverityInfo:        "info",
	SeverityWarning:     "warning",
	SeverityError:       "error",
	SeverityHardFailure: "hard-failure",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity is the inverse of Severity.String.
func ParseSeverity(name string) (Severity, error) {
	for s, n := range severityNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	parsed, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Report is one diagnostic. Node is borrowed from the checked forest and is
// only meaningful while the caller holds that forest.
type Report struct {
	Checker  string         `json:"checker"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Node     ast.Node       `json:"-"`
	Data     map[string]any `json:"data,omitempty"`
	// Err is set on hard-failure reports.
	Err error `json:"-"`
}

// Pos returns the position of the offending node, if any.
func (r Report) Pos() ast.Position {
	if r.Node == nil {
		return ast.Position{}
	}
	return r.Node.Pos()
}

func (r Report) String() string {
	msg := r.Message
	if r.Err != nil && msg == "" {
		msg = r.Err.Error()
	}
	return fmt.Sprintf("%s: %s [%s] %s", r.Pos(), r.Severity, r.Checker, msg)
}

// Results groups reports by severity. A run with nothing to report yields an
// empty Results; only severities with at least one report get a key.
type Results map[Severity][]Report

// Empty reports whether there is nothing to report.
func (r Results) Empty() bool {
	for _, reports := range r {
		if len(reports) > 0 {
			return false
		}
	}
	return true
}

// Count returns the number of reports at severity s.
func (r Results) Count(s Severity) int {
	return len(r[s])
}

// Total returns the number of reports across all severities.
func (r Results) Total() int {
	n := 0
	for _, reports := range r {
		n += len(reports)
	}
	return n
}

// Messages returns the messages at severity s.
func (r Results) Messages(s Severity) []string {
	out := make([]string, 0, len(r[s]))
	for _, rep := range r[s] {
		out = append(out, rep.Message)
	}
	return out
}

// Sorted flattens the results, most severe first, then by position, checker
// and message. Report order inside a severity is otherwise unspecified; use
// this only for stable rendering.
func (r Results) Sorted() []Report {
	var out []Report
	for _, reports := range r {
		out = append(out, reports...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		pa, pb := a.Pos(), b.Pos()
		if pa.File != pb.File {
			return pa.File < pb.File
		}
		if pa.Line != pb.Line {
			return pa.Line < pb.Line
		}
		if pa.Column != pb.Column {
			return pa.Column < pb.Column
		}
		if a.Checker != b.Checker {
			return a.Checker < b.Checker
		}
		return a.Message < b.Message
	})
	return out
}

func (r Results) add(rep Report) {
	r[rep.Severity] = append(r[rep.Severity], rep)
}
