package check

import (
	"fmt"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// Checker is one semantic check riding on the shared walk.
type Checker interface {
	// Name identifies the checker in reports, config and metrics.
	Name() string
	// Actions returns the visitor actions the checker needs. It is called
	// once, when the checker is added to a Runner.
	Actions() visitor.Actions
	// Clear resets accumulated state and buffered reports.
	Clear()
	// Finalize runs after the walk and cross-references what was collected.
	Finalize() error
	// Reports returns the reports buffered since the last Clear.
	Reports() []Report
}

// Base carries a checker's name and report buffer. Concrete checkers embed it
// and call Emit.
type Base struct {
	name    string
	reports []Report
}

// NewBase returns a Base for a checker called name.
func NewBase(name string) Base {
	return Base{name: name}
}

// Name returns the checker name.
func (b *Base) Name() string { return b.name }

// Reports returns the buffered reports.
func (b *Base) Reports() []Report { return b.reports }

// Clear drops buffered reports. Checkers with their own state override Clear
// and call this.
func (b *Base) Clear() { b.reports = nil }

// Finalize does nothing. Checkers that report during the walk can rely on it.
func (b *Base) Finalize() error { return nil }

// Emit buffers a report at severity sev about node n.
func (b *Base) Emit(sev Severity, n ast.Node, format string, args ...any) {
	b.EmitData(sev, n, nil, format, args...)
}

// EmitData is Emit with a data payload attached to the report.
func (b *Base) EmitData(sev Severity, n ast.Node, data map[string]any, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	b.reports = append(b.reports, Report{
		Checker:  b.name,
		Severity: sev,
		Message:  msg,
		Node:     n,
		Data:     data,
	})
}
