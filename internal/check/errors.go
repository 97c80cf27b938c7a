package check

import (
	"errors"
	"fmt"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
)

// FailedError is returned by Runner.Check when any report reached error
// severity or a checker crashed. Results always holds both the
// SeverityError and SeverityHardFailure keys, possibly with empty slices.
type FailedError struct {
	Results Results
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("check failed: %d error(s), %d hard failure(s)",
		len(e.Results[SeverityError]), len(e.Results[SeverityHardFailure]))
}

// Errors returns the error-severity reports.
func (e *FailedError) Errors() []Report { return e.Results[SeverityError] }

// HardFailures returns the reports for crashed checkers.
func (e *FailedError) HardFailures() []Report { return e.Results[SeverityHardFailure] }

// AsFailed extracts a *FailedError from err.
func AsFailed(err error) (*FailedError, bool) {
	var fe *FailedError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// FatalError is a structural error that makes further analysis meaningless.
// A checker returns it from Finalize to abort the run.
type FatalError struct {
	Checker string
	Message string
	Node    ast.Node
	// Path lists the nodes of the offending structure, e.g. a cycle.
	Path []string
}

func (e *FatalError) Error() string {
	prefix := e.Checker
	if e.Node != nil {
		prefix = fmt.Sprintf("%s: %s", e.Node.Pos(), e.Checker)
	}
	return fmt.Sprintf("%s: fatal: %s", prefix, e.Message)
}

// IsFatal reports whether err is or wraps a *FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// HardFailure wraps a checker crash.
type HardFailure struct {
	Checker string
	Err     error
}

func (e *HardFailure) Error() string {
	return fmt.Sprintf("checker %s failed: %v", e.Checker, e.Err)
}

func (e *HardFailure) Unwrap() error { return e.Err }
