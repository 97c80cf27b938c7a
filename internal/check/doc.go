// Package check runs semantic checkers over a forest of institution trees.
//
// A Checker contributes visitor actions, accumulates state while the shared
// walk runs, and turns that state into Reports when Finalize is called. The
// Runner registers every checker into one visitor, walks the forest once, and
// finalizes each checker in order.
//
// Failure policy:
//   - Reports are buffered, never returned early. A run behaves like a linter
//     and surfaces everything it found.
//   - A Finalize that panics or returns an ordinary error is recorded as a
//     SeverityHardFailure report and the remaining checkers still run.
//   - A Finalize that returns a *FatalError stops the run immediately.
//   - If any error or hard failure was recorded, Check returns a *FailedError
//     carrying every report grouped by severity.
package check
