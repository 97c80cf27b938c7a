package check

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// Runner runs a fixed, ordered set of checkers over a forest with one walk.
//
// A Runner is not safe for concurrent use: checkers hold per-run state.
type Runner struct {
	checkers []Checker
	visitor  *visitor.Visitor
	logger   *slog.Logger
	metrics  *Metrics
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for warnings and action failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records run outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner registers every checker's actions into one shared visitor.
// Checker order is preserved for Finalize.
func NewRunner(checkers []Checker, opts ...Option) *Runner {
	r := &Runner{
		checkers: append([]Checker(nil), checkers...),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.visitor = visitor.New(r.logger)
	for _, c := range r.checkers {
		r.visitor.Register(c.Actions())
	}
	return r
}

// Checkers returns the checkers in run order.
func (r *Runner) Checkers() []Checker {
	return r.checkers
}

// Check runs every checker over roots.
//
// It returns the reports grouped by severity when nothing reached error
// severity; warnings are also logged. Otherwise it returns a *FailedError
// holding every report. A *FatalError from a checker is returned as soon as
// it happens and later checkers are not finalized.
func (r *Runner) Check(roots ...ast.Node) (Results, error) {
	for _, c := range r.checkers {
		c.Clear()
	}

	r.visitor.Walk(roots...)

	results := Results{}
	for _, c := range r.checkers {
		err := r.finalize(c)
		switch {
		case err == nil:
			for _, rep := range c.Reports() {
				results.add(rep)
			}
		case IsFatal(err):
			r.logger.Error("fatal check failure", slog.String("checker", c.Name()), slog.String("error", err.Error()))
			r.metrics.observeFatal()
			return nil, err
		default:
			r.logger.Error("checker failed", slog.String("checker", c.Name()), slog.String("error", err.Error()))
			results.add(Report{
				Checker:  c.Name(),
				Severity: SeverityHardFailure,
				Message:  err.Error(),
				Err:      &HardFailure{Checker: c.Name(), Err: err},
			})
		}
	}

	r.metrics.observe(results)

	if results.Count(SeverityError)+results.Count(SeverityHardFailure) > 0 {
		for _, sev := range []Severity{SeverityError, SeverityHardFailure} {
			if results[sev] == nil {
				results[sev] = []Report{}
			}
		}
		return nil, &FailedError{Results: results}
	}

	for _, rep := range results[SeverityWarning] {
		r.logger.Warn(rep.Message, slog.String("checker", rep.Checker), slog.String("pos", rep.Pos().String()))
	}
	return results, nil
}

// finalize calls c.Finalize, turning a panic into an error.
func (r *Runner) finalize(c Checker) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if pe, ok := p.(error); ok {
				err = fmt.Errorf("panic in finalize: %w", pe)
				return
			}
			err = fmt.Errorf("panic in finalize: %v", p)
		}
	}()
	return c.Finalize()
}
