package check

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// countingChecker emits one report per institution at a fixed severity.
type countingChecker struct {
	Base
	sev          Severity
	institutions []*ast.Institution
}

func newCounting(name string, sev Severity) *countingChecker {
	return &countingChecker{Base: NewBase(name), sev: sev}
}

func (c *countingChecker) Actions() visitor.Actions {
	return visitor.Actions{ast.KindInstitution: {func(_ *visitor.Visitor, n ast.Node) error {
		in, _ := ast.AsInstitution(n)
		c.institutions = append(c.institutions, in)
		return nil
	}}}
}

func (c *countingChecker) Clear() {
	c.Base.Clear()
	c.institutions = nil
}

func (c *countingChecker) Finalize() error {
	for _, in := range c.institutions {
		c.Emit(c.sev, in, "saw %s", in.Name)
	}
	return nil
}

// crashingChecker always fails in Finalize.
type crashingChecker struct {
	Base
	panics bool
	err    error
}

func (c *crashingChecker) Actions() visitor.Actions { return nil }

func (c *crashingChecker) Finalize() error {
	c.Emit(SeverityWarning, nil, "never surfaced")
	if c.panics {
		panic("finalize exploded")
	}
	return c.err
}

func forest() []ast.Node {
	return []ast.Node{
		&ast.Institution{Name: "a"},
		&ast.Bridge{Institution: ast.Institution{Name: "b"}},
	}
}

func TestCheckEmptyResultsWhenNothingReported(t *testing.T) {
	r := NewRunner(nil)
	results, err := r.Check(forest()...)
	require.NoError(t, err)
	assert.True(t, results.Empty())
	assert.Len(t, results, 0)
}

func TestCheckWarningsReturnNormally(t *testing.T) {
	r := NewRunner([]Checker{newCounting("w", SeverityWarning)})
	results, err := r.Check(forest()...)
	require.NoError(t, err)
	assert.False(t, results.Empty())
	assert.ElementsMatch(t, []string{"saw a", "saw b"}, results.Messages(SeverityWarning))
}

func TestCheckSingleRoot(t *testing.T) {
	r := NewRunner([]Checker{newCounting("w", SeverityInfo)})
	results, err := r.Check(&ast.Institution{Name: "solo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"saw solo"}, results.Messages(SeverityInfo))
}

func TestCheckAccumulatesAcrossCheckers(t *testing.T) {
	for _, order := range [][]string{{"a", "b"}, {"b", "a"}} {
		var checkers []Checker
		for _, name := range order {
			checkers = append(checkers, newCounting(name, SeverityWarning))
		}
		results, err := NewRunner(checkers).Check(&ast.Institution{Name: "x"})
		require.NoError(t, err)

		reports := results[SeverityWarning]
		require.Len(t, reports, 2)
		var names []string
		for _, rep := range reports {
			names = append(names, rep.Checker)
		}
		assert.ElementsMatch(t, []string{"a", "b"}, names)
	}
}

func TestCheckIdempotent(t *testing.T) {
	r := NewRunner([]Checker{newCounting("w", SeverityWarning), newCounting("n", SeverityInfo)})
	roots := forest()

	first, err := r.Check(roots...)
	require.NoError(t, err)
	second, err := r.Check(roots...)
	require.NoError(t, err)

	assert.ElementsMatch(t, first.Sorted(), second.Sorted())
	assert.Equal(t, 2, second.Count(SeverityWarning))
}

func TestCheckIsolatesCrashingChecker(t *testing.T) {
	for _, crasher := range []*crashingChecker{
		{Base: NewBase("panics"), panics: true},
		{Base: NewBase("errors"), err: errors.New("finalize broke")},
	} {
		t.Run(crasher.Name(), func(t *testing.T) {
			good := newCounting("good", SeverityWarning)
			r := NewRunner([]Checker{crasher, good})

			_, err := r.Check(forest()...)
			require.Error(t, err)

			failed, ok := AsFailed(err)
			require.True(t, ok)
			assert.Empty(t, failed.Errors())
			require.Len(t, failed.HardFailures(), 1)

			hard := failed.HardFailures()[0]
			assert.Equal(t, crasher.Name(), hard.Checker)
			var hf *HardFailure
			require.ErrorAs(t, hard.Err, &hf)

			assert.ElementsMatch(t, []string{"saw a", "saw b"}, failed.Results.Messages(SeverityWarning))
			assert.NotContains(t, failed.Results.Messages(SeverityWarning), "never surfaced")
		})
	}
}

func TestFailedErrorShape(t *testing.T) {
	r := NewRunner([]Checker{newCounting("e", SeverityError)})
	_, err := r.Check(forest()...)

	failed, ok := AsFailed(err)
	require.True(t, ok)
	assert.Len(t, failed.Errors(), 2)

	hard, present := failed.Results[SeverityHardFailure]
	assert.True(t, present, "hard-failure key must be present even when empty")
	assert.Empty(t, hard)
	assert.Contains(t, err.Error(), "2 error(s), 0 hard failure(s)")
}

// fatalChecker aborts the run.
type fatalChecker struct{ Base }

func (c *fatalChecker) Actions() visitor.Actions { return nil }
func (c *fatalChecker) Finalize() error {
	return &FatalError{Checker: c.Name(), Message: "cycle", Path: []string{"a/0", "a/0"}}
}

func TestFatalErrorPropagatesImmediately(t *testing.T) {
	later := newCounting("later", SeverityError)
	r := NewRunner([]Checker{&fatalChecker{Base: NewBase("occurs")}, later})

	results, err := r.Check(forest()...)
	assert.Nil(t, results)
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	_, isFailed := AsFailed(err)
	assert.False(t, isFailed)
	assert.Empty(t, later.Reports(), "checkers after a fatal error are not finalized")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := NewRunner([]Checker{newCounting("w", SeverityWarning)}, WithMetrics(m))
	_, err := r.Check(forest()...)
	require.NoError(t, err)

	r = NewRunner([]Checker{&crashingChecker{Base: NewBase("boom"), panics: true}}, WithMetrics(m))
	_, err = r.Check(forest()...)
	require.Error(t, err)

	r = NewRunner([]Checker{&fatalChecker{Base: NewBase("occurs")}}, WithMetrics(m))
	_, err = r.Check(forest()...)
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failedRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fatalRuns))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reports.WithLabelValues("w", "warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hardFailures.WithLabelValues("boom")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(Results{SeverityWarning: {{Checker: "x", Severity: SeverityWarning}}})
		m.observeFatal()
	})
}
