package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/checks"
	"github.com/jgrey4296/instal-stable-sub001/internal/compiler"
	"github.com/jgrey4296/instal-stable-sub001/internal/store"
	"github.com/jgrey4296/instal-stable-sub001/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Compile the scenario's spec files into one forest
// 3. Run the selected checks
// 4. Record the run and read its reports back
// 5. Evaluate assertions against the stored reports
//
// A spec that fails to compile is recorded with the error outcome rather
// than returned, so scenarios can assert on it. The returned error is for
// harness failures only.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with check warnings and action failures sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:",
		store.WithIDs(testutil.NewSequentialIDs()),
		store.WithClock(testutil.FixedClock))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	checkers, err := checks.Select(scenario.Checks.Enable, scenario.Checks.Disable)
	if err != nil {
		return nil, fmt.Errorf("select checks: %w", err)
	}
	names := make([]string, len(checkers))
	for i, c := range checkers {
		names[i] = c.Name()
	}

	input := store.Input{Paths: baseNames(scenario.Specs), Checks: names}
	forest, err := compiler.CompileFiles(scenario.Specs...)
	if err != nil {
		input.Err = err
	} else {
		runner := check.NewRunner(checkers, check.WithLogger(logger))
		input.Results, input.Err = runner.Check(forest...)
	}

	ctx := context.Background()
	run, err := st.RecordRun(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	stored, err := st.ReadReports(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}

	result := NewResult()
	result.RunID = run.ID
	result.Outcome = run.Outcome
	result.Error = relativize(run.Error, scenario.Specs)
	for _, r := range stored {
		event := ReportEvent{
			Checker:  r.Checker,
			Severity: r.Severity,
			Message:  r.Message,
			Data:     r.Data,
		}
		if r.File != "" {
			event.Position = fmt.Sprintf("%s:%d:%d", filepath.Base(r.File), r.Line, r.Column)
		}
		result.Reports = append(result.Reports, event)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	logger.Debug("scenario completed",
		slog.String("scenario", scenario.Name),
		slog.String("run_id", run.ID),
		slog.String("outcome", string(run.Outcome)),
		slog.Int("reports", len(result.Reports)),
		slog.Bool("pass", result.Pass))

	return result, nil
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

// relativize strips the spec directories from s so messages carrying
// positions do not depend on where the scenario lives.
func relativize(s string, specs []string) string {
	for _, spec := range specs {
		s = strings.ReplaceAll(s, filepath.Dir(spec)+string(filepath.Separator), "")
	}
	return s
}
