package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the observable result of a scenario execution.
type Snapshot struct {
	ScenarioName string        `json:"scenario_name"`
	RunID        string        `json:"run_id"`
	Outcome      string        `json:"outcome"`
	Error        string        `json:"error,omitempty"`
	Reports      []ReportEvent `json:"reports"`
}

// MarshalSnapshot renders the snapshot of a result as indented JSON with a
// trailing newline. Map keys are sorted, so equal results give equal bytes.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: scenarioName,
		RunID:        result.RunID,
		Outcome:      string(result.Outcome),
		Error:        result.Error,
		Reports:      result.Reports,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

// GoldenMismatchError reports a snapshot that differs from its golden file.
type GoldenMismatchError struct {
	Path string
}

func (e *GoldenMismatchError) Error() string {
	return fmt.Sprintf("snapshot differs from golden file %s (rerun with --update to accept)", e.Path)
}

// CheckGolden compares a result against dir/{name}.golden outside of go test.
// With update set the golden file is (re)written instead. A missing golden
// file is an error unless update is set.
func CheckGolden(dir, scenarioName string, result *Result, update bool) error {
	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, scenarioName+".golden")

	if update {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create golden dir: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	if !bytes.Equal(want, data) {
		return &GoldenMismatchError{Path: path}
	}
	return nil
}
