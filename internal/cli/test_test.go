package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	harnessScenarios = "../harness/testdata/scenarios"
	harnessGolden    = "../harness/testdata/golden"
)

func TestTestCommand_HarnessScenarios(t *testing.T) {
	out, err := executeCLI(t, "test", harnessScenarios, "--golden-dir", harnessGolden)
	require.NoError(t, err, out)

	for _, name := range []string{"library_clean", "shop_unused_events", "bad_query", "loop_cycle"} {
		assert.Contains(t, out, "✓ "+name)
	}
	assert.Contains(t, out, "Test Summary: 4 passed, 0 failed, 4 total")
}

func TestTestCommand_Filter(t *testing.T) {
	out, err := executeCLI(t, "--format", "json", "test", harnessScenarios,
		"--golden-dir", harnessGolden, "--filter", "*_cycle")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "loop_cycle", resp.Data.Scenarios[0].Name)
	assert.Equal(t, "fatal", resp.Data.Scenarios[0].Outcome)
}

// scenarioFixture writes one spec and one scenario into a fresh directory.
func scenarioFixture(t *testing.T, assertions string) string {
	t.Helper()
	return writeSpecs(t, map[string]string{
		"specs/shop.cue": unusedSpec,
		"scenarios/shop.yaml": `name: shop
description: unused events
specs: [../specs/shop.cue]
checks: {enable: [events]}
assertions:
` + assertions,
	})
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	dir := scenarioFixture(t, "  - {type: outcome, outcome: ok}\n")
	scenarios := filepath.Join(dir, "scenarios")

	out, err := executeCLI(t, "test", scenarios, "--update")
	require.NoError(t, err, out)

	golden, err := os.ReadFile(filepath.Join(scenarios, "golden", "shop.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name": "shop"`)
	assert.Contains(t, string(golden), `"position": "shop.cue:4:15"`)

	_, err = executeCLI(t, "test", scenarios)
	require.NoError(t, err)

	// a stale golden file fails the scenario
	stale := strings.Replace(string(golden), "Unused External Event", "Something Else", 1)
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "golden", "shop.golden"), []byte(stale), 0644))
	out, err = executeCLI(t, "test", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ shop")
	assert.Contains(t, out, "snapshot differs from golden file")
}

func TestTestCommand_FailingAssertion(t *testing.T) {
	dir := scenarioFixture(t, "  - {type: outcome, outcome: failed}\n")

	out, err := executeCLI(t, "test", filepath.Join(dir, "scenarios"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ shop")
	assert.Contains(t, out, "Expected: failed")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_Errors(t *testing.T) {
	_, err := executeCLI(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")

	_, err = executeCLI(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")

	dir := writeSpecs(t, map[string]string{"bad.yaml": "name: x\n"})
	_, err = executeCLI(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenarios")
}

func TestTestCommand_Empty(t *testing.T) {
	out, err := executeCLI(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
