package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgrey4296/instal-stable-sub001/internal/checks"
	"github.com/jgrey4296/instal-stable-sub001/internal/store"
)

// decodeCheck parses a --format json check response.
func decodeCheck(t *testing.T, out string) (CLIResponse, CheckOutput) {
	t.Helper()
	var resp struct {
		CLIResponse
		Data CheckOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp.CLIResponse, resp.Data
}

func TestCheck_Clean(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"library.cue": librarySpec})

	out, err := executeCLI(t, "check", dir)
	require.NoError(t, err)
	assert.Equal(t, "✓ no problems in 1 file(s)\n", out)
}

func TestCheck_WarningsExitZero(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"shop.cue": unusedSpec})

	out, err := executeCLI(t, "check", dir, "--enable", "events")
	require.NoError(t, err)
	assert.Contains(t, out, "warning [events] Unused External Event")
	assert.Contains(t, out, "warning [events] Institutional Event is not generated")
	assert.Contains(t, out, "2 warning(s) in 1 file(s)")
}

func TestCheck_ErrorsExitOne(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"shop.cue": badQuerySpec})

	out, err := executeCLI(t, "check", dir, "--enable", "query")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "check failed: 1 error(s), 0 hard failure(s)")
	assert.Contains(t, out, filepath.Join(dir, "shop.cue")+":5:9: error [query] Undeclared Event used in Query")
}

func TestCheck_FatalExitOne(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"loop.cue": cycleSpec})

	out, err := executeCLI(t, "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "fatal: ")
	assert.Contains(t, out, "cyclic transient fluent dependency: a/0 → b/0 → a/0 in loop")
}

func TestCheck_JSON(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"shop.cue": badQuerySpec})

	out, err := executeCLI(t, "--format", "json", "check", dir, "--enable", "query,events")
	require.Error(t, err)

	resp, data := decodeCheck(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_CHECK_FAILED", resp.Error.Code)
	assert.Equal(t, store.OutcomeFailed, data.Outcome)
	assert.Equal(t, []string{"events", "query"}, data.Checks)
	assert.Equal(t, map[string]int{"error": 1, "warning": 1}, data.Counts)
	require.Len(t, data.Reports, 2)
	assert.Equal(t, "query", data.Reports[0].Checker)
	assert.Equal(t, map[string]any{"signature": "leave/0"}, data.Reports[0].Data)
}

func TestCheck_JSONClean(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"library.cue": librarySpec})

	out, err := executeCLI(t, "--format", "json", "check", dir)
	require.NoError(t, err)

	resp, data := decodeCheck(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, store.OutcomeOK, data.Outcome)
	assert.Equal(t, checks.Names(), data.Checks)
	assert.Empty(t, data.Reports)
}

func TestCheck_CommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		target  string
		args    []string
		wantErr string
	}{
		{
			name:    "missing path",
			target:  "absent",
			wantErr: "path not found",
		},
		{
			name:    "no cue files",
			files:   map[string]string{"README.md": "nothing"},
			wantErr: "no CUE files found",
		},
		{
			name:    "compile error",
			files:   map[string]string{"bad.cue": `institution: x: {rules: 3}`},
			wantErr: "E101",
		},
		{
			name:    "unknown check",
			files:   map[string]string{"library.cue": librarySpec},
			args:    []string{"--enable", "nope"},
			wantErr: "nope",
		},
		{
			name:    "invalid project config",
			files:   map[string]string{"library.cue": librarySpec, "instal.yaml": "log_level: loud\n"},
			wantErr: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeSpecs(t, tt.files)
			args := append([]string{"check", filepath.Join(dir, tt.target)}, tt.args...)

			_, err := executeCLI(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheck_ProjectConfig(t *testing.T) {
	dir := writeSpecs(t, map[string]string{
		"specs/shop.cue":  unusedSpec,
		"ignored/bad.cue": badQuerySpec,
		"instal.yaml": `
checks:
  enable: [events]
include: ["specs/**/*.cue"]
`,
	})

	out, err := executeCLI(t, "check", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 warning(s) in 1 file(s)")

	// flags override the config file
	out, err = executeCLI(t, "check", dir, "--enable", "institution-structure")
	require.NoError(t, err)
	assert.NotContains(t, out, "[events]")
	assert.Contains(t, out, "[institution-structure]")
}

func TestCheck_DisableFlag(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"shop.cue": unusedSpec})

	out, err := executeCLI(t, "check", dir, "--disable", "events,institution-structure,term-declaration")
	require.NoError(t, err)
	assert.Equal(t, "✓ no problems in 1 file(s)\n", out)
}

func TestCheck_SingleFileArgument(t *testing.T) {
	dir := writeSpecs(t, map[string]string{
		"shop.cue":  unusedSpec,
		"other.cue": badQuerySpec,
	})

	out, err := executeCLI(t, "check", filepath.Join(dir, "shop.cue"), "--enable", "events")
	require.NoError(t, err)
	assert.Contains(t, out, "in 1 file(s)")
}

func TestCheck_RecordsHistoryAndMetrics(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"shop.cue": unusedSpec})
	db := filepath.Join(t.TempDir(), "history.db")
	metrics := filepath.Join(t.TempDir(), "instal.prom")

	out, err := executeCLI(t, "--format", "json", "check", dir,
		"--enable", "events", "--db", db, "--metrics-out", metrics)
	require.NoError(t, err)
	_, data := decodeCheck(t, out)
	require.NotEmpty(t, data.RunID)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "instal_check_runs_total 1")
	assert.Contains(t, string(prom), `instal_reports_total{checker="events",severity="warning"} 2`)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	run, err := st.ReadRun(t.Context(), data.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.OutcomeOK, run.Outcome)
	assert.Equal(t, map[string]int{"warning": 2}, run.Counts)
}

func TestCheck_RecordsLoadErrors(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"bad.cue": `institution: x: {rules: 3}`})
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := executeCLI(t, "check", dir, "--db", db)
	require.Error(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.ListRuns(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.OutcomeError, runs[0].Outcome)
	assert.Contains(t, runs[0].Error, "E101")
}

func TestChecksCommand(t *testing.T) {
	out, err := executeCLI(t, "checks")
	require.NoError(t, err)
	for _, name := range checks.Names() {
		assert.Contains(t, out, name)
	}

	out, err = executeCLI(t, "--format", "json", "checks")
	require.NoError(t, err)
	var resp struct {
		Status string      `json:"status"`
		Data   []CheckInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, len(checks.All()))
	assert.Equal(t, "bridge-structure", resp.Data[0].Name)
	assert.NotEmpty(t, resp.Data[0].Description)
}
