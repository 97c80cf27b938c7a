package checks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/compiler"
)

func TestNameDuplication_RenamedVariables(t *testing.T) {
	reports := runCheck(t, NewNameDuplication(), `
institution: i: {fluents: inertial: ["flu(X)", "flu(Y)"]}
`)
	require.Len(t, reports, 1)
	assert.Equal(t, "Duplicate Fluent Declaration", reports[0].Message)
	assert.Equal(t, check.SeverityError, reports[0].Severity)
	assert.Equal(t, true, reports[0].Data["identical"])
}

func TestNameDuplication_DifferentArity(t *testing.T) {
	reports := runCheck(t, NewNameDuplication(), `
institution: i: {fluents: inertial: ["flu(X)", "flu(X, Y)"]}
`)
	assert.Empty(t, reports)
}

func TestNameDuplication_SameSignatureDifferentShape(t *testing.T) {
	reports := runCheck(t, NewNameDuplication(), `
institution: i: {events: exogenous: ["ev(X, X)", "ev(A, B)"]}
`)
	require.Len(t, reports, 1)
	assert.Equal(t, "Duplicate Event Declaration", reports[0].Message)
	assert.Equal(t, false, reports[0].Data["identical"])
}

func TestNameDuplication_Types(t *testing.T) {
	reports := runCheck(t, NewNameDuplication(), `
institution: i: {types: ["Person", "Book", "Person"]}
`)
	assert.Equal(t, []string{"Duplicate TypeDec Declaration"}, messages(reports))
}

func TestNameDuplication_AcrossUniverses(t *testing.T) {
	reports := runCheck(t, NewNameDuplication(), `
institution: i: {
	types: ["thing"]
	events: exogenous: ["thing", "act(X)"]
	fluents: inertial: ["act(Y)", "thing"]
}
`)
	assert.Equal(t, []string{
		"Declaration Conflict",
		"Declaration Conflict",
		"Declaration Conflict",
		"Declaration Conflict",
	}, messages(reports))
}

func TestNameDuplication_PerInstitution(t *testing.T) {
	reports := runCheck(t, NewNameDuplication(), `
institution: a: {fluents: inertial: ["flu(X)"]}
institution: b: {fluents: inertial: ["flu(X)"]}
`)
	assert.Empty(t, reports)
}

func TestNameDuplication_AcrossFiles(t *testing.T) {
	dir := t.TempDir()
	src := []byte(`institution: i: events: exogenous: ["ev"]` + "\n")
	a := filepath.Join(dir, "a.cue")
	b := filepath.Join(dir, "b.cue")
	require.NoError(t, os.WriteFile(a, src, 0644))
	require.NoError(t, os.WriteFile(b, src, 0644))

	forest, err := compiler.CompileFiles(a, b)
	require.NoError(t, err)

	c := NewNameDuplication()
	_, err = check.NewRunner([]check.Checker{c}).Check(forest...)
	var failed *check.FailedError
	require.ErrorAs(t, err, &failed)
	require.Len(t, c.Reports(), 1)
	assert.Equal(t, "Duplicate Event Declaration", c.Reports()[0].Message)
	assert.Equal(t, b, c.Reports()[0].Pos().File)
	assert.Contains(t, c.Reports()[0].Data["first"], filepath.Base(a)+":1:")
}
