package checks

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/compiler"
	"github.com/jgrey4296/instal-stable-sub001/internal/testutil"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// mustForest compiles CUE source into a forest, failing the test on error.
func mustForest(t *testing.T, src string) []ast.Node {
	t.Helper()
	forest, err := compiler.CompileString(src, "test.cue")
	require.NoError(t, err, "compile fixture")
	return forest
}

// runCheck walks src with c's actions and finalizes c.
func runCheck(t *testing.T, c check.Checker, src string) []check.Report {
	t.Helper()
	forest := mustForest(t, src)
	v := visitor.New(testutil.DiscardLogger())
	v.Register(c.Actions())
	c.Clear()
	v.Walk(forest...)
	require.Empty(t, v.Failures())
	require.NoError(t, c.Finalize())
	return c.Reports()
}

// messages returns the sorted report messages.
func messages(reports []check.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.Message
	}
	sort.Strings(out)
	return out
}

func severities(reports []check.Report) map[check.Severity]int {
	out := make(map[check.Severity]int)
	for _, r := range reports {
		out[r.Severity]++
	}
	return out
}
