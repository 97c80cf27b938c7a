package checks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/testutil"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

func occursErr(t *testing.T, src string) error {
	t.Helper()
	c := NewOccurs()
	v := visitor.New(testutil.DiscardLogger())
	v.Register(c.Actions())
	c.Clear()
	v.Walk(mustForest(t, src)...)
	require.Empty(t, v.Failures())
	return c.Finalize()
}

func TestOccurs(t *testing.T) {
	tests := []struct {
		name string
		when string
		path []string
	}{
		{
			name: "self reference",
			when: `[{fluent: "a", conditions: ["a"]}]`,
			path: []string{"a/0", "a/0"},
		},
		{
			name: "negated self reference",
			when: `[{fluent: "a", conditions: ["not a"]}]`,
			path: []string{"a/0", "a/0"},
		},
		{
			name: "two step",
			when: `[{fluent: "a", conditions: ["b"]}, {fluent: "b", conditions: ["a"]}]`,
			path: []string{"a/0", "b/0", "a/0"},
		},
		{
			name: "multi body edge",
			when: `[{fluent: "a", conditions: ["b", "c"]}, {fluent: "c", conditions: ["a"]}]`,
			path: []string{"a/0", "c/0", "a/0"},
		},
		{
			name: "acyclic chain",
			when: `[{fluent: "a", conditions: ["b"]}, {fluent: "b", conditions: ["c"]}, {fluent: "c", conditions: ["d"]}]`,
		},
		{
			name: "comparison only",
			when: `[{fluent: "a(X)", conditions: ["X != Y"]}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := occursErr(t, `institution: i: {when: `+tt.when+`}`)
			if tt.path == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, check.IsFatal(err))

			var fatal *check.FatalError
			require.True(t, errors.As(err, &fatal))
			assert.Equal(t, tt.path, fatal.Path)
			assert.Equal(t, "occurs", fatal.Checker)
			assert.NotNil(t, fatal.Node)
			assert.Contains(t, fatal.Message, "cyclic transient fluent dependency")
		})
	}
}

func TestOccurs_CyclesAreScopedByInstitution(t *testing.T) {
	err := occursErr(t, `
institution: x: {when: [{fluent: "a", conditions: ["b"]}]}
institution: y: {when: [{fluent: "b", conditions: ["a"]}]}
`)
	assert.NoError(t, err)
}

func TestOccurs_RunnerStopsOnFatal(t *testing.T) {
	forest := mustForest(t, `institution: i: {when: [{fluent: "a", conditions: ["a"]}]}`)
	runner := check.NewRunner([]check.Checker{NewOccurs(), NewInstitutionStructure()})

	results, err := runner.Check(forest...)
	assert.Nil(t, results)
	assert.True(t, check.IsFatal(err))
}

func TestReconstructCyclePath(t *testing.T) {
	graph := dependencyGraph{
		"a": {"b"},
		"b": {"c", "a"},
		"c": {"b"},
	}
	found := cycles(graph)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"a", "b", "a"}, found[0])
}
