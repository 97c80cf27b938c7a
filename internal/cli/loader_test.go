package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
)

func TestFindCUEFiles(t *testing.T) {
	dir := writeSpecs(t, map[string]string{
		"a.cue":                "",
		"nested/b.cue":         "",
		"nested/c.yaml":        "",
		"vendor/d.cue":         "",
		"nested/dir.cue/e.txt": "",
	})

	files, err := FindCUEFiles(dir, []string{"**/*.cue"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.cue"),
		filepath.Join(dir, "nested", "b.cue"),
		filepath.Join(dir, "vendor", "d.cue"),
	}, files)

	files, err = FindCUEFiles(dir, []string{"*.cue", "nested/*.cue"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.cue"),
		filepath.Join(dir, "nested", "b.cue"),
	}, files)
}

func TestLoadSpecs_MergesFiles(t *testing.T) {
	dir := writeSpecs(t, map[string]string{
		"events.cue":  `institution: shop: events: exogenous: ["arrive"]`,
		"fluents.cue": `institution: shop: fluents: inertial: ["open"]`,
		"query.cue":   `query: ["arrive"]`,
	})

	result, err := LoadSpecs([]string{dir, filepath.Join(dir, "query.cue")}, []string{"**/*.cue"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "events.cue"),
		filepath.Join(dir, "fluents.cue"),
		filepath.Join(dir, "query.cue"),
	}, result.Files, "deduplicated and sorted")

	var institutions, queries int
	for _, n := range result.Forest {
		switch n.Kind() {
		case ast.KindInstitution:
			institutions++
			in := n.(*ast.Institution)
			assert.Len(t, in.Events, 1)
			assert.Len(t, in.Fluents, 1)
		case ast.KindQuery:
			queries++
		}
	}
	assert.Equal(t, 1, institutions)
	assert.Equal(t, 1, queries)
}

func TestLoadSpecs_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		wantCode string
	}{
		{"no files", map[string]string{"notes.txt": "x"}, ErrCodeNoFiles},
		{"cue syntax", map[string]string{"a.cue": "institution: {"}, ErrCodeBuildFailed},
		{"unknown field", map[string]string{"a.cue": "institution: x: {rules: 3}"}, ErrCodeInstitution},
		{"bad query", map[string]string{"a.cue": "query: 3"}, ErrCodeQuery},
		{"bad condition", map[string]string{"a.cue": `institution: x: {
	fluents: noninertial: ["a"]
	when: [{fluent: "a", conditions: ["not ("]}]
}`}, ErrCodeSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeSpecs(t, tt.files)
			_, err := LoadSpecs([]string{dir}, []string{"**/*.cue"})
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.wantCode, loadErr.Code, loadErr.Error())
			if tt.wantCode != ErrCodeNoFiles {
				assert.True(t, loadErr.Pos.IsValid(), "compile errors carry a position")
			}
		})
	}
}

func TestLoadSpecs_NotFound(t *testing.T) {
	_, err := LoadSpecs([]string{filepath.Join(t.TempDir(), "absent")}, []string{"**/*.cue"})
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestMapFieldToErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeBuildFailed, MapFieldToErrorCode("cue"))
	assert.Equal(t, ErrCodeSyntax, MapFieldToErrorCode("conditions"))
	assert.Equal(t, ErrCodeQuery, MapFieldToErrorCode("step"))
	assert.Equal(t, ErrCodeDomain, MapFieldToErrorCode("domain"))
	assert.Equal(t, ErrCodeInstitution, MapFieldToErrorCode("events.exogenous"))
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found"}
	assert.Equal(t, "E003: no CUE files found", err.Error())
}
