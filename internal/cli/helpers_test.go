package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const librarySpec = `
institution: library: {
	types: ["Person", "Book"]
	events: {
		exogenous: ["borrow(Person, Book)"]
		inst: ["lend(Person, Book)"]
	}
	fluents: inertial: ["onloan(Book)"]
	generates: [{event: "borrow(P, B)", generates: ["lend(P, B)"], conditions: ["not onloan(B)"]}]
	initiates: [{event: "lend(P, B)", fluents: ["onloan(B)"]}]
	terminates: [{event: "borrow(P, B)", fluents: ["onloan(B)"]}]
	initially: [{fluents: ["onloan(dune)"]}]
}
`

const unusedSpec = `
institution: shop: {
	events: {
		exogenous: ["arrive"]
		inst: ["open"]
	}
}
`

const badQuerySpec = `
institution: shop: {
	events: exogenous: ["arrive"]
}
query: ["leave"]
`

const cycleSpec = `
institution: loop: {
	fluents: noninertial: ["a", "b"]
	when: [
		{fluent: "a", conditions: ["b"]},
		{fluent: "b", conditions: ["a"]},
	]
}
`

// executeCLI runs the root command with args and an isolated home directory.
func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeSpecs writes name -> content into a fresh directory.
func writeSpecs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}
