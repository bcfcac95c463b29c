package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProgram(t *testing.T, dir, name, json string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(json), 0o644))
	return path
}

func TestCompile_SingleFile(t *testing.T) {
	dir := t.TempDir()
	main := writeProgram(t, dir, "main.json", `{
		"statements": [
			{"kind": "LetStmt", "name": "x", "line": 1, "value": {"kind": "IntLit", "value": 1, "line": 1}},
			{"kind": "ExprStmt", "line": 2, "x": {
				"kind": "CallExpr", "line": 2,
				"callee": {"kind": "IdentExpr", "name": "print", "line": 2},
				"args": [{"kind": "IdentExpr", "name": "x", "line": 2}]
			}}
		]
	}`)

	c := &Compiler{}
	result, err := c.Compile(main)
	require.NoError(t, err)
	assert.Contains(t, result.CSource, "hml_main")
	assert.Contains(t, result.CSource, "#include \"hml_runtime.h\"")
}

func TestCompile_ResolvesImportedModule(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "mathlib.json", `{
		"statements": [
			{"kind": "FuncDef", "name": "square", "line": 1,
				"params": [{"name": "n"}],
				"body": [
					{"kind": "ReturnStmt", "line": 2, "value": {
						"kind": "BinaryExpr", "op": "*", "line": 2,
						"left": {"kind": "IdentExpr", "name": "n", "line": 2},
						"right": {"kind": "IdentExpr", "name": "n", "line": 2}
					}}
				]
			},
			{"kind": "ExportStmt", "names": ["square"], "line": 3}
		]
	}`)
	main := writeProgram(t, dir, "main.json", `{
		"statements": [
			{"kind": "ImportStmt", "path": "./mathlib.json", "alias": "m", "line": 1},
			{"kind": "ExprStmt", "line": 2, "x": {
				"kind": "CallExpr", "line": 2,
				"callee": {"kind": "IdentExpr", "name": "m.square", "line": 2},
				"args": [{"kind": "IntLit", "value": 3, "line": 2}]
			}}
		]
	}`)

	c := &Compiler{}
	result, err := c.Compile(main)
	require.NoError(t, err)
	assert.Contains(t, result.CSource, "hml_main")
}

func TestCompile_EmitMapRecordsFunctions(t *testing.T) {
	dir := t.TempDir()
	main := writeProgram(t, dir, "main.json", `{
		"statements": [
			{"kind": "FuncDef", "name": "add", "line": 1,
				"params": [{"name": "a"}, {"name": "b"}],
				"body": [
					{"kind": "ReturnStmt", "line": 2, "value": {
						"kind": "BinaryExpr", "op": "+", "line": 2,
						"left": {"kind": "IdentExpr", "name": "a", "line": 2},
						"right": {"kind": "IdentExpr", "name": "b", "line": 2}
					}}
				]
			}
		]
	}`)

	c := &Compiler{EmitMap: true}
	result, err := c.Compile(main)
	require.NoError(t, err)
	require.NotEmpty(t, result.EmitMap)

	found := false
	for _, e := range result.EmitMap {
		if e.Kind == "function" && e.Line == 1 {
			found = true
		}
	}
	assert.True(t, found, "expected emit map to record the named function")
}

func TestModulePrefix(t *testing.T) {
	cases := map[string]string{
		"./math":          "math",
		"collections/queue.json": "queue",
		"a-b.c":           "a_b",
	}
	for in, want := range cases {
		assert.Equal(t, want, modulePrefix(in))
	}
}
