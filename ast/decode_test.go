package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProgram_LetAndCall(t *testing.T) {
	src := `{
		"source_file": "test.hml",
		"statements": [
			{"kind": "LetStmt", "name": "x", "value": {"kind": "IntLit", "value": 42, "line": 1}, "line": 1},
			{"kind": "ExprStmt", "line": 2, "x": {
				"kind": "CallExpr", "line": 2,
				"callee": {"kind": "IdentExpr", "name": "print", "line": 2},
				"args": [{"kind": "IdentExpr", "name": "x", "line": 2}]
			}}
		]
	}`

	prog, err := DecodeProgram([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	let, ok := prog.Statements[0].(*LetStmt)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)
	intLit, ok := let.Value.(*IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 42, intLit.Value)

	exprStmt, ok := prog.Statements[1].(*ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.X.(*CallExpr)
	require.True(t, ok)
	callee, ok := call.Callee.(*IdentExpr)
	require.True(t, ok)
	assert.Equal(t, "print", callee.Name)
	require.Len(t, call.Args, 1)
}

func TestDecodeProgram_FuncDefWithRefParamAndExtern(t *testing.T) {
	src := `{
		"statements": [
			{"kind": "FuncDef", "name": "swap", "line": 1,
				"params": [
					{"name": "a", "is_ref": true},
					{"name": "b", "is_ref": true}
				],
				"body": [
					{"kind": "ReturnStmt", "line": 2, "value": null}
				]
			},
			{"kind": "FuncDef", "name": "sqrt", "line": 3,
				"is_extern": true, "extern_name": "sqrt",
				"params": [{"name": "x"}],
				"body": []
			}
		]
	}`

	prog, err := DecodeProgram([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	swap, ok := prog.Statements[0].(*FuncDef)
	require.True(t, ok)
	assert.Equal(t, "swap", swap.Name)
	require.Len(t, swap.Params, 2)
	assert.True(t, swap.Params[0].IsRef)
	assert.True(t, swap.Params[1].IsRef)
	ret, ok := swap.Body[0].(*ReturnStmt)
	require.True(t, ok)
	assert.Nil(t, ret.Value)

	sqrtFn, ok := prog.Statements[1].(*FuncDef)
	require.True(t, ok)
	assert.True(t, sqrtFn.IsExtern)
	assert.Equal(t, "sqrt", sqrtFn.ExternName)
}

func TestDecodeProgram_MatchWithPatterns(t *testing.T) {
	src := `{
		"statements": [
			{"kind": "ExprStmt", "line": 1, "x": {
				"kind": "MatchExpr", "line": 1,
				"subject": {"kind": "IdentExpr", "name": "v", "line": 1},
				"arms": [
					{
						"pattern": {"kind": "ArrayPattern", "elements": [
							{"kind": "BindingPattern", "name": "head", "line": 1}
						], "rest": "tail", "line": 1},
						"body": [{"kind": "BreakStmt", "line": 1}]
					},
					{
						"pattern": {"kind": "WildcardPattern", "line": 1},
						"body": []
					}
				]
			}}
		]
	}`

	prog, err := DecodeProgram([]byte(src))
	require.NoError(t, err)
	exprStmt := prog.Statements[0].(*ExprStmt)
	match := exprStmt.X.(*MatchExpr)
	require.Len(t, match.Arms, 2)

	arr, ok := match.Arms[0].Pattern.(*ArrayPattern)
	require.True(t, ok)
	assert.Equal(t, "tail", arr.Rest)
	require.Len(t, arr.Elements, 1)
	binding, ok := arr.Elements[0].(*BindingPattern)
	require.True(t, ok)
	assert.Equal(t, "head", binding.Name)

	_, ok = match.Arms[1].Pattern.(*WildcardPattern)
	assert.True(t, ok)
}

func TestDecodeProgram_UnknownKindErrors(t *testing.T) {
	_, err := DecodeProgram([]byte(`{"statements":[{"kind":"BogusStmt"}]}`))
	assert.Error(t, err)
}

func TestDecodeProgram_MissingKindErrors(t *testing.T) {
	_, err := DecodeProgram([]byte(`{"statements":[{"name":"x"}]}`))
	assert.Error(t, err)
}

// Decoding the same source twice must produce deeply equal trees — the
// decoder has no hidden state (counters, caches) that could make two
// passes over identical input diverge.
func TestDecodeProgram_DeterministicAcrossRuns(t *testing.T) {
	src := []byte(`{
		"statements": [
			{"kind": "FuncDef", "name": "add", "line": 1,
				"params": [{"name": "a"}, {"name": "b", "is_ref": true}],
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

	first, err := DecodeProgram(src)
	require.NoError(t, err)
	second, err := DecodeProgram(src)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("decode is not deterministic (-first +second):\n%s", diff)
	}
}
