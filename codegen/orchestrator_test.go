package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemlang/hemc/ast"
	"github.com/hemlang/hemc/modcache"
)

func mustDecode(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ast.DecodeProgram([]byte(src))
	require.NoError(t, err)
	return prog
}

func TestCompile_LetAndPrint(t *testing.T) {
	prog := mustDecode(t, `{
		"statements": [
			{"kind": "LetStmt", "name": "x", "line": 1, "value": {"kind": "IntLit", "value": 7, "line": 1}},
			{"kind": "ExprStmt", "line": 2, "x": {
				"kind": "CallExpr", "line": 2,
				"callee": {"kind": "IdentExpr", "name": "print", "line": 2},
				"args": [{"kind": "IdentExpr", "name": "x", "line": 2}]
			}}
		]
	}`)

	out, err := Compile(prog, modcache.New())
	require.NoError(t, err)
	assert.Contains(t, out, "int hml_main(int argc, char **argv) {")
	assert.Contains(t, out, "_main_x")
	assert.Contains(t, out, "return 0;")
}

func TestCompile_NamedFunctionGetsFnAlias(t *testing.T) {
	prog := mustDecode(t, `{
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
			}
		]
	}`)

	out, err := Compile(prog, modcache.New())
	require.NoError(t, err)
	assert.Contains(t, out, "hml_fn_square")
}

func TestCompile_UnresolvedImportReportsError(t *testing.T) {
	prog := mustDecode(t, `{
		"statements": [
			{"kind": "ImportStmt", "path": "./missing.hml", "alias": "m", "line": 1}
		]
	}`)

	_, err := Compile(prog, modcache.New())
	assert.Error(t, err)
}

func TestCompile_EmitMapViaCompileWithContext(t *testing.T) {
	prog := mustDecode(t, `{
		"statements": [
			{"kind": "FuncDef", "name": "add", "line": 5,
				"params": [{"name": "a"}, {"name": "b"}],
				"body": [
					{"kind": "ReturnStmt", "line": 6, "value": {
						"kind": "BinaryExpr", "op": "+", "line": 6,
						"left": {"kind": "IdentExpr", "name": "a", "line": 6},
						"right": {"kind": "IdentExpr", "name": "b", "line": 6}
					}}
				]
			}
		]
	}`)

	ctx := NewContext(modcache.New())
	_, err := CompileWithContext(ctx, prog)
	require.NoError(t, err)

	require.Len(t, ctx.EmitMap, 1)
	assert.Equal(t, "function", ctx.EmitMap[0].Kind)
	assert.Equal(t, 5, ctx.EmitMap[0].Line)
}

func TestCompile_MatchWithWildcardAndTypePattern(t *testing.T) {
	prog := mustDecode(t, `{
		"statements": [
			{"kind": "LetStmt", "name": "v", "line": 1, "value": {"kind": "IntLit", "value": 1, "line": 1}},
			{"kind": "MatchStmt", "line": 2,
				"subject": {"kind": "IdentExpr", "name": "v", "line": 2},
				"arms": [
					{
						"pattern": {"kind": "TypePattern", "type_name": "int", "binding": "n", "line": 2},
						"body": [{"kind": "ExprStmt", "line": 2, "x": {
							"kind": "CallExpr", "line": 2,
							"callee": {"kind": "IdentExpr", "name": "print", "line": 2},
							"args": [{"kind": "IdentExpr", "name": "n", "line": 2}]
						}}]
					},
					{
						"pattern": {"kind": "WildcardPattern", "line": 2},
						"body": []
					}
				]
			}
		]
	}`)

	out, err := Compile(prog, modcache.New())
	require.NoError(t, err)
	assert.Contains(t, out, "hml_type_is")
}

func TestCompile_SelfTailCallRewritesToGoto(t *testing.T) {
	prog := mustDecode(t, `{
		"statements": [
			{"kind": "FuncDef", "name": "loop", "line": 1,
				"params": [{"name": "n"}],
				"body": [
					{"kind": "ReturnStmt", "line": 2, "value": {
						"kind": "CallExpr", "line": 2,
						"callee": {"kind": "IdentExpr", "name": "loop", "line": 2},
						"args": [{"kind": "IdentExpr", "name": "n", "line": 2}]
					}}
				]
			}
		]
	}`)

	ctx := NewContext(modcache.New(), WithOptimize(true))
	out, err := CompileWithContext(ctx, prog)
	require.NoError(t, err)
	assert.Contains(t, out, "goto")
	assert.Equal(t, 1, ctx.PeepholeCounters["self-tail-call-to-goto"])
}

func TestCompile_RefParamDisqualifiesTailCall(t *testing.T) {
	prog := mustDecode(t, `{
		"statements": [
			{"kind": "FuncDef", "name": "loop", "line": 1,
				"params": [{"name": "n", "is_ref": true}],
				"body": [
					{"kind": "ReturnStmt", "line": 2, "value": {
						"kind": "CallExpr", "line": 2,
						"callee": {"kind": "IdentExpr", "name": "loop", "line": 2},
						"args": [{"kind": "IdentExpr", "name": "n", "line": 2}]
					}}
				]
			}
		]
	}`)

	ctx := NewContext(modcache.New(), WithOptimize(true))
	_, err := CompileWithContext(ctx, prog)
	require.NoError(t, err)
	assert.Zero(t, ctx.PeepholeCounters["self-tail-call-to-goto"])
}

func TestCompile_ExternFunctionUsesFFI(t *testing.T) {
	prog := mustDecode(t, `{
		"statements": [
			{"kind": "FuncDef", "name": "sqrt", "line": 1,
				"is_extern": true, "extern_name": "sqrt",
				"params": [{"name": "x"}],
				"body": []
			}
		]
	}`)

	out, err := Compile(prog, modcache.New())
	require.NoError(t, err)
	assert.Contains(t, out, "hml_ffi_resolve")
	assert.Contains(t, out, "hml_ffi_call")
}
