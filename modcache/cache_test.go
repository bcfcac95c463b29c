package modcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemlang/hemc/ast"
)

func TestResolvePath_RelativeJoinsAndCleans(t *testing.T) {
	got := ResolvePath("/home/x/proj", "./lib/../lib/math.hml")
	assert.Equal(t, "/home/x/proj/lib/math.hml", got)
}

func TestResolvePath_AbsoluteIgnoresBaseDir(t *testing.T) {
	got := ResolvePath("/home/x/proj", "/etc/math.hml")
	assert.Equal(t, "/etc/math.hml", got)
}

func TestCache_PutAndGetCached(t *testing.T) {
	c := New()
	mod := &CompiledModule{Prefix: "math_", AbsPath: "/abs/math.hml"}
	c.Put("/abs/math.hml", mod)

	got, ok := c.GetCached("/abs/math.hml")
	require.True(t, ok)
	assert.Equal(t, mod, got)
}

func TestCache_FindImport_NotCompiledErrors(t *testing.T) {
	c := New()
	_, err := c.FindImport("/base", "./missing.hml")
	assert.Error(t, err)
}

func TestCache_FindImport_ResolvesRelativeToBaseDir(t *testing.T) {
	c := New()
	mod := &CompiledModule{Prefix: "m_"}
	c.Put(ResolvePath("/base", "./math.hml"), mod)

	got, err := c.FindImport("/base", "./math.hml")
	require.NoError(t, err)
	assert.Equal(t, mod, got)
}

func TestCompiledModule_FindExport(t *testing.T) {
	fn := &ast.FuncDef{Name: "square"}
	mod := &CompiledModule{
		Exports: map[string]Export{
			"square": {Kind: ExportFunc, Func: fn},
		},
		ExternFns: map[string]bool{"sqrt": true},
	}

	exp, ok := mod.FindExport("square")
	require.True(t, ok)
	assert.Equal(t, ExportFunc, exp.Kind)
	assert.Same(t, fn, exp.Func)

	_, ok = mod.FindExport("missing")
	assert.False(t, ok)

	assert.True(t, mod.IsExternFn("sqrt"))
	assert.False(t, mod.IsExternFn("square"))
}

func TestCache_FindExport(t *testing.T) {
	c := New()
	c.Put("/abs/math.hml", &CompiledModule{
		Exports: map[string]Export{
			"pi": {Kind: ExportValue},
		},
	})

	exp, err := c.FindExport("/abs/math.hml", "pi")
	require.NoError(t, err)
	assert.Equal(t, ExportValue, exp.Kind)

	_, err = c.FindExport("/abs/math.hml", "missing")
	assert.Error(t, err)

	_, err = c.FindExport("/abs/unknown.hml", "pi")
	assert.Error(t, err)
}

func TestCache_All(t *testing.T) {
	c := New()
	c.Put("/a", &CompiledModule{Prefix: "a_"})
	c.Put("/b", &CompiledModule{Prefix: "b_"})

	all := c.All()
	assert.Len(t, all, 2)
	assert.Equal(t, "a_", all["/a"].Prefix)
}
