package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScope_DeclareAndLookup(t *testing.T) {
	sc := NewScope()
	mangled := sc.Declare("count", false)
	assert.Equal(t, "count", mangled)

	got, ok := sc.Lookup("count")
	assert.True(t, ok)
	assert.Equal(t, "count", got)
}

func TestScope_DeclareReservedCKeyword(t *testing.T) {
	sc := NewScope()
	mangled := sc.Declare("for", false)
	assert.Equal(t, "_for", mangled)
}

func TestScope_ConstTracking(t *testing.T) {
	sc := NewScope()
	sc.Declare("pi", true)
	assert.True(t, sc.IsConst("pi"))

	sc.Declare("x", false)
	assert.False(t, sc.IsConst("x"))
}

func TestScope_BlockShadowingAndPop(t *testing.T) {
	sc := NewScope()
	sc.Declare("x", false)
	sc.PushBlock()
	sc.Declare("x", true)
	assert.True(t, sc.IsConst("x"))
	sc.PopBlock()
	assert.False(t, sc.IsConst("x"))
}

func TestScope_CurrentBlockIDNeverReusedAcrossSiblingBlocks(t *testing.T) {
	sc := NewScope()
	sc.PushBlock()
	first := sc.CurrentBlockID()
	sc.PopBlock()
	sc.PushBlock()
	second := sc.CurrentBlockID()
	sc.PopBlock()
	assert.NotEqual(t, first, second)
}

func TestScope_IsCapturedVar(t *testing.T) {
	sc := NewScope()
	sc.Declare("outer", false)
	sc.PushLambda()
	sc.Declare("inner", false)

	assert.True(t, sc.IsCapturedVar("outer"))
	assert.False(t, sc.IsCapturedVar("inner"))
	sc.PopLambda()
}

func TestScope_IsCapturedVarExcludesMainGlobals(t *testing.T) {
	sc := NewScope()
	sc.DeclareMainVar("g")
	sc.PushLambda()
	assert.False(t, sc.IsCapturedVar("g"))
	sc.PopLambda()
}

func TestScope_RefParamMask(t *testing.T) {
	sc := NewScope()
	sc.BeginFunc(3)
	sc.MarkRefParam(1)
	assert.False(t, sc.IsRefParam(0))
	assert.True(t, sc.IsRefParam(1))
	assert.False(t, sc.IsRefParam(2))
}

func TestScope_LocalsFromCollectsInnerToOuterReverseOrder(t *testing.T) {
	sc := NewScope()
	sc.Declare("a", false)
	sc.PushBlock()
	sc.Declare("b", false)
	sc.Declare("c", false)

	assert.Equal(t, []string{"c", "b"}, sc.CurrentBlockLocals())
	assert.Equal(t, []string{"c", "b", "a"}, sc.LocalsFrom(0))
	sc.PopBlock()
}

func TestScope_FuncBoundaryStopsLocalsFrom(t *testing.T) {
	sc := NewScope()
	sc.Declare("outer", false)
	sc.PushBlock()
	sc.PushFuncBoundary()
	sc.Declare("n", false)
	sc.PushBlock()
	sc.Declare("tmp", false)

	assert.Equal(t, []string{"tmp", "n"}, sc.LocalsFrom(sc.CurrentFuncBase()))
	sc.PopBlock()
	sc.PopFuncBoundary()
	sc.PopBlock()
}

func TestScope_LoopBoundaryTracksBreakTarget(t *testing.T) {
	sc := NewScope()
	_, ok := sc.CurrentLoopBase()
	assert.False(t, ok)

	sc.PushBlock()
	sc.PushLoopBoundary()
	base, ok := sc.CurrentLoopBase()
	assert.True(t, ok)
	assert.Equal(t, len(sc.blocks)-1, base)
	sc.PopLoopBoundary()
	sc.PopBlock()
}

func TestScope_DeclareRefParamNotTrackedAsLocal(t *testing.T) {
	sc := NewScope()
	sc.DeclareRefParam("r", 0)
	assert.Empty(t, sc.CurrentBlockLocals())
}

func TestScope_ImportAliasResolution(t *testing.T) {
	sc := NewScope()
	sc.DeclareImport("m", "/abs/mathlib.hml")
	p, ok := sc.ResolveImport("m")
	assert.True(t, ok)
	assert.Equal(t, "/abs/mathlib.hml", p)

	_, ok = sc.ResolveImport("missing")
	assert.False(t, ok)
}
