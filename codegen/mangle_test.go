package codegen

import "testing"

import "github.com/stretchr/testify/assert"

func TestMangleMainVar(t *testing.T) {
	assert.Equal(t, "_main_x", MangleMainVar("x"))
}

func TestMangleModuleVar(t *testing.T) {
	assert.Equal(t, "math_square", MangleModuleVar("math_", "square"))
}

func TestMangleFuncAlias(t *testing.T) {
	assert.Equal(t, "hml_fn_square", MangleFuncAlias("square"))
}

func TestMangleClosureAndWrapper(t *testing.T) {
	assert.Equal(t, "_closure_3", MangleClosure(3))
	assert.Equal(t, "_closure_3_wrapper", MangleClosureWrapper(3))
}

func TestMangleEnv(t *testing.T) {
	assert.Equal(t, "_env_0", MangleEnv(0))
}

func TestMangleVar_LocalWinsOverMain(t *testing.T) {
	sc := NewScope()
	sc.Declare("x", false)
	assert.Equal(t, "x", MangleVar(sc, "x"))
}

func TestMangleVar_FallsBackToMainVar(t *testing.T) {
	sc := NewScope()
	assert.Equal(t, "_main_y", MangleVar(sc, "y"))
}

func TestMangleVar_RefParamSlot(t *testing.T) {
	sc := NewScope()
	sc.BeginFunc(2)
	sc.DeclareRefParam("a", 0)
	assert.Equal(t, "_args[0]", MangleVar(sc, "a"))
}
