package typeinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Unboxable(t *testing.T) {
	assert.True(t, Int.Unboxable())
	assert.True(t, Float.Unboxable())
	assert.True(t, Bool.Unboxable())
	assert.False(t, String.Unboxable())
	assert.False(t, Dynamic.Unboxable())
}

func TestKind_IsNumeric(t *testing.T) {
	assert.True(t, Int.IsNumeric())
	assert.True(t, Float.IsNumeric())
	assert.False(t, Bool.IsNumeric())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "int", Int.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "dynamic", Dynamic.String())
}

func TestTable_ExprKindMissDefaultsToDynamic(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, Dynamic, tbl.ExprKind(nil))
}

func TestTable_NilTableDegrades(t *testing.T) {
	var tbl *Table
	assert.Equal(t, Dynamic, tbl.ExprKind(nil))
	assert.Equal(t, Dynamic, tbl.VarKind("f", "x"))
	assert.Nil(t, tbl.FuncSignature("f"))
}

func TestTable_VarKindRoundTrip(t *testing.T) {
	tbl := NewTable()
	tbl.SetVarKind("main", "x", Int)
	assert.Equal(t, Int, tbl.VarKind("main", "x"))
	assert.Equal(t, Dynamic, tbl.VarKind("main", "y"))
	assert.Equal(t, Dynamic, tbl.VarKind("other", "x"))
}

func TestUnify(t *testing.T) {
	assert.Equal(t, Int, Unify(Int, Int))
	assert.Equal(t, Int, Unify(Unknown, Int))
	assert.Equal(t, Int, Unify(Int, Unknown))
	assert.Equal(t, Float, Unify(Int, Float))
	assert.Equal(t, Dynamic, Unify(Int, String))
	assert.Equal(t, Dynamic, Unify(Dynamic, Int))
}
