package codegen

import (
	"fmt"

	"github.com/hemlang/hemc/ast"
)

// peephole.go implements the "small set of peephole rewrites and strength
// reductions" the Expression Lowerer is allowed to perform (§4.5, Non-goals
// "optimizing emitted C beyond a small set ..."). Every rule here must be
// semantics-preserving for every input the runtime can produce — when in
// doubt the rule declines and the generic boxed call path is used instead.

func asIntLit(e ast.Expr) (int64, bool) {
	if l, ok := e.(*ast.IntLit); ok {
		return l.Value, true
	}
	return 0, false
}

// powerOfTwoShift returns the shift amount when n is a positive power of
// two, enabling x*n -> x<<shift and x%n -> x&(n-1) (§4.5 "x*2^k", "x%2^k").
func powerOfTwoShift(n int64) (uint, bool) {
	if n <= 0 {
		return 0, false
	}
	if n&(n-1) != 0 {
		return 0, false
	}
	shift := uint(0)
	for n > 1 {
		n >>= 1
		shift++
	}
	return shift, true
}

// foldConstInt evaluates op on two integer literals at compile time, when
// op is a closed arithmetic/bitwise/comparison operator with well-defined
// integer semantics. Division/modulo by zero decline so the runtime keeps
// producing its normal error instead of the generator crashing or silently
// picking a value.
func foldConstInt(op string, a, b int64) (int64, bool) {
	switch op {
	case "+":
		return a + b, true
	case "-":
		return a - b, true
	case "*":
		return a * b, true
	case "/":
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case "%":
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case "&":
		return a & b, true
	case "|":
		return a | b, true
	case "^":
		return a ^ b, true
	case "<<":
		if b < 0 || b >= 64 {
			return 0, false
		}
		return a << uint(b), true
	case ">>":
		if b < 0 || b >= 64 {
			return 0, false
		}
		return a >> uint(b), true
	}
	return 0, false
}

func foldConstBool(op string, a, b int64) (bool, bool) {
	switch op {
	case "==":
		return a == b, true
	case "!=":
		return a != b, true
	case "<":
		return a < b, true
	case "<=":
		return a <= b, true
	case ">":
		return a > b, true
	case ">=":
		return a >= b, true
	}
	return false, false
}

// tryConstFold attempts compile-time constant folding for two integer
// literal operands, emitting a literal hml_new_int/hml_new_bool call in
// place of a runtime arithmetic/comparison call.
func (ctx *Context) tryConstFold(op string, left, right ast.Expr) (string, bool) {
	a, aok := asIntLit(left)
	b, bok := asIntLit(right)
	if !aok || !bok {
		return "", false
	}
	if v, ok := foldConstInt(op, a, b); ok {
		ctx.RecordPeephole("const-fold-int")
		return cCallf(abiNewInt, "%d", v), true
	}
	if v, ok := foldConstBool(op, a, b); ok {
		ctx.RecordPeephole("const-fold-bool")
		return cCallf(abiNewBool, boolLit(v)), true
	}
	return "", false
}

// tryAlgebraicIdentity rewrites x+0, x-0, x*1, x/1, 0+x, 1*x, x*0, 0*x,
// x*2^k, x%2^k, x<<0 etc. into a simpler expression than a full runtime
// call, operating on already-lowered operand C expressions leftC/rightC so
// the rewritten form still works whether the operand was itself a literal,
// a variable or a nested expression.
func (ctx *Context) tryAlgebraicIdentity(op string, left, right ast.Expr, leftC, rightC string) (string, bool) {
	lv, lIsLit := asIntLit(left)
	rv, rIsLit := asIntLit(right)

	switch op {
	case "+":
		if rIsLit && rv == 0 {
			ctx.RecordPeephole("add-zero")
			return leftC, true
		}
		if lIsLit && lv == 0 {
			ctx.RecordPeephole("add-zero")
			return rightC, true
		}
	case "-":
		if rIsLit && rv == 0 {
			ctx.RecordPeephole("sub-zero")
			return leftC, true
		}
	case "*":
		if rIsLit && rv == 0 || lIsLit && lv == 0 {
			ctx.RecordPeephole("mul-zero")
			return cCallf(abiNewInt, "0"), true
		}
		if rIsLit && rv == 1 {
			ctx.RecordPeephole("mul-one")
			return leftC, true
		}
		if lIsLit && lv == 1 {
			ctx.RecordPeephole("mul-one")
			return rightC, true
		}
		if rIsLit {
			if shift, ok := powerOfTwoShift(rv); ok && shift > 0 {
				ctx.RecordPeephole("mul-pow2-to-shift")
				return cUnboxedShiftMul(leftC, shift), true
			}
		}
	case "/":
		if rIsLit && rv == 1 {
			ctx.RecordPeephole("div-one")
			return leftC, true
		}
	case "%":
		if rIsLit {
			if _, ok := powerOfTwoShift(rv); ok {
				ctx.RecordPeephole("mod-pow2-to-mask")
				return cUnboxedMaskMod(leftC, rv-1), true
			}
		}
	case "|":
		if rIsLit && rv == 0 {
			ctx.RecordPeephole("or-zero")
			return leftC, true
		}
		if lIsLit && lv == 0 {
			ctx.RecordPeephole("or-zero")
			return rightC, true
		}
	case "^":
		if rIsLit && rv == 0 {
			ctx.RecordPeephole("xor-zero")
			return leftC, true
		}
		if lIsLit && lv == 0 {
			ctx.RecordPeephole("xor-zero")
			return rightC, true
		}
	case "<<", ">>":
		if rIsLit && rv == 0 {
			ctx.RecordPeephole("shift-zero")
			return leftC, true
		}
	}
	return "", false
}

// taggedFastOp maps an arithmetic/shift operator to the runtime's width-
// specialized i32/i64 entry points used by the tagged fast-path cascade
// (§4.5, §237 "both_i32 ? i32_op : both_i64 ? i64_op : binary_op"): a
// runtime-tag check picks the cheapest primitive that can hold both
// operands without the generator itself ever inspecting a value's interior.
var taggedFastOp = map[string]struct{ i32, i64 string }{
	"+":  {"hml_i32_add", "hml_i64_add"},
	"-":  {"hml_i32_sub", "hml_i64_sub"},
	"*":  {"hml_i32_mul", "hml_i64_mul"},
	"<<": {"hml_i32_lshift", "hml_i64_lshift"},
	">>": {"hml_i32_rshift", "hml_i64_rshift"},
}

// tryTaggedFastPath builds the three-way cascade for an operator the
// runtime provides width-specialized primitives for. Operands are
// materialized into temps first since the cascade references each one
// three times (the two predicate checks plus whichever branch executes) —
// reusing the raw lowered expression text that many times would re-run any
// side effect (or re-allocate a fresh construction) instead of reading the
// same value each time.
func (ctx *Context) tryTaggedFastPath(op, leftC, rightC string, leftOwned, rightOwned bool) (string, bool) {
	ops, ok := taggedFastOp[op]
	if !ok {
		return "", false
	}
	lt, lOwn := ctx.materializeOperand(leftC, leftOwned)
	rt, rOwn := ctx.materializeOperand(rightC, rightOwned)
	ctx.RecordPeephole("tagged-fast-path")
	cascade := fmt.Sprintf(
		"(hml_both_i32(%s, %s) ? %s(%s, %s) : (hml_both_i64(%s, %s) ? %s(%s, %s) : %s(%s, %s)))",
		lt, rt, ops.i32, lt, rt,
		lt, rt, ops.i64, lt, rt,
		binaryOpFunc[op], lt, rt,
	)
	return ctx.finishBinaryResult(cascade, lt, lOwn, rt, rOwn), true
}
