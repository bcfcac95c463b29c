package codegen

import (
	"fmt"

	"github.com/hemlang/hemc/ast"
	"github.com/hemlang/hemc/typeinfo"
)

// LowerExpr translates one Hemlock expression into a C expression string,
// emitting any supporting statements (temp declarations, literal
// construction sequences) to the active output section as a side effect
// (§4.5). The returned string is always safe to splice directly into a
// larger C expression or statement.
func (ctx *Context) LowerExpr(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.IntLit:
		return cCallf(abiNewInt, "%d", ex.Value)
	case *ast.FloatLit:
		return cCallf(abiNewFloat, "%g", ex.Value)
	case *ast.StringLit:
		return cCallf(abiNewStr, "%q", ex.Value)
	case *ast.RuneLit:
		return cCallf(abiNewInt, "%d", ex.Value)
	case *ast.BoolLit:
		return cCallf(abiNewBool, boolLit(ex.Value))
	case *ast.NullLit:
		return cCall(abiNull)
	case *ast.IdentExpr:
		return ctx.lowerIdent(ex)
	case *ast.BinaryExpr:
		return ctx.lowerBinary(ex)
	case *ast.UnaryExpr:
		return ctx.lowerUnary(ex)
	case *ast.IncDecExpr:
		return ctx.lowerIncDec(ex)
	case *ast.TernaryExpr:
		return fmt.Sprintf("(hml_truthy(%s) ? %s : %s)",
			ctx.LowerExpr(ex.Cond), ctx.LowerExpr(ex.Then), ctx.LowerExpr(ex.Else))
	case *ast.NullCoalesceExpr:
		return ctx.lowerNullCoalesce(ex)
	case *ast.OptChainExpr:
		return ctx.lowerOptChain(ex)
	case *ast.CallExpr:
		return ctx.LowerCall(ex)
	case *ast.MethodCallExpr:
		return ctx.LowerMethodCall(ex)
	case *ast.IndexExpr:
		return cCall(abiArrayGet, ctx.LowerExpr(ex.Target), ctx.LowerExpr(ex.Index))
	case *ast.PropExpr:
		return cCallf(abiObjectGet, "%s, %q", ctx.LowerExpr(ex.Target), ex.Field)
	case *ast.ArrayLit:
		return ctx.lowerArrayLit(ex)
	case *ast.ObjectLit:
		return ctx.lowerObjectLit(ex)
	case *ast.FnExpr:
		return ctx.LowerClosure(ex)
	case *ast.StringInterpExpr:
		return ctx.lowerStringInterp(ex)
	case *ast.SpreadExpr:
		// A bare spread outside a call/array-literal context has no
		// meaning; callers that accept spreads (LowerCall, lowerArrayLit)
		// detect *ast.SpreadExpr themselves and never reach here.
		ctx.AddError(ex.Line(), "spread expression used outside a call or array literal")
		return cCall(abiNull)
	case *ast.AwaitExpr:
		return cCall(abiAwait, ctx.LowerExpr(ex.X))
	case *ast.SpawnExpr:
		return ctx.lowerSpawn(ex)
	case *ast.MatchExpr:
		return ctx.lowerMatchExpr(ex)
	default:
		ctx.AddError(e.Line(), "unsupported expression kind %T", e)
		return cCall(abiNull)
	}
}

func (ctx *Context) lowerIdent(ex *ast.IdentExpr) string {
	if ctx.CurrentClosure != nil && ctx.Scope.IsCapturedVar(ex.Name) {
		return ctx.captureRead(ex.Name)
	}
	if local, ok := ctx.Scope.Lookup(ex.Name); ok {
		return local
	}
	return MangleVar(ctx.Scope, ex.Name)
}

// lowerBinary implements the Expression Lowerer's full binary-operator
// path: chained string concatenation flattening and constant folding first,
// then algebraic identities, then the unboxed native fast path when both
// operands are statically known unboxable, then the runtime-tagged fast
// path for the common integer case, and finally the generic boxed runtime
// call (§4.5). Every path releases any operand it owns once it has been
// consumed, and retains nothing extra for the op's own fresh result, which
// is already uniquely owned by whoever receives it (§3, §4.5, §8 "retain/
// release balance").
func (ctx *Context) lowerBinary(ex *ast.BinaryExpr) string {
	if ex.Op == "&&" || ex.Op == "||" {
		return ctx.lowerShortCircuit(ex)
	}

	if ctx.Optimize && ex.Op == "+" {
		if leaves, ok := ctx.flattenStringConcatChain(ex); ok {
			return ctx.lowerStringConcatChain(leaves)
		}
	}

	if ctx.Optimize {
		if folded, ok := ctx.tryConstFold(ex.Op, ex.Left, ex.Right); ok {
			return folded
		}
	}

	leftC := ctx.LowerExpr(ex.Left)
	rightC := ctx.LowerExpr(ex.Right)
	leftOwned := ownsResult(ex.Left)
	rightOwned := ownsResult(ex.Right)

	if ctx.Optimize {
		if rewritten, ok := ctx.tryAlgebraicIdentity(ex.Op, ex.Left, ex.Right, leftC, rightC); ok {
			// The dropped operand's constructed value (if it was an owned
			// temp, not a bare literal) is never folded into the result —
			// release it so the identity rewrite stays balance-neutral.
			switch rewritten {
			case leftC:
				if rightOwned {
					ctx.emitRelease(rightC)
				}
			case rightC:
				if leftOwned {
					ctx.emitRelease(leftC)
				}
			}
			return rewritten
		}
		if ctx.bothUnboxable(ex.Left, ex.Right) {
			if tmpl, ok := unboxedOpTemplate[ex.Op]; ok {
				ctx.RecordPeephole("unboxed-arith")
				lref, lOwn := ctx.materializeOperand(leftC, leftOwned)
				rref, rOwn := ctx.materializeOperand(rightC, rightOwned)
				result := ctx.reboxUnboxed(ex.Op, fmt.Sprintf(tmpl, unbox(lref, ex.Left, ctx), unbox(rref, ex.Right, ctx)))
				return ctx.finishBinaryResult(result, lref, lOwn, rref, rOwn)
			}
		}
		if rewritten, ok := ctx.tryTaggedFastPath(ex.Op, leftC, rightC, leftOwned, rightOwned); ok {
			return rewritten
		}
	}

	fn, ok := binaryOpFunc[ex.Op]
	if !ok {
		ctx.AddError(ex.Line(), "unknown binary operator %q", ex.Op)
		return cCall(abiNull)
	}
	lref, lOwn := ctx.materializeOperand(leftC, leftOwned)
	rref, rOwn := ctx.materializeOperand(rightC, rightOwned)
	return ctx.finishBinaryResult(cCall(fn, lref, rref), lref, lOwn, rref, rOwn)
}

// finishBinaryResult stores result in a temp and releases whichever
// materialized operands were owned, or returns result directly when neither
// operand needed releasing.
func (ctx *Context) finishBinaryResult(result, lref string, lOwn bool, rref string, rOwn bool) string {
	if !lOwn && !rOwn {
		return result
	}
	tmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", tmp, result)
	if lOwn {
		ctx.emitRelease(lref)
	}
	if rOwn {
		ctx.emitRelease(rref)
	}
	return tmp
}

// flattenStringConcatChain collects the operands of a left-leaning chain of
// `+` whose every leaf is statically known to be a string, the precondition
// for rewriting it to a single string_concatN call instead of N-1 nested
// generic add calls (§4.5, §8 scenario 2: `"a"+"b"+"c"+"d"` -> one
// string_concat4 call). Declines on anything not provably all-string, since
// a bare `+` must still fall through to the generic runtime call to decide
// numeric add vs. string concat at runtime.
func (ctx *Context) flattenStringConcatChain(ex *ast.BinaryExpr) ([]ast.Expr, bool) {
	if ctx.Types == nil {
		return nil, false
	}
	var leaves []ast.Expr
	var walk func(e ast.Expr) bool
	walk = func(e ast.Expr) bool {
		if b, ok := e.(*ast.BinaryExpr); ok && b.Op == "+" {
			return walk(b.Left) && walk(b.Right)
		}
		if ctx.Types.ExprKind(e) != typeinfo.String {
			return false
		}
		leaves = append(leaves, e)
		return true
	}
	if !walk(ex) || len(leaves) < 3 {
		return nil, false
	}
	return leaves, true
}

// lowerStringConcatChain emits one string_concatN call for short chains
// (the runtime provides concat2..concat8) and falls back to pairwise
// hml_string_concat folding for longer ones.
func (ctx *Context) lowerStringConcatChain(leaves []ast.Expr) string {
	parts := make([]string, len(leaves))
	for i, e := range leaves {
		parts[i] = ctx.LowerExpr(e)
	}
	if len(parts) <= 8 {
		ctx.RecordPeephole("string-concat-chain")
		return cCall(fmt.Sprintf("hml_string_concat%d", len(parts)), parts...)
	}
	acc := parts[0]
	for _, p := range parts[1:] {
		acc = cCall("hml_string_concat", acc, p)
	}
	return acc
}

// bothUnboxable reports whether the type side table marks both operands as
// statically known scalar kinds, the precondition for the unboxed fast path.
func (ctx *Context) bothUnboxable(l, r ast.Expr) bool {
	if ctx.Types == nil {
		return false
	}
	return ctx.Types.ExprKind(l).Unboxable() && ctx.Types.ExprKind(r).Unboxable()
}

// unbox returns the native-scalar accessor for an already-lowered boxed
// expression, chosen by its statically known kind.
func unbox(boxedC string, src ast.Expr, ctx *Context) string {
	switch ctx.Types.ExprKind(src) {
	case typeinfo.Float:
		return cCall("hml_float_value", boxedC)
	case typeinfo.Bool:
		return cCall("hml_bool_value", boxedC)
	default:
		return cCall("hml_int_value", boxedC)
	}
}

// reboxUnboxed wraps a native comparison/arithmetic result computed by the
// unboxed fast path back into a boxed hml_value, or leaves it as a plain C
// bool when the operator produces a truth value.
func (ctx *Context) reboxUnboxed(op, nativeExpr string) string {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return cCallf(abiNewBool, nativeExpr)
	default:
		return cCallf(abiNewInt, nativeExpr)
	}
}

// lowerShortCircuit keeps && and || lazy: the right operand must not be
// evaluated (and so must not run any side effects) unless the left
// operand's truthiness requires it, matching source-level semantics.
func (ctx *Context) lowerShortCircuit(ex *ast.BinaryExpr) string {
	leftC := ctx.LowerExpr(ex.Left)
	tmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s;", tmp)
	ctx.Writer.Emit("if (hml_truthy(%s)) {", leftC)
	ctx.Writer.Indent()
	if ex.Op == "&&" {
		rightC := ctx.LowerExpr(ex.Right)
		ctx.Writer.Emit("%s = %s;", tmp, rightC)
	} else {
		ctx.Writer.Emit("%s = %s;", tmp, cCallf(abiNewBool, "true"))
	}
	ctx.Writer.Dedent()
	ctx.Writer.Emit("} else {")
	ctx.Writer.Indent()
	if ex.Op == "&&" {
		ctx.Writer.Emit("%s = %s;", tmp, cCallf(abiNewBool, "false"))
	} else {
		rightC := ctx.LowerExpr(ex.Right)
		ctx.Writer.Emit("%s = %s;", tmp, rightC)
	}
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
	return tmp
}

func (ctx *Context) lowerUnary(ex *ast.UnaryExpr) string {
	x := ctx.LowerExpr(ex.X)
	switch ex.Op {
	case "-":
		return cCall("hml_neg", x)
	case "!":
		return cCallf(abiNewBool, "!hml_truthy(%s)", x)
	case "~":
		return cCall("hml_bnot", x)
	default:
		ctx.AddError(ex.Line(), "unknown unary operator %q", ex.Op)
		return cCall(abiNull)
	}
}

func (ctx *Context) lowerIncDec(ex *ast.IncDecExpr) string {
	ident, ok := ex.X.(*ast.IdentExpr)
	if !ok {
		ctx.AddError(ex.Line(), "%s target must be a variable", ex.Op)
		return cCall(abiNull)
	}
	name := ctx.lowerIdent(ident)
	op := "hml_add"
	if ex.Op == "--" {
		op = "hml_sub"
	}
	updated := cCall(op, name, cCallf(abiNewInt, "1"))
	before := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", before, name)
	ctx.Writer.Emit("%s = %s;", name, updated)
	if ex.Prefix {
		return name
	}
	return before
}

func (ctx *Context) lowerNullCoalesce(ex *ast.NullCoalesceExpr) string {
	leftC := ctx.LowerExpr(ex.Left)
	tmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", tmp, leftC)
	ctx.Writer.Emit("if (hml_is_null(%s)) {", tmp)
	ctx.Writer.Indent()
	rightC := ctx.LowerExpr(ex.Right)
	ctx.Writer.Emit("%s = %s;", tmp, rightC)
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
	return tmp
}

func (ctx *Context) lowerOptChain(ex *ast.OptChainExpr) string {
	targetC := ctx.LowerExpr(ex.Target)
	tmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s;", tmp)
	ctx.Writer.Emit("{")
	ctx.Writer.Indent()
	ctx.Writer.Emit("hml_value _oc = %s;", targetC)
	ctx.Writer.Emit("if (hml_is_null(_oc)) {")
	ctx.Writer.Indent()
	ctx.Writer.Emit("%s = %s;", tmp, cCall(abiNull))
	ctx.Writer.Dedent()
	ctx.Writer.Emit("} else {")
	ctx.Writer.Indent()
	if ex.Index != nil {
		ctx.Writer.Emit("%s = %s;", tmp, cCall(abiArrayGet, "_oc", ctx.LowerExpr(ex.Index)))
	} else {
		ctx.Writer.Emit("%s = %s;", tmp, cCallf(abiObjectGet, "_oc, %q", ex.Field))
	}
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
	return tmp
}

func (ctx *Context) lowerArrayLit(ex *ast.ArrayLit) string {
	tmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", tmp, cCall(abiArrayNew))
	for _, el := range ex.Elements {
		if sp, ok := el.(*ast.SpreadExpr); ok {
			src := ctx.LowerExpr(sp.X)
			ctx.Writer.Emit("hml_array_extend(%s, %s);", tmp, src)
			continue
		}
		ctx.Writer.Emit("%s;", cCall(abiArrayPush, tmp, ctx.LowerExpr(el)))
	}
	return tmp
}

func (ctx *Context) lowerObjectLit(ex *ast.ObjectLit) string {
	tmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", tmp, cCall(abiObjectNew))
	for _, f := range ex.Fields {
		ctx.Writer.Emit("%s;", cCallf(abiObjectSet, "%s, %q, %s", tmp, f.Key, ctx.LowerExpr(f.Value)))
	}
	return tmp
}

// lowerStringInterp builds an interpolated string as a sequence of
// concatenations into one temp, converting non-string embedded expressions
// with hml_to_string first.
func (ctx *Context) lowerStringInterp(ex *ast.StringInterpExpr) string {
	tmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", tmp, cCallf(abiNewStr, "%q", ""))
	for _, part := range ex.Parts {
		if part.Expr == nil {
			ctx.Writer.Emit("%s = %s;", tmp, cCallf("hml_string_concat", "%s, %s", tmp, cCallf(abiNewStr, "%q", part.Text)))
			continue
		}
		v := ctx.LowerExpr(part.Expr)
		ctx.Writer.Emit("%s = %s;", tmp, cCall("hml_string_concat", tmp, cCall("hml_to_string", v)))
	}
	return tmp
}

func (ctx *Context) lowerSpawn(ex *ast.SpawnExpr) string {
	call, ok := ex.Call.(*ast.CallExpr)
	if !ok {
		ctx.AddError(ex.Line(), "spawn requires a function call")
		return cCall(abiNull)
	}
	callee := ctx.LowerExpr(call.Callee)
	argsTmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", argsTmp, cCall(abiArrayNew))
	for _, a := range call.Args {
		ctx.Writer.Emit("%s;", cCall(abiArrayPush, argsTmp, ctx.LowerExpr(a)))
	}
	return cCall(abiSpawn, callee, argsTmp)
}
