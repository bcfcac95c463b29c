package codegen

import "github.com/hemlang/hemc/ast"

// refcount.go implements the reference-count discipline spec.md's opening
// invariant and §4.5/§4.7/§4.8 require: every runtime value is retained and
// released exactly once on every control-flow path, including early return,
// break/continue out of a loop, and closure environment writes. The
// generator never inspects a value's interior (§3), so every emitted call
// goes through the primitive-skipping hml_retain_if_needed/
// hml_release_if_needed pair rather than the runtime's unconditional forms —
// a no-op on an unboxed/primitive tag, a real refcount bump/drop otherwise.

func (ctx *Context) emitRetain(v string) {
	ctx.Writer.Emit("%s;", cCall(abiRetain, v))
}

func (ctx *Context) emitRelease(v string) {
	ctx.Writer.Emit("%s;", cCall(abiRelease, v))
}

// releaseLocalsFrom releases every local declared in blocks from baseIdx
// through the innermost currently open block — used on early-exit control
// flow (return, break, continue) that skips past more than one enclosing
// block's own normal close.
func (ctx *Context) releaseLocalsFrom(baseIdx int) {
	for _, name := range ctx.Scope.LocalsFrom(baseIdx) {
		ctx.emitRelease(name)
	}
}

// releaseCurrentBlockLocals releases only the innermost block's own
// locals — used when a nested block (if/while/for/match/try body) closes
// normally, falling through to the statement after it rather than jumping
// past it.
func (ctx *Context) releaseCurrentBlockLocals() {
	for _, name := range ctx.Scope.CurrentBlockLocals() {
		ctx.emitRelease(name)
	}
}

// ownsResult reports whether lowering e produces a freshly owned value — a
// temp that must itself be released once an operator has consumed it — as
// opposed to a borrowed read of an existing binding's current value. A bare
// identifier, array index, or property read hands back a reference someone
// else already owns (the variable, the array, the object); releasing it a
// second time here would under-count that owner's reference.
func ownsResult(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IdentExpr, *ast.IndexExpr, *ast.PropExpr:
		return false
	default:
		return true
	}
}

// materializeOperand stores an owned operand into a fresh temp so it can
// safely be referenced more than once in the expression being built (a
// second textual reference to the raw lowered expression would re-evaluate
// it — and, for a fresh construction, re-allocate it). A borrowed read
// (owned == false) is already a bare variable name and is returned as-is.
func (ctx *Context) materializeOperand(c string, owned bool) (string, bool) {
	if !owned {
		return c, false
	}
	tmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", tmp, c)
	return tmp, true
}
