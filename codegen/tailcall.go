package codegen

import "github.com/hemlang/hemc/ast"

// tailcall.go implements the optional self-tail-call rewrite (§4.12): a
// `return self(args...)` where self is the function currently being
// lowered, with no enclosing defer and no rest parameter, becomes a
// parameter reassignment followed by `goto` back to the function's entry
// label instead of a recursive call — trading stack depth for a loop.

// tailCallState describes the named function whose body is presently being
// lowered: its name, parameter names, whether it has a rest parameter or a
// defer, and its entry label. emitNamedFunction sets it around a FuncDef
// body via BeginTailCallScope; FnExpr bodies do not set it.
type tailCallState struct {
	name     string
	params   []string
	hasRest  bool
	hasDefer bool
	label    string
}

// BeginTailCallScope records the identity of the function body about to be
// lowered and emits its entry label, returning a func that restores the
// previous state once the body is done.
func (ctx *Context) BeginTailCallScope(name string, params []ast.Param, hasRest bool) func() {
	prev := ctx.tailCall
	ctx.tailCall = &tailCallState{
		name:    name,
		hasRest: hasRest,
		label:   ctx.Temps.Next() + "_entry",
	}
	for _, p := range params {
		ctx.tailCall.params = append(ctx.tailCall.params, p.Name)
	}
	ctx.Writer.Emit("%s:", ctx.tailCall.label)
	return func() { ctx.tailCall = prev }
}

// NoteDefer marks that the current function body contains a defer
// statement, disqualifying it from self-tail-call rewriting (a goto past a
// defer would skip the deferred call's registration).
func (ctx *Context) NoteDefer() {
	if ctx.tailCall != nil {
		ctx.tailCall.hasDefer = true
	}
}

// tryTailCall attempts the rewrite for `return <call>`. Returns true when
// it emitted the goto form and the caller should not also emit a plain
// `return`.
func (ctx *Context) tryTailCall(ret *ast.ReturnStmt) bool {
	if !ctx.Optimize {
		return false
	}
	ts := ctx.tailCall
	if ts == nil || ts.hasDefer || ts.hasRest {
		return false
	}
	for i := range ts.params {
		// A ref parameter is bound directly to its _args[i] slot (no local
		// copy); rewriting the call to a goto would need to reassign that
		// slot with the same aliasing rules, which the plain-reassignment
		// form below does not model. Simplest to leave these as real calls.
		if ctx.Scope.IsRefParam(i) {
			return false
		}
	}
	call, ok := ret.Value.(*ast.CallExpr)
	if !ok {
		return false
	}
	ident, ok := call.Callee.(*ast.IdentExpr)
	if !ok || ident.Name != ts.name {
		return false
	}
	if len(call.Args) != len(ts.params) {
		return false
	}

	args := make([]string, len(call.Args))
	for i, a := range call.Args {
		args[i] = ctx.LowerExpr(a)
	}
	for i, p := range ts.params {
		ctx.Writer.Emit("hml_value %s_tc%d = %s;", p, i, args[i])
	}
	// The goto skips past every block between here and the function entry
	// without running their normal scope-exit release — release those
	// locals explicitly first (§3 "every control-flow path ... including
	// ... tail calls").
	ctx.releaseLocalsFrom(ctx.Scope.CurrentFuncBase() + 1)
	for i, p := range ts.params {
		mangled, ok := ctx.Scope.Lookup(p)
		if !ok {
			mangled = p
		}
		// Release the old parameter value before it's overwritten — the
		// new argument temp already owns its own reference uniquely, so it
		// moves into the parameter slot without needing a retain.
		ctx.emitRelease(mangled)
		ctx.Writer.Emit("%s = %s_tc%d;", mangled, p, i)
	}
	ctx.RecordPeephole("self-tail-call-to-goto")
	ctx.Writer.Emit("goto %s;", ts.label)
	return true
}
