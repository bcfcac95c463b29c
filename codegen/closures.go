package codegen

import "github.com/hemlang/hemc/ast"

// LowerClosure emits a closure literal: a new top-level C function for its
// body (added to the Closures section), a heap environment populated with
// its captured free variables, and returns the expression that constructs
// the runtime closure value at the call site (§4.7, §4.10).
func (ctx *Context) LowerClosure(fn *ast.FnExpr) string {
	enclosingDepth := ctx.Scope.CurrentBlockID()

	ctx.Scope.PushLambda()
	ctx.Scope.PushFuncBoundary()
	ctx.Scope.BeginFunc(len(fn.Params))
	for i, p := range fn.Params {
		if p.IsRef {
			ctx.Scope.DeclareRefParam(p.Name, i)
			ctx.Scope.MarkRefParam(i)
			continue
		}
		ctx.Scope.Declare(p.Name, false)
	}
	if fn.RestParam != "" {
		ctx.Scope.Declare(fn.RestParam, false)
	}

	free := FreeVars(fn.Body, ctx.Scope, IsBuiltinName)

	ci := ctx.NewClosure(fn.Line())
	ci.Params = fn.Params
	ci.RestParam = fn.RestParam
	ci.FreeVars = free

	if len(free) > 0 {
		group := ctx.groupForBlock(enclosingDepth)
		ci.EnvName = group.name
		for _, name := range free {
			ctx.EnvSlot(enclosingDepth, name)
		}
	}

	outerClosure := ctx.CurrentClosure
	ctx.CurrentClosure = ci

	ctx.Writer.Capture(secClosures)
	ctx.emitClosureBody(ci, fn)
	body := ctx.Writer.EndCapture(secClosures)
	ctx.Writer.sections[secClosures].Raw(body)
	ctx.RecordEmit(ci.Name, "closure", fn.Line())

	ctx.CurrentClosure = outerClosure
	ctx.Scope.PopFuncBoundary()
	ctx.Scope.PopLambda()

	return ctx.buildClosureValue(ci)
}

func (ctx *Context) emitClosureBody(ci *ClosureInfo, fn *ast.FnExpr) {
	sec := ctx.Writer
	sig := "static hml_value %s(hml_value *_args, int _argc) {"
	if ci.EnvName != "" {
		sig = "static hml_value %s(" + ci.EnvName + " *_env, hml_value *_args, int _argc) {"
	}
	sec.Emit(sig, ci.Name)
	sec.Indent()
	for i, p := range fn.Params {
		if p.IsRef {
			// Bound directly to _args[i] by DeclareRefParam — no local
			// copy, so writes inside the body are visible to the caller.
			continue
		}
		sec.Emit("hml_value %s = _argc > %d ? _args[%d] : %s;", cName(p.Name), i, i, ctx.defaultOrNull(p))
	}
	if fn.RestParam != "" {
		sec.Emit("hml_value %s = hml_array_from_rest(_args, _argc, %d);", cName(fn.RestParam), len(fn.Params))
	}
	ctx.LowerBlock(fn.Body)
	ctx.releaseLocalsFrom(ctx.Scope.CurrentFuncBase())
	sec.Emit("return %s;", cCall(abiNull))
	sec.Dedent()
	sec.Emit("}")
	sec.Emit("")
	sec.Emit("static hml_value %s(hml_value _self, hml_value *_args, int _argc) {", ci.WrapperName)
	sec.Indent()
	if ci.EnvName != "" {
		sec.Emit("%s *_env = (%s *)hml_closure_env(_self);", ci.EnvName, ci.EnvName)
		sec.Emit("return %s(_env, _args, _argc);", ci.Name)
	} else {
		sec.Emit("return %s(_args, _argc);", ci.Name)
	}
	sec.Dedent()
	sec.Emit("}")
	sec.Emit("")
}

func (ctx *Context) defaultOrNull(p ast.Param) string {
	if p.Default != nil {
		return ctx.LowerExpr(p.Default)
	}
	return cCall(abiNull)
}

// buildClosureValue constructs the environment (if any free vars were
// captured) and the runtime closure value wrapping ci's wrapper function.
func (ctx *Context) buildClosureValue(ci *ClosureInfo) string {
	if ci.EnvName == "" {
		return cCallf(abiClosureNew, "%s, NULL", ci.WrapperName)
	}
	envTmp := ctx.Temps.Next()
	ctx.Writer.Emit("%s *%s = hml_env_alloc_%s();", ci.EnvName, envTmp, ci.EnvName)
	ci.EnvTmp = envTmp
	for _, name := range ci.FreeVars {
		_, slot := ctx.EnvSlot(blockDepthForEnv(ctx, ci.EnvName), name)
		valueC := ctx.outerReference(name)
		// The environment becomes a second, independent owner of the
		// captured value (§4.7): retain it before the write-through.
		ctx.emitRetain(valueC)
		ctx.Writer.Emit("%s;", cCallf(abiEnvSet, "%s, %d, %s", envTmp, slot, valueC))
	}
	return cCallf(abiClosureNew, "%s, %s", ci.WrapperName, envTmp)
}

// outerReference resolves name in the *enclosing* scope — i.e. as it reads
// from the perspective of the code that builds the closure, not from
// inside the closure body (where it would instead read through the
// capture environment via captureRead).
func (ctx *Context) outerReference(name string) string {
	if ctx.CurrentClosure != nil && ctx.Scope.IsCapturedVar(name) {
		return ctx.captureRead(name)
	}
	if local, ok := ctx.Scope.Lookup(name); ok {
		return local
	}
	return MangleVar(ctx.Scope, name)
}

// captureRead reads a free variable through the current closure's shared
// environment (§4.7 "write-through via closure_env_set").
func (ctx *Context) captureRead(name string) string {
	ci := ctx.CurrentClosure
	_, slot := ctx.EnvSlot(envGroupBlockDepth(ctx, ci.EnvName), name)
	return cCallf(abiEnvGet, "_env, %d", slot)
}

// captureWrite writes through a captured free variable's environment slot —
// every sibling closure sharing the environment observes the update
// (§4.7 "shared environments ... written through ... so all siblings
// observe updates").
func (ctx *Context) captureWrite(name, valueC string) string {
	ci := ctx.CurrentClosure
	_, slot := ctx.EnvSlot(envGroupBlockDepth(ctx, ci.EnvName), name)
	return cCallf(abiEnvSet, "_env, %d, %s", slot, valueC)
}

// envGroupBlockDepth/blockDepthForEnv recover the block-id key an
// environment group was registered under, so slot lookups agree between
// the point a closure is built and the point its body reads captures.
func envGroupBlockDepth(ctx *Context, envName string) int {
	for depth, g := range ctx.envByBlock {
		if g.name == envName {
			return depth
		}
	}
	return -1
}

func blockDepthForEnv(ctx *Context, envName string) int { return envGroupBlockDepth(ctx, envName) }

// FixupSelfReference patches the most recently built closure's own capture
// slot with its own runtime value, for the `let f = fn() { ... f(...) ...
// }` pattern (§4.10 "Self-reference fix-up"): at the time the closure value
// is constructed, f's environment slot still holds whatever f held
// previously (null on first definition, since the closure captures its
// enclosing scope's binding for f, not a value that exists yet), so it
// must be overwritten once f's own binding is known. No-op when the just
// emitted closure never referenced name itself.
func (ctx *Context) FixupSelfReference(ci *ClosureInfo, name, closureValueC string) {
	if ci == nil || ci.EnvTmp == "" {
		return
	}
	for _, fv := range ci.FreeVars {
		if fv == name {
			_, slot := ctx.EnvSlot(envGroupBlockDepth(ctx, ci.EnvName), name)
			ci.SelfRef = true
			ci.SelfRefSlot = slot
			ctx.emitRetain(closureValueC)
			ctx.Writer.Emit("%s;", cCallf(abiEnvSet, "%s, %d, %s", ci.EnvTmp, slot, closureValueC))
			return
		}
	}
}
