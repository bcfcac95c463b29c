package codegen

import "github.com/hemlang/hemc/ast"

// LowerBlock lowers a sequence of statements into the active output
// section, in source order (§4.8).
func (ctx *Context) LowerBlock(stmts []ast.Statement) {
	for _, s := range stmts {
		ctx.LowerStmt(s)
	}
}

// LowerStmt dispatches one statement to its lowering routine (§4.8
// "Statement Lowerer"). Every statement kind either emits C statements
// directly or recurses into LowerBlock for its nested bodies.
func (ctx *Context) LowerStmt(s ast.Statement) {
	switch st := s.(type) {
	case *ast.LetStmt:
		ctx.lowerLet(st)
	case *ast.AssignStmt:
		ctx.lowerAssign(st)
	case *ast.IndexAssignStmt:
		ctx.Writer.Emit("%s;", cCall(abiArraySet, ctx.LowerExpr(st.Target), ctx.LowerExpr(st.Index), ctx.LowerExpr(st.Value)))
	case *ast.PropAssignStmt:
		ctx.Writer.Emit("%s;", cCallf(abiObjectSet, "%s, %q, %s", ctx.LowerExpr(st.Target), st.Field, ctx.LowerExpr(st.Value)))
	case *ast.ExprStmt:
		ctx.Writer.Emit("%s;", ctx.LowerExpr(st.X))
	case *ast.IfStmt:
		ctx.lowerIf(st)
	case *ast.WhileStmt:
		ctx.lowerWhile(st)
	case *ast.ForStmt:
		ctx.lowerFor(st)
	case *ast.ForInStmt:
		ctx.lowerForIn(st)
	case *ast.MatchStmt:
		ctx.lowerMatchStmt(st)
	case *ast.TryStmt:
		ctx.lowerTry(st)
	case *ast.ReturnStmt:
		ctx.lowerReturn(st)
	case *ast.BreakStmt:
		if base, ok := ctx.Scope.CurrentLoopBase(); ok {
			ctx.releaseLocalsFrom(base)
		}
		ctx.Writer.Emit("break;")
	case *ast.ContinueStmt:
		if base, ok := ctx.Scope.CurrentLoopBase(); ok {
			ctx.releaseLocalsFrom(base)
		}
		ctx.Writer.Emit("continue;")
	case *ast.DeferStmt:
		ctx.NoteDefer()
		ctx.Writer.Emit("%s;", cCall("hml_defer_push", ctx.LowerExpr(st.Call)))
	case *ast.ImportStmt:
		// Imports are resolved entirely at the orchestrator's module
		// pass (§4.9 pass 1); no C statement is emitted for them.
	case *ast.ExportStmt:
		// Exports only shape the module's Exports map — no emission.
	case *ast.EnumStmt:
		ctx.lowerEnum(st)
	case *ast.FuncDef:
		ctx.lowerNestedFuncDef(st)
	default:
		ctx.AddError(s.Line(), "unsupported statement kind %T", s)
	}
}

func (ctx *Context) lowerLet(st *ast.LetStmt) {
	if ctx.TopLevel && ctx.CurrentClosure == nil {
		ctx.lowerTopLevelLet(st)
		return
	}
	if fn, ok := st.Value.(*ast.FnExpr); ok {
		ctx.lowerSelfReferentialLet(st, fn)
		return
	}
	valueC := ctx.LowerExpr(st.Value)
	mangled := ctx.Scope.Declare(st.Name, st.IsConst)
	ctx.Writer.Emit("hml_value %s = %s;", mangled, valueC)
	if !ownsResult(st.Value) {
		// The RHS is a bare alias of an existing binding/container slot —
		// the new local is a second owner of the same value, so it needs
		// its own retain (§4.5 ownership convention: LowerExpr's result is
		// already owned by the caller except for a borrowed read).
		ctx.emitRetain(mangled)
	}
}

// lowerTopLevelLet declares a main-file global (§4.1 rule 1): the storage
// is a C global emitted once in ModuleDecls, initialized by an assignment
// in Main at program-startup time, reachable by every function and closure
// without any capture machinery (§4.4 "excluding ... globals").
func (ctx *Context) lowerTopLevelLet(st *ast.LetStmt) {
	mangled := ctx.Scope.DeclareMainVar(st.Name)
	ctx.Writer.sections[secModuleDecls].Line("static hml_value %s;", mangled)
	valueC := ctx.LowerExpr(st.Value)
	ctx.Writer.Emit("%s = %s;", mangled, valueC)
	if !ownsResult(st.Value) {
		ctx.emitRetain(mangled)
	}
}

// lowerSelfReferentialLet declares name before lowering its closure body so
// a reference to name inside the closure resolves as a (captured) free
// variable, then patches that capture slot with the closure's own runtime
// value once it exists (§4.10 "Self-reference fix-up").
func (ctx *Context) lowerSelfReferentialLet(st *ast.LetStmt, fn *ast.FnExpr) {
	mangled := ctx.Scope.Declare(st.Name, st.IsConst)
	ctx.Writer.Emit("hml_value %s;", mangled)
	closureValueC := ctx.LowerClosure(fn)
	ctx.Writer.Emit("%s = %s;", mangled, closureValueC)
	if len(ctx.Closures) > 0 {
		ctx.FixupSelfReference(ctx.Closures[len(ctx.Closures)-1], st.Name, mangled)
	}
}

func (ctx *Context) lowerAssign(st *ast.AssignStmt) {
	valueC := ctx.LowerExpr(st.Value)

	if ctx.CurrentClosure != nil && ctx.Scope.IsCapturedVar(st.Name) {
		// Retain before release when rebinding a captured variable (§4.7
		// write-back discipline): the new value is safely kept alive before
		// the old one goes away, rather than the other way around.
		tmp := ctx.Temps.Next()
		ctx.Writer.Emit("hml_value %s = %s;", tmp, valueC)
		ctx.emitRetain(tmp)
		oldTmp := ctx.Temps.Next()
		ctx.Writer.Emit("hml_value %s = %s;", oldTmp, ctx.captureRead(st.Name))
		ctx.Writer.Emit("%s;", ctx.captureWrite(st.Name, tmp))
		ctx.emitRelease(oldTmp)
		return
	}

	mangled, ok := ctx.Scope.Lookup(st.Name)
	if !ok {
		mangled = MangleVar(ctx.Scope, st.Name)
	}
	// Release-old / assign / retain-new (§4.5 "Assign"): the variable's own
	// slot always holds a reference distinct from whatever produced valueC.
	ctx.emitRelease(mangled)
	ctx.Writer.Emit("%s = %s;", mangled, valueC)
	ctx.emitRetain(mangled)
}

func (ctx *Context) lowerIf(st *ast.IfStmt) {
	ctx.Writer.Emit("if (hml_truthy(%s)) {", ctx.LowerExpr(st.Cond))
	ctx.Writer.Indent()
	ctx.Scope.PushBlock()
	ctx.LowerBlock(st.Body)
	ctx.releaseCurrentBlockLocals()
	ctx.Scope.PopBlock()
	ctx.Writer.Dedent()
	for _, ei := range st.ElseIfs {
		ctx.Writer.Emit("} else if (hml_truthy(%s)) {", ctx.LowerExpr(ei.Cond))
		ctx.Writer.Indent()
		ctx.Scope.PushBlock()
		ctx.LowerBlock(ei.Body)
		ctx.releaseCurrentBlockLocals()
		ctx.Scope.PopBlock()
		ctx.Writer.Dedent()
	}
	if st.Else != nil {
		ctx.Writer.Emit("} else {")
		ctx.Writer.Indent()
		ctx.Scope.PushBlock()
		ctx.LowerBlock(st.Else)
		ctx.releaseCurrentBlockLocals()
		ctx.Scope.PopBlock()
		ctx.Writer.Dedent()
	}
	ctx.Writer.Emit("}")
}

func (ctx *Context) lowerWhile(st *ast.WhileStmt) {
	ctx.Writer.Emit("while (hml_truthy(%s)) {", ctx.LowerExpr(st.Cond))
	ctx.Writer.Indent()
	ctx.Scope.PushBlock()
	ctx.Scope.PushLoopBoundary()
	ctx.LowerBlock(st.Body)
	ctx.Scope.PopLoopBoundary()
	ctx.releaseCurrentBlockLocals()
	ctx.Scope.PopBlock()
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
}

func (ctx *Context) lowerFor(st *ast.ForStmt) {
	ctx.Scope.PushBlock()
	ctx.Writer.Emit("{")
	ctx.Writer.Indent()
	if st.Init != nil {
		ctx.LowerStmt(st.Init)
	}
	cond := "true"
	if st.Cond != nil {
		cond = "hml_truthy(" + ctx.LowerExpr(st.Cond) + ")"
	}
	ctx.Writer.Emit("while (%s) {", cond)
	ctx.Writer.Indent()
	ctx.Scope.PushBlock()
	ctx.Scope.PushLoopBoundary()
	ctx.LowerBlock(st.Body)
	ctx.Scope.PopLoopBoundary()
	ctx.releaseCurrentBlockLocals()
	ctx.Scope.PopBlock()
	if st.Post != nil {
		ctx.LowerStmt(st.Post)
	}
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
	ctx.releaseCurrentBlockLocals()
	ctx.Scope.PopBlock()
}

func (ctx *Context) lowerForIn(st *ast.ForInStmt) {
	iterC := ctx.LowerExpr(st.Iterable)
	iterTmp := ctx.Temps.Next()
	idxTmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", iterTmp, iterC)
	ctx.Writer.Emit("for (int64_t %s = 0; %s < %s(%s); %s++) {", idxTmp, idxTmp, abiArrayLen, iterTmp, idxTmp)
	ctx.Writer.Indent()
	ctx.Scope.PushBlock()
	ctx.Scope.PushLoopBoundary()
	valName := ctx.Scope.Declare(st.ValueVar, false)
	ctx.Writer.Emit("hml_value %s = %s(%s, %s(%s));", valName, abiArrayGet, iterTmp, abiNewInt, idxTmp)
	if st.IndexVar != "" {
		idxName := ctx.Scope.Declare(st.IndexVar, false)
		ctx.Writer.Emit("hml_value %s = %s(%s);", idxName, abiNewInt, idxTmp)
	}
	ctx.LowerBlock(st.Body)
	ctx.Scope.PopLoopBoundary()
	ctx.releaseCurrentBlockLocals()
	ctx.Scope.PopBlock()
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
	if ownsResult(st.Iterable) {
		ctx.emitRelease(iterTmp)
	}
}

func (ctx *Context) lowerTry(st *ast.TryStmt) {
	jb := ctx.Temps.Next()
	ctx.Writer.Emit("{")
	ctx.Writer.Indent()
	ctx.Writer.Emit("jmp_buf %s;", jb)
	ctx.Writer.Emit("if (setjmp(%s) == 0) {", jb)
	ctx.Writer.Indent()
	ctx.Writer.Emit("%s;", cCall("HML_TRY_PUSH", "&"+jb))
	ctx.Scope.PushBlock()
	ctx.LowerBlock(st.Body)
	ctx.releaseCurrentBlockLocals()
	ctx.Scope.PopBlock()
	ctx.Writer.Emit("%s;", cCall("HML_TRY_POP"))
	ctx.Writer.Dedent()
	ctx.Writer.Emit("} else {")
	ctx.Writer.Indent()
	if st.Catch != nil {
		ctx.Scope.PushBlock()
		if st.Catch.Binding != "" {
			name := ctx.Scope.Declare(st.Catch.Binding, false)
			ctx.Writer.Emit("hml_value %s = hml_current_exception();", name)
		}
		ctx.LowerBlock(st.Catch.Body)
		ctx.releaseCurrentBlockLocals()
		ctx.Scope.PopBlock()
	}
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
	if st.Finally != nil {
		ctx.Scope.PushBlock()
		ctx.LowerBlock(st.Finally)
		ctx.releaseCurrentBlockLocals()
		ctx.Scope.PopBlock()
	}
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
}

func (ctx *Context) lowerReturn(st *ast.ReturnStmt) {
	if st.Value == nil {
		ctx.releaseLocalsFrom(ctx.Scope.CurrentFuncBase())
		ctx.Writer.Emit("return %s;", cCall(abiNull))
		return
	}
	if ctx.tryTailCall(st) {
		return
	}

	valueC := ctx.LowerExpr(st.Value)
	base := ctx.Scope.CurrentFuncBase()
	if ownsResult(st.Value) {
		// Already uniquely owned (a fresh call/construction result): safe
		// to release the outgoing locals and hand it straight back.
		ctx.releaseLocalsFrom(base)
		ctx.Writer.Emit("return %s;", valueC)
		return
	}
	// A borrowed read (bare identifier, index, or field) may alias one of
	// the locals about to be released — retain it first so the release
	// below can never drop it to zero out from under the return (§3 early-
	// exit control flow).
	tmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", tmp, valueC)
	ctx.emitRetain(tmp)
	ctx.releaseLocalsFrom(base)
	ctx.Writer.Emit("return %s;", tmp)
}

func (ctx *Context) lowerEnum(st *ast.EnumStmt) {
	for i, v := range st.Variants {
		name := MangleMainVar(st.Name + "_" + v)
		ctx.Writer.sections[secModuleDecls].Line("static const int64_t %s = %d;", name, i)
	}
}

// lowerNestedFuncDef lowers a named function declared inside another
// function body — emitted like a top-level named function (§4.8), since
// Hemlock named functions never close over their enclosing function's
// locals (only FnExpr literals do, per §4.4/§4.7).
func (ctx *Context) lowerNestedFuncDef(fn *ast.FuncDef) {
	prev := ctx.Writer.SwitchTo(secFunctions)
	ctx.emitNamedFunction(fn)
	ctx.Writer.SwitchTo(prev)
}

// emitNamedFunction emits one named function's C definition plus its
// hml_fn_ alias wrapper (§4.1 rule 3).
func (ctx *Context) emitNamedFunction(fn *ast.FuncDef) {
	// Always the bare hml_fn_ alias (§4.1 rule 3 "regardless of main/module
	// origin") — directCallTarget calls this same bare alias at every call
	// site, so the two must never diverge on fn.Namespace.
	cFuncName := MangleFuncAlias(fn.Name)

	if fn.IsExtern {
		ctx.emitExternFunction(cFuncName, fn)
		ctx.RecordEmit(cFuncName, "extern", fn.Line())
		return
	}
	ctx.RecordEmit(cFuncName, "function", fn.Line())

	ctx.Scope.PushBlock()
	ctx.Scope.PushFuncBoundary()
	ctx.Scope.BeginFunc(len(fn.Params))
	ctx.Writer.Emit("static hml_value %s(hml_value *_args, int _argc) {", cFuncName)
	ctx.Writer.Indent()
	for i, p := range fn.Params {
		if p.IsRef {
			ctx.Scope.DeclareRefParam(p.Name, i)
			ctx.Scope.MarkRefParam(i)
			continue
		}
		local := ctx.Scope.Declare(p.Name, false)
		ctx.Writer.Emit("hml_value %s = _argc > %d ? _args[%d] : %s;", local, i, i, ctx.defaultOrNull(p))
	}
	if fn.RestParam != "" {
		restName := ctx.Scope.Declare(fn.RestParam, false)
		ctx.Writer.Emit("hml_value %s = hml_array_from_rest(_args, _argc, %d);", restName, len(fn.Params))
	}
	end := ctx.BeginTailCallScope(fn.Name, fn.Params, fn.RestParam != "")
	ctx.LowerBlock(fn.Body)
	end()
	ctx.releaseLocalsFrom(ctx.Scope.CurrentFuncBase())
	ctx.Writer.Emit("return %s;", cCall(abiNull))
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
	ctx.Writer.Emit("")
	ctx.Scope.PopFuncBoundary()
	ctx.Scope.PopBlock()
}

// emitExternFunction emits an `extern fn` binding: a thin wrapper carrying
// the same bare hml_fn_ alias and (_args, _argc) calling convention every
// other named function uses, but whose body lazily resolves the named host
// symbol on first call and forwards through the generic FFI bridge rather
// than having a lowered Hemlock body of its own.
func (ctx *Context) emitExternFunction(cFuncName string, fn *ast.FuncDef) {
	handle := ctx.Temps.Next()
	ctx.Writer.Emit("static hml_value %s(hml_value *_args, int _argc) {", cFuncName)
	ctx.Writer.Indent()
	ctx.Writer.Emit("static void *%s = NULL;", handle)
	ctx.Writer.Emit("if (!%s) { %s = %s; }", handle, handle, cCallf(abiFFIResolve, "%q", fn.ExternName))
	ctx.Writer.Emit("return %s;", cCall(abiFFICall, handle, "_args", "_argc"))
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")
	ctx.Writer.Emit("")
}
