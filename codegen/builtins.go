package codegen

import (
	"strings"

	"github.com/hemlang/hemc/ast"
)

// LowerCall implements the Builtin Dispatcher's three-step resolution order
// for a plain `callee(args...)` call (§4.6):
//
//  1. callee is a bare identifier matching the fixed-arity builtin table —
//     emit a direct call to its runtime entry point.
//  2. callee is a bare identifier naming a known main-file function or a
//     dotted "alias.Name" naming a known import export, with an arity the
//     definition accepts — emit a direct C call passing only the argument
//     vector and count; no closure environment argument is passed, since
//     named functions are emitted without an environment parameter.
//  3. Otherwise callee is an arbitrary expression evaluating to a runtime
//     closure value — go through the generic call_function dispatcher.
func (ctx *Context) LowerCall(call *ast.CallExpr) string {
	args := ctx.lowerCallArgs(call.Args)

	if ident, ok := call.Callee.(*ast.IdentExpr); ok {
		if def, ok := ResolveBuiltin(ident.Name, len(call.Args)); ok {
			return cCall(def.Runtime, args...)
		}
		if fn, ok := ctx.Funcs[ident.Name]; ok {
			if name, ok := ctx.directCallTarget(fn, args, call); ok {
				return name
			}
		}
		if prefix, field, ok := splitNamespaced(ident.Name); ok {
			if fn, ok := ctx.Funcs[prefix+"."+field]; ok {
				if name, ok := ctx.directCallTarget(fn, args, call); ok {
					return name
				}
			}
		}
		// A bare name that resolves to none of the above, and isn't a
		// declared variable either, would otherwise fall through to
		// LowerExpr's identifier path and silently mangle into a reference
		// to a C symbol nothing ever defines. Report it instead of emitting
		// C that cannot compile.
		_, isLocal := ctx.Scope.Lookup(ident.Name)
		isCaptured := ctx.CurrentClosure != nil && ctx.Scope.IsCapturedVar(ident.Name)
		if !isLocal && !isCaptured && !ctx.Scope.IsMainVar(ident.Name) {
			ctx.AddError(call.Line(), "call to unknown name %q (not a builtin, declared function, or variable)", ident.Name)
			return cCall(abiNull)
		}
	}

	calleeC := ctx.LowerExpr(call.Callee)
	return ctx.genericCall(calleeC, args)
}

// splitNamespaced splits "alias.Name" into its two parts.
func splitNamespaced(name string) (prefix, field string, ok bool) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

func (ctx *Context) lowerCallArgs(exprs []ast.Expr) []string {
	args := make([]string, 0, len(exprs))
	for _, a := range exprs {
		if sp, ok := a.(*ast.SpreadExpr); ok {
			args = append(args, "/* ...spread */ "+ctx.LowerExpr(sp.X))
			continue
		}
		args = append(args, ctx.LowerExpr(a))
	}
	return args
}

// directCallTarget emits a direct call to fn's mangled C function name when
// argc is within its accepted arity window. Every named function (and
// closure) takes the same (_args, _argc) array calling convention, so the
// call site packs its arguments into one array literal just like the
// generic dispatcher (§4.6, §4.9).
//
// A ref parameter (§4.6.2) is bound, on the callee side, directly to its
// _args[i] slot rather than to a local copy (DeclareRefParam) — so any
// write the callee makes inside its body lands in this call's own argv
// array. Once the call returns, a plain-identifier ref argument is
// re-read from that slot and written back into the caller's variable. A
// non-identifier ref argument has no caller-side storage to write back
// into, so its mutation is simply discarded (§9 "ref-parameter
// non-identifier-argument limitation").
func (ctx *Context) directCallTarget(fn *ast.FuncDef, args []string, call *ast.CallExpr) (string, bool) {
	min, max, hasRest := fn.Arity()
	argc := len(args)
	if argc < min || (!hasRest && argc > max) {
		return "", false
	}
	cFuncName := MangleFuncAlias(fn.Name)
	refMask := fn.RefMask()

	argvTmp := ctx.Temps.Next()
	if len(args) > 0 {
		ctx.Writer.Emit("hml_value %s[] = {%s};", argvTmp, strings.Join(args, ", "))
	} else {
		ctx.Writer.Emit("hml_value *%s = NULL;", argvTmp)
	}

	resultTmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", resultTmp, cCallf(cFuncName, "%s, %d", argvTmp, argc))

	for i := range call.Args {
		if i >= len(fn.Params) || !fn.Params[i].IsRef || refMask&(1<<uint(i)) == 0 {
			continue
		}
		if ident, ok := call.Args[i].(*ast.IdentExpr); ok {
			target := ctx.lowerIdent(ident)
			ctx.Writer.Emit("%s = %s[%d];", target, argvTmp, i)
		}
	}
	return resultTmp, true
}

// genericCall is dispatch step 3: callee is an arbitrary runtime value.
func (ctx *Context) genericCall(calleeC string, args []string) string {
	argvTmp := ctx.Temps.Next()
	if len(args) > 0 {
		ctx.Writer.Emit("hml_value %s[] = {%s};", argvTmp, strings.Join(args, ", "))
	} else {
		ctx.Writer.Emit("hml_value *%s = NULL;", argvTmp)
	}
	return cCallf(abiCallFunction, "%s, %s, %d", calleeC, argvTmp, len(args))
}

// collectFuncDecls walks a program's top-level statements and registers
// every FuncDef into ctx.Funcs, the orchestrator's declaration pass
// (§4.9 "pass 1: declare before lower" — so mutually recursive top-level
// functions resolve regardless of source order).
func collectFuncDecls(ctx *Context, prefix string, stmts []ast.Statement) {
	for _, s := range stmts {
		if fn, ok := s.(*ast.FuncDef); ok {
			key := fn.Name
			if prefix != "" {
				key = prefix + "." + fn.Name
			}
			ctx.Funcs[key] = fn
		}
	}
}
