package codegen

import (
	"strings"

	"github.com/hemlang/hemc/ast"
	"github.com/hemlang/hemc/modcache"
)

// Compile runs the full, multi-pass code generation schedule over prog and
// returns one self-contained C translation unit (§4.9 "Program
// Orchestrator"):
//
//  1. Declaration pass — register every top-level main-file function, and
//     every function exported by an imported module (as "alias.Name"),
//     into ctx.Funcs before any statement is lowered, so mutually
//     recursive and forward-referenced calls resolve.
//  2. Lowering pass — walk the main program's top-level statements in
//     source order, emitting into Main, spilling named FuncDef bodies into
//     Functions and FnExpr bodies into Closures as they're encountered.
//  3. Assembly — concatenate every section in the fixed order the runtime
//     ABI expects: prologue/includes/signal-defines, module decls, module
//     impls, closures, named functions, main (§6).
//
// The orchestrator never emits partial output: it checks ctx.HasErrors()
// after the lowering pass and returns the accumulated errors instead of a
// truncated translation unit (§4.13, §7).
func Compile(prog *ast.Program, cache *modcache.Cache, opts ...Option) (string, error) {
	ctx := NewContext(cache, opts...)
	return CompileWithContext(ctx, prog)
}

// CompileWithContext runs the same pass schedule as Compile against a
// Context the caller already constructed, so state Compile would normally
// discard along with its throwaway Context — the accumulated EmitMap side
// table, in particular — survives for the caller to read afterward.
func CompileWithContext(ctx *Context, prog *ast.Program) (string, error) {
	runOrchestratorPasses(ctx, prog)
	if ctx.HasErrors() {
		return "", joinErrors(ctx.Errors)
	}
	return Assemble(ctx), nil
}

func runOrchestratorPasses(ctx *Context, prog *ast.Program) {
	ctx.Log.WithField("pass", "declare").Debug("registering top-level functions")
	collectFuncDecls(ctx, "", prog.Statements)
	preRegisterImports(ctx, prog.Statements)

	ctx.Log.WithField("pass", "lower").Debug("lowering main program")
	ctx.Writer.SwitchTo(secMain)
	ctx.TopLevel = true
	ctx.Writer.Emit("int hml_main(int argc, char **argv) {")
	ctx.Writer.Indent()
	for _, s := range prog.Statements {
		if fn, ok := s.(*ast.FuncDef); ok {
			ctx.TopLevel = false
			prev := ctx.Writer.SwitchTo(secFunctions)
			ctx.emitNamedFunction(fn)
			ctx.Writer.SwitchTo(prev)
			ctx.TopLevel = true
			continue
		}
		if _, ok := s.(*ast.ImportStmt); ok {
			continue
		}
		ctx.LowerStmt(s)
	}
	ctx.Writer.Emit("return 0;")
	ctx.Writer.Dedent()
	ctx.Writer.Emit("}")

	if ctx.Log.Level >= 6 { // TraceLevel
		ctx.Log.WithField("temp_count", ctx.Temps.Count()).
			WithField("closure_count", len(ctx.Closures)).
			Trace("lowering pass complete")
	}
}

// preRegisterImports resolves every top-level ImportStmt against the
// module cache up front (§4.9 pass 1), binding its alias in scope and
// registering its function exports into ctx.Funcs under "alias.Name" so
// dispatch step 2 can find them regardless of where in the file the import
// appears relative to its uses.
func preRegisterImports(ctx *Context, stmts []ast.Statement) {
	for _, s := range stmts {
		imp, ok := s.(*ast.ImportStmt)
		if !ok {
			continue
		}
		mod, err := ctx.Cache.FindImport(ctx.BaseDir, imp.Path)
		if err != nil {
			ctx.AddError(imp.Line(), "%s", err)
			continue
		}
		alias := imp.Alias
		if alias == "" {
			alias = mod.Prefix
		}
		abs := modcache.ResolvePath(ctx.BaseDir, imp.Path)
		ctx.Scope.DeclareImport(alias, abs)
		for name, exp := range mod.Exports {
			if exp.Kind == modcache.ExportFunc {
				ctx.Funcs[alias+"."+name] = exp.Func
			}
		}
	}
}

func joinErrors(errs []error) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return &multiError{msg: strings.Join(msgs, "\n")}
}

type multiError struct{ msg string }

func (e *multiError) Error() string { return e.msg }

// Assemble concatenates every output section in the fixed emission order
// the runtime ABI contract requires (§6): prologue, module decls, module
// impls, closures, named functions, main.
func Assemble(ctx *Context) string {
	var out strings.Builder
	for _, inc := range runtimeIncludes {
		out.WriteString(inc)
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	for _, def := range signalDefines {
		out.WriteString(def)
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	writeSection(&out, "module declarations", ctx.Writer.ModuleDecls())
	writeSection(&out, "module implementations", ctx.Writer.ModuleImpls())
	writeSection(&out, "closures", ctx.Writer.Closures())
	writeSection(&out, "functions", ctx.Writer.Functions())
	writeSection(&out, "main", ctx.Writer.Main())
	return out.String()
}

func writeSection(out *strings.Builder, name, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	out.WriteString("/* --- " + name + " --- */\n")
	out.WriteString(body)
	out.WriteByte('\n')
}
