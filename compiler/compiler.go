// Package compiler is the driver `cmd/hemc` calls into: it resolves a
// program's import graph against files on disk, compiled each module in
// dependency order into the module cache, then hands the whole thing to
// codegen.Compile for lowering. The lexer, parser and type checker are out
// of scope for this repository (spec.md §1) — every input file this
// package reads is already a JSON-encoded ast.Program, the wire shape an
// upstream parser would hand off.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hemlang/hemc/ast"
	"github.com/hemlang/hemc/codegen"
	"github.com/hemlang/hemc/modcache"
)

// Compiler drives one compilation: read the main file, resolve its import
// graph, lower to C. Its zero value is ready to use (no teacher-style
// TestMode/BaseDir flags carried over — those governed Go-specific test
// scaffolding this repository has no equivalent of).
type Compiler struct {
	Optimize   bool
	StackCheck bool
	Sandbox    bool
	SandboxRoot string
	EmitMap    bool
}

// Result is everything one Compile call produced.
type Result struct {
	CSource    string
	Program    *ast.Program
	SourceFile string
	EmitMap    []codegen.EmitMapEntry
}

// Compile reads filename (a JSON ast.Program), resolves every import it
// reaches transitively, and lowers the whole graph to one C translation
// unit.
func (c *Compiler) Compile(filename string) (*Result, error) {
	prog, err := loadProgram(filename)
	if err != nil {
		return nil, err
	}
	prog.SourceFile = filename

	baseDir := filepath.Dir(filename)
	cache := modcache.New()
	if err := resolveImports(cache, baseDir, prog.Statements, make(map[string]bool)); err != nil {
		return nil, err
	}

	opts := []codegen.Option{codegen.WithBaseDir(baseDir)}
	if c.Optimize {
		opts = append(opts, codegen.WithOptimize(true))
	}
	if c.StackCheck {
		opts = append(opts, codegen.WithStackCheck(true))
	}
	if c.Sandbox {
		root := c.SandboxRoot
		if root == "" {
			root = baseDir
		}
		opts = append(opts, codegen.WithSandbox(root))
	}

	ctx := codegen.NewContext(cache, opts...)
	ctx.BaseDir = baseDir
	csrc, emap, err := compileWithMap(ctx, prog)
	if err != nil {
		return nil, err
	}
	return &Result{CSource: csrc, Program: prog, SourceFile: filename, EmitMap: emap}, nil
}

// compileWithMap runs codegen.Compile's pass schedule through a fresh
// Context it already owns (rather than letting Compile build its own),
// so the --emit-map side table it accumulates during lowering survives
// past the call — codegen.Compile itself only returns the assembled C.
func compileWithMap(ctx *codegen.Context, prog *ast.Program) (string, []codegen.EmitMapEntry, error) {
	src, err := codegen.CompileWithContext(ctx, prog)
	if err != nil {
		return "", nil, err
	}
	return src, ctx.EmitMap, nil
}

// loadProgram reads and decodes one JSON ast.Program file.
func loadProgram(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	prog, err := ast.DecodeProgram(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return prog, nil
}

// resolveImports walks every ImportStmt reachable from stmts, compiling
// and caching each module exactly once (visited guards against import
// cycles — modules may depend on each other acyclically but never on
// themselves, per the modcache contract that every reachable module is
// compiled before the orchestrator's lowering pass begins).
func resolveImports(cache *modcache.Cache, baseDir string, stmts []ast.Statement, visited map[string]bool) error {
	for _, s := range stmts {
		imp, ok := s.(*ast.ImportStmt)
		if !ok {
			continue
		}
		abs := modcache.ResolvePath(baseDir, imp.Path)
		if visited[abs] {
			continue
		}
		visited[abs] = true

		path := abs
		if !strings.HasSuffix(path, ".json") {
			path += ".json"
		}
		modProg, err := loadProgram(path)
		if err != nil {
			return fmt.Errorf("import %q: %w", imp.Path, err)
		}

		modDir := filepath.Dir(path)
		if err := resolveImports(cache, modDir, modProg.Statements, visited); err != nil {
			return err
		}

		mod := buildModule(abs, imp.Path, modProg.Statements)
		cache.Put(abs, mod)
	}
	return nil
}

// buildModule derives a CompiledModule's mangling prefix from its import
// path and classifies every top-level name it exports (§6 "Module cache
// API").
func buildModule(absPath, importPath string, stmts []ast.Statement) *modcache.CompiledModule {
	prefix := modulePrefix(importPath)
	exports := make(map[string]modcache.Export)
	externFns := make(map[string]bool)

	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.FuncDef:
			if st.IsExtern {
				externFns[st.Name] = true
			}
		case *ast.ExportStmt:
			for _, name := range st.Names {
				exports[name] = resolveExportKind(stmts, name)
			}
		}
	}

	return &modcache.CompiledModule{
		Prefix:     prefix,
		AbsPath:    absPath,
		Statements: stmts,
		Exports:    exports,
		ExternFns:  externFns,
	}
}

func resolveExportKind(stmts []ast.Statement, name string) modcache.Export {
	for _, s := range stmts {
		if fn, ok := s.(*ast.FuncDef); ok && fn.Name == name {
			return modcache.Export{Kind: modcache.ExportFunc, Func: fn}
		}
	}
	return modcache.Export{Kind: modcache.ExportValue}
}

// modulePrefix turns an import path like "./math" or "collections/queue"
// into a short, C-identifier-safe mangling prefix.
func modulePrefix(importPath string) string {
	base := filepath.Base(importPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
