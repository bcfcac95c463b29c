// Package modcache holds compiled modules and resolves cross-module
// references (§6 "Module cache API"). It is deliberately a pure in-memory
// cache keyed by resolved path — there is no network fetch or lockfile
// involved, unlike the teacher's remote package resolver it is grounded on;
// modules here are always supplied by the caller (a driver that already
// walked the import graph and compiled each file).
package modcache

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hemlang/hemc/ast"
)

// ExportKind distinguishes what a module export name refers to, so the
// Builtin Dispatcher's namespaced-call resolution (§4.6 step 2) can tell a
// function export from a plain value export.
type ExportKind int

const (
	ExportFunc ExportKind = iota
	ExportValue
)

// Export describes one name a module makes visible to its importers.
type Export struct {
	Kind ExportKind
	Func *ast.FuncDef // non-nil when Kind == ExportFunc
}

// CompiledModule is one source file's compiled form: its mangling prefix,
// its statement list in source order, and the subset of top-level names it
// exports (§3 "CompiledModule").
type CompiledModule struct {
	Prefix     string // mangled-name prefix, e.g. "math_"
	AbsPath    string
	Statements []ast.Statement
	Exports    map[string]Export
	// ExternFns is the set of names declared via `extern fn` in this
	// module — the Builtin Dispatcher must not treat these as ordinary
	// direct calls (§4.8, §9 FFI lazy binding).
	ExternFns map[string]bool
}

// FindExport looks up a name in m's export set.
func (m *CompiledModule) FindExport(name string) (Export, bool) {
	e, ok := m.Exports[name]
	return e, ok
}

// IsExternFn reports whether name is declared `extern fn` in m.
func (m *CompiledModule) IsExternFn(name string) bool {
	return m.ExternFns[name]
}

// Cache is the module cache threaded through CodegenContext (§3). It is
// safe for concurrent reads once populated; Put is expected to run only
// during the orchestrator's single-threaded compile pass.
type Cache struct {
	mu      sync.RWMutex
	modules map[string]*CompiledModule
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{modules: make(map[string]*CompiledModule)}
}

// ResolvePath normalizes an import path (relative to baseDir) to the
// absolute path used as the cache key, matching the resolver's own
// path-join-then-clean normalization so the same module is never compiled
// twice under two different spellings.
func ResolvePath(baseDir, importPath string) string {
	if filepath.IsAbs(importPath) {
		return filepath.Clean(importPath)
	}
	return filepath.Clean(filepath.Join(baseDir, importPath))
}

// Put registers a compiled module under its resolved absolute path.
func (c *Cache) Put(absPath string, m *CompiledModule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[absPath] = m
}

// GetCached returns the module previously compiled for absPath, if any.
func (c *Cache) GetCached(absPath string) (*CompiledModule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[absPath]
	return m, ok
}

// FindImport resolves an import statement to its already-compiled module.
// The caller (orchestrator) is responsible for having compiled every module
// reachable from main before codegen begins (§4.9 pass 1) — FindImport
// never compiles on demand.
func (c *Cache) FindImport(baseDir, importPath string) (*CompiledModule, error) {
	abs := ResolvePath(baseDir, importPath)
	m, ok := c.GetCached(abs)
	if !ok {
		return nil, fmt.Errorf("modcache: %s: module not compiled (import graph incomplete)", abs)
	}
	return m, nil
}

// FindExport resolves a dotted `prefix.Name` reference against the module
// cached under absPath.
func (c *Cache) FindExport(absPath, name string) (Export, error) {
	m, ok := c.GetCached(absPath)
	if !ok {
		return Export{}, fmt.Errorf("modcache: %s: module not compiled", absPath)
	}
	e, ok := m.FindExport(name)
	if !ok {
		return Export{}, fmt.Errorf("modcache: %s: %q is not exported", absPath, name)
	}
	return e, nil
}

// All returns every cached module, for tooling that needs to walk the full
// graph (the --emit-map side table, hemc inspect).
func (c *Cache) All() map[string]*CompiledModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*CompiledModule, len(c.modules))
	for k, v := range c.modules {
		out[k] = v
	}
	return out
}
