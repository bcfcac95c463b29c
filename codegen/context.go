package codegen

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hemlang/hemc/ast"
	"github.com/hemlang/hemc/modcache"
	"github.com/hemlang/hemc/typeinfo"
)

// ClosureInfo records everything the Closure Emitter and Program
// Orchestrator need about one lowered closure literal (§3 "ClosureInfo",
// §4.7, §4.10).
type ClosureInfo struct {
	Index       int
	Name        string // mangled body function name, e.g. "_closure_3"
	WrapperName string
	Params      []ast.Param
	RestParam   string
	FreeVars    []string // captured names, in a stable declaration order

	// EnvName is the shared environment type/variable this closure reads
	// its captures from. Empty when the closure captures nothing; every
	// capturing closure uses its enclosing block's shared environment.
	EnvName  string
	EnvIndex int

	// SelfRef is true when the closure refers to its own let-binding
	// inside its body (`let f = fn() { ... f(...) ... }`), requiring the
	// self-reference fix-up: the capture slot is back-patched with the
	// closure's own value after the let assignment completes (§4.10).
	SelfRef     bool
	SelfRefSlot int

	// EnvTmp is the C variable holding this closure's own environment
	// pointer at its construction site, set by buildClosureValue. The
	// Statement Lowerer uses it to patch a self-reference slot right
	// after the enclosing let-binding is assigned (§4.10).
	EnvTmp string

	SourceLine int
}

// envGroup tracks the set of closures that share one heap environment
// because they were created in the same enclosing block; every closure in
// that block that captures at least one variable joins the group (§4.7
// "shared environments across sibling closures", §9).
type envGroup struct {
	index    int
	name     string
	slots    []string // captured variable names, in slot order
	slotIdx  map[string]int
	members  []int // ClosureInfo.Index values sharing this group
}

// Context is the single struct threaded through every lowering call — no
// hidden global state (§3 "CodegenContext", §9 "avoid global mutable
// state"). It owns the output buffers, the temp counter, the lexical scope
// stack, the module cache, the optional type side table, the closure
// table, and the compile-wide error log and feature flags.
type Context struct {
	Writer *Writer
	Temps  *TempAllocator
	Scope  *Scope
	Cache  *modcache.Cache
	Types  *typeinfo.Table
	Log    *logrus.Logger

	// BaseDir is the directory import paths in the main file resolve
	// relative to.
	BaseDir string

	// Funcs is every named function known at the point a call is being
	// lowered: main-file top-level functions directly, imported-module
	// functions keyed by "alias.Name" — populated by the orchestrator's
	// declaration pass before any statement is lowered, so forward
	// references resolve (§4.9 pass ordering).
	Funcs map[string]*ast.FuncDef

	// TopLevel is true exactly while lowering statements that sit
	// directly in the main program (not inside any function or closure
	// body) — such `let` bindings become C globals (§4.1 rule 1), not
	// stack locals, so they never need a capture environment.
	TopLevel bool

	Closures       []*ClosureInfo
	CurrentClosure *ClosureInfo // nil while lowering main-file/function top level

	envGroups  []*envGroup
	envByBlock map[int]*envGroup // keyed by Scope.CurrentBlockID(), the unique id of the block a set of sibling closures was created in

	Errors []error

	Optimize     bool
	StackCheck   bool
	Sandbox      bool
	SandboxRoot  string

	// PeepholeCounters counts how many times each named rewrite rule
	// fired, surfaced via --verbose (SPEC_FULL.md "Peephole rewrite
	// counters").
	PeepholeCounters map[string]int

	// EmitMap is the mangled-name side table the --emit-map CLI flag
	// dumps as JSON: every named function, extern binding and closure
	// this Context emitted, in emission order (SPEC_FULL.md "emit map").
	EmitMap []EmitMapEntry

	tailCall *tailCallState
}

// EmitMapEntry names one mangled C symbol this Context produced, the kind
// of source construct it came from, and the Hemlock source line it was
// lowered from.
type EmitMapEntry struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Line int    `json:"line"`
}

// RecordEmit appends one entry to the emit map.
func (c *Context) RecordEmit(name, kind string, line int) {
	c.EmitMap = append(c.EmitMap, EmitMapEntry{Name: name, Kind: kind, Line: line})
}

// Option configures a new Context.
type Option func(*Context)

// WithOptimize toggles the peephole/strength-reduction pass.
func WithOptimize(v bool) Option { return func(c *Context) { c.Optimize = v } }

// WithStackCheck toggles emission of recursion-depth guards.
func WithStackCheck(v bool) Option { return func(c *Context) { c.StackCheck = v } }

// WithSandbox restricts filesystem/network builtins to root.
func WithSandbox(root string) Option {
	return func(c *Context) {
		c.Sandbox = true
		c.SandboxRoot = root
	}
}

// WithTypes attaches a type-inference side table.
func WithTypes(t *typeinfo.Table) Option { return func(c *Context) { c.Types = t } }

// WithBaseDir sets the directory the main file's import paths resolve
// relative to (§4.9 preRegisterImports).
func WithBaseDir(dir string) Option { return func(c *Context) { c.BaseDir = dir } }

// WithLogger overrides the default logrus logger.
func WithLogger(l *logrus.Logger) Option { return func(c *Context) { c.Log = l } }

// NewContext builds a ready-to-use Context for compiling one program against
// the given module cache.
func NewContext(cache *modcache.Cache, opts ...Option) *Context {
	c := &Context{
		Writer:           NewWriter(),
		Temps:            &TempAllocator{},
		Scope:            NewScope(),
		Cache:            cache,
		Log:              logrus.New(),
		Funcs:            make(map[string]*ast.FuncDef),
		envByBlock:       make(map[int]*envGroup),
		PeepholeCounters: make(map[string]int),
	}
	c.Log.SetLevel(logrus.WarnLevel)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddError records a generator-level failure (§4.13, §7) without aborting
// the current pass — the orchestrator checks len(Errors) before it commits
// any output, generalizing the teacher's "accumulate then gate" pattern.
func (c *Context) AddError(line int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		msg = fmt.Sprintf("line %d: %s", line, msg)
	}
	c.Errors = append(c.Errors, fmt.Errorf("%s", msg))
	c.Log.WithField("line", line).Error(msg)
}

// HasErrors reports whether any AddError call has fired so far.
func (c *Context) HasErrors() bool { return len(c.Errors) > 0 }

// RecordPeephole increments the fire count for a named rewrite rule.
func (c *Context) RecordPeephole(rule string) {
	c.PeepholeCounters[rule]++
	c.Log.WithField("rule", rule).Trace("peephole rewrite fired")
}

// NewClosure allocates the next closure index and registers its ClosureInfo,
// returning it for the caller to fill in.
func (c *Context) NewClosure(line int) *ClosureInfo {
	idx := len(c.Closures)
	ci := &ClosureInfo{
		Index:       idx,
		Name:        MangleClosure(idx),
		WrapperName: MangleClosureWrapper(idx),
		SourceLine:  line,
	}
	c.Closures = append(c.Closures, ci)
	return ci
}

// groupForBlock returns (creating if needed) the shared-environment group
// for the lexical block id d (Scope.CurrentBlockID()), so sibling closures
// declared in the same block land in the same environment (§4.7, §9).
func (c *Context) groupForBlock(d int) *envGroup {
	if g, ok := c.envByBlock[d]; ok {
		return g
	}
	g := &envGroup{
		index:   len(c.envGroups),
		slotIdx: make(map[string]int),
	}
	g.name = MangleEnv(g.index)
	c.envGroups = append(c.envGroups, g)
	c.envByBlock[d] = g
	return g
}

// EnvSlot returns the slot index a captured variable occupies within the
// shared environment for block id d, allocating a new slot on first use
// so every closure that captures the same name in the same group reads and
// writes the same slot (§4.7 "write-through via closure_env_set").
func (c *Context) EnvSlot(d int, name string) (envName string, slot int) {
	g := c.groupForBlock(d)
	if i, ok := g.slotIdx[name]; ok {
		return g.name, i
	}
	i := len(g.slots)
	g.slots = append(g.slots, name)
	g.slotIdx[name] = i
	return g.name, i
}

// EnvGroupSlots returns the full slot list for an environment by name, for
// struct-definition emission.
func (c *Context) EnvGroupSlots(envName string) []string {
	for _, g := range c.envGroups {
		if g.name == envName {
			return g.slots
		}
	}
	return nil
}
