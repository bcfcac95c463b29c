package codegen

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// reservedC is the set of C keywords/identifiers a Hemlock source name must
// never collide with once emitted verbatim as a local C variable.
var reservedC = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true,
	"else": true, "enum": true, "extern": true, "float": true, "for": true,
	"goto": true, "if": true, "inline": true, "int": true, "long": true,
	"register": true, "restrict": true, "return": true, "short": true,
	"signed": true, "sizeof": true, "static": true, "struct": true,
	"switch": true, "typedef": true, "union": true, "unsigned": true,
	"void": true, "volatile": true, "while": true,
}

// Scope tracks, at every point during statement/expression lowering, which
// source names are visible, what C identifier each maps to, which are
// const, and where the nearest enclosing lambda (closure literal) boundary
// sits — the generalized form of the teacher's scopes/constScopes stack
// plus lambdaDepth/lambdaScopeBase pair (§4.3, §4.4).
type Scope struct {
	blocks []map[string]string
	consts []map[string]bool

	// locals parallels blocks: every plain (non-ref-param, non-main-var)
	// name Declare binds in a block, in declaration order, so a scope exit
	// — normal block close, early return, break/continue — knows exactly
	// which bindings it owns a reference to and must release (§3 "every
	// runtime value must be retained and released exactly once on every
	// control-flow path", §4.3 "locals ... released at scope exit").
	locals [][]string

	// blockIDs parallels blocks with a unique, never-reused id per pushed
	// block (nextBlockID mints them), so two sibling blocks opened one
	// after another at the same stack depth — e.g. two sequential `if`
	// bodies — are never mistaken for the same lexical block by anything
	// that keys off "the current block" (§4.7 shared-environment grouping
	// keys off this id, not off raw stack depth, to avoid exactly that
	// collision).
	blockIDs    []int
	nextBlockID int

	lambdaDepth int
	lambdaBase  []int

	// funcBase/loopBase record the block index of the nearest enclosing
	// function body / loop body, so lowerReturn and break/continue know
	// how many blocks' worth of locals they are skipping past and must
	// release before jumping (§4.5/§4.8 "released ... on early-exit
	// control flow").
	funcBase []int
	loopBase []int

	mainVars    map[string]bool
	mainImports map[string]string // alias -> resolved absolute module path

	// refMask marks, for the function currently being lowered, which
	// parameter positions are ref parameters (§4.6.2, §4.8). Reset by the
	// Statement Lowerer at the start of every FuncDef/FnExpr.
	refMask *bitset.BitSet
}

// NewScope returns a Scope with a single top-level (main) block pushed.
func NewScope() *Scope {
	s := &Scope{
		mainVars:    make(map[string]bool),
		mainImports: make(map[string]string),
	}
	s.PushBlock()
	return s
}

// PushBlock opens a new nested lexical block (if/while/for body, function
// body, closure body).
func (s *Scope) PushBlock() {
	s.blocks = append(s.blocks, make(map[string]string))
	s.consts = append(s.consts, make(map[string]bool))
	s.locals = append(s.locals, nil)
	s.nextBlockID++
	s.blockIDs = append(s.blockIDs, s.nextBlockID)
}

// PopBlock closes the innermost lexical block.
func (s *Scope) PopBlock() {
	s.blocks = s.blocks[:len(s.blocks)-1]
	s.consts = s.consts[:len(s.consts)-1]
	s.locals = s.locals[:len(s.locals)-1]
	s.blockIDs = s.blockIDs[:len(s.blockIDs)-1]
}

// PushFuncBoundary marks the innermost currently open block as a function
// body's own block — the point lowerReturn's early-exit release must stop
// at, since the caller (not the callee) owns whatever is returned and
// anything above this point belongs to an enclosing, still-live frame.
func (s *Scope) PushFuncBoundary() { s.funcBase = append(s.funcBase, len(s.blocks)-1) }

// PopFuncBoundary closes the innermost function boundary.
func (s *Scope) PopFuncBoundary() { s.funcBase = s.funcBase[:len(s.funcBase)-1] }

// CurrentFuncBase returns the block index lowerReturn must release locals
// down to (inclusive), or 0 when lowering outside any function (top-level
// main statements, which bind main-vars rather than block-scoped locals).
func (s *Scope) CurrentFuncBase() int {
	if len(s.funcBase) == 0 {
		return 0
	}
	return s.funcBase[len(s.funcBase)-1]
}

// PushLoopBoundary marks the innermost currently open block as a loop
// body's own block, the point break/continue's release must stop at.
func (s *Scope) PushLoopBoundary() { s.loopBase = append(s.loopBase, len(s.blocks)-1) }

// PopLoopBoundary closes the innermost loop boundary.
func (s *Scope) PopLoopBoundary() { s.loopBase = s.loopBase[:len(s.loopBase)-1] }

// CurrentLoopBase returns the block index break/continue must release
// locals down to (inclusive), and false when used outside any loop.
func (s *Scope) CurrentLoopBase() (int, bool) {
	if len(s.loopBase) == 0 {
		return 0, false
	}
	return s.loopBase[len(s.loopBase)-1], true
}

// LocalsFrom returns every local declared in blocks from baseIdx through
// the innermost currently open block, ordered innermost-block-first and
// most-recently-declared-first within each block — the reverse of
// declaration order, matching destructor-style unwind.
func (s *Scope) LocalsFrom(baseIdx int) []string {
	var out []string
	for i := len(s.locals) - 1; i >= baseIdx && i >= 0; i-- {
		for j := len(s.locals[i]) - 1; j >= 0; j-- {
			out = append(out, s.locals[i][j])
		}
	}
	return out
}

// CurrentBlockLocals returns the innermost currently open block's own
// locals, most-recently-declared first.
func (s *Scope) CurrentBlockLocals() []string {
	top := s.locals[len(s.locals)-1]
	out := make([]string, len(top))
	for i, name := range top {
		out[len(top)-1-i] = name
	}
	return out
}

// CurrentBlockID returns the unique id of the innermost currently open
// block, for keying per-block state (like shared closure environments)
// without the depth-reuse collision raw stack length would allow.
func (s *Scope) CurrentBlockID() int {
	return s.blockIDs[len(s.blockIDs)-1]
}

// PushLambda opens a new block that also marks a closure-capture boundary:
// names declared below this point belong to the closure; names found above
// it are captures (§4.4, §4.7).
func (s *Scope) PushLambda() {
	s.PushBlock()
	s.lambdaDepth++
	s.lambdaBase = append(s.lambdaBase, len(s.blocks)-1)
}

// PopLambda closes the innermost closure-capture boundary.
func (s *Scope) PopLambda() {
	s.lambdaBase = s.lambdaBase[:len(s.lambdaBase)-1]
	s.lambdaDepth--
	s.PopBlock()
}

// cName returns a C-safe spelling of a source identifier: untouched unless
// it collides with a reserved word, in which case it gets a leading
// underscore (C reserves leading-underscore-plus-lowercase to the
// implementation only in file scope; local block scope is unaffected, and
// this keeps generated names readable in the common case).
func cName(name string) string {
	if reservedC[name] {
		return "_" + name
	}
	return name
}

// Declare introduces name in the innermost block, returning its mangled C
// identifier. isConst marks it immutable for later AssignStmt validation.
func (s *Scope) Declare(name string, isConst bool) string {
	mangled := cName(name)
	top := len(s.blocks) - 1
	s.blocks[top][name] = mangled
	if isConst {
		s.consts[top][name] = true
	}
	s.locals[top] = append(s.locals[top], mangled)
	return mangled
}

// DeclareRefParam binds name directly to its slot in the current function's
// argument array rather than to a local copy, so every read and write of
// name inside the body goes straight through `_args[index]` — the callee's
// own mutations are visible to the caller once it re-reads that slot after
// the call returns (§4.6.2 "ref parameters").
func (s *Scope) DeclareRefParam(name string, index int) string {
	mangled := fmt.Sprintf("_args[%d]", index)
	top := len(s.blocks) - 1
	s.blocks[top][name] = mangled
	return mangled
}

// Lookup searches the block stack innermost-out for name, returning its
// mangled C identifier. A miss means name is either a main-file global or
// unresolved (the caller falls back to MangleMainVar or reports an error).
func (s *Scope) Lookup(name string) (string, bool) {
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if m, ok := s.blocks[i][name]; ok {
			return m, true
		}
	}
	return "", false
}

// IsConst reports whether name, as currently visible, was declared const.
func (s *Scope) IsConst(name string) bool {
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if _, ok := s.blocks[i][name]; ok {
			return s.consts[i][name]
		}
	}
	return false
}

// IsCapturedVar reports whether name resolves to a binding declared outside
// the nearest enclosing lambda boundary — i.e. it is a free variable the
// Closure Emitter must capture rather than a plain local (§4.4).
func (s *Scope) IsCapturedVar(name string) bool {
	if s.lambdaDepth == 0 {
		return false
	}
	if s.mainVars[name] {
		// Main-file top-level bindings are emitted as C globals
		// (§4.1 rule 1) and so are reachable from anywhere without an
		// environment capture slot (§4.4 "excluding ... globals").
		return false
	}
	base := s.lambdaBase[len(s.lambdaBase)-1]
	for i := len(s.blocks) - 1; i >= base; i-- {
		if _, ok := s.blocks[i][name]; ok {
			return false // declared inside the closure itself
		}
	}
	for i := base - 1; i >= 0; i-- {
		if _, ok := s.blocks[i][name]; ok {
			return true
		}
	}
	return false
}

// DeclareMainVar registers a top-level main-file name and returns its
// mangled C identifier.
func (s *Scope) DeclareMainVar(name string) string {
	s.mainVars[name] = true
	return MangleMainVar(name)
}

// IsMainVar reports whether name is a known main-file top-level variable —
// used by the Free-Variable Analyzer to exclude globals from capture sets
// (§4.4 "excluding builtins, globals, and source-module exports").
func (s *Scope) IsMainVar(name string) bool { return s.mainVars[name] }

// DeclareImport registers an import alias bound to a resolved module path.
func (s *Scope) DeclareImport(alias, absPath string) { s.mainImports[alias] = absPath }

// ResolveImport looks up an import alias.
func (s *Scope) ResolveImport(alias string) (string, bool) {
	p, ok := s.mainImports[alias]
	return p, ok
}

// BeginFunc resets the ref-parameter mask for a function/closure about to
// be lowered, sizing it for n parameters.
func (s *Scope) BeginFunc(n int) { s.refMask = bitset.New(uint(max(n, 1))) }

// MarkRefParam records that parameter index i is a ref parameter.
func (s *Scope) MarkRefParam(i int) {
	if s.refMask != nil {
		s.refMask.Set(uint(i))
	}
}

// IsRefParam reports whether parameter index i of the function currently
// being lowered is a ref parameter.
func (s *Scope) IsRefParam(i int) bool {
	return s.refMask != nil && s.refMask.Test(uint(i))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
