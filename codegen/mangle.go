package codegen

import "fmt"

// Name mangling (§4.1). Three ordered rules govern every symbol the
// generator ever writes to C output:
//
//  1. A top-level name N declared in the main file becomes "_main_N".
//  2. A name N declared in a module compiled with prefix P becomes "PN"
//     (no separator — the prefix is chosen by the module system to already
//     be a valid, unique C identifier fragment).
//  3. A named (non-anonymous) function N, regardless of where it lives,
//     also gets a "hml_fn_" prefixed alias so the runtime's generic
//     call-by-name paths (reflection, FFI callbacks) can find it; this is
//     additive, not a replacement for rules 1/2.
//
// Closures and shared environments are mangled from the Context's closure
// and environment-group indices rather than from a source name, since they
// have none.

// MangleMainVar returns the C identifier for a main-file top-level name.
func MangleMainVar(name string) string { return "_main_" + name }

// MangleModuleVar returns the C identifier for a name exported with the
// given module prefix.
func MangleModuleVar(prefix, name string) string { return prefix + name }

// MangleFuncAlias returns the stable hml_fn_ alias for a named function,
// used by runtime call sites that dispatch by name rather than C symbol.
// Routed through cName like every other identifier emission site, so a
// Hemlock function literally named after a reserved C keyword (e.g.
// "default") still gets a collision-free alias instead of relying on the
// "hml_fn_" prefix alone to save it.
func MangleFuncAlias(name string) string { return "hml_fn_" + cName(name) }

// MangleClosure returns the C function name for the k-th closure body.
func MangleClosure(k int) string { return fmt.Sprintf("_closure_%d", k) }

// MangleClosureWrapper returns the C function name for the k-th closure's
// arity-erasing wrapper (the function actually stored in hml_value closures
// so every closure can be called through one uniform signature).
func MangleClosureWrapper(k int) string { return fmt.Sprintf("_closure_%d_wrapper", k) }

// MangleEnv returns the C type/variable name for the k-th shared
// environment struct.
func MangleEnv(k int) string { return fmt.Sprintf("_env_%d", k) }

// MangleVar resolves a source identifier to its mangled C name according to
// where it was declared, consulting sc for the answer. This is the single
// entry point the Expression Lowerer and Statement Lowerer use for every
// identifier reference — callers never hand-apply the Mangle* functions
// directly except when synthesizing a brand-new symbol (closures, envs).
func MangleVar(sc *Scope, name string) string {
	if local, ok := sc.Lookup(name); ok {
		return local
	}
	// Falls through to a main-file top-level reference; module-qualified
	// references are resolved earlier, at parse time, into
	// Namespace-qualified identifiers the caller mangles with
	// MangleModuleVar instead of reaching this path.
	return MangleMainVar(name)
}
