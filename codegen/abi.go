package codegen

// abi.go documents and names the fixed runtime contract every generated
// translation unit links against (§6 "External interfaces"). The generator
// never defines these symbols — it only emits calls to them — but keeping
// their names as Go constants here means a rename only ever happens in one
// place, and callers don't sprinkle string literals through expr.go,
// stmt.go, builtins_table.go and closures.go.

const (
	// Value lifecycle. The generator never inspects a value's interior
	// (§3), so it always goes through the primitive-skipping forms —
	// a no-op on an unboxed scalar, a real refcount bump/drop on anything
	// heap-allocated — rather than the runtime's unconditional hml_retain/
	// hml_release, which a caller is only safe to use once it already
	// knows the value is boxed.
	abiRetain  = "hml_retain_if_needed"
	abiRelease = "hml_release_if_needed"
	abiNewInt  = "hml_new_int"
	abiNewFloat = "hml_new_float"
	abiNewStr  = "hml_new_string"
	abiNewBool = "hml_new_bool"
	abiNull    = "hml_null"

	// Arrays/objects.
	abiArrayNew    = "hml_array_new"
	abiArrayPush   = "hml_array_push"
	abiArrayGet    = "hml_array_get"
	abiArraySet    = "hml_array_set"
	abiArrayLen    = "hml_array_len"
	abiObjectNew   = "hml_object_new"
	abiObjectGet   = "hml_object_get"
	abiObjectSet   = "hml_object_set"

	// Closures/environments.
	abiClosureNew   = "hml_closure_new"
	abiClosureCall  = "hml_closure_call"
	abiEnvNew       = "hml_env_new"
	abiEnvGet       = "hml_closure_env_get"
	abiEnvSet       = "hml_closure_env_set"

	// Generic call + arity-checked direct call.
	abiCallFunction = "call_function"

	// FFI (extern fn lazy symbol binding).
	abiFFIResolve = "hml_ffi_resolve"
	abiFFICall    = "hml_ffi_call"

	// Concurrency.
	abiSpawn       = "hml_spawn"
	abiAwait       = "hml_await"
	abiChannelNew  = "hml_channel_new"
	abiChannelSend = "hml_channel_send"
	abiChannelRecv = "hml_channel_recv"
	abiAtomicAdd   = "hml_atomic_add"

	// Error/signal handling.
	abiThrow      = "hml_throw"
	abiTryBegin   = "hml_try_begin"
	abiTryEnd     = "hml_try_end"

	// Stack-check guard, emitted at function entry when StackCheck is on.
	abiStackCheck = "HML_STACK_CHECK"
)

// runtimeIncludes are the fixed C includes/prologue lines every output file
// carries (§6 "Output C prologue / includes / signal defines"), emitted by
// the orchestrator before any generated declaration.
var runtimeIncludes = []string{
	"#include <stdint.h>",
	"#include <stdbool.h>",
	"#include <setjmp.h>",
	"#include \"hml_runtime.h\"",
}

// signalDefines are emitted right after the includes, ahead of any
// generated globals — they give the generated C a way to map Hemlock's
// exception control flow onto setjmp/longjmp (§9 "exception control flow
// via setjmp/longjmp mapped to host idioms").
var signalDefines = []string{
	"#define HML_TRY_PUSH(jb) hml_try_begin(jb)",
	"#define HML_TRY_POP() hml_try_end()",
}
