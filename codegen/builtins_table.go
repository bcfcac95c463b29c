package codegen

// builtins_table.go is the fixed-arity builtin call table (§4.6 step 1),
// the direct analogue of the teacher's modules/module.go FuncDef{Name,
// Args, Variadic} registry — generalized from "generate a Go wrapper per
// module function" to "resolve a call site straight to its hml_* runtime
// entry point", since there is no intermediate Go function to wrap here.

// BuiltinDef describes one fixed-arity builtin resolvable in dispatch
// step 1.
type BuiltinDef struct {
	Name     string // source-level name, as written in a Hemlock call
	Runtime  string // hml_* runtime entry point
	MinArgs  int
	MaxArgs  int // -1 means unbounded (Variadic)
	Variadic bool
}

func b(name, runtime string, min, max int) BuiltinDef {
	return BuiltinDef{Name: name, Runtime: runtime, MinArgs: min, MaxArgs: max}
}

func variadic(name, runtime string, min int) BuiltinDef {
	return BuiltinDef{Name: name, Runtime: runtime, MinArgs: min, MaxArgs: -1, Variadic: true}
}

// builtinTable lists every builtin name the dispatcher recognizes in step 1.
// Categories follow §4.6's own grouping. Some names are deliberately
// duplicated across categories with differing arity (e.g. make_dir); the
// dispatcher resolves by first match in table order, matching the
// documented "first-match-wins" open-question resolution (§9, DESIGN.md).
var builtinTable = []BuiltinDef{
	// I/O
	variadic("print", "hml_print", 0),
	variadic("println", "hml_println", 0),
	b("read_line", "hml_read_line", 0, 0),
	b("read_all", "hml_read_all", 0, 0),
	b("write", "hml_write", 1, 1),
	b("eprint", "hml_eprint", 1, 1),
	b("eprintln", "hml_eprintln", 1, 1),

	// Introspection (assert/panic always run regardless of --optimize;
	// they are never folded away)
	variadic("assert", "hml_assert", 1),
	variadic("panic", "hml_panic", 1),
	b("typeof", "hml_typeof", 1, 1),
	b("sizeof", "hml_sizeof", 1, 1),
	b("is_null", "hml_is_null", 1, 1),
	b("is_array", "hml_is_array", 1, 1),
	b("is_object", "hml_is_object", 1, 1),
	b("is_function", "hml_is_function", 1, 1),
	b("is_numeric", "hml_is_numeric", 1, 1),
	b("task_debug_info", "hml_task_debug_info", 0, 1),

	// Type constructors / conversions
	b("int", "hml_to_int", 1, 1),
	b("float", "hml_to_float", 1, 1),
	b("string", "hml_to_string", 1, 1),
	b("bool", "hml_to_bool", 1, 1),
	b("array", "hml_to_array", 0, 1),
	b("object", "hml_to_object", 0, 1),
	b("chars", "hml_string_chars", 1, 1),
	b("i8", "hml_to_i8", 1, 1),
	b("i16", "hml_to_i16", 1, 1),
	b("i32", "hml_to_i32", 1, 1),
	b("i64", "hml_to_i64", 1, 1),
	b("u8", "hml_to_u8", 1, 1),
	b("u16", "hml_to_u16", 1, 1),
	b("u32", "hml_to_u32", 1, 1),
	b("u64", "hml_to_u64", 1, 1),
	b("f32", "hml_to_f32", 1, 1),
	b("f64", "hml_to_f64", 1, 1),
	b("byte", "hml_to_u8", 1, 1),
	b("integer", "hml_to_int", 1, 1),
	b("number", "hml_to_float", 1, 1),

	// Concurrency
	b("channel", "hml_channel_new", 0, 1),
	b("send", "hml_channel_send", 2, 2),
	b("recv", "hml_channel_recv", 1, 1),
	b("detach", "hml_detach_task", 1, 1),
	b("detach", "hml_detach_channel", 1, 2),
	b("sleep_ms", "hml_sleep_ms", 1, 1),
	b("mutex", "hml_mutex_new", 0, 0),
	b("lock", "hml_mutex_lock", 1, 1),
	b("unlock", "hml_mutex_unlock", 1, 1),
	variadic("select", "hml_select", 1),
	b("poll", "hml_poll", 1, 2),
	b("signal", "hml_signal_register", 2, 2),
	b("raise", "hml_raise", 1, 1),

	// Atomics / memory
	b("atomic_add", "hml_atomic_add", 2, 2),
	b("atomic_sub", "hml_atomic_sub", 2, 2),
	b("atomic_and", "hml_atomic_and", 2, 2),
	b("atomic_or", "hml_atomic_or", 2, 2),
	b("atomic_xor", "hml_atomic_xor", 2, 2),
	b("atomic_exchange", "hml_atomic_exchange", 2, 2),
	b("atomic_load", "hml_atomic_load", 1, 1),
	b("atomic_store", "hml_atomic_store", 2, 2),
	b("atomic_cas", "hml_atomic_cas", 3, 3),
	b("atomic_fence", "hml_atomic_fence", 0, 0),
	b("atomic_add64", "hml_atomic_add_i64", 2, 2),
	b("atomic_cas64", "hml_atomic_cas_i64", 3, 3),
	b("alloc", "hml_raw_alloc", 1, 1),
	b("free", "hml_raw_free", 1, 1),
	b("talloc", "hml_raw_alloc_typed", 2, 2),
	b("realloc", "hml_raw_realloc", 2, 2),
	b("memset", "hml_raw_memset", 3, 3),
	b("memcpy", "hml_raw_memcpy", 3, 3),
	b("buffer", "hml_buffer_new", 1, 1),
	b("buffer_ptr", "hml_buffer_ptr", 1, 1),

	// Pointers / FFI
	b("addr_of", "hml_addr_of", 1, 1),
	b("deref", "hml_deref", 1, 1),
	b("ptr_null", "hml_ptr_null", 0, 0),
	b("ptr_offset", "hml_ptr_offset", 2, 2),
	b("ptr_to_buffer", "hml_ptr_to_buffer", 2, 2),
	b("ptr_read_i32", "hml_ptr_read_i32", 1, 1),
	b("ptr_read_i64", "hml_ptr_read_i64", 1, 1),
	b("ptr_read_f64", "hml_ptr_read_f64", 1, 1),
	b("ptr_deref_i8", "hml_ptr_deref_i8", 1, 1),
	b("ptr_deref_i16", "hml_ptr_deref_i16", 1, 1),
	b("ptr_deref_i32", "hml_ptr_deref_i32", 1, 1),
	b("ptr_deref_i64", "hml_ptr_deref_i64", 1, 1),
	b("ptr_deref_f32", "hml_ptr_deref_f32", 1, 1),
	b("ptr_deref_f64", "hml_ptr_deref_f64", 1, 1),
	b("ptr_write_i8", "hml_ptr_write_i8", 2, 2),
	b("ptr_write_i16", "hml_ptr_write_i16", 2, 2),
	b("ptr_write_i32", "hml_ptr_write_i32", 2, 2),
	b("ptr_write_i64", "hml_ptr_write_i64", 2, 2),
	b("ptr_write_f32", "hml_ptr_write_f32", 2, 2),
	b("ptr_write_f64", "hml_ptr_write_f64", 2, 2),
	b("ffi_call", "hml_ffi_call", 2, -1),
	b("callback", "hml_ffi_callback_new", 2, 2),
	b("callback_free", "hml_ffi_callback_free", 1, 1),
	b("ffi_sizeof", "hml_ffi_sizeof", 1, 1),

	// Math
	b("abs", "hml_abs", 1, 1),
	b("floor", "hml_floor", 1, 1),
	b("ceil", "hml_ceil", 1, 1),
	b("round", "hml_round", 1, 1),
	b("sqrt", "hml_sqrt", 1, 1),
	b("pow", "hml_pow", 2, 2),
	b("min", "hml_min", 2, 2),
	b("max", "hml_max", 2, 2),
	b("sin", "hml_sin", 1, 1),
	b("cos", "hml_cos", 1, 1),
	b("tan", "hml_tan", 1, 1),
	b("log", "hml_log", 1, 1),
	b("log2", "hml_log2", 1, 1),
	b("log10", "hml_log10", 1, 1),
	b("random", "hml_random", 0, 0),
	b("random_int", "hml_random_int", 2, 2),

	// Time / datetime
	b("now", "hml_now_unix", 0, 0),
	b("now_ms", "hml_now_unix_ms", 0, 0),
	b("date_parse", "hml_date_parse", 1, 1),
	b("date_format", "hml_date_format", 2, 2),
	b("date_year", "hml_date_year", 1, 1),
	b("date_month", "hml_date_month", 1, 1),
	b("date_day", "hml_date_day", 1, 1),
	b("localtime", "hml_localtime", 1, 1),
	b("gmtime", "hml_gmtime", 1, 1),
	b("mktime", "hml_mktime", 1, 1),
	b("strftime", "hml_strftime", 2, 2),

	// Environment
	b("getenv", "hml_getenv", 1, 1),
	b("setenv", "hml_setenv", 2, 2),
	b("unsetenv", "hml_unsetenv", 1, 1),
	b("args", "hml_program_args", 0, 0),
	b("exit", "hml_exit", 0, 1),
	b("abort", "hml_abort", 0, 0),
	b("get_pid", "hml_get_pid", 0, 0),
	b("getppid", "hml_getppid", 0, 0),
	b("getuid", "hml_getuid", 0, 0),
	b("geteuid", "hml_geteuid", 0, 0),
	b("getgid", "hml_getgid", 0, 0),
	b("getegid", "hml_getegid", 0, 0),
	b("fork", "hml_fork", 0, 0),
	b("wait", "hml_wait", 0, 0),
	b("waitpid", "hml_waitpid", 1, 2),
	b("kill", "hml_kill", 2, 2),

	// Filesystem
	b("read_file", "hml_read_file", 1, 1),
	b("write_file", "hml_write_file", 2, 2),
	b("append_file", "hml_append_file", 2, 2),
	b("file_exists", "hml_file_exists", 1, 1),
	b("remove_file", "hml_remove_file", 1, 1),
	b("make_dir", "hml_make_dir", 1, 1),
	b("make_dir", "hml_make_dir_all", 2, 2),
	b("remove_dir", "hml_remove_dir", 1, 1),
	b("remove_dir", "hml_remove_dir_all", 2, 2),
	b("list_dir", "hml_list_dir", 1, 1),
	b("rename", "hml_rename", 2, 2),
	b("copy_file", "hml_copy_file", 2, 2),
	b("is_file", "hml_is_file", 1, 1),
	b("is_dir", "hml_is_dir", 1, 1),
	b("file_stat", "hml_file_stat", 1, 1),
	b("cwd", "hml_cwd", 0, 0),
	b("chdir", "hml_chdir", 1, 1),
	b("absolute_path", "hml_absolute_path", 1, 1),

	// OS info
	b("os_name", "hml_os_name", 0, 0),
	b("arch_name", "hml_arch_name", 0, 0),
	b("hostname", "hml_hostname", 0, 0),
	b("cpu_count", "hml_cpu_count", 0, 0),
	b("platform", "hml_platform", 0, 0),
	b("username", "hml_username", 0, 0),
	b("homedir", "hml_homedir", 0, 0),
	b("tmpdir", "hml_tmpdir", 0, 0),
	b("total_memory", "hml_total_memory", 0, 0),
	b("free_memory", "hml_free_memory", 0, 0),
	b("os_version", "hml_os_version", 0, 0),
	b("uptime", "hml_uptime", 0, 0),

	// Sockets / HTTP / WebSocket
	b("tcp_connect", "hml_tcp_connect", 2, 2),
	b("tcp_listen", "hml_tcp_listen", 1, 1),
	b("tcp_accept", "hml_tcp_accept", 1, 1),
	b("socket_create", "hml_socket_create", 1, 2),
	b("socket_send", "hml_socket_send", 2, 2),
	b("socket_recv", "hml_socket_recv", 1, 2),
	b("socket_close", "hml_socket_close", 1, 1),
	b("dns_resolve", "hml_dns_resolve", 1, 1),
	b("http_get", "hml_http_get", 1, 1),
	b("http_post", "hml_http_post", 2, 3),
	b("ws_connect", "hml_ws_connect", 1, 1),
	b("ws_send", "hml_ws_send", 2, 2),
	b("ws_recv", "hml_ws_recv", 1, 1),
	b("ws_close", "hml___lws_close", 1, 1),
	b("http_serve", "hml___lws_http_serve", 2, 2),
	b("ws_serve", "hml___lws_ws_serve", 2, 2),

	// Compression / crypto
	b("gzip_compress", "hml_gzip_compress", 1, 1),
	b("gzip_decompress", "hml_gzip_decompress", 1, 1),
	b("zlib_compress", "hml_zlib_compress", 1, 1),
	b("zlib_decompress", "hml_zlib_decompress", 1, 1),
	b("crc32", "hml_crc32", 1, 1),
	b("adler32", "hml_adler32", 1, 1),
	b("sha256", "hml_sha256", 1, 1),
	b("sha512", "hml_sha512", 1, 1),
	b("md5", "hml_md5", 1, 1),
	b("ecdsa_sign", "hml_ecdsa_sign", 2, 2),
	b("ecdsa_verify", "hml_ecdsa_verify", 3, 3),
	b("base64_encode", "hml_base64_encode", 1, 1),
	b("base64_decode", "hml_base64_decode", 1, 1),
	b("hex_encode", "hml_hex_encode", 1, 1),
	b("hex_decode", "hml_hex_decode", 1, 1),

	// Strings (free functions; method-table covers the receiver-style
	// forms of the same operations — see methods.go)
	variadic("format", "hml_format", 1),
	b("split", "hml_string_split", 2, 2),
	b("join", "hml_string_join", 2, 2),
	b("trim", "hml_string_trim", 1, 1),
	b("upper", "hml_string_upper", 1, 1),
	b("lower", "hml_string_lower", 1, 1),
	b("replace", "hml_string_replace", 3, 3),
	b("contains", "hml_string_contains", 2, 2),
	b("starts_with", "hml_string_starts_with", 2, 2),
	b("ends_with", "hml_string_ends_with", 2, 2),
	b("index_of", "hml_string_index_of", 2, 2),
	b("substring", "hml_string_substring", 2, 3),
	b("string_byte_length", "hml_string_byte_length", 1, 1),
	b("string_to_cstr", "hml_string_to_cstr", 1, 1),
	b("cstr_to_string", "hml_cstr_to_string", 1, 1),
	b("string_from_bytes", "hml_string_from_bytes", 1, 1),
	variadic("string_concat_many", "hml_string_concat_many", 0),

	// Serialization
	b("json_encode", "hml_json_encode", 1, 1),
	b("json_decode", "hml_json_decode", 1, 1),
}

// builtinIndex is builtinTable indexed by name for O(1) lookup; because
// make_dir/remove_dir/detach have multiple arities under one name, the
// index stores every entry for a name in table order and arity filtering
// happens in ResolveBuiltin.
var builtinIndex = func() map[string][]BuiltinDef {
	idx := make(map[string][]BuiltinDef, len(builtinTable))
	for _, def := range builtinTable {
		idx[def.Name] = append(idx[def.Name], def)
	}
	return idx
}()

// builtinNames is the set of every name builtinTable recognizes, used by
// the Free-Variable Analyzer to exclude builtin references from capture
// sets (§4.4).
var builtinNames = func() map[string]bool {
	names := make(map[string]bool, len(builtinIndex))
	for n := range builtinIndex {
		names[n] = true
	}
	return names
}()

// IsBuiltinName reports whether name is a recognized builtin.
func IsBuiltinName(name string) bool { return builtinNames[name] }

// ResolveBuiltin implements dispatch step 1: find the first table entry
// whose name matches and whose arity window accepts argc, in table
// declaration order (first-match-wins for the duplicated names, §9).
func ResolveBuiltin(name string, argc int) (BuiltinDef, bool) {
	for _, def := range builtinIndex[name] {
		if argc < def.MinArgs {
			continue
		}
		if def.MaxArgs != -1 && argc > def.MaxArgs {
			continue
		}
		return def, true
	}
	return BuiltinDef{}, false
}
