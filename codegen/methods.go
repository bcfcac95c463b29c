package codegen

import "github.com/hemlang/hemc/ast"

// MethodDef describes one `recv.method(args...)` entry in the method-call
// table (§4.6.2): a separate, smaller table from the builtin function
// table, because method names are resolved against the receiver's runtime
// type tag rather than a single flat namespace — "push" means something
// different on an array than "send" means on a channel, and two unrelated
// types can both define a method with the same name.
type MethodDef struct {
	Runtime  string
	MinArgs  int
	MaxArgs  int // -1 unbounded
	// Tags lists the receiver runtime type tags this entry applies to;
	// empty means "any tag accepted, runtime dispatches polymorphically"
	// (hml_method_dispatch handles the tag switch itself in that case).
	Tags []string
}

// methodTable covers string/array/object/file/channel/socket/serialization
// methods (§4.6.2). Names shared across tags (e.g. "len" on both string and
// array) dispatch polymorphically at runtime through hml_method_dispatch
// rather than needing one table row per tag.
var methodTable = map[string]MethodDef{
	"len":      {Runtime: "hml_method_dispatch", MinArgs: 0, MaxArgs: 0},
	"push":     {Runtime: "hml_method_dispatch", MinArgs: 1, MaxArgs: 1, Tags: []string{"array"}},
	"pop":      {Runtime: "hml_method_dispatch", MinArgs: 0, MaxArgs: 0, Tags: []string{"array"}},
	"shift":    {Runtime: "hml_method_dispatch", MinArgs: 0, MaxArgs: 0, Tags: []string{"array"}},
	"unshift":  {Runtime: "hml_method_dispatch", MinArgs: 1, MaxArgs: 1, Tags: []string{"array"}},
	"slice":    {Runtime: "hml_method_dispatch", MinArgs: 1, MaxArgs: 2},
	"sort":     {Runtime: "hml_array_sort", MinArgs: 0, MaxArgs: 1, Tags: []string{"array"}},
	"reverse":  {Runtime: "hml_array_reverse", MinArgs: 0, MaxArgs: 0, Tags: []string{"array"}},
	"map":      {Runtime: "hml_array_map", MinArgs: 1, MaxArgs: 1, Tags: []string{"array"}},
	"filter":   {Runtime: "hml_array_filter", MinArgs: 1, MaxArgs: 1, Tags: []string{"array"}},
	"reduce":   {Runtime: "hml_array_reduce", MinArgs: 1, MaxArgs: 2, Tags: []string{"array"}},
	"keys":     {Runtime: "hml_object_keys", MinArgs: 0, MaxArgs: 0, Tags: []string{"object"}},
	"values":   {Runtime: "hml_object_values", MinArgs: 0, MaxArgs: 0, Tags: []string{"object"}},
	"has":      {Runtime: "hml_object_has", MinArgs: 1, MaxArgs: 1, Tags: []string{"object"}},
	"delete":   {Runtime: "hml_object_delete", MinArgs: 1, MaxArgs: 1, Tags: []string{"object"}},
	"split":    {Runtime: "hml_string_split", MinArgs: 1, MaxArgs: 1, Tags: []string{"string"}},
	"trim":     {Runtime: "hml_string_trim", MinArgs: 0, MaxArgs: 0, Tags: []string{"string"}},
	"upper":    {Runtime: "hml_string_upper", MinArgs: 0, MaxArgs: 0, Tags: []string{"string"}},
	"lower":    {Runtime: "hml_string_lower", MinArgs: 0, MaxArgs: 0, Tags: []string{"string"}},
	"contains": {Runtime: "hml_string_contains", MinArgs: 1, MaxArgs: 1, Tags: []string{"string"}},
	"replace":  {Runtime: "hml_string_replace", MinArgs: 2, MaxArgs: 2, Tags: []string{"string"}},
	"read":     {Runtime: "hml_method_dispatch", MinArgs: 0, MaxArgs: 1, Tags: []string{"file", "socket"}},
	"write":    {Runtime: "hml_method_dispatch", MinArgs: 1, MaxArgs: 1, Tags: []string{"file", "socket"}},
	"close":    {Runtime: "hml_method_dispatch", MinArgs: 0, MaxArgs: 0, Tags: []string{"file", "socket", "channel"}},
	"send":     {Runtime: "hml_channel_send", MinArgs: 1, MaxArgs: 1, Tags: []string{"channel"}},
	"recv":     {Runtime: "hml_channel_recv", MinArgs: 0, MaxArgs: 0, Tags: []string{"channel"}},
	"to_json":  {Runtime: "hml_json_encode", MinArgs: 0, MaxArgs: 0},
}

// LowerMethodCall resolves `recv.method(args...)` through the method
// table, falling back to a polymorphic runtime dispatch call when the name
// is unrecognized at compile time (a dynamically typed receiver may still
// support the method; the generator cannot always know statically).
func (ctx *Context) LowerMethodCall(mc *ast.MethodCallExpr) string {
	recvC := ctx.LowerExpr(mc.Recv)
	args := ctx.lowerCallArgs(mc.Args)

	def, ok := methodTable[mc.Method]
	if !ok {
		return ctx.dynamicMethodCall(recvC, mc.Method, args)
	}
	if len(args) < def.MinArgs || (def.MaxArgs != -1 && len(args) > def.MaxArgs) {
		ctx.AddError(mc.Line(), "method %q called with %d arguments", mc.Method, len(args))
	}
	if def.Runtime == "hml_method_dispatch" {
		return ctx.dynamicMethodCall(recvC, mc.Method, args)
	}
	all := append([]string{recvC}, args...)
	return cCall(def.Runtime, all...)
}

func (ctx *Context) dynamicMethodCall(recvC, method string, args []string) string {
	argvTmp := ctx.Temps.Next()
	if len(args) == 0 {
		ctx.Writer.Emit("hml_value *%s = NULL;", argvTmp)
	} else {
		ctx.Writer.Emit("hml_value %s[] = {%s};", argvTmp, joinArgs(args))
	}
	return cCallf("hml_method_dispatch", "%s, %q, %s, %d", recvC, method, argvTmp, len(args))
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}
