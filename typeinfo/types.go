// Package typeinfo carries the type-inference side table the codegen core
// consumes but never produces (spec.md §1, §9: "Type inference ... is
// consumed, not performed by this component").
package typeinfo

import "github.com/hemlang/hemc/ast"

// Kind is an inferred value shape. Unlike the runtime's tagged Value union
// (§3), Kind exists only at compile time to drive unboxed-arithmetic and
// strength-reduction decisions (§4.5).
type Kind int

const (
	// Unknown means inference never resolved a type for this site.
	Unknown Kind = iota
	Int
	Float
	String
	Bool
	Null
	Array
	Object
	// Dynamic is an explicit "can't know statically" result (mixed
	// branches, external calls, etc.) — distinct from Unknown so the
	// generator can tell "never looked" from "looked and gave up".
	Dynamic
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Null:
		return "null"
	case Array:
		return "array"
	case Object:
		return "object"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Unboxable reports whether a value of this kind can be carried as a native
// C scalar (int64_t, double, or bool) instead of a boxed hml_value, the
// precondition for the Expression Lowerer's unboxed-arithmetic fast path
// (§4.5 "when a type side-table marks both operands unboxable").
func (k Kind) Unboxable() bool {
	return k == Int || k == Float || k == Bool
}

// IsNumeric reports whether k participates in numeric promotion.
func (k Kind) IsNumeric() bool {
	return k == Int || k == Float
}

// FuncSig is the inferred parameter/return signature of a function.
type FuncSig struct {
	Params []Kind
	Return Kind
}

// Table is the per-program side table the orchestrator threads through
// CodegenContext. All lookups degrade to Dynamic/Unknown on a miss rather
// than panicking — a missing entry just disables an optimization, it never
// changes program semantics (§9: optimizations must be semantics-preserving).
type Table struct {
	Exprs    map[ast.Expr]Kind
	Funcs    map[string]*FuncSig
	// Vars is keyed by scope name (the enclosing function name, or "" for
	// top-level/main) then by variable name.
	Vars map[string]map[string]Kind
}

// NewTable returns an empty, ready-to-use Table.
func NewTable() *Table {
	return &Table{
		Exprs: make(map[ast.Expr]Kind),
		Funcs: make(map[string]*FuncSig),
		Vars:  make(map[string]map[string]Kind),
	}
}

// ExprKind returns the inferred kind of e, or Dynamic if none was recorded.
func (t *Table) ExprKind(e ast.Expr) Kind {
	if t == nil {
		return Dynamic
	}
	if k, ok := t.Exprs[e]; ok {
		return k
	}
	return Dynamic
}

// VarKind returns the inferred kind of a variable within scope, or Dynamic.
func (t *Table) VarKind(scope, name string) Kind {
	if t == nil {
		return Dynamic
	}
	if vars, ok := t.Vars[scope]; ok {
		if k, ok := vars[name]; ok {
			return k
		}
	}
	return Dynamic
}

// SetVarKind records the inferred kind of a variable within scope.
func (t *Table) SetVarKind(scope, name string, k Kind) {
	vars, ok := t.Vars[scope]
	if !ok {
		vars = make(map[string]Kind)
		t.Vars[scope] = vars
	}
	vars[name] = k
}

// FuncSignature returns the inferred signature for name, or nil if unknown.
func (t *Table) FuncSignature(name string) *FuncSig {
	if t == nil {
		return nil
	}
	return t.Funcs[name]
}

// Unify merges two kinds the way the teacher's inference pass merges
// branches of a conditional: equal kinds agree, Unknown yields to the other
// side, numeric kinds promote to Float, anything else falls back to Dynamic.
func Unify(a, b Kind) Kind {
	if a == b {
		return a
	}
	if a == Unknown {
		return b
	}
	if b == Unknown {
		return a
	}
	if a == Dynamic || b == Dynamic {
		return Dynamic
	}
	if a.IsNumeric() && b.IsNumeric() {
		return Float
	}
	return Dynamic
}
