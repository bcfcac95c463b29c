package ast

// LetStmt declares a new binding: `let name = value` or `const name = value`.
type LetStmt struct {
	Name       string
	Value      Expr
	IsConst    bool
	SourceLine int
}

func (s *LetStmt) Line() int { return s.SourceLine }
func (s *LetStmt) stmtNode() {}

// AssignStmt reassigns an existing identifier binding.
type AssignStmt struct {
	Name       string
	Value      Expr
	SourceLine int
}

func (s *AssignStmt) Line() int { return s.SourceLine }
func (s *AssignStmt) stmtNode() {}

// IndexAssignStmt is `target[index] = value`.
type IndexAssignStmt struct {
	Target     Expr
	Index      Expr
	Value      Expr
	SourceLine int
}

func (s *IndexAssignStmt) Line() int { return s.SourceLine }
func (s *IndexAssignStmt) stmtNode() {}

// PropAssignStmt is `target.field = value`.
type PropAssignStmt struct {
	Target     Expr
	Field      string
	Value      Expr
	SourceLine int
}

func (s *PropAssignStmt) Line() int { return s.SourceLine }
func (s *PropAssignStmt) stmtNode() {}

// ExprStmt wraps an expression evaluated for side effects.
type ExprStmt struct {
	X          Expr
	SourceLine int
}

func (s *ExprStmt) Line() int { return s.SourceLine }
func (s *ExprStmt) stmtNode() {}

// ElseIfClause is one `else if` arm of an IfStmt.
type ElseIfClause struct {
	Cond Expr
	Body []Statement
}

// IfStmt is `if cond { ... } else if cond { ... } else { ... }`.
type IfStmt struct {
	Cond       Expr
	Body       []Statement
	ElseIfs    []ElseIfClause
	Else       []Statement // nil when there is no else clause
	SourceLine int
}

func (s *IfStmt) Line() int { return s.SourceLine }
func (s *IfStmt) stmtNode() {}

// WhileStmt is `while cond { ... }`.
type WhileStmt struct {
	Cond       Expr
	Body       []Statement
	SourceLine int
}

func (s *WhileStmt) Line() int { return s.SourceLine }
func (s *WhileStmt) stmtNode() {}

// ForStmt is the C-style `for init; cond; post { ... }`. Any of Init/Cond/Post
// may be nil.
type ForStmt struct {
	Init       Statement
	Cond       Expr
	Post       Statement
	Body       []Statement
	SourceLine int
}

func (s *ForStmt) Line() int { return s.SourceLine }
func (s *ForStmt) stmtNode() {}

// ForInStmt is `for v in iterable { ... }` or `for i, v in iterable { ... }`.
type ForInStmt struct {
	IndexVar   string // empty when no index binding was requested
	ValueVar   string
	Iterable   Expr
	Body       []Statement
	SourceLine int
}

func (s *ForInStmt) Line() int { return s.SourceLine }
func (s *ForInStmt) stmtNode() {}

// MatchArm is one arm of a MatchStmt/MatchExpr: a pattern, an optional guard
// expression, and the body to run when the pattern matches and the guard
// (if present) is truthy.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil when there is no `if` guard
	Body    []Statement
}

// MatchStmt is Hemlock's `match subject { pattern => body, ... }` used as a
// statement (its value, if any, is discarded).
type MatchStmt struct {
	Subject    Expr
	Arms       []MatchArm
	SourceLine int
}

func (s *MatchStmt) Line() int { return s.SourceLine }
func (s *MatchStmt) stmtNode() {}

// CatchClause is one `catch` arm of a TryStmt.
type CatchClause struct {
	Binding string // bound exception variable name, may be empty
	Body    []Statement
}

// TryStmt is `try { ... } catch e { ... } finally { ... }`.
type TryStmt struct {
	Body       []Statement
	Catch      *CatchClause // nil when there is no catch clause
	Finally    []Statement  // nil when there is no finally clause
	SourceLine int
}

func (s *TryStmt) Line() int { return s.SourceLine }
func (s *TryStmt) stmtNode() {}

// ReturnStmt is `return` or `return value`.
type ReturnStmt struct {
	Value      Expr // nil for a bare `return`
	SourceLine int
}

func (s *ReturnStmt) Line() int { return s.SourceLine }
func (s *ReturnStmt) stmtNode() {}

// BreakStmt is `break`.
type BreakStmt struct {
	SourceLine int
}

func (s *BreakStmt) Line() int { return s.SourceLine }
func (s *BreakStmt) stmtNode() {}

// ContinueStmt is `continue`.
type ContinueStmt struct {
	SourceLine int
}

func (s *ContinueStmt) Line() int { return s.SourceLine }
func (s *ContinueStmt) stmtNode() {}

// DeferStmt is `defer expr` — expr is evaluated for its call side effect at
// scope exit, in LIFO order with its siblings.
type DeferStmt struct {
	Call       Expr
	SourceLine int
}

func (s *DeferStmt) Line() int { return s.SourceLine }
func (s *DeferStmt) stmtNode() {}

// ImportStmt binds a compiled module's exports under a local prefix.
type ImportStmt struct {
	Path       string
	Alias      string // local prefix; defaults to the module's own prefix
	SourceLine int
}

func (s *ImportStmt) Line() int { return s.SourceLine }
func (s *ImportStmt) stmtNode() {}

// ExportStmt marks a top-level name as part of a module's public surface.
type ExportStmt struct {
	Names      []string
	SourceLine int
}

func (s *ExportStmt) Line() int { return s.SourceLine }
func (s *ExportStmt) stmtNode() {}

// EnumStmt declares a closed set of named integer-tagged variants.
type EnumStmt struct {
	Name       string
	Variants   []string
	SourceLine int
}

func (s *EnumStmt) Line() int { return s.SourceLine }
func (s *EnumStmt) stmtNode() {}
