package ast

// Pattern is a `match` arm pattern (§4.11). Patterns are not expressions —
// they describe a shape to test the subject against plus bindings to
// introduce on success, not a value to compute.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern is `_` — always matches, binds nothing.
type WildcardPattern struct {
	SourceLine int
}

func (p *WildcardPattern) Line() int    { return p.SourceLine }
func (p *WildcardPattern) patternNode() {}

// LiteralPattern matches when the subject equals a literal value.
type LiteralPattern struct {
	Value      Expr // an IntLit, FloatLit, StringLit, BoolLit or NullLit
	SourceLine int
}

func (p *LiteralPattern) Line() int    { return p.SourceLine }
func (p *LiteralPattern) patternNode() {}

// BindingPattern always matches and binds the subject to Name.
type BindingPattern struct {
	Name       string
	SourceLine int
}

func (p *BindingPattern) Line() int    { return p.SourceLine }
func (p *BindingPattern) patternNode() {}

// ArrayPattern matches an array of compatible length and destructures its
// elements. When Rest is non-empty, it binds the remaining tail elements as
// an array under that name and the pattern matches arrays of length >=
// len(Elements) instead of requiring an exact match.
type ArrayPattern struct {
	Elements   []Pattern
	Rest       string // empty when there is no rest binding
	SourceLine int
}

func (p *ArrayPattern) Line() int    { return p.SourceLine }
func (p *ArrayPattern) patternNode() {}

// ObjectPatternField is one `key: pattern` entry of an ObjectPattern.
type ObjectPatternField struct {
	Key     string
	Pattern Pattern
}

// ObjectPattern matches an object that has at least the named fields, each
// destructured by its own sub-pattern.
type ObjectPattern struct {
	Fields     []ObjectPatternField
	SourceLine int
}

func (p *ObjectPattern) Line() int    { return p.SourceLine }
func (p *ObjectPattern) patternNode() {}

// RangePattern matches a numeric subject within [Lo, Hi] inclusive.
type RangePattern struct {
	Lo, Hi     Expr
	SourceLine int
}

func (p *RangePattern) Line() int    { return p.SourceLine }
func (p *RangePattern) patternNode() {}

// TypePattern matches when the subject's runtime tag equals TypeName
// ("int", "float", "string", "bool", "array", "object", "null", "function").
type TypePattern struct {
	TypeName   string
	Binding    string // optional name to bind the subject to on match
	SourceLine int
}

func (p *TypePattern) Line() int    { return p.SourceLine }
func (p *TypePattern) patternNode() {}

// OrPattern matches when any of Alternatives matches. Every alternative must
// bind the same set of names (checked by the scope tracker, §4.11).
type OrPattern struct {
	Alternatives []Pattern
	SourceLine   int
}

func (p *OrPattern) Line() int    { return p.SourceLine }
func (p *OrPattern) patternNode() {}
