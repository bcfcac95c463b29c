package ast

import (
	"encoding/json"
	"fmt"
)

// decode.go is the codegen core's one input contract with the lexer,
// parser and type checker (all out of scope, §1): they hand it a JSON
// document shaped like this package's node types, tagged with a "kind"
// discriminator per node, and the generator takes it from there.

// DecodeProgram parses a JSON-encoded AST into a Program ready for
// codegen.Compile.
func DecodeProgram(data []byte) (*Program, error) {
	var raw struct {
		Statements []json.RawMessage `json:"statements"`
		SourceFile string            `json:"source_file"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	stmts, err := decodeStmtList(raw.Statements)
	if err != nil {
		return nil, err
	}
	return &Program{Statements: stmts, SourceFile: raw.SourceFile}, nil
}

type kindEnvelope struct {
	Kind string `json:"kind"`
}

func sniffKind(raw json.RawMessage) (string, error) {
	var k kindEnvelope
	if err := json.Unmarshal(raw, &k); err != nil {
		return "", fmt.Errorf("decoding node envelope: %w", err)
	}
	if k.Kind == "" {
		return "", fmt.Errorf("node missing \"kind\" field")
	}
	return k.Kind, nil
}

func decodeStmtList(raws []json.RawMessage) ([]Statement, error) {
	out := make([]Statement, 0, len(raws))
	for _, r := range raws {
		s, err := decodeStmt(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeExprList(raws []json.RawMessage) ([]Expr, error) {
	out := make([]Expr, 0, len(raws))
	for _, r := range raws {
		e, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeParams(raws []json.RawMessage) ([]Param, error) {
	out := make([]Param, 0, len(raws))
	for _, r := range raws {
		var w struct {
			Name    string          `json:"name"`
			Default json.RawMessage `json:"default"`
			IsRef   bool            `json:"is_ref"`
		}
		if err := json.Unmarshal(r, &w); err != nil {
			return nil, fmt.Errorf("decoding param: %w", err)
		}
		def, err := decodeExpr(w.Default)
		if err != nil {
			return nil, err
		}
		out = append(out, Param{Name: w.Name, Default: def, IsRef: w.IsRef})
	}
	return out, nil
}

// decodeExpr is nil-safe: an absent/null field decodes to a nil Expr, which
// every optional Expr field in this package (Param.Default, MatchArm.Guard,
// and so on) expects.
func decodeExpr(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	kind, err := sniffKind(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "IntLit":
		var w struct {
			Value int64 `json:"value"`
			Line  int   `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &IntLit{Value: w.Value, SourceLine: w.Line}, nil
	case "FloatLit":
		var w struct {
			Value float64 `json:"value"`
			Line  int     `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &FloatLit{Value: w.Value, SourceLine: w.Line}, nil
	case "StringLit":
		var w struct {
			Value string `json:"value"`
			Line  int    `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &StringLit{Value: w.Value, SourceLine: w.Line}, nil
	case "RuneLit":
		var w struct {
			Value rune `json:"value"`
			Line  int  `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &RuneLit{Value: w.Value, SourceLine: w.Line}, nil
	case "BoolLit":
		var w struct {
			Value bool `json:"value"`
			Line  int  `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &BoolLit{Value: w.Value, SourceLine: w.Line}, nil
	case "NullLit":
		var w struct {
			Line int `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &NullLit{SourceLine: w.Line}, nil
	case "StringInterpExpr":
		var w struct {
			Parts []struct {
				Text string          `json:"text"`
				Expr json.RawMessage `json:"expr"`
			} `json:"parts"`
			Line int `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		parts := make([]StringInterpPart, 0, len(w.Parts))
		for _, p := range w.Parts {
			ex, err := decodeExpr(p.Expr)
			if err != nil {
				return nil, err
			}
			parts = append(parts, StringInterpPart{Text: p.Text, Expr: ex})
		}
		return &StringInterpExpr{Parts: parts, SourceLine: w.Line}, nil
	case "IdentExpr":
		var w struct {
			Name string `json:"name"`
			Line int    `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &IdentExpr{Name: w.Name, SourceLine: w.Line}, nil
	case "BinaryExpr":
		var w struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
			Line  int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		left, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: w.Op, Left: left, Right: right, SourceLine: w.Line}, nil
	case "UnaryExpr":
		var w struct {
			Op   string          `json:"op"`
			X    json.RawMessage `json:"x"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		x, err := decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: w.Op, X: x, SourceLine: w.Line}, nil
	case "IncDecExpr":
		var w struct {
			Op     string          `json:"op"`
			X      json.RawMessage `json:"x"`
			Prefix bool            `json:"prefix"`
			Line   int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		x, err := decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		return &IncDecExpr{Op: w.Op, X: x, Prefix: w.Prefix, SourceLine: w.Line}, nil
	case "TernaryExpr":
		var w struct {
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(w.Else)
		if err != nil {
			return nil, err
		}
		return &TernaryExpr{Cond: cond, Then: then, Else: els, SourceLine: w.Line}, nil
	case "NullCoalesceExpr":
		var w struct {
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
			Line  int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		left, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return &NullCoalesceExpr{Left: left, Right: right, SourceLine: w.Line}, nil
	case "OptChainExpr":
		var w struct {
			Target json.RawMessage `json:"target"`
			Field  string          `json:"field"`
			Index  json.RawMessage `json:"index"`
			Line   int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(w.Index)
		if err != nil {
			return nil, err
		}
		return &OptChainExpr{Target: target, Field: w.Field, Index: idx, SourceLine: w.Line}, nil
	case "CallExpr":
		var w struct {
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
			Line   int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		callee, err := decodeExpr(w.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprList(w.Args)
		if err != nil {
			return nil, err
		}
		return &CallExpr{Callee: callee, Args: args, SourceLine: w.Line}, nil
	case "MethodCallExpr":
		var w struct {
			Recv   json.RawMessage   `json:"recv"`
			Method string            `json:"method"`
			Args   []json.RawMessage `json:"args"`
			Line   int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		recv, err := decodeExpr(w.Recv)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprList(w.Args)
		if err != nil {
			return nil, err
		}
		return &MethodCallExpr{Recv: recv, Method: w.Method, Args: args, SourceLine: w.Line}, nil
	case "IndexExpr":
		var w struct {
			Target json.RawMessage `json:"target"`
			Index  json.RawMessage `json:"index"`
			Line   int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(w.Index)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{Target: target, Index: idx, SourceLine: w.Line}, nil
	case "PropExpr":
		var w struct {
			Target json.RawMessage `json:"target"`
			Field  string          `json:"field"`
			Line   int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		return &PropExpr{Target: target, Field: w.Field, SourceLine: w.Line}, nil
	case "ArrayLit":
		var w struct {
			Elements []json.RawMessage `json:"elements"`
			Line     int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		els, err := decodeExprList(w.Elements)
		if err != nil {
			return nil, err
		}
		return &ArrayLit{Elements: els, SourceLine: w.Line}, nil
	case "ObjectLit":
		var w struct {
			Fields []struct {
				Key   string          `json:"key"`
				Value json.RawMessage `json:"value"`
			} `json:"fields"`
			Line int `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fields := make([]ObjectField, 0, len(w.Fields))
		for _, f := range w.Fields {
			v, err := decodeExpr(f.Value)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ObjectField{Key: f.Key, Value: v})
		}
		return &ObjectLit{Fields: fields, SourceLine: w.Line}, nil
	case "FnExpr":
		var w struct {
			Params    []json.RawMessage `json:"params"`
			RestParam string            `json:"rest_param"`
			Body      []json.RawMessage `json:"body"`
			Line      int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		params, err := decodeParams(w.Params)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		return &FnExpr{Params: params, RestParam: w.RestParam, Body: body, SourceLine: w.Line}, nil
	case "SpreadExpr":
		var w struct {
			X    json.RawMessage `json:"x"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		x, err := decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		return &SpreadExpr{X: x, SourceLine: w.Line}, nil
	case "AwaitExpr":
		var w struct {
			X    json.RawMessage `json:"x"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		x, err := decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		return &AwaitExpr{X: x, SourceLine: w.Line}, nil
	case "SpawnExpr":
		var w struct {
			Call json.RawMessage `json:"call"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		call, err := decodeExpr(w.Call)
		if err != nil {
			return nil, err
		}
		return &SpawnExpr{Call: call, SourceLine: w.Line}, nil
	case "MatchExpr":
		var w struct {
			Subject json.RawMessage   `json:"subject"`
			Arms    []json.RawMessage `json:"arms"`
			Line    int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		subject, err := decodeExpr(w.Subject)
		if err != nil {
			return nil, err
		}
		arms, err := decodeMatchArms(w.Arms)
		if err != nil {
			return nil, err
		}
		return &MatchExpr{Subject: subject, Arms: arms, SourceLine: w.Line}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", kind)
	}
}

func decodeMatchArms(raws []json.RawMessage) ([]MatchArm, error) {
	out := make([]MatchArm, 0, len(raws))
	for _, r := range raws {
		var w struct {
			Pattern json.RawMessage   `json:"pattern"`
			Guard   json.RawMessage   `json:"guard"`
			Body    []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(r, &w); err != nil {
			return nil, fmt.Errorf("decoding match arm: %w", err)
		}
		pat, err := decodePattern(w.Pattern)
		if err != nil {
			return nil, err
		}
		guard, err := decodeExpr(w.Guard)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		out = append(out, MatchArm{Pattern: pat, Guard: guard, Body: body})
	}
	return out, nil
}

func decodePattern(raw json.RawMessage) (Pattern, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	kind, err := sniffKind(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "WildcardPattern":
		var w struct {
			Line int `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &WildcardPattern{SourceLine: w.Line}, nil
	case "LiteralPattern":
		var w struct {
			Value json.RawMessage `json:"value"`
			Line  int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		v, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &LiteralPattern{Value: v, SourceLine: w.Line}, nil
	case "BindingPattern":
		var w struct {
			Name string `json:"name"`
			Line int    `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &BindingPattern{Name: w.Name, SourceLine: w.Line}, nil
	case "ArrayPattern":
		var w struct {
			Elements []json.RawMessage `json:"elements"`
			Rest     string            `json:"rest"`
			Line     int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		els := make([]Pattern, 0, len(w.Elements))
		for _, r := range w.Elements {
			p, err := decodePattern(r)
			if err != nil {
				return nil, err
			}
			els = append(els, p)
		}
		return &ArrayPattern{Elements: els, Rest: w.Rest, SourceLine: w.Line}, nil
	case "ObjectPattern":
		var w struct {
			Fields []struct {
				Key     string          `json:"key"`
				Pattern json.RawMessage `json:"pattern"`
			} `json:"fields"`
			Line int `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fields := make([]ObjectPatternField, 0, len(w.Fields))
		for _, f := range w.Fields {
			p, err := decodePattern(f.Pattern)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ObjectPatternField{Key: f.Key, Pattern: p})
		}
		return &ObjectPattern{Fields: fields, SourceLine: w.Line}, nil
	case "RangePattern":
		var w struct {
			Lo, Hi json.RawMessage
			Line   int `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		lo, err := decodeExpr(w.Lo)
		if err != nil {
			return nil, err
		}
		hi, err := decodeExpr(w.Hi)
		if err != nil {
			return nil, err
		}
		return &RangePattern{Lo: lo, Hi: hi, SourceLine: w.Line}, nil
	case "TypePattern":
		var w struct {
			TypeName string `json:"type_name"`
			Binding  string `json:"binding"`
			Line     int    `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &TypePattern{TypeName: w.TypeName, Binding: w.Binding, SourceLine: w.Line}, nil
	case "OrPattern":
		var w struct {
			Alternatives []json.RawMessage `json:"alternatives"`
			Line         int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		alts := make([]Pattern, 0, len(w.Alternatives))
		for _, r := range w.Alternatives {
			p, err := decodePattern(r)
			if err != nil {
				return nil, err
			}
			alts = append(alts, p)
		}
		return &OrPattern{Alternatives: alts, SourceLine: w.Line}, nil
	default:
		return nil, fmt.Errorf("unknown pattern kind %q", kind)
	}
}

func decodeStmt(raw json.RawMessage) (Statement, error) {
	kind, err := sniffKind(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "LetStmt":
		var w struct {
			Name    string          `json:"name"`
			Value   json.RawMessage `json:"value"`
			IsConst bool            `json:"is_const"`
			Line    int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		v, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &LetStmt{Name: w.Name, Value: v, IsConst: w.IsConst, SourceLine: w.Line}, nil
	case "AssignStmt":
		var w struct {
			Name  string          `json:"name"`
			Value json.RawMessage `json:"value"`
			Line  int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		v, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Name: w.Name, Value: v, SourceLine: w.Line}, nil
	case "IndexAssignStmt":
		var w struct {
			Target json.RawMessage `json:"target"`
			Index  json.RawMessage `json:"index"`
			Value  json.RawMessage `json:"value"`
			Line   int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(w.Index)
		if err != nil {
			return nil, err
		}
		v, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &IndexAssignStmt{Target: target, Index: idx, Value: v, SourceLine: w.Line}, nil
	case "PropAssignStmt":
		var w struct {
			Target json.RawMessage `json:"target"`
			Field  string          `json:"field"`
			Value  json.RawMessage `json:"value"`
			Line   int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		v, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &PropAssignStmt{Target: target, Field: w.Field, Value: v, SourceLine: w.Line}, nil
	case "ExprStmt":
		var w struct {
			X    json.RawMessage `json:"x"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		x, err := decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: x, SourceLine: w.Line}, nil
	case "IfStmt":
		var w struct {
			Cond    json.RawMessage `json:"cond"`
			Body    []json.RawMessage `json:"body"`
			ElseIfs []struct {
				Cond json.RawMessage   `json:"cond"`
				Body []json.RawMessage `json:"body"`
			} `json:"else_ifs"`
			Else []json.RawMessage `json:"else"`
			Line int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		elseIfs := make([]ElseIfClause, 0, len(w.ElseIfs))
		for _, ei := range w.ElseIfs {
			c, err := decodeExpr(ei.Cond)
			if err != nil {
				return nil, err
			}
			b, err := decodeStmtList(ei.Body)
			if err != nil {
				return nil, err
			}
			elseIfs = append(elseIfs, ElseIfClause{Cond: c, Body: b})
		}
		var elseBody []Statement
		if w.Else != nil {
			elseBody, err = decodeStmtList(w.Else)
			if err != nil {
				return nil, err
			}
		}
		return &IfStmt{Cond: cond, Body: body, ElseIfs: elseIfs, Else: elseBody, SourceLine: w.Line}, nil
	case "WhileStmt":
		var w struct {
			Cond json.RawMessage   `json:"cond"`
			Body []json.RawMessage `json:"body"`
			Line int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body, SourceLine: w.Line}, nil
	case "ForStmt":
		var w struct {
			Init json.RawMessage   `json:"init"`
			Cond json.RawMessage   `json:"cond"`
			Post json.RawMessage   `json:"post"`
			Body []json.RawMessage `json:"body"`
			Line int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		var init, post Statement
		if len(w.Init) > 0 && string(w.Init) != "null" {
			if init, err = decodeStmt(w.Init); err != nil {
				return nil, err
			}
		}
		if len(w.Post) > 0 && string(w.Post) != "null" {
			if post, err = decodeStmt(w.Post); err != nil {
				return nil, err
			}
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		return &ForStmt{Init: init, Cond: cond, Post: post, Body: body, SourceLine: w.Line}, nil
	case "ForInStmt":
		var w struct {
			IndexVar string            `json:"index_var"`
			ValueVar string            `json:"value_var"`
			Iterable json.RawMessage   `json:"iterable"`
			Body     []json.RawMessage `json:"body"`
			Line     int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		iter, err := decodeExpr(w.Iterable)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		return &ForInStmt{IndexVar: w.IndexVar, ValueVar: w.ValueVar, Iterable: iter, Body: body, SourceLine: w.Line}, nil
	case "MatchStmt":
		var w struct {
			Subject json.RawMessage   `json:"subject"`
			Arms    []json.RawMessage `json:"arms"`
			Line    int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		subject, err := decodeExpr(w.Subject)
		if err != nil {
			return nil, err
		}
		arms, err := decodeMatchArms(w.Arms)
		if err != nil {
			return nil, err
		}
		return &MatchStmt{Subject: subject, Arms: arms, SourceLine: w.Line}, nil
	case "TryStmt":
		var w struct {
			Body  []json.RawMessage `json:"body"`
			Catch *struct {
				Binding string            `json:"binding"`
				Body    []json.RawMessage `json:"body"`
			} `json:"catch"`
			Finally []json.RawMessage `json:"finally"`
			Line    int               `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		body, err := decodeStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		var catch *CatchClause
		if w.Catch != nil {
			cb, err := decodeStmtList(w.Catch.Body)
			if err != nil {
				return nil, err
			}
			catch = &CatchClause{Binding: w.Catch.Binding, Body: cb}
		}
		var finally []Statement
		if w.Finally != nil {
			finally, err = decodeStmtList(w.Finally)
			if err != nil {
				return nil, err
			}
		}
		return &TryStmt{Body: body, Catch: catch, Finally: finally, SourceLine: w.Line}, nil
	case "ReturnStmt":
		var w struct {
			Value json.RawMessage `json:"value"`
			Line  int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		v, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: v, SourceLine: w.Line}, nil
	case "BreakStmt":
		var w struct {
			Line int `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &BreakStmt{SourceLine: w.Line}, nil
	case "ContinueStmt":
		var w struct {
			Line int `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ContinueStmt{SourceLine: w.Line}, nil
	case "DeferStmt":
		var w struct {
			Call json.RawMessage `json:"call"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		call, err := decodeExpr(w.Call)
		if err != nil {
			return nil, err
		}
		return &DeferStmt{Call: call, SourceLine: w.Line}, nil
	case "ImportStmt":
		var w struct {
			Path  string `json:"path"`
			Alias string `json:"alias"`
			Line  int    `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ImportStmt{Path: w.Path, Alias: w.Alias, SourceLine: w.Line}, nil
	case "ExportStmt":
		var w struct {
			Names []string `json:"names"`
			Line  int      `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ExportStmt{Names: w.Names, SourceLine: w.Line}, nil
	case "EnumStmt":
		var w struct {
			Name     string   `json:"name"`
			Variants []string `json:"variants"`
			Line     int      `json:"line"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &EnumStmt{Name: w.Name, Variants: w.Variants, SourceLine: w.Line}, nil
	case "FuncDef":
		var w struct {
			Name       string            `json:"name"`
			Namespace  string            `json:"namespace"`
			Params     []json.RawMessage `json:"params"`
			RestParam  string            `json:"rest_param"`
			Body       []json.RawMessage `json:"body"`
			IsExtern   bool              `json:"is_extern"`
			ExternName string            `json:"extern_name"`
			Line       int               `json:"line"`
			SourceFile string            `json:"source_file"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		params, err := decodeParams(w.Params)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		return &FuncDef{
			Name: w.Name, Namespace: w.Namespace, Params: params, RestParam: w.RestParam,
			Body: body, IsExtern: w.IsExtern, ExternName: w.ExternName,
			SourceLine: w.Line, SourceFile: w.SourceFile,
		}, nil
	default:
		return nil, fmt.Errorf("unknown statement kind %q", kind)
	}
}
