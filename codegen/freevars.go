package codegen

import "github.com/hemlang/hemc/ast"

// FreeVars computes the set of names a closure body references that are
// not satisfied locally — the generalized form of the teacher's
// collectIdents walker, filtered through Scope.IsCapturedVar so builtins,
// main-file globals and source-module exports never show up in a capture
// list (§4.4). Scope must already have PushLambda'd for this closure and
// have its parameters declared before FreeVars is called, so parameter
// names correctly resolve as "local, not captured".
func FreeVars(body []ast.Statement, sc *Scope, isBuiltin func(string) bool) []string {
	raw := make(map[string]bool)
	for _, s := range body {
		collectIdentsStmt(s, raw)
	}
	seen := make(map[string]bool, len(raw))
	var out []string
	for name := range raw {
		if isBuiltin(name) {
			continue
		}
		if !sc.IsCapturedVar(name) {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func collectIdentsStmt(s ast.Statement, names map[string]bool) {
	switch st := s.(type) {
	case *ast.LetStmt:
		collectIdentsExpr(st.Value, names)
	case *ast.AssignStmt:
		collectIdentsExpr(st.Value, names)
		names[st.Name] = true
	case *ast.IndexAssignStmt:
		collectIdentsExpr(st.Target, names)
		collectIdentsExpr(st.Index, names)
		collectIdentsExpr(st.Value, names)
	case *ast.PropAssignStmt:
		collectIdentsExpr(st.Target, names)
		collectIdentsExpr(st.Value, names)
	case *ast.ExprStmt:
		collectIdentsExpr(st.X, names)
	case *ast.IfStmt:
		collectIdentsExpr(st.Cond, names)
		collectIdentsStmts(st.Body, names)
		for _, ei := range st.ElseIfs {
			collectIdentsExpr(ei.Cond, names)
			collectIdentsStmts(ei.Body, names)
		}
		collectIdentsStmts(st.Else, names)
	case *ast.WhileStmt:
		collectIdentsExpr(st.Cond, names)
		collectIdentsStmts(st.Body, names)
	case *ast.ForStmt:
		if st.Init != nil {
			collectIdentsStmt(st.Init, names)
		}
		if st.Cond != nil {
			collectIdentsExpr(st.Cond, names)
		}
		if st.Post != nil {
			collectIdentsStmt(st.Post, names)
		}
		collectIdentsStmts(st.Body, names)
	case *ast.ForInStmt:
		collectIdentsExpr(st.Iterable, names)
		collectIdentsStmts(st.Body, names)
	case *ast.MatchStmt:
		collectIdentsExpr(st.Subject, names)
		for _, arm := range st.Arms {
			collectIdentsPattern(arm.Pattern, names)
			if arm.Guard != nil {
				collectIdentsExpr(arm.Guard, names)
			}
			collectIdentsStmts(arm.Body, names)
		}
	case *ast.TryStmt:
		collectIdentsStmts(st.Body, names)
		if st.Catch != nil {
			collectIdentsStmts(st.Catch.Body, names)
		}
		collectIdentsStmts(st.Finally, names)
	case *ast.ReturnStmt:
		if st.Value != nil {
			collectIdentsExpr(st.Value, names)
		}
	case *ast.DeferStmt:
		collectIdentsExpr(st.Call, names)
	case *ast.FuncDef:
		collectIdentsStmts(st.Body, names)
	}
}

func collectIdentsStmts(stmts []ast.Statement, names map[string]bool) {
	for _, s := range stmts {
		collectIdentsStmt(s, names)
	}
}

func collectIdentsExpr(e ast.Expr, names map[string]bool) {
	switch ex := e.(type) {
	case nil:
	case *ast.IdentExpr:
		names[ex.Name] = true
	case *ast.BinaryExpr:
		collectIdentsExpr(ex.Left, names)
		collectIdentsExpr(ex.Right, names)
	case *ast.UnaryExpr:
		collectIdentsExpr(ex.X, names)
	case *ast.IncDecExpr:
		collectIdentsExpr(ex.X, names)
	case *ast.TernaryExpr:
		collectIdentsExpr(ex.Cond, names)
		collectIdentsExpr(ex.Then, names)
		collectIdentsExpr(ex.Else, names)
	case *ast.NullCoalesceExpr:
		collectIdentsExpr(ex.Left, names)
		collectIdentsExpr(ex.Right, names)
	case *ast.OptChainExpr:
		collectIdentsExpr(ex.Target, names)
		if ex.Index != nil {
			collectIdentsExpr(ex.Index, names)
		}
	case *ast.CallExpr:
		collectIdentsExpr(ex.Callee, names)
		for _, a := range ex.Args {
			collectIdentsExpr(a, names)
		}
	case *ast.MethodCallExpr:
		collectIdentsExpr(ex.Recv, names)
		for _, a := range ex.Args {
			collectIdentsExpr(a, names)
		}
	case *ast.IndexExpr:
		collectIdentsExpr(ex.Target, names)
		collectIdentsExpr(ex.Index, names)
	case *ast.PropExpr:
		collectIdentsExpr(ex.Target, names)
	case *ast.ArrayLit:
		for _, el := range ex.Elements {
			collectIdentsExpr(el, names)
		}
	case *ast.ObjectLit:
		for _, f := range ex.Fields {
			collectIdentsExpr(f.Value, names)
		}
	case *ast.FnExpr:
		collectIdentsStmts(ex.Body, names)
	case *ast.SpreadExpr:
		collectIdentsExpr(ex.X, names)
	case *ast.AwaitExpr:
		collectIdentsExpr(ex.X, names)
	case *ast.SpawnExpr:
		collectIdentsExpr(ex.Call, names)
	case *ast.MatchExpr:
		collectIdentsExpr(ex.Subject, names)
		for _, arm := range ex.Arms {
			collectIdentsPattern(arm.Pattern, names)
			if arm.Guard != nil {
				collectIdentsExpr(arm.Guard, names)
			}
			collectIdentsStmts(arm.Body, names)
		}
	case *ast.StringInterpExpr:
		for _, p := range ex.Parts {
			if p.Expr != nil {
				collectIdentsExpr(p.Expr, names)
			}
		}
	}
}

func collectIdentsPattern(p ast.Pattern, names map[string]bool) {
	switch pt := p.(type) {
	case *ast.LiteralPattern:
		collectIdentsExpr(pt.Value, names)
	case *ast.ArrayPattern:
		for _, el := range pt.Elements {
			collectIdentsPattern(el, names)
		}
	case *ast.ObjectPattern:
		for _, f := range pt.Fields {
			collectIdentsPattern(f.Pattern, names)
		}
	case *ast.RangePattern:
		collectIdentsExpr(pt.Lo, names)
		collectIdentsExpr(pt.Hi, names)
	case *ast.OrPattern:
		for _, alt := range pt.Alternatives {
			collectIdentsPattern(alt, names)
		}
	}
	// WildcardPattern, BindingPattern, TypePattern introduce bindings
	// rather than referencing them — nothing to collect.
}
