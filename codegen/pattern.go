package codegen

import (
	"strconv"

	"github.com/hemlang/hemc/ast"
)

// lowerMatchStmt lowers `match subject { pattern => body, ... }` used as a
// statement: an if/else-if chain over arms, each guarded by its pattern's
// test-phase condition (and guard, if present), running its binding phase
// before its body (§4.11).
func (ctx *Context) lowerMatchStmt(st *ast.MatchStmt) {
	subjectC := ctx.LowerExpr(st.Subject)
	subjectTmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", subjectTmp, subjectC)
	ctx.emitMatchArms(subjectTmp, st.Arms, nil)
}

// lowerMatchExpr lowers `match` in expression position: same arm dispatch,
// but each arm's body must close with a single expression statement whose
// value is stored into a result temp that becomes the expression's value.
func (ctx *Context) lowerMatchExpr(ex *ast.MatchExpr) string {
	subjectC := ctx.LowerExpr(ex.Subject)
	subjectTmp := ctx.Temps.Next()
	resultTmp := ctx.Temps.Next()
	ctx.Writer.Emit("hml_value %s = %s;", subjectTmp, subjectC)
	ctx.Writer.Emit("hml_value %s = %s;", resultTmp, cCall(abiNull))
	ctx.emitMatchArms(subjectTmp, ex.Arms, &resultTmp)
	return resultTmp
}

func (ctx *Context) emitMatchArms(subjectTmp string, arms []ast.MatchArm, resultTmp *string) {
	for i, arm := range arms {
		ctx.Scope.PushBlock()
		cond := ctx.testPattern(arm.Pattern, subjectTmp)
		keyword := "if"
		if i > 0 {
			keyword = "} else if"
		}
		if arm.Guard != nil {
			// The guard expression may reference pattern bindings,
			// so binding-phase declarations must run before it is
			// evaluated; emit the test, open the block, bind, then
			// gate the body on the guard with a nested if.
			ctx.Writer.Emit("%s (%s) {", keyword, cond)
			ctx.Writer.Indent()
			ctx.bindPattern(arm.Pattern, subjectTmp)
			ctx.Writer.Emit("if (hml_truthy(%s)) {", ctx.LowerExpr(arm.Guard))
			ctx.Writer.Indent()
			ctx.emitArmBody(arm.Body, resultTmp)
			ctx.Writer.Dedent()
			ctx.Writer.Emit("}")
			ctx.Writer.Dedent()
		} else {
			ctx.Writer.Emit("%s (%s) {", keyword, cond)
			ctx.Writer.Indent()
			ctx.bindPattern(arm.Pattern, subjectTmp)
			ctx.emitArmBody(arm.Body, resultTmp)
			ctx.Writer.Dedent()
		}
		ctx.Scope.PopBlock()
	}
	if len(arms) > 0 {
		ctx.Writer.Emit("}")
	}
}

func (ctx *Context) emitArmBody(body []ast.Statement, resultTmp *string) {
	if resultTmp == nil {
		ctx.LowerBlock(body)
		return
	}
	if len(body) == 0 {
		return
	}
	for _, s := range body[:len(body)-1] {
		ctx.LowerStmt(s)
	}
	last := body[len(body)-1]
	if es, ok := last.(*ast.ExprStmt); ok {
		ctx.Writer.Emit("%s = %s;", *resultTmp, ctx.LowerExpr(es.X))
		return
	}
	ctx.LowerStmt(last)
}

// testPattern emits the test-phase condition for p against an already
// materialized subject value (§4.11).
func (ctx *Context) testPattern(p ast.Pattern, subject string) string {
	switch pt := p.(type) {
	case *ast.WildcardPattern:
		return "true"
	case *ast.BindingPattern:
		return "true"
	case *ast.LiteralPattern:
		return cCall("hml_truthy", cCall("hml_eq", subject, ctx.LowerExpr(pt.Value)))
	case *ast.RangePattern:
		lo := ctx.LowerExpr(pt.Lo)
		hi := ctx.LowerExpr(pt.Hi)
		return cCallf("hml_in_range", "%s, %s, %s", subject, lo, hi)
	case *ast.TypePattern:
		return cCallf("hml_type_is", "%s, %q", subject, pt.TypeName)
	case *ast.ArrayPattern:
		return ctx.testArrayPattern(pt, subject)
	case *ast.ObjectPattern:
		return ctx.testObjectPattern(pt, subject)
	case *ast.OrPattern:
		out := ""
		for i, alt := range pt.Alternatives {
			if i > 0 {
				out += " || "
			}
			out += "(" + ctx.testPattern(alt, subject) + ")"
		}
		return out
	default:
		ctx.AddError(p.Line(), "unsupported pattern kind %T", p)
		return "false"
	}
}

func (ctx *Context) testArrayPattern(pt *ast.ArrayPattern, subject string) string {
	cond := cCall("hml_is_array", subject)
	if pt.Rest == "" {
		cond += " && " + cCallf(abiArrayLen, "%s", subject) + " == " + strconv.Itoa(len(pt.Elements))
	} else {
		cond += " && " + cCallf(abiArrayLen, "%s", subject) + " >= " + strconv.Itoa(len(pt.Elements))
	}
	for i, el := range pt.Elements {
		elC := cCallf(abiArrayGet, "%s, %s(%d)", subject, abiNewInt, i)
		cond += " && (" + ctx.testPattern(el, elC) + ")"
	}
	return cond
}

func (ctx *Context) testObjectPattern(pt *ast.ObjectPattern, subject string) string {
	cond := cCall("hml_is_object", subject)
	for _, f := range pt.Fields {
		fieldC := cCallf(abiObjectGet, "%s, %q", subject, f.Key)
		cond += " && " + cCallf("hml_object_has", "%s, %q", subject, f.Key)
		cond += " && (" + ctx.testPattern(f.Pattern, fieldC) + ")"
	}
	return cond
}

// bindPattern emits the binding-phase declarations for p, assuming its
// test-phase condition has already succeeded (§4.11).
func (ctx *Context) bindPattern(p ast.Pattern, subject string) {
	switch pt := p.(type) {
	case *ast.BindingPattern:
		name := ctx.Scope.Declare(pt.Name, false)
		ctx.Writer.Emit("hml_value %s = %s;", name, subject)
	case *ast.TypePattern:
		if pt.Binding != "" {
			name := ctx.Scope.Declare(pt.Binding, false)
			ctx.Writer.Emit("hml_value %s = %s;", name, subject)
		}
	case *ast.ArrayPattern:
		for i, el := range pt.Elements {
			elC := cCallf(abiArrayGet, "%s, %s(%d)", subject, abiNewInt, i)
			ctx.bindPattern(el, elC)
		}
		if pt.Rest != "" {
			restName := ctx.Scope.Declare(pt.Rest, false)
			ctx.Writer.Emit("hml_value %s = %s(%s, %d);", restName, "hml_array_tail", subject, len(pt.Elements))
		}
	case *ast.ObjectPattern:
		for _, f := range pt.Fields {
			fieldC := cCallf(abiObjectGet, "%s, %q", subject, f.Key)
			ctx.bindPattern(f.Pattern, fieldC)
		}
	case *ast.OrPattern:
		// Every alternative binds the same name set (checked during
		// scope resolution elsewhere); bind against whichever
		// alternative's test actually matched by re-testing in order,
		// since only one alternative's bindings are meaningful here.
		for i, alt := range pt.Alternatives {
			cond := ctx.testPattern(alt, subject)
			if i == 0 {
				ctx.Writer.Emit("if (%s) {", cond)
			} else {
				ctx.Writer.Emit("} else if (%s) {", cond)
			}
			ctx.Writer.Indent()
			ctx.bindPattern(alt, subject)
			ctx.Writer.Dedent()
		}
		ctx.Writer.Emit("}")
	}
}
