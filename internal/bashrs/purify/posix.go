package purify

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// findPOSIXRewrites implements spec.md §4.J's POSIX-compliance category:
// "function name {" -> "name() {"; "[[ ... ]]" -> "[ ... ]" when the test
// has no bash-only connective; "$(expr A OP B)" -> "$(( A OP B ))".
func findPOSIXRewrites(f *source.File, stmts []ast.Stmt, opts Options) []Transformation {
	var out []Transformation

	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitStmt: func(s ast.Stmt, _ ast.Context) bool {
			switch n := s.(type) {
			case *ast.Function:
				if t, ok := functionKeywordRewrite(f, n); ok {
					out = append(out, t)
				}
			case *ast.Command:
				if t, ok := doubleBracketRewrite(f, n); ok {
					out = append(out, t)
				}
			}
			return true
		},
	})

	walkExprs(stmts, func(e ast.Expr) {
		cs, ok := e.(*ast.CommandSubstitution)
		if !ok {
			return
		}
		if t, ok := exprToArithRewrite(f, cs); ok {
			out = append(out, t)
		}
	})

	return out
}

// functionKeywordRewrite rewrites "function name {" / "function name()
// {" to the POSIX "name() {" form. n.Name is already resolved by the
// parser regardless of which form was used; UsesFunctionKeyword records
// which form the source actually wrote (spec.md §3 "Function").
func functionKeywordRewrite(f *source.File, n *ast.Function) (Transformation, bool) {
	if !n.UsesFunctionKeyword {
		return Transformation{}, false
	}
	// The header runs from the statement's start to the opening brace of
	// its body; re-use that much of the span, not the whole function,
	// since the body itself is untouched.
	headerEnd := n.Span().Start
	for headerEnd < n.Span().End && f.Data[headerEnd] != '{' {
		headerEnd++
	}
	sp := source.NewSpan(n.Span().Start, headerEnd+1)
	return Transformation{
		Code:        "POSIX001",
		Description: "rewrote \"function " + n.Name + "\" to the POSIX \"" + n.Name + "()\" form",
		Span:        sp,
		Replacement: n.Name + "() {",
	}, true
}

// doubleBracketRewrite rewrites "[[ TEST ]]" to "[ TEST ]" when TEST uses
// no bash-only connective (&&/||/=~), which would not survive the switch
// to single brackets.
func doubleBracketRewrite(f *source.File, cmd *ast.Command) (Transformation, bool) {
	name, _ := literalText(cmd.Name)
	if name != "[[" || len(cmd.Args) != 1 {
		return Transformation{}, false
	}
	te, ok := cmd.Args[0].(*ast.TestExpr)
	if !ok || !posixCompatibleTest(te) {
		return Transformation{}, false
	}
	sp := cmd.Span()
	inner := strings.TrimSpace(string(f.Text(source.NewSpan(cmd.Name.Span().End, sp.End-2))))
	return Transformation{
		Code:        "POSIX002",
		Description: "rewrote [[ ]] to [ ] (the contained test has a POSIX equivalent)",
		Span:        sp,
		Replacement: "[ " + inner + " ]",
	}, true
}

func posixCompatibleTest(te *ast.TestExpr) bool {
	switch te.Op {
	case ast.TestAnd, ast.TestOr, ast.TestRegex:
		return false
	}
	if te.Operator == "<" || te.Operator == ">" {
		return false // needs escaping in [ ] to avoid redirection, not a drop-in rewrite
	}
	for _, operand := range te.Operands {
		if nested, ok := operand.(*ast.TestExpr); ok && !posixCompatibleTest(nested) {
			return false
		}
	}
	return true
}

// exprToArithRewrite rewrites "$(expr A OP B ...)" to "$(( A OP B ... ))":
// expr is an external process invoked for arithmetic that bash's own
// compound can do in-process.
func exprToArithRewrite(f *source.File, cs *ast.CommandSubstitution) (Transformation, bool) {
	cmd, ok := cs.Body.(*ast.Command)
	if !ok {
		return Transformation{}, false
	}
	name, _ := literalText(cmd.Name)
	if name != "expr" || len(cmd.Args) == 0 {
		return Transformation{}, false
	}
	start := cmd.Args[0].Span().Start
	end := cmd.Args[len(cmd.Args)-1].Span().End
	exprText := string(f.Text(source.NewSpan(start, end)))
	return Transformation{
		Code:        "POSIX003",
		Description: "rewrote $(expr ...) to an arithmetic compound $(( ... ))",
		Span:        cs.Span(),
		Replacement: "$(( " + exprText + " ))",
	}, true
}
