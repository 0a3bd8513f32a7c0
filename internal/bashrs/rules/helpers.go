package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
)

// literalText returns the flat text of e when e is something with an
// unambiguous literal spelling (a bare word, a single-quoted string, or a
// concatenation of only such parts), and ok=false otherwise (e.g. it
// contains an expansion, so no single static string represents it).
func literalText(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Value, true
	case *ast.StringSingle:
		return n.Text, true
	case *ast.Concatenation:
		var sb strings.Builder
		for _, p := range n.Parts {
			s, ok := literalText(p)
			if !ok {
				return "", false
			}
			sb.WriteString(s)
		}
		return sb.String(), true
	default:
		return "", false
	}
}

// commandWords returns the literal text of cmd's name and each arg,
// skipping (returning ok=false for) any word that isn't a plain literal —
// callers that need exact flag matching (e.g. "-rf") use this and treat a
// non-literal arg as "doesn't match," never as a crash.
func commandWords(cmd *ast.Command) (name string, args []string) {
	name, _ = literalText(cmd.Name)
	for _, a := range cmd.Args {
		if s, ok := literalText(a); ok {
			args = append(args, s)
		} else {
			args = append(args, "")
		}
	}
	return name, args
}

// hasFlag reports whether any of args equals flag exactly, or (for
// single-dash short flags) is a combined short-flag cluster containing
// flag's letter, e.g. hasFlag(args, "-f") matches both "-f" and "-rf".
func hasFlag(args []string, flag string) bool {
	if !strings.HasPrefix(flag, "-") || strings.HasPrefix(flag, "--") {
		for _, a := range args {
			if a == flag {
				return true
			}
		}
		return false
	}
	letter := flag[1:]
	for _, a := range args {
		if a == flag {
			return true
		}
		if strings.HasPrefix(a, "-") && !strings.HasPrefix(a, "--") && strings.Contains(a, letter) {
			return true
		}
	}
	return false
}

// walkCommands calls fn for every *ast.Command reachable in stmts.
func walkCommands(stmts []ast.Stmt, fn func(cmd *ast.Command, ctx ast.Context)) {
	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitStmt: func(s ast.Stmt, ctx ast.Context) bool {
			if cmd, ok := s.(*ast.Command); ok {
				fn(cmd, ctx)
			}
			return true
		},
	})
}

// walkExprs calls fn for every ast.Expr reachable in stmts.
func walkExprs(stmts []ast.Stmt, fn func(e ast.Expr, ctx ast.Context)) {
	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitExpr: fn,
	})
}
