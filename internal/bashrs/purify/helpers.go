package purify

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
)

// literalText mirrors internal/bashrs/rules' helper of the same name: it
// returns e's flat text when e has an unambiguous literal spelling, and
// ok=false when it contains an expansion no single static string can
// represent.
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

func commandWords(cmd *ast.Command) (name string, args []string) {
	name, _ = literalText(cmd.Name)
	for _, a := range cmd.Args {
		s, ok := literalText(a)
		if !ok {
			args = append(args, "")
			continue
		}
		args = append(args, s)
	}
	return name, args
}

func hasFlag(args []string, flag string) bool {
	want := strings.TrimPrefix(flag, "-")
	for _, a := range args {
		if a == flag {
			return true
		}
		if len(a) > 1 && a[0] == '-' && a[1] != '-' && !strings.Contains(a, "=") && strings.Contains(a[1:], want) {
			return true
		}
	}
	return false
}

func walkCommands(stmts []ast.Stmt, fn func(cmd *ast.Command)) {
	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitStmt: func(s ast.Stmt, _ ast.Context) bool {
			if cmd, ok := s.(*ast.Command); ok {
				fn(cmd)
			}
			return true
		},
	})
}

func walkExprs(stmts []ast.Stmt, fn func(e ast.Expr)) {
	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitExpr: func(e ast.Expr, _ ast.Context) {
			fn(e)
		},
	})
}

// bareVariable reports whether e is, or is entirely, a directly-spliced
// variable/parameter-expansion reference with no surrounding quoting.
func bareVariable(e ast.Expr) (name string, ok bool) {
	switch n := e.(type) {
	case *ast.Variable:
		return n.Name, true
	case *ast.ParameterExpansion:
		return n.Name, true
	default:
		return "", false
	}
}
