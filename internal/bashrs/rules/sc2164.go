package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2164", checkSC2164)
}

// checkSC2164 flags a bare "cd DIR" with no "|| exit"/"|| return" guard:
// if DIR doesn't exist, the script keeps running in the original
// directory, silently operating on the wrong files (spec.md §9
// supplemented).
func checkSC2164(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitStmt: func(s ast.Stmt, _ ast.Context) bool {
			switch n := s.(type) {
			case *ast.OrList:
				if isCdGuarded(n) {
					return false // guarded: don't also flag the cd nested inside
				}
			case *ast.Command:
				name, _ := commandWords(n)
				if name == "cd" {
					sp := n.Span()
					out = append(out, diag.New(f, "SC2164", diag.Warning,
						"cd without || exit leaves the script running in the wrong directory on failure", sp))
				}
			}
			return true
		},
	})
	return out
}

func isCdGuarded(n *ast.OrList) bool {
	cmd, ok := n.Left.(*ast.Command)
	if !ok {
		return false
	}
	name, _ := commandWords(cmd)
	if name != "cd" {
		return false
	}
	guard, ok := n.Right.(*ast.Command)
	if !ok {
		return false
	}
	guardName, _ := commandWords(guard)
	return guardName == "exit" || guardName == "return"
}
