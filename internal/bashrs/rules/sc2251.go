package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2251", checkSC2251)
}

// checkSC2251 flags "! cmd1 | cmd2": negation applies to the whole
// pipeline's exit status (the last stage's), which is rarely what the
// author of "! cmd1 | cmd2" meant when cmd1 is the command they actually
// wanted to negate (spec.md §9 supplemented).
func checkSC2251(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitStmt: func(s ast.Stmt, _ ast.Context) bool {
			p, ok := s.(*ast.Pipeline)
			if !ok || !p.Negated || len(p.Stages) < 2 {
				return true
			}
			sp := p.Span()
			out = append(out, diag.New(f, "SC2251", diag.Warning,
				"! negates the whole pipeline's (last stage's) exit status, not the first command's", sp))
			return true
		},
	})
	return out
}
