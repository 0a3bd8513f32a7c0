package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2006", checkSC2006)
}

// checkSC2006 flags legacy backquoted command substitution in favor of
// $(...): backquotes nest awkwardly and escape differently, which is a
// frequent source of bugs when a substitution is itself edited to add
// another level of quoting (spec.md §9 supplemented).
func checkSC2006(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkExprs(stmts, func(e ast.Expr, _ ast.Context) {
		cs, ok := e.(*ast.CommandSubstitution)
		if !ok || !cs.Backquoted {
			return
		}
		sp := cs.Span()
		raw := string(f.Text(sp))
		inner := raw
		if len(inner) >= 2 {
			inner = inner[1 : len(inner)-1]
		}
		d := diag.New(f, "SC2006", diag.Info, "use $(...) instead of legacy backticks", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: "$(" + inner + ")",
			Span:        sp,
			Safety:      diag.Safe,
			Priority:    1,
			RuleCode:    "SC2006",
		}))
	})
	return out
}
