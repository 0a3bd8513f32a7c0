package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("MAKE008", checkMAKE008)
}

// checkMAKE008 flags a recipe line indented with spaces instead of a
// tab. GNU make rejects this outright ("missing separator"); the lexer
// still recovers a BadIndentRecipe line so this rule can surface the
// mistake as a diagnostic instead of a hard parse failure.
func checkMAKE008(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkRules(stmts, func(r *ast.Rule) {
		for _, rl := range r.Recipe {
			if rl.TabIndented {
				continue
			}
			indentSpan := source.NewSpan(rl.IndentStart, rl.Span().Start)
			d := diag.New(f, "MAKE008", diag.Error,
				"recipe line indented with spaces instead of a tab", indentSpan)
			out = append(out, d.WithFix(diag.Fix{
				Replacement: "\t",
				Span:        indentSpan,
				Safety:      diag.Safe,
				Priority:    10,
				RuleCode:    "MAKE008",
			}))
		}
	})
	return out
}
