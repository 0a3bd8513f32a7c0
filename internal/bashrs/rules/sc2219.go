package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2219", checkSC2219)
}

// checkSC2219 flags "let EXPR" in favor of the "(( EXPR ))" arithmetic
// compound: let requires fragile quoting around operators like "*" and
// its exit status semantics differ subtly from (( )) (spec.md §9
// supplemented).
func checkSC2219(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		name, _ := literalText(cmd.Name)
		if name != "let" {
			return
		}
		sp := cmd.Span()
		exprText := ""
		if len(cmd.Args) > 0 {
			start := cmd.Args[0].Span().Start
			end := cmd.Args[len(cmd.Args)-1].Span().End
			exprText = string(f.Text(source.NewSpan(start, end)))
		}
		d := diag.New(f, "SC2219", diag.Info, "use (( )) instead of let", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: "(( " + exprText + " ))",
			Span:        sp,
			Safety:      diag.Safe,
			Priority:    1,
			RuleCode:    "SC2219",
		}))
	})
	return out
}
