package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2046", checkSC2046)
}

// checkSC2046 flags a bare "$(cmd)" used directly as a command argument,
// where the result is subject to word splitting before the command ever
// sees it.
func checkSC2046(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		for _, arg := range cmd.Args {
			if cs, ok := arg.(*ast.CommandSubstitution); ok {
				sp := cs.Span()
				original := string(f.Text(sp))
				d := diag.New(f, "SC2046", diag.Warning,
					"quote this to prevent word splitting: "+original, sp)
				out = append(out, d.WithFix(diag.Fix{
					Replacement: `"` + original + `"`,
					Span:        sp,
					Safety:      diag.Safe,
					Priority:    15,
					RuleCode:    "SC2046",
				}).WithHelpTopics("quoting"))
			}
		}
	})
	return out
}
