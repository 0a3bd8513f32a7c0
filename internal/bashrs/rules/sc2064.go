package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2064", checkSC2064)
}

// checkSC2064 flags a "trap HANDLER SIGNAL" whose handler is double-quoted
// (or otherwise unquoted), so any variable inside it expands once, at
// trap-install time, rather than later when the signal actually fires
// (spec.md §4.G table).
func checkSC2064(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		name, _ := literalText(cmd.Name)
		if name != "trap" || len(cmd.Args) == 0 {
			return
		}
		handler := cmd.Args[0]
		if _, single := handler.(*ast.StringSingle); single {
			return
		}
		if lit, ok := literalText(handler); ok && !strings.ContainsAny(lit, "$`") {
			return // no expansion in the literal text, nothing to fire early
		}
		sp := handler.Span()
		raw := string(f.Text(sp))
		inner := strings.TrimSuffix(strings.TrimPrefix(raw, `"`), `"`)
		d := diag.New(f, "SC2064", diag.Warning,
			"use single quotes, otherwise this expands now rather than when the signal fires", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: "'" + inner + "'",
			Span:        sp,
			Safety:      diag.Safe,
			Priority:    5,
			RuleCode:    "SC2064",
		}))
	})
	return out
}
