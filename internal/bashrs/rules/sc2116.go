package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2116", checkSC2116)
}

// checkSC2116 flags "$(echo X)" where X needs no substitution at all —
// the command substitution can be replaced by X itself. Skipped when X
// contains "|", since that usually means the author actually wanted a
// pipeline's output, not a literal echo (spec.md §4.G table).
func checkSC2116(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkExprs(stmts, func(e ast.Expr, _ ast.Context) {
		cs, ok := e.(*ast.CommandSubstitution)
		if !ok {
			return
		}
		cmd, ok := cs.Body.(*ast.Command)
		if !ok {
			return
		}
		name, _ := literalText(cmd.Name)
		if name != "echo" {
			return
		}
		inner := string(f.Text(cs.Span()))
		if strings.Contains(inner, "|") {
			return
		}
		sp := cs.Span()
		replacement := echoArgsLiteral(f, cmd)
		d := diag.New(f, "SC2116", diag.Info,
			"useless use of echo in command substitution", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: replacement,
			Span:        sp,
			Safety:      diag.Safe,
			Priority:    20,
			RuleCode:    "SC2116",
		}))
	})
	return out
}

// echoArgsLiteral reassembles the raw source text of cmd's arguments
// (everything after the "echo" word) so the fix preserves exactly what
// the user wrote, instead of re-serializing it and risking a subtly
// different quoting.
func echoArgsLiteral(f *source.File, cmd *ast.Command) string {
	if len(cmd.Args) == 0 {
		return ""
	}
	start := cmd.Args[0].Span().Start
	end := cmd.Args[len(cmd.Args)-1].Span().End
	return string(f.Text(source.NewSpan(start, end)))
}
