package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2059", checkSC2059)
}

// checkSC2059 flags a printf format string (the first argument) that
// contains a variable expansion rather than being a static literal —
// if the expanded value itself contains "%", printf misinterprets it as
// a format directive (spec.md §4.G table).
func checkSC2059(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		name, _ := literalText(cmd.Name)
		if name != "printf" || len(cmd.Args) == 0 {
			return
		}
		fmtArg := cmd.Args[0]
		if _, ok := literalText(fmtArg); ok {
			return
		}
		sp := fmtArg.Span()
		d := diag.New(f, "SC2059", diag.Error,
			"don't use variables in the printf format string; use printf '%s' \"$var\" instead", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: `'%s' ` + string(f.Text(sp)),
			Span:        sp,
			Safety:      diag.Unsafe,
			Assumptions: []string{
				`use a literal format string and pass the value as an argument: printf '%s' "$var"`,
				`if the value is itself a trusted format string, keep it but document why`,
				`use printf -v to capture into a variable instead of formatting directly`,
			},
			RuleCode: "SC2059",
		}))
	})
	return out
}
