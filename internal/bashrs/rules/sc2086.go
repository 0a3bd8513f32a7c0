package rules

import (
	"fmt"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2086", checkSC2086)
}

// checkSC2086 flags a bare (unquoted) "$var" or "${var}" used directly as
// a command argument, where word splitting and glob expansion apply.
// Variables already inside a double-quoted string are a different AST
// node (*ast.StringDouble) and never reach this check, which is how
// "skip quoted context" falls out of the tree shape instead of a
// re-scan (spec.md §4.G).
func checkSC2086(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		for _, arg := range cmd.Args {
			if name, sp, bare := bareVariable(arg); bare {
				if name == "@" || name == "*" {
					continue // intentional splitting, e.g. "$@" pattern without quotes is its own rule
				}
				out = append(out, sc2086Diagnostic(f, sp))
			}
		}
	})
	return out
}

// bareVariable reports whether e is, or is entirely composed of, a
// directly-spliced variable/parameter-expansion reference with no
// surrounding quoting.
func bareVariable(e ast.Expr) (name string, sp source.Span, ok bool) {
	switch n := e.(type) {
	case *ast.Variable:
		return n.Name, n.Span(), true
	case *ast.ParameterExpansion:
		return n.Name, n.Span(), true
	default:
		return "", source.Span{}, false
	}
}

func sc2086Diagnostic(f *source.File, sp source.Span) diag.Diagnostic {
	original := string(f.Text(sp))
	d := diag.New(f, "SC2086", diag.Warning,
		fmt.Sprintf("double quote to prevent globbing and word splitting: %s", original), sp)
	return d.WithFix(diag.Fix{
		Replacement: `"` + original + `"`,
		Span:        sp,
		Safety:      diag.Safe,
		Priority:    10,
		RuleCode:    "SC2086",
	}).WithHelpTopics("quoting")
}
