package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2114", checkSC2114)
	registerChecker("SC2115", checkSC2115)
}

func isRmRf(cmd *ast.Command) bool {
	name, args := commandWords(cmd)
	return name == "rm" && hasFlag(args, "-r") && hasFlag(args, "-f")
}

// checkSC2114 flags "rm -rf $dir/*" — if dir is ever empty, this deletes
// from the filesystem root, not a validation-protected subdirectory
// (spec.md §4.G table).
func checkSC2114(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		if !isRmRf(cmd) {
			return
		}
		for _, arg := range cmd.Args[1:] {
			text := string(f.Text(arg.Span()))
			if !strings.HasSuffix(text, "/*") {
				continue
			}
			if !containsVariableRef(arg) {
				continue
			}
			sp := arg.Span()
			out = append(out, rmSuggestGuard(f, "SC2114",
				"this glob expands to the filesystem root if the variable is ever empty", sp))
		}
	})
	return out
}

// checkSC2115 flags "rm -rf $dir" with no glob suffix: an unvalidated,
// possibly-empty variable used as the sole deletion target.
func checkSC2115(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		if !isRmRf(cmd) {
			return
		}
		for _, arg := range cmd.Args[1:] {
			name, sp, bare := bareVariable(arg)
			if !bare {
				continue
			}
			_ = name
			out = append(out, rmSuggestGuard(f, "SC2115",
				"use \"${var:?}\" to ensure this never expands to an empty or unset path", sp))
		}
	})
	return out
}

func containsVariableRef(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Variable, *ast.ParameterExpansion:
		return true
	case *ast.Concatenation:
		for _, p := range n.Parts {
			if containsVariableRef(p) {
				return true
			}
		}
		return false
	case *ast.StringDouble:
		for _, seg := range n.Segments {
			if seg.Expr != nil && containsVariableRef(seg.Expr) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func rmSuggestGuard(f *source.File, code, msg string, sp source.Span) diag.Diagnostic {
	d := diag.New(f, code, diag.Error, msg, sp)
	original := string(f.Text(sp))
	return d.WithFix(diag.Fix{
		Replacement: original, // the correct rewrite depends on the exact variable name inside; see Assumptions
		Span:        sp,
		Safety:      diag.Unsafe,
		Assumptions: []string{
			`wrap the variable as "${var:?}" so an empty/unset value aborts instead of expanding`,
			`validate the path exists and is beneath an expected root before deleting`,
			`require the variable to be passed explicitly rather than inherited from the environment`,
		},
		RuleCode: code,
	})
}
