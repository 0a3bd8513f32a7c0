package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("MAKE001", checkMAKE001)
}

// checkMAKE001 flags a `$(wildcard PATTERN)` call not already nested
// inside a `$(sort ...)`: directory listing order is filesystem- and
// platform-dependent, so an unsorted wildcard result makes the recipe
// that consumes it nondeterministic across machines.
func checkMAKE001(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	forEachExpr(stmts, func(e ast.Expr) {
		walkExprTree(e, "sort", false, func(n ast.Expansion, insideSort bool) {
			if n.Func != "wildcard" || insideSort {
				return
			}
			sp := n.Span()
			original := string(f.Text(sp))
			d := diag.New(f, "MAKE001", diag.Warning,
				"$(wildcard ...) result order is not guaranteed; wrap with $(sort ...)", sp)
			out = append(out, d.WithFix(diag.Fix{
				Replacement: "$(sort " + original + ")",
				Span:        sp,
				Safety:      diag.Safe,
				Priority:    10,
				RuleCode:    "MAKE001",
			}))
		})
	})
	return out
}
