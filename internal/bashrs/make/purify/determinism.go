package purify

import (
	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// findDeterminismRewrites wraps every `$(wildcard ...)` not already
// nested in a `$(sort ...)` (the "recursive purification principle":
// deterministic functions like filter/foreach/call don't themselves
// need rewriting, but their argument subtrees still do, so the walk
// recurses into every function's Args regardless of Func).
func findDeterminismRewrites(f *source.File, stmts []ast.Stmt, _ Options) []Transformation {
	var out []Transformation
	forEachExpr(stmts, func(e ast.Expr) {
		walkExprTree(e, "sort", false, func(n ast.Expansion, insideSort bool) {
			if n.Func != "wildcard" || insideSort {
				return
			}
			sp := n.Span()
			original := string(f.Text(sp))
			out = append(out, Transformation{
				Code:        "MAKE001",
				Description: "wrapped $(wildcard ...) in $(sort ...) for deterministic ordering",
				Span:        sp,
				Replacement: "$(sort " + original + ")",
			})
		})
	})
	return out
}
