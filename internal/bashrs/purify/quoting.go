package purify

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// findQuotingRewrites implements spec.md §4.J's Safety/quoting category:
// wrap a bare "$var"/"${var}" command argument in double quotes, the same
// shape internal/bashrs/rules' SC2086 detects, while preserving
// intentional splitting on "$@", "$*" and IFS itself, and leaving "$$"
// (a PID, which never splits) as written.
func findQuotingRewrites(f *source.File, stmts []ast.Stmt, opts Options) []Transformation {
	var out []Transformation
	walkCommands(stmts, func(cmd *ast.Command) {
		for _, arg := range cmd.Args {
			name, ok := bareVariable(arg)
			if !ok {
				continue
			}
			if name == "@" || name == "*" || name == "IFS" || name == "$" {
				continue
			}
			sp := arg.Span()
			original := string(f.Text(sp))
			out = append(out, Transformation{
				Code:        "QUOTE001",
				Description: "quoted a bare variable argument to prevent word splitting and globbing",
				Span:        sp,
				Replacement: `"` + original + `"`,
			})
		}
	})
	return out
}
