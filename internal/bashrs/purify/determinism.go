package purify

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// metricsMarker opts a file's $(date ...) calls out of purification, the
// same marker internal/bashrs/rules' DET002 respects (spec.md §4.G
// "respect known context markers for intentional behavior").
const metricsMarker = "bashrs:metrics"

// pidCriticalCommands are builtins where "$$" names a real process this
// shell needs to address (its own PID), not a throwaway uniqueness token;
// purify leaves these alone.
var pidCriticalCommands = map[string]bool{"kill": true, "wait": true}

// findDeterminismRewrites implements spec.md §4.J's Determinism category:
// $RANDOM -> a fixed placeholder, $(date ...) -> $PURIFY_TIMESTAMP_PLACEHOLDER
// (unless the metrics marker is present), and "$$" replaced everywhere it isn't a
// direct argument to a PID-sensitive builtin.
func findDeterminismRewrites(f *source.File, stmts []ast.Stmt, opts Options) []Transformation {
	var out []Transformation
	skipDate := strings.Contains(string(f.Data), metricsMarker)

	pidArgSpans := map[source.Span]bool{}
	walkCommands(stmts, func(cmd *ast.Command) {
		name, _ := commandWords(cmd)
		if !pidCriticalCommands[name] {
			return
		}
		for _, a := range cmd.Args {
			pidArgSpans[a.Span()] = true
		}
	})

	walkExprs(stmts, func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Variable:
			switch n.Name {
			case "RANDOM", "SRANDOM":
				out = append(out, Transformation{
					Code:        "DET001",
					Description: "replaced $" + n.Name + " with a fixed placeholder value",
					Span:        n.Span(),
					Replacement: opts.placeholder(),
				})
			case "$", "BASHPID":
				if pidArgSpans[n.Span()] {
					return
				}
				out = append(out, Transformation{
					Code:        "DET001",
					Description: "replaced $" + n.Name + " with a fixed placeholder value",
					Span:        n.Span(),
					Replacement: opts.placeholder(),
				})
			}
		case *ast.CommandSubstitution:
			if skipDate {
				return
			}
			cmd, ok := n.Body.(*ast.Command)
			if !ok {
				return
			}
			name, _ := literalText(cmd.Name)
			if name != "date" {
				return
			}
			out = append(out, Transformation{
				Code:        "DET002",
				Description: "replaced a nondeterministic timestamp substitution with a fixed placeholder",
				Span:        n.Span(),
				Replacement: "$PURIFY_TIMESTAMP_PLACEHOLDER",
			})
		}
	})
	return out
}
