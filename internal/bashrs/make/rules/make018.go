package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("MAKE018", checkMAKE018)
}

type make018Writer struct {
	rule *ast.Rule
	line ast.RecipeLine
}

// checkMAKE018 flags two different rules whose recipes redirect output
// to the same path with neither declared as a prerequisite of the
// other: under `make -j`, nothing orders their recipes relative to
// each other, so the two writers race and the file's final contents
// depend on scheduling.
func checkMAKE018(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	writers := map[string][]make018Writer{}
	walkRules(stmts, func(r *ast.Rule) {
		for _, rl := range r.Recipe {
			for _, path := range redirectTargets(rl.Text) {
				writers[path] = append(writers[path], make018Writer{rule: r, line: rl})
			}
		}
	})

	var out []diag.Diagnostic
	for path, ws := range writers {
		if len(ws) < 2 {
			continue
		}
		for i := 0; i < len(ws); i++ {
			for j := i + 1; j < len(ws); j++ {
				if rulesOrdered(ws[i].rule, ws[j].rule) {
					continue
				}
				sp := ws[j].line.Span()
				out = append(out, diag.New(f, "MAKE018", diag.Risk,
					"recipe writes \""+path+"\", also written by another rule with no declared order between them (parallel-build race)", sp))
			}
		}
	}
	return out
}

// rulesOrdered reports whether a's targets appear among b's
// prerequisites (or order-only prerequisites) or vice versa, meaning
// make already guarantees one runs before the other.
func rulesOrdered(a, b *ast.Rule) bool {
	targetNames := func(r *ast.Rule) map[string]bool {
		names := map[string]bool{}
		for _, t := range r.Targets {
			if n, ok := literalText(t); ok {
				names[n] = true
			}
		}
		return names
	}
	prereqNames := func(r *ast.Rule) map[string]bool {
		names := map[string]bool{}
		for _, p := range append(append([]ast.Expr{}, r.Prereqs...), r.OrderOnlyPrereqs...) {
			if n, ok := literalText(p); ok {
				names[n] = true
			}
		}
		return names
	}
	aTargets, bTargets := targetNames(a), targetNames(b)
	aPrereqs, bPrereqs := prereqNames(a), prereqNames(b)
	for n := range aTargets {
		if bPrereqs[n] {
			return true
		}
	}
	for n := range bTargets {
		if aPrereqs[n] {
			return true
		}
	}
	return false
}

// redirectTargets extracts the file operands of `>`/`>>` shell
// redirections from a raw recipe line, a plain whitespace scan rather
// than full shell parsing (recipe bodies are kept opaque, see
// forEachExpr's doc comment).
func redirectTargets(text string) []string {
	fields := strings.Fields(text)
	var out []string
	for i, tok := range fields {
		if tok != ">" && tok != ">>" {
			continue
		}
		if i+1 >= len(fields) {
			continue
		}
		path := fields[i+1]
		if path == "" || path == "/dev/null" {
			continue
		}
		out = append(out, path)
	}
	return out
}
