package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("MAKE009", checkMAKE009)
}

// checkMAKE009 flags `sudo` used inside a recipe: a build that silently
// escalates privileges surprises anyone running `make` expecting it to
// only touch the build tree, and breaks unattended/sandboxed builds
// that have no interactive prompt to answer.
func checkMAKE009(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkRules(stmts, func(r *ast.Rule) {
		for _, rl := range r.Recipe {
			if idx, ok := findWord(rl.Text, "sudo"); ok {
				sp := source.NewSpan(rl.Span().Start+uint32(idx), rl.Span().Start+uint32(idx+len("sudo")))
				out = append(out, diag.New(f, "MAKE009", diag.Warning,
					"sudo in a recipe silently escalates privileges; prefer a documented, opt-in install target", sp))
			}
		}
	})
	return out
}

// findWord reports the byte offset of word's first whole-word
// occurrence in s (not preceded/followed by an identifier character),
// so "sudo" doesn't also match inside "sudo_wrapper" or "unsudo".
func findWord(s, word string) (int, bool) {
	from := 0
	for {
		idx := strings.Index(s[from:], word)
		if idx < 0 {
			return 0, false
		}
		pos := from + idx
		before := pos == 0 || !isIdentChar(s[pos-1])
		afterPos := pos + len(word)
		after := afterPos >= len(s) || !isIdentChar(s[afterPos])
		if before && after {
			return pos, true
		}
		from = pos + 1
	}
}
