package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("MAKE002", checkMAKE002)
}

// checkMAKE002 flags a shell variable written as `$name` (a bare `$`
// followed by more than one identifier character) in a recipe that
// also invokes a sub-make (`$(MAKE)`). Make itself only takes the
// first character after `$` as the variable name, so `$foo` expands to
// make variable `$f` followed by the literal text "oo" — almost always
// a shell variable the author meant to protect from make's own
// expansion with `$$foo`.
func checkMAKE002(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkRules(stmts, func(r *ast.Rule) {
		for _, rl := range r.Recipe {
			if !strings.Contains(rl.Text, "$(MAKE)") && !strings.Contains(rl.Text, "${MAKE}") {
				continue
			}
			findBareShellVars(f, rl, &out)
		}
	})
	return out
}

func findBareShellVars(f *source.File, rl ast.RecipeLine, out *[]diag.Diagnostic) {
	text := rl.Text
	base := rl.Span().Start
	i := 0
	for i < len(text) {
		if text[i] != '$' {
			i++
			continue
		}
		if i+1 >= len(text) {
			break
		}
		c := text[i+1]
		switch {
		case c == '$':
			i += 2
		case c == '(' || c == '{':
			i = skipBalancedMake(text, i)
		case isIdentStart(c) && i+2 < len(text) && isIdentChar(text[i+2]):
			end := i + 2
			for end < len(text) && isIdentChar(text[end]) {
				end++
			}
			sp := source.NewSpan(base+uint32(i), base+uint32(end))
			*out = append(*out, diag.New(f, "MAKE002", diag.Warning,
				"shell variable reference in a sub-make recipe will be expanded by make first; use $$ to escape it", sp).
				WithFix(diag.Fix{
					Replacement: "$" + text[i:end],
					Span:        sp,
					Safety:      diag.SafeWithAssumptions,
					Assumptions: []string{"the reference is a shell variable, not an intentional single-letter make variable"},
					Priority:    5,
					RuleCode:    "MAKE002",
				}))
			i = end
		default:
			i++
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func skipBalancedMake(text string, i int) int {
	open := text[i+1]
	close := byte(')')
	if open == '{' {
		close = '}'
	}
	depth := 0
	j := i + 1
	for j < len(text) {
		if text[j] == open {
			depth++
		} else if text[j] == close {
			depth--
			if depth == 0 {
				return j + 1
			}
		}
		j++
	}
	return len(text)
}
