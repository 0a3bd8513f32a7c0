// Package rules implements MAKE001-MAKE020, the Makefile-grammar analogue
// of internal/bashrs/rules, sharing internal/bashrs/diag's Diagnostic/Fix
// types (spec.md §4.K "MAKE001-MAKE020 share internal/bashrs/diag and
// internal/bashrs/fix with the shell side"). Unlike the shell side, a
// Makefile has no per-shell-compat dimension to filter by, so checkers
// self-register directly into a flat, always-on list rather than an
// embedded catalog.
package rules

import (
	"sort"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// CheckFunc is one rule's pure analysis over a parsed Makefile.
type CheckFunc func(f *source.File, stmts []ast.Stmt) []diag.Diagnostic

var checkers = map[string]CheckFunc{}

func registerChecker(code string, fn CheckFunc) {
	if _, dup := checkers[code]; dup {
		panic("make/rules: duplicate checker registration for " + code)
	}
	checkers[code] = fn
}

// Codes returns every registered rule code, sorted; Lint runs the
// checkers in this order.
func Codes() []string {
	out := make([]string, 0, len(checkers))
	for code := range checkers {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Lint runs every registered checker over stmts and returns diagnostics
// sorted by source position, the same ordering guarantee
// internal/bashrs/rules.Lint gives the shell side (spec.md §5 "Ordering
// guarantees").
func Lint(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, code := range Codes() {
		out = append(out, checkers[code](f, stmts)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start < out[j].Span.Start
	})
	return out
}
