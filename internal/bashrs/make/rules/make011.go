package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("MAKE011", checkMAKE011)
}

// conventionalPhonyNames lists target names that are phony by near
// universal convention (no file by that name is ever produced); a rule
// using one of these with a nonempty recipe and no prerequisites at all
// is almost certainly missing a `.PHONY`
// declaration rather than deliberately building a file of that name.
var conventionalPhonyNames = map[string]bool{
	"all": true, "clean": true, "test": true, "check": true,
	"install": true, "uninstall": true, "dist": true, "distclean": true,
	"run": true, "build": true, "fmt": true, "lint": true, "help": true,
	"deps": true, "vet": true, "bench": true,
}

// checkMAKE011 flags a conventionally-phony target with a recipe but
// no declared `.PHONY` entry: if a file named e.g. "all" or "clean"
// ever appears in the build directory, make treats the rule as already
// satisfied and silently skips the recipe.
func checkMAKE011(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	phony := map[string]bool{}
	walkRules(stmts, func(r *ast.Rule) {
		for _, t := range r.Targets {
			if name, ok := literalText(t); ok && name == ".PHONY" {
				for _, p := range r.Prereqs {
					if n, ok := literalText(p); ok {
						phony[n] = true
					}
				}
			}
		}
	})

	var out []diag.Diagnostic
	walkRules(stmts, func(r *ast.Rule) {
		if len(r.Targets) != 1 || len(r.Recipe) == 0 || len(r.Prereqs) != 0 {
			return
		}
		name, ok := literalText(r.Targets[0])
		if !ok || !conventionalPhonyNames[name] || phony[name] {
			return
		}
		sp := r.Targets[0].Span()
		out = append(out, diag.New(f, "MAKE011", diag.Warning,
			"target \""+name+"\" looks phony but has no .PHONY declaration", sp))
	})
	return out
}
