package purify

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// conventionalPhonyNames mirrors internal/bashrs/make/rules' MAKE011
// list: target names phony by convention that never produce a file of
// that name.
var conventionalPhonyNames = map[string]bool{
	"all": true, "clean": true, "test": true, "check": true,
	"install": true, "uninstall": true, "dist": true, "distclean": true,
	"run": true, "build": true, "fmt": true, "lint": true, "help": true,
	"deps": true, "vet": true, "bench": true,
}

// findSafetyRewrites quotes unquoted variable expansions used as a
// standalone shell word in a recipe (spec.md §4.K "Quote unquoted
// variable expansions in recipes") and inserts a `.PHONY: name` line
// ahead of a conventionally-phony target missing one (spec.md
// "add .PHONY declarations for non-file targets").
func findSafetyRewrites(_ *source.File, stmts []ast.Stmt, _ Options) []Transformation {
	var out []Transformation
	out = append(out, quoteUnquotedRecipeVars(stmts)...)
	out = append(out, addMissingPhony(stmts)...)
	return out
}

// quoteUnquotedRecipeVars wraps a bare `$(VAR)`/`${VAR}` word (one that
// fills an entire whitespace-delimited recipe argument on its own) in
// double quotes, the same word-splitting hazard SC2086 flags on the
// shell side. Automatic variables like $@/$< are left alone: they are
// almost always used as a single path argument already under make's
// control, and quoting $@ in e.g. `mkdir -p $@` changes nothing when
// the target has no spaces but does add needless noise when it does
// (make itself never splits $@ the way a shell word would).
func quoteUnquotedRecipeVars(stmts []ast.Stmt) []Transformation {
	var out []Transformation
	walkRules(stmts, func(r *ast.Rule) {
		for _, rl := range r.Recipe {
			scanRecipeWordsForBareVars(rl.Span().Start, rl.Text, &out)
		}
	})
	return out
}

// scanRecipeWordsForBareVars walks text byte-by-byte, tracking
// whitespace-delimited word boundaries, and flags a word that is
// exactly one `$(...)`/`${...}` expansion with no other characters
// and is not already quoted.
func scanRecipeWordsForBareVars(base uint32, text string, out *[]Transformation) {
	i := 0
	for i < len(text) {
		for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
		wordStart := i
		for i < len(text) && text[i] != ' ' && text[i] != '\t' {
			i++
		}
		word := text[wordStart:i]
		if isBareExpansionWord(word) {
			sp := source.NewSpan(base+uint32(wordStart), base+uint32(i))
			*out = append(*out, Transformation{
				Code:        "MAKE-QUOTE001",
				Description: "quoted a bare variable expansion used as a standalone recipe argument",
				Span:        sp,
				Replacement: `"` + word + `"`,
			})
		}
	}
}

// isBareExpansionWord reports whether word is exactly one unquoted
// `$(...)`/`${...}` reference (not an automatic variable, not
// preceded by a flag dash, not already quoted).
func isBareExpansionWord(word string) bool {
	if len(word) < 4 {
		return false
	}
	if word[0] != '$' || (word[1] != '(' && word[1] != '{') {
		return false
	}
	open, close := word[1], byte(')')
	if open == '{' {
		close = '}'
	}
	if word[len(word)-1] != close {
		return false
	}
	inner := word[2 : len(word)-1]
	if inner == "" {
		return false
	}
	// Skip function calls ($(wildcard ...), $(shell ...), ...): their
	// result is usually deliberately word-split or is already a single
	// well-formed path produced by the function itself.
	if strings.ContainsAny(inner, " \t") {
		return false
	}
	return true
}

// addMissingPhony inserts a ".PHONY: name\n" line immediately before a
// conventionally-phony rule that has a recipe, no prerequisites, and no
// existing .PHONY entry covering it.
func addMissingPhony(stmts []ast.Stmt) []Transformation {
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

	var out []Transformation
	walkRules(stmts, func(r *ast.Rule) {
		if len(r.Targets) != 1 || len(r.Recipe) == 0 || len(r.Prereqs) != 0 {
			return
		}
		name, ok := literalText(r.Targets[0])
		if !ok || !conventionalPhonyNames[name] || phony[name] {
			return
		}
		insertAt := r.Span().Start
		out = append(out, Transformation{
			Code:        "MAKE011",
			Description: "inserted .PHONY: " + name + " ahead of the conventionally-phony rule",
			Span:        source.NewSpan(insertAt, insertAt),
			Replacement: ".PHONY: " + name + "\n",
		})
	})
	return out
}
