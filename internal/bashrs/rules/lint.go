package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/parser"
	"github.com/paiml/bashrs/internal/bashrs/source"
	"github.com/paiml/bashrs/internal/bashrs/suppress"
	"github.com/paiml/bashrs/pkg/bashrserr"
)

// Lint drives the sequence spec.md §4.F describes: parse, preprocess
// suppressions, run every applicable registered checker, filter
// suppressed findings, sort by (line, column, code).
func Lint(f *source.File, reg *Registry, shellType ShellType) ([]diag.Diagnostic, error) {
	stmts, err := parser.Parse(f)
	if err != nil {
		return []diag.Diagnostic{
			diag.New(f, "PARSE_ERROR", diag.Error, err.Error(), source.NewSpan(0, 0)),
		}, bashrserr.Wrap(bashrserr.ParseError, "parsing "+f.Path, err)
	}
	return LintParsed(f, stmts, reg, shellType), nil
}

// LintParsed runs the rule sequence over an already-parsed tree, useful
// when a caller (e.g. the purifier, which re-parses its own output) has
// already paid the parse cost.
func LintParsed(f *source.File, stmts []ast.Stmt, reg *Registry, shellType ShellType) []diag.Diagnostic {
	inline := suppress.ParseInline(f.Data)

	var out []diag.Diagnostic
	for _, m := range reg.Implemented(shellType) {
		for _, d := range m.check(f, stmts) {
			if inline.Suppressed(d.Code, d.Position().Line) {
				continue
			}
			out = append(out, d)
		}
	}
	diag.Sort(out)
	return out
}
