package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("DET001", checkDET001)
	registerChecker("DET002", checkDET002)
}

var nondeterministicVars = map[string]bool{
	"RANDOM": true, "$": true, "BASHPID": true, "SRANDOM": true,
}

// checkDET001 flags $RANDOM/$$/$BASHPID/$SRANDOM: every run produces a
// different value, which breaks reproducible builds and scripts meant to
// be diffed/replayed (spec.md §4.G table).
func checkDET001(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkExprs(stmts, func(e ast.Expr, _ ast.Context) {
		v, ok := e.(*ast.Variable)
		if !ok || !nondeterministicVars[v.Name] {
			return
		}
		sp := v.Span()
		d := diag.New(f, "DET001", diag.Warning,
			"$"+v.Name+" is nondeterministic across runs", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: "$" + v.Name,
			Span:        sp,
			Safety:      diag.Unsafe,
			Assumptions: []string{
				"replace with a fixed, seeded placeholder value for reproducible output",
				"thread the value in as an explicit argument/environment variable instead",
			},
			RuleCode: "DET001",
		}))
	})
	return out
}

// metricsMarker is the context comment that opts a $(date ...) call out
// of DET002, e.g. timestamped log lines in a metrics-emitting script
// (spec.md §4.G "respect known context markers for intentional
// behavior").
const metricsMarker = "bashrs:metrics"

// checkDET002 flags "$(date +...)" and similar timestamp-producing
// command substitutions, unless the file carries a metrics-context
// marker comment.
func checkDET002(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	if strings.Contains(string(f.Data), metricsMarker) {
		return nil
	}
	var out []diag.Diagnostic
	walkExprs(stmts, func(e ast.Expr, _ ast.Context) {
		cs, ok := e.(*ast.CommandSubstitution)
		if !ok {
			return
		}
		cmd, ok := cs.Body.(*ast.Command)
		if !ok {
			return
		}
		name, _ := literalText(cmd.Name)
		if name != "date" {
			return
		}
		sp := cs.Span()
		d := diag.New(f, "DET002", diag.Warning,
			"timestamp output is nondeterministic across runs", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: "", // removes the substitution; see Assumptions
			Span:        sp,
			Safety:      diag.Unsafe,
			Assumptions: []string{
				"comment out the timestamp and hardcode/pass in a fixed value for reproducible output",
				"mark the file with a metrics-context comment if a live timestamp is intentional",
			},
			RuleCode: "DET002",
		}))
	})
	return out
}
