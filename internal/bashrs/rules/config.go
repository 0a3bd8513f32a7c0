package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("CONFIG-001", checkCONFIG001)
	registerChecker("CONFIG-002", checkCONFIG002)
	registerChecker("CONFIG-003", checkCONFIG003)
	registerChecker("CONFIG-004", checkCONFIG004)
}

// checkCONFIG001 flags a PATH assignment whose literal value repeats the
// same colon-separated entry more than once (spec.md §4.G table).
func checkCONFIG001(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitStmt: func(s ast.Stmt, _ ast.Context) bool {
			a, ok := s.(*ast.Assignment)
			if !ok || a.Name != "PATH" {
				return true
			}
			lit, ok := literalText(a.Value)
			if !ok {
				return true
			}
			entries := strings.Split(lit, ":")
			seen := map[string]bool{}
			var deduped []string
			dup := false
			for _, e := range entries {
				if seen[e] {
					dup = true
					continue
				}
				seen[e] = true
				deduped = append(deduped, e)
			}
			if !dup {
				return true
			}
			sp := a.Value.Span()
			d := diag.New(f, "CONFIG-001", diag.Info, "PATH has duplicate entries", sp)
			out = append(out, d.WithFix(diag.Fix{
				Replacement: strings.Join(deduped, ":"),
				Span:        sp,
				Safety:      diag.Safe,
				RuleCode:    "CONFIG-001",
			}))
			return true
		},
	})
	return out
}

// checkCONFIG002 flags "source"/". " of a path that isn't a static
// literal in a shell config file: a dynamically computed source target
// is exactly the case where a world-writable or attacker-controlled file
// could get sourced (spec.md §9 supplemented; the actual permission bit
// check happens at driver/fix time where the filesystem is available —
// here we flag the pattern that makes that check necessary).
func checkCONFIG002(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		name, _ := literalText(cmd.Name)
		if name != "source" && name != "." {
			return
		}
		if len(cmd.Args) == 0 {
			return
		}
		if _, ok := literalText(cmd.Args[0]); ok {
			return // a static literal path is auditable at review time
		}
		sp := cmd.Span()
		out = append(out, diag.New(f, "CONFIG-002", diag.Risk,
			"sourcing a dynamically computed path; verify it cannot resolve to a world-writable file", sp))
	})
	return out
}

var safetyCriticalBuiltins = map[string]bool{"rm": true, "cp": true, "mv": true}

// checkCONFIG003 flags an alias that redefines rm/cp/mv without -i,
// silently dropping the interactive confirmation a user may be relying
// on system-wide (spec.md §9 supplemented).
func checkCONFIG003(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		name, _ := literalText(cmd.Name)
		if name != "alias" || len(cmd.Args) == 0 {
			return
		}
		lit, ok := literalText(cmd.Args[0])
		if !ok {
			return
		}
		eq := strings.IndexByte(lit, '=')
		if eq < 0 {
			return
		}
		aliasName, value := lit[:eq], lit[eq+1:]
		if !safetyCriticalBuiltins[aliasName] {
			return
		}
		if strings.Contains(value, "-i") {
			return
		}
		sp := cmd.Args[0].Span()
		out = append(out, diag.New(f, "CONFIG-003", diag.Risk,
			"alias redefines "+aliasName+" without -i, dropping its confirmation prompt", sp))
	})
	return out
}

// checkCONFIG004 flags $RANDOM/$(date ...) used directly in a shell
// config file's own assignments (as opposed to scripts in general,
// covered by DET001/DET002): a differently-seeded prompt/PATH on every
// shell start makes config drift invisible (spec.md §4.G table).
func checkCONFIG004(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitStmt: func(s ast.Stmt, _ ast.Context) bool {
			a, ok := s.(*ast.Assignment)
			if !ok {
				return true
			}
			if containsNondeterminism(a.Value) {
				sp := a.Value.Span()
				d := diag.New(f, "CONFIG-004", diag.Warning,
					"nondeterministic value assigned in shell config", sp)
				// Safe fix: comment out a one-line assignment, with a rationale.
				stmt := a.Span()
				text, rest := string(f.Text(stmt)), string(f.Data[stmt.End:])
				if i := strings.IndexByte(rest, '\n'); i >= 0 {
					rest = rest[:i]
				}
				if !strings.Contains(text, "\n") && strings.TrimSpace(rest) == "" {
					d = d.WithFix(diag.Fix{Replacement: "# " + text + " # CONFIG-004: nondeterministic value",
						Span: stmt, Safety: diag.Safe, RuleCode: "CONFIG-004"})
				}
				out = append(out, d)
			}
			return true
		},
	})
	return out
}

func containsNondeterminism(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Variable:
		return nondeterministicVars[n.Name]
	case *ast.CommandSubstitution:
		cmd, ok := n.Body.(*ast.Command)
		if !ok {
			return false
		}
		name, _ := literalText(cmd.Name)
		return name == "date"
	case *ast.Concatenation:
		for _, p := range n.Parts {
			if containsNondeterminism(p) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
