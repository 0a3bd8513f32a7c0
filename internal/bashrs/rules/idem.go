package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("IDEM001", checkIDEM001)
	registerChecker("IDEM002", checkIDEM002)
	registerChecker("IDEM003", checkIDEM003)
	registerChecker("IDEM004", checkIDEM004)
}

// checkIDEM001 flags "mkdir DIR" with no "-p": re-running the script
// fails if DIR already exists (spec.md §4.G table).
func checkIDEM001(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		name, args := commandWords(cmd)
		if name != "mkdir" || hasFlag(args, "-p") {
			return
		}
		sp := cmd.Span()
		d := diag.New(f, "IDEM001", diag.Warning, "mkdir without -p fails if the directory already exists", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: insertFlagAfterName(f, cmd, "-p"),
			Span:        sp,
			Safety:      diag.SafeWithAssumptions,
			Assumptions: []string{"failure on re-run is acceptable to the caller"},
			Priority:    1,
			RuleCode:    "IDEM001",
		}))
	})
	return out
}

// checkIDEM002 flags "rm FILE" with no "-f": re-running the script fails
// if FILE is already gone.
func checkIDEM002(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		name, args := commandWords(cmd)
		if name != "rm" || hasFlag(args, "-f") {
			return
		}
		sp := cmd.Span()
		d := diag.New(f, "IDEM002", diag.Warning, "rm without -f fails if the target is already gone", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: insertFlagAfterName(f, cmd, "-f"),
			Span:        sp,
			Safety:      diag.SafeWithAssumptions,
			Assumptions: []string{"failure on re-run is acceptable to the caller"},
			Priority:    1,
			RuleCode:    "IDEM002",
		}))
	})
	return out
}

// checkIDEM003 flags "ln -s A B" without "-f": re-running fails if B
// already exists as a symlink.
func checkIDEM003(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		name, args := commandWords(cmd)
		if name != "ln" || !hasFlag(args, "-s") || hasFlag(args, "-f") {
			return
		}
		sp := cmd.Span()
		d := diag.New(f, "IDEM003", diag.Warning, "ln -s without -f fails if the link already exists", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: insertFlagAfterName(f, cmd, "-f"),
			Span:        sp,
			Safety:      diag.Unsafe,
			Assumptions: []string{"overwriting an existing link/file at the target path is intended"},
			RuleCode:    "IDEM003",
		}))
	})
	return out
}

// checkIDEM004 flags "mkdir -p DIR; cd DIR" (sequential, not &&-joined):
// if mkdir silently fails (e.g. permission denied) the following cd still
// runs and operates on the wrong directory (spec.md §9 supplemented).
func checkIDEM004(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	for i := 0; i+1 < len(stmts); i++ {
		mkdirCmd, ok := stmts[i].(*ast.Command)
		if !ok {
			continue
		}
		name, args := commandWords(mkdirCmd)
		if name != "mkdir" || !hasFlag(args, "-p") {
			continue
		}
		cdCmd, ok := stmts[i+1].(*ast.Command)
		if !ok {
			continue
		}
		cdName, _ := commandWords(cdCmd)
		if cdName != "cd" {
			continue
		}
		sp := source.NewSpan(mkdirCmd.Span().Start, cdCmd.Span().End)
		d := diag.New(f, "IDEM004", diag.Warning,
			"mkdir -p followed by cd without checking mkdir's exit status", sp)
		out = append(out, d)
	}
	return out
}

// insertFlagAfterName rebuilds cmd's source text with flag inserted right
// after the command name, preserving everything else verbatim.
func insertFlagAfterName(f *source.File, cmd *ast.Command, flag string) string {
	nameEnd := cmd.Name.Span().End
	before := string(f.Text(source.NewSpan(cmd.Span().Start, nameEnd)))
	after := string(f.Text(source.NewSpan(nameEnd, cmd.Span().End)))
	return before + " " + flag + after
}
