package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SEC001", checkSEC001)
	registerChecker("SEC002", checkSEC002)
	registerChecker("SEC008", checkSEC008)
	registerChecker("SEC010", checkSEC010)
}

// checkSEC001 flags "eval" of anything that isn't a static literal: eval
// on attacker-influenced data is arbitrary code execution (spec.md §4.G
// table).
func checkSEC001(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		name, _ := literalText(cmd.Name)
		if name != "eval" || len(cmd.Args) == 0 {
			return
		}
		if _, ok := literalText(cmd.Args[0]); ok {
			return
		}
		sp := cmd.Span()
		d := diag.New(f, "SEC001", diag.Error, "eval of a non-literal argument allows arbitrary code execution", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: string(f.Text(sp)),
			Span:        sp,
			Safety:      diag.Unsafe,
			Assumptions: []string{
				"avoid eval entirely; use an array or case statement to dispatch instead",
				"if eval is unavoidable, strictly allowlist/validate the evaluated string first",
			},
			RuleCode: "SEC001",
		}))
	})
	return out
}

var worldWritableModes = map[string]bool{
	"777": true, "666": true, "a+w": true, "o+w": true, "ugo+w": true,
}

// checkSEC002 flags "chmod 777"-style world-writable permission grants
// (spec.md §9 supplemented).
func checkSEC002(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(stmts, func(cmd *ast.Command, _ ast.Context) {
		name, args := commandWords(cmd)
		if name != "chmod" {
			return
		}
		for _, a := range args {
			if worldWritableModes[a] {
				sp := cmd.Span()
				out = append(out, diag.New(f, "SEC002", diag.Error,
					"chmod "+a+" grants world-writable permissions", sp))
				return
			}
		}
	})
	return out
}

func isShellInterpreter(name string) bool {
	switch name {
	case "sh", "bash", "zsh", "ksh", "dash":
		return true
	default:
		return false
	}
}

func isFetcher(name string) bool {
	return name == "curl" || name == "wget"
}

// checkSEC008 flags "curl ... | sh"-shaped pipelines with no checksum or
// signature verification step anywhere in the pipeline (spec.md §4.G
// table): remote code runs unauthenticated.
func checkSEC008(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkPipelines(stmts, func(p *ast.Pipeline) {
		if !pipelineFetchesAndExecutes(p) {
			return
		}
		if pipelineVerifies(p) {
			return
		}
		sp := p.Span()
		d := diag.New(f, "SEC008", diag.Error,
			"piping a remote download directly into a shell with no verification step", sp)
		out = append(out, d.WithFix(diag.Fix{
			Replacement: string(f.Text(sp)),
			Span:        sp,
			Safety:      diag.Unsafe,
			Assumptions: []string{
				"download to a file, verify its checksum or GPG signature, then execute",
				"pin to a specific, known-good release artifact instead of a moving URL",
			},
			RuleCode: "SEC008",
		}))
	})
	return out
}

// checkSEC010 flags the same fetch-then-execute pipeline shape as SEC008,
// but specifically when the fetched URL argument is a bare, unquoted
// variable — a distinct word-splitting/injection risk from the missing
// signature-verification concern SEC008 covers (spec.md §9 supplemented).
func checkSEC010(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkPipelines(stmts, func(p *ast.Pipeline) {
		if !pipelineFetchesAndExecutes(p) {
			return
		}
		fetchCmd, ok := p.Stages[0].(*ast.Command)
		if !ok {
			return
		}
		for _, arg := range fetchCmd.Args {
			if _, _, bare := bareVariable(arg); bare {
				sp := arg.Span()
				out = append(out, diag.New(f, "SEC010", diag.Error,
					"unquoted URL in a fetch-then-execute pipeline", sp))
			}
		}
	})
	return out
}

func walkPipelines(stmts []ast.Stmt, fn func(p *ast.Pipeline)) {
	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitStmt: func(s ast.Stmt, _ ast.Context) bool {
			if p, ok := s.(*ast.Pipeline); ok {
				fn(p)
			}
			return true
		},
	})
}

func pipelineFetchesAndExecutes(p *ast.Pipeline) bool {
	if len(p.Stages) < 2 {
		return false
	}
	first, ok := p.Stages[0].(*ast.Command)
	if !ok {
		return false
	}
	name, _ := literalText(first.Name)
	if !isFetcher(name) {
		return false
	}
	last, ok := p.Stages[len(p.Stages)-1].(*ast.Command)
	if !ok {
		return false
	}
	lastName, _ := literalText(last.Name)
	return isShellInterpreter(lastName)
}

var verifyCommands = map[string]bool{
	"sha256sum": true, "sha512sum": true, "gpg": true, "gpgv": true, "cosign": true,
}

func pipelineVerifies(p *ast.Pipeline) bool {
	for _, stage := range p.Stages {
		cmd, ok := stage.(*ast.Command)
		if !ok {
			continue
		}
		name, _ := literalText(cmd.Name)
		if verifyCommands[name] {
			return true
		}
	}
	return false
}
