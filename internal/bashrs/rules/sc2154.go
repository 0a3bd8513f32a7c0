package rules

import (
	"strings"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func init() {
	registerChecker("SC2154", checkSC2154)
}

// builtinVars are names bash itself assigns, or positional/special
// parameters, never flagged as "referenced but never assigned."
var builtinVars = map[string]bool{
	"IFS": true, "PATH": true, "HOME": true, "PWD": true, "OLDPWD": true,
	"RANDOM": true, "SECONDS": true, "LINENO": true, "SRANDOM": true,
	"BASH_VERSION": true, "BASHPID": true, "BASH_SOURCE": true, "FUNCNAME": true,
	"UID": true, "EUID": true, "HOSTNAME": true, "PPID": true, "SHLVL": true,
	"OPTARG": true, "OPTIND": true, "REPLY": true, "PS1": true, "PS2": true,
	"0": true, "1": true, "2": true, "3": true, "4": true, "5": true,
	"6": true, "7": true, "8": true, "9": true,
	"#": true, "@": true, "*": true, "?": true, "!": true, "-": true, "$": true,
}

// declaringBuiltins are commands whose arguments introduce a variable
// name even though the parser didn't recognize them as ast.Assignment
// (declare/typeset/local/export/readonly NAME=VALUE or bare NAME).
var declaringBuiltins = map[string]bool{
	"declare": true, "typeset": true, "local": true, "export": true,
	"readonly": true, "unset": true, "read": true, "mapfile": true, "readarray": true,
}

// checkSC2154 flags a variable reference with no assignment anywhere in
// the file — respecting local/readonly/export/declare/typeset, for-loop
// variables, and function parameters bound via "local x=\"$1\"" (spec.md
// §4.G table).
func checkSC2154(f *source.File, stmts []ast.Stmt) []diag.Diagnostic {
	assigned := collectAssignedNames(stmts)

	var out []diag.Diagnostic
	seen := map[string]bool{} // one diagnostic per undeclared name, at its first use
	walkExprs(stmts, func(e ast.Expr, _ ast.Context) {
		name, sp, ok := variableRef(e)
		if !ok || assigned[name] || builtinVars[name] || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, diag.New(f, "SC2154", diag.Warning,
			name+" is referenced but not assigned", sp))
	})
	return out
}

func variableRef(e ast.Expr) (name string, sp source.Span, ok bool) {
	switch n := e.(type) {
	case *ast.Variable:
		return n.Name, n.Span(), true
	case *ast.ParameterExpansion:
		return n.Name, n.Span(), true
	default:
		return "", source.Span{}, false
	}
}

func collectAssignedNames(stmts []ast.Stmt) map[string]bool {
	assigned := map[string]bool{}
	ast.Walk(stmts, ast.Context{}, ast.Visitor{
		VisitStmt: func(s ast.Stmt, _ ast.Context) bool {
			switch n := s.(type) {
			case *ast.Assignment:
				assigned[n.Name] = true
			case *ast.For:
				assigned[n.Var] = true
			case *ast.Command:
				name, args := commandWords(n)
				if declaringBuiltins[name] {
					for _, a := range args {
						declName := a
						if idx := strings.IndexByte(a, '='); idx >= 0 {
							declName = a[:idx]
						}
						declName = strings.TrimPrefix(declName, "-")
						if declName != "" && isIdentLike(declName) {
							assigned[declName] = true
						}
					}
				}
			}
			return true
		},
	})
	return assigned
}

func isIdentLike(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
