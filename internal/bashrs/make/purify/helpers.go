package purify

import (
	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/make/parser"
)

func walkStmts(stmts []ast.Stmt, fn func(ast.Stmt)) {
	for _, s := range stmts {
		fn(s)
		if c, ok := s.(*ast.Conditional); ok {
			walkStmts(c.Then, fn)
			walkStmts(c.Else, fn)
		}
	}
}

func walkRules(stmts []ast.Stmt, fn func(*ast.Rule)) {
	walkStmts(stmts, func(s ast.Stmt) {
		if r, ok := s.(*ast.Rule); ok {
			fn(r)
		}
	})
}

// forEachExpr visits every top-level Expr reachable from stmts, the
// same shape internal/bashrs/make/rules' helper of the same name uses,
// duplicated here rather than imported to keep purify independent of
// the lint rule registry (mirroring the shell side's package layering,
// where internal/bashrs/purify never imports internal/bashrs/rules).
func forEachExpr(stmts []ast.Stmt, fn func(e ast.Expr)) {
	walkStmts(stmts, func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.Rule:
			for _, e := range n.Targets {
				fn(e)
			}
			for _, e := range n.Prereqs {
				fn(e)
			}
			for _, e := range n.OrderOnlyPrereqs {
				fn(e)
			}
			for _, rl := range n.Recipe {
				fn(parser.ParseWord(rl.Text, rl.Span().Start))
			}
		case *ast.Assignment:
			fn(n.Value)
		case *ast.Conditional:
			for _, e := range n.Args {
				fn(e)
			}
		case *ast.Include:
			for _, e := range n.Files {
				fn(e)
			}
		case *ast.Directive:
			for _, e := range n.Args {
				fn(e)
			}
		}
	})
}

// walkExprTree calls fn on every Expansion reachable from e, reporting
// whether each is nested inside a call to insideFunc.
func walkExprTree(e ast.Expr, insideFunc string, inside bool, fn func(n ast.Expansion, inside bool)) {
	switch n := e.(type) {
	case ast.Expansion:
		nowInside := inside || n.Func == insideFunc
		fn(n, inside)
		for _, a := range n.Args {
			walkExprTree(a, insideFunc, nowInside, fn)
		}
	case ast.Concatenation:
		for _, p := range n.Parts {
			walkExprTree(p, insideFunc, inside, fn)
		}
	}
}

func literalText(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case ast.Text:
		return n.Value, true
	case ast.Concatenation:
		var out string
		for _, p := range n.Parts {
			s, ok := literalText(p)
			if !ok {
				return "", false
			}
			out += s
		}
		return out, true
	default:
		return "", false
	}
}
