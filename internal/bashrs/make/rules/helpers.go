package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/make/parser"
)

// walkStmts visits every statement, recursing into Conditional bodies the
// same way spec.md's Makefile grammar nests them.
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

func walkAssignments(stmts []ast.Stmt, fn func(*ast.Assignment)) {
	walkStmts(stmts, func(s ast.Stmt) {
		if a, ok := s.(*ast.Assignment); ok {
			fn(a)
		}
	})
}

// walkExpansions recurses into e and every expansion reachable from it
// (a function call's arguments, a variable reference's name expression),
// visiting every *ast.Expansion node found, innermost included.
func walkExpansions(e ast.Expr, fn func(*ast.Expansion)) {
	switch n := e.(type) {
	case ast.Expansion:
		fn(&n)
		for _, a := range n.Args {
			walkExpansions(a, fn)
		}
	case ast.Concatenation:
		for _, p := range n.Parts {
			walkExpansions(p, fn)
		}
	}
}

// forEachExpr visits every top-level Expr reachable from stmts: rule
// targets/prereqs/order-only prereqs, assignment values, conditional
// args, include files, directive args, and (re-parsed on demand, since
// the statement parser keeps recipe bodies as opaque shell text) each
// recipe line's expansions.
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
				fn(recipeLineExpr(rl))
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

// recipeLineExpr re-segments a recipe line's raw text into the same
// Text/Automatic/Expansion/Concatenation tree the statement parser
// builds for ordinary words, so rules can find `$(...)` constructs
// inside recipe bodies without the statement grammar having to parse
// shell syntax itself.
func recipeLineExpr(rl ast.RecipeLine) ast.Expr {
	return parser.ParseWord(rl.Text, rl.Span().Start)
}

// walkExprTree calls fn on every Expansion reachable from e, tracking
// whether each one is nested inside a call to insideFunc (used by
// rules that only care about an expansion's position relative to an
// enclosing function, e.g. MAKE001's "already wrapped in $(sort ...)").
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

// literalText returns e's flat text when it contains no expansion, the
// make-side analogue of internal/bashrs/rules' helper of the same name.
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
