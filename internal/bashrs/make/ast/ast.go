// Package ast defines the GNU Makefile node types internal/bashrs/make's
// parser builds and internal/bashrs/make's rules/purify packages consume,
// grounded on lenticularis39-mk/parse.go's rule{targets, prereqs, recipe}
// shape generalized to GNU Make's richer grammar (conditionals, define
// blocks, include directives, typed assignment operators).
package ast

import "github.com/paiml/bashrs/internal/bashrs/source"

// Base gives every node a Span the way internal/bashrs/ast's Base does.
type Base struct {
	StartOffset uint32
	EndOffset   uint32
}

func (b Base) Span() source.Span { return source.NewSpan(b.StartOffset, b.EndOffset) }

// NewBase builds a Base from a span's bounds.
func NewBase(start, end uint32) Base { return Base{StartOffset: start, EndOffset: end} }

type Node interface {
	Span() source.Span
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

// Text is a literal run of characters containing no `$` expansion.
type Text struct {
	Base
	Value string
}

func (Text) exprNode() {}

// Automatic is an automatic variable written without parentheses:
// $@ $< $^ $? $* $% $+ $|, or one with a "D"/"F" suffix written the same
// way ($@D, $@F, ...). The parenthesized forms $(@D)/$(@F) parse as an
// Expansion, not an Automatic.
type Automatic struct {
	Base
	Symbol string // e.g. "@", "<", "@D", "@F"
}

func (Automatic) exprNode() {}

// Expansion is a `$(...)`/`${...}` construct: a bare variable reference
// when Func == "", or a function call (`$(wildcard ...)`, `$(call ...)`,
// `$(subst ...)`, ...) otherwise. Args are the comma-separated argument
// words for a function call, or the single variable-name word for a bare
// reference.
type Expansion struct {
	Base
	Braced bool // true for ${...}, false for $(...)
	Func   string
	Args   []Expr
}

func (Expansion) exprNode() {}

// Concatenation joins Text/Automatic/Expansion segments that together
// form a single make "word" (spec.md §3's Concatenation equivalent on the
// shell side).
type Concatenation struct {
	Base
	Parts []Expr
}

func (Concatenation) exprNode() {}

// Rule is a target: prereqs rule, with its recipe.
type Rule struct {
	Base
	Targets          []Expr
	DoubleColon      bool
	Prereqs          []Expr
	OrderOnlyPrereqs []Expr
	Recipe           []RecipeLine
}

func (*Rule) stmtNode() {}

// RecipeLine is one shell command line belonging to a Rule's recipe.
type RecipeLine struct {
	Base
	Silent      bool // leading '@': do not echo before executing
	IgnoreError bool // leading '-': a nonzero exit does not abort the build
	Recursive   bool // leading '+': run even under `make -n`/submake restrictions
	TabIndented bool // false when the line was indented with spaces (MAKE008)
	IndentStart uint32
	Text        string
}

func (RecipeLine) stmtNode() {}

// Assignment is a variable definition at any of Make's operator
// strengths.
type Assignment struct {
	Base
	Name  string
	Op    string // "=", ":=", "::=", ":::=", "?=", "+=", "!="
	Value Expr
}

func (*Assignment) stmtNode() {}

// Conditional is an ifeq/ifneq/ifdef/ifndef ... else ... endif block.
type Conditional struct {
	Base
	Kind string // "ifeq", "ifneq", "ifdef", "ifndef"
	Args []Expr
	Then []Stmt
	Else []Stmt
}

func (*Conditional) stmtNode() {}

// Include is an include/-include/sinclude directive.
type Include struct {
	Base
	Optional bool
	Files    []Expr
}

func (*Include) stmtNode() {}

// Define is a multi-line `define NAME ... endef` variable.
type Define struct {
	Base
	Name string
	Body string
}

func (*Define) stmtNode() {}

// Comment is a top-level "# ..." line, preserved as a statement so
// purification can splice around it without disturbing it.
type Comment struct {
	Base
	Text string
}

func (Comment) stmtNode() {}

// Directive is an export/unexport/override/vpath statement: its effect on
// variable scoping is not modeled, only its presence and arguments (the
// rules package inspects these textually where needed).
type Directive struct {
	Base
	Keyword string
	Args    []Expr
}

func (*Directive) stmtNode() {}
