package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiml/bashrs/internal/bashrs/make/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func mustFile(t *testing.T, src string) *source.File {
	t.Helper()
	f, err := source.New("Makefile", []byte(src))
	require.NoError(t, err)
	return f
}

func TestParseSimpleRule(t *testing.T) {
	f := mustFile(t, "all: main.go\n\tgo build ./...\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	r, ok := stmts[0].(*ast.Rule)
	require.True(t, ok)
	assert.False(t, r.DoubleColon)
	require.Len(t, r.Targets, 1)
	require.Len(t, r.Prereqs, 1)
	require.Len(t, r.Recipe, 1)
	assert.Equal(t, "go build ./...", r.Recipe[0].Text)
	assert.True(t, r.Recipe[0].TabIndented)
}

func TestParseDoubleColonRule(t *testing.T) {
	f := mustFile(t, "foo:: bar\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	r, ok := stmts[0].(*ast.Rule)
	require.True(t, ok)
	assert.True(t, r.DoubleColon)
}

func TestParseOrderOnlyPrereqs(t *testing.T) {
	f := mustFile(t, "out: src.c | builddir\n\tcc -o out src.c\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	r := stmts[0].(*ast.Rule)
	require.Len(t, r.Prereqs, 1)
	require.Len(t, r.OrderOnlyPrereqs, 1)
}

func TestParseInlineSemicolonRecipe(t *testing.T) {
	f := mustFile(t, "foo: bar; echo hi\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	r := stmts[0].(*ast.Rule)
	require.Len(t, r.Recipe, 1)
	assert.Equal(t, "echo hi", r.Recipe[0].Text)
}

func TestParseRecipeModifiers(t *testing.T) {
	f := mustFile(t, "all:\n\t@-+echo hi\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	r := stmts[0].(*ast.Rule)
	require.Len(t, r.Recipe, 1)
	rl := r.Recipe[0]
	assert.True(t, rl.Silent)
	assert.True(t, rl.IgnoreError)
	assert.True(t, rl.Recursive)
	assert.Equal(t, "echo hi", rl.Text)
}

func TestParseBadIndentRecipeSurfacesAsRecipeLine(t *testing.T) {
	f := mustFile(t, "all:\n    echo bad\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	r := stmts[0].(*ast.Rule)
	require.Len(t, r.Recipe, 1)
	assert.False(t, r.Recipe[0].TabIndented)
	assert.Equal(t, "echo bad", r.Recipe[0].Text)
}

func TestParseAssignment(t *testing.T) {
	f := mustFile(t, "CFLAGS := -Wall -O2\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	a, ok := stmts[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "CFLAGS", a.Name)
	assert.Equal(t, ":=", a.Op)
}

func TestParseConditionalBlock(t *testing.T) {
	f := mustFile(t, "ifeq ($(OS),Windows)\nFOO = win\nelse\nFOO = unix\nendif\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	c, ok := stmts[0].(*ast.Conditional)
	require.True(t, ok)
	assert.Equal(t, "ifeq", c.Kind)
	require.Len(t, c.Then, 1)
	require.Len(t, c.Else, 1)
}

func TestParseInclude(t *testing.T) {
	f := mustFile(t, "include config.mk\n-include optional.mk\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	inc, ok := stmts[0].(*ast.Include)
	require.True(t, ok)
	assert.False(t, inc.Optional)
	inc2, ok := stmts[1].(*ast.Include)
	require.True(t, ok)
	assert.True(t, inc2.Optional)
}

func TestParseDefine(t *testing.T) {
	f := mustFile(t, "define USAGE\nline one\nline two\nendef\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	d, ok := stmts[0].(*ast.Define)
	require.True(t, ok)
	assert.Equal(t, "USAGE", d.Name)
	assert.Contains(t, d.Body, "line one")
	assert.Contains(t, d.Body, "line two")
}

func TestParseRecipeBeforeAnyRuleIsAnError(t *testing.T) {
	f := mustFile(t, "\techo oops\n")
	_, err := Parse(f)
	assert.Error(t, err)
}

func TestParsePhonyDeclaration(t *testing.T) {
	f := mustFile(t, ".PHONY: all clean\nall:\n\techo hi\n")
	stmts, err := Parse(f)
	require.NoError(t, err)
	r, ok := stmts[0].(*ast.Rule)
	require.True(t, ok)
	require.Len(t, r.Targets, 1)
	require.Len(t, r.Prereqs, 2)
}
