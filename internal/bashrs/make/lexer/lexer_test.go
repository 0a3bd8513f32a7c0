package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiml/bashrs/internal/bashrs/source"
)

func mustFile(t *testing.T, src string) *source.File {
	t.Helper()
	f, err := source.New("Makefile", []byte(src))
	require.NoError(t, err)
	return f
}

func kinds(toks []Token) []Kind {
	var out []Kind
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestLexSimpleRule(t *testing.T) {
	f := mustFile(t, "all: main.go\n\tgo build ./...\n")
	toks := Lex(f)
	assert.Equal(t, []Kind{Word, Colon, Word, Newline, Recipe, EOF}, kinds(toks))
	assert.Equal(t, "go build ./...", toks[4].Text)
}

func TestLexDoubleColonRule(t *testing.T) {
	f := mustFile(t, "foo:: bar\n")
	toks := Lex(f)
	assert.Equal(t, []Kind{Word, DoubleColon, Word, Newline, EOF}, kinds(toks))
}

func TestLexOrderOnlyPrereq(t *testing.T) {
	f := mustFile(t, "out: src.c | builddir\n\tcc -o out src.c\n")
	toks := Lex(f)
	assert.Equal(t, []Kind{Word, Colon, Word, Pipe, Word, Newline, Recipe, EOF}, kinds(toks))
}

func TestLexInlineSemicolonRecipe(t *testing.T) {
	f := mustFile(t, "foo: bar; echo hi\n")
	toks := Lex(f)
	assert.Equal(t, []Kind{Word, Colon, Word, Semi, Recipe, EOF}, kinds(toks))
	recipe := toks[4]
	assert.Equal(t, "echo hi", recipe.Text)
}

func TestLexAssignmentOperators(t *testing.T) {
	cases := []string{"FOO = bar", "FOO := bar", "FOO ::= bar", "FOO ?= bar", "FOO += bar", "FOO != bar"}
	for _, src := range cases {
		f := mustFile(t, src+"\n")
		toks := Lex(f)
		assert.Equal(t, Word, toks[0].Kind, src)
		assert.Equal(t, AssignOp, toks[1].Kind, src)
		assert.Equal(t, Word, toks[2].Kind, src)
	}
}

func TestLexCommentToken(t *testing.T) {
	f := mustFile(t, "# a comment\nFOO = bar\n")
	toks := Lex(f)
	assert.Equal(t, Comment, toks[0].Kind)
	assert.Equal(t, "# a comment", toks[0].Text)
}

func TestLexBackslashContinuation(t *testing.T) {
	f := mustFile(t, "FOO = bar \\\n    baz\n")
	toks := Lex(f)
	require.Equal(t, Word, toks[2].Kind)
	assert.Contains(t, toks[2].Text, "bar")
	assert.Contains(t, toks[2].Text, "baz")
}

func TestLexBadIndentRecipeToken(t *testing.T) {
	f := mustFile(t, "all:\n    echo bad\n")
	toks := Lex(f)
	assert.Equal(t, []Kind{Word, Colon, Newline, BadIndentRecipe, EOF}, kinds(toks))
	assert.Equal(t, "echo bad", toks[3].Text)
	assert.Less(t, toks[3].IndentStart, toks[3].Start)
}

func TestLexTabIndentedRecipeIndentStartIsTabOffset(t *testing.T) {
	f := mustFile(t, "all:\n\techo ok\n")
	toks := Lex(f)
	recipe := toks[3]
	assert.Equal(t, Recipe, recipe.Kind)
	assert.Equal(t, recipe.Start-1, recipe.IndentStart)
}

func TestLexExpansionOpaqueToWhitespace(t *testing.T) {
	f := mustFile(t, "all: $(wildcard *.go)\n")
	toks := Lex(f)
	assert.Equal(t, []Kind{Word, Colon, Word, Newline, EOF}, kinds(toks))
	assert.Equal(t, "$(wildcard *.go)", toks[2].Text)
}

func TestLexDollarDollarEscaped(t *testing.T) {
	f := mustFile(t, "all:\n\techo $$HOME\n")
	toks := Lex(f)
	assert.Equal(t, "echo $$HOME", toks[3].Text)
}

func TestLexMultipleRecipeLinesAfterRule(t *testing.T) {
	f := mustFile(t, "all:\n\techo one\n\techo two\nclean:\n\trm -rf build\n")
	toks := Lex(f)
	assert.Equal(t, []Kind{
		Word, Colon, Newline, Recipe, Recipe,
		Word, Colon, Newline, Recipe, EOF,
	}, kinds(toks))
}

func TestLexEmptyFile(t *testing.T) {
	f := mustFile(t, "")
	toks := Lex(f)
	assert.Equal(t, []Kind{EOF}, kinds(toks))
}
