package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiml/bashrs/internal/bashrs/source"
)

func lex(t *testing.T, src string) []Token {
	t.Helper()
	f, err := source.New("t.sh", []byte(src))
	require.NoError(t, err)
	toks, err := Lex(f)
	require.NoError(t, err)
	return toks
}

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, tk := range toks {
		ks[i] = tk.Kind
	}
	return ks
}

func values(toks []Token) []string {
	vs := make([]string, len(toks))
	for i, tk := range toks {
		vs[i] = tk.Value
	}
	return vs
}

func TestSimpleCommand(t *testing.T) {
	toks := lex(t, "echo hi")
	assert.Equal(t, []string{"echo", "hi", ""}, values(toks))
	assert.Equal(t, []Kind{KindIdent, KindIdent, KindEOF}, kinds(toks))
}

func TestCommentAtWordStart(t *testing.T) {
	toks := lex(t, "echo foo#bar")
	require.Len(t, toks, 3)
	assert.Equal(t, "foo#bar", toks[1].Value)
	assert.Equal(t, KindIdent, toks[1].Kind)
}

func TestCommentStartsLine(t *testing.T) {
	toks := lex(t, "# a comment\necho hi")
	assert.Equal(t, KindComment, toks[0].Kind)
	assert.Equal(t, "# a comment", toks[0].Value)
}

func TestKeywordExactMatch(t *testing.T) {
	toks := lex(t, "if true; then echo hi; fi")
	assert.Equal(t, KindKeyword, toks[0].Kind)
	assert.Equal(t, "if", toks[0].Value)
}

func TestKeywordAsIdentifierAssignment(t *testing.T) {
	toks := lex(t, "fi=1")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, KindIdent, toks[0].Kind)
	assert.Equal(t, "fi=1", toks[0].Value)
}

func TestAndOrOperators(t *testing.T) {
	toks := lex(t, "cmd1 && cmd2 || cmd3")
	var ops []string
	for _, tk := range toks {
		if tk.Kind == KindOperator {
			ops = append(ops, tk.Value)
		}
	}
	assert.Equal(t, []string{"&&", "||"}, ops)
}

func TestNestedQuoteInsideCommandSubstitution(t *testing.T) {
	// $(...) balances against parens, not the outer double quote.
	toks := lex(t, `echo "$(echo "inner")"`)
	require.Len(t, toks, 3)
	assert.Equal(t, KindString, toks[1].Kind)
	assert.Equal(t, `$(echo "inner")`, toks[1].Value)
}

func TestDoubleBracketTest(t *testing.T) {
	toks := lex(t, "[[ -f x ]]")
	assert.Equal(t, "[[", toks[0].Value)
	assert.Equal(t, KindOperator, toks[0].Kind)
	last := toks[len(toks)-2]
	assert.Equal(t, "]]", last.Value)
}

func TestSingleBracketIsAWord(t *testing.T) {
	toks := lex(t, "[ -f x ]")
	assert.Equal(t, KindIdent, toks[0].Kind)
	assert.Equal(t, "[", toks[0].Value)
}

func TestHeredocCollectsBody(t *testing.T) {
	toks := lex(t, "cat <<EOF\nhello\nworld\nEOF\n")
	var bodies []Token
	for _, tk := range toks {
		if tk.Kind == KindHeredocBody {
			bodies = append(bodies, tk)
		}
	}
	require.Len(t, bodies, 1)
	assert.Equal(t, "hello\nworld\n", bodies[0].Value)
}

func TestHeredocStripTabs(t *testing.T) {
	toks := lex(t, "cat <<-EOF\n\t\thello\n\tEOF\n")
	var body string
	for _, tk := range toks {
		if tk.Kind == KindHeredocBody {
			body = tk.Value
		}
	}
	assert.Equal(t, "hello\n", body)
}

func TestHereString(t *testing.T) {
	toks := lex(t, "cat <<< \"hello\"")
	var redirect *Token
	for i := range toks {
		if toks[i].Kind == KindRedirect && toks[i].Value == "<<<" {
			redirect = &toks[i]
		}
	}
	require.NotNil(t, redirect)
}

func TestLineContinuationJoinsLines(t *testing.T) {
	toks := lex(t, "echo foo \\\nbar")
	assert.Equal(t, []string{"echo", "foo", "bar", ""}, values(toks))
	for _, tk := range toks {
		assert.NotEqual(t, KindNewline, tk.Kind)
	}
}

func TestUnterminatedStringError(t *testing.T) {
	f, err := source.New("t.sh", []byte(`echo "unterminated`))
	require.NoError(t, err)
	_, err = Lex(f)
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, UnterminatedString, lexErr.Kind)
}

func TestUnterminatedHeredocError(t *testing.T) {
	f, err := source.New("t.sh", []byte("cat <<EOF\nhello\n"))
	require.NoError(t, err)
	_, err = Lex(f)
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, UnterminatedHeredoc, lexErr.Kind)
}

func TestSpanCoverage(t *testing.T) {
	src := "echo $VAR | grep foo\n"
	toks := lex(t, src)
	for _, tk := range toks {
		if tk.Kind == KindEOF {
			continue
		}
		assert.LessOrEqual(t, int(tk.Span.End), len(src))
	}
}
