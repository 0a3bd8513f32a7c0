package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	f, err := source.New("t.sh", []byte(src))
	require.NoError(t, err)
	stmts, err := Parse(f)
	require.NoError(t, err)
	return stmts
}

func TestParseSimpleCommand(t *testing.T) {
	stmts := parse(t, "echo hi\n")
	require.Len(t, stmts, 1)
	cmd, ok := stmts[0].(*ast.Command)
	require.True(t, ok)
	lit, ok := cmd.Name.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "echo", lit.Value)
	require.Len(t, cmd.Args, 1)
}

func TestParseBareAssignment(t *testing.T) {
	stmts := parse(t, "FOO=bar\n")
	require.Len(t, stmts, 1)
	a, ok := stmts[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "FOO", a.Name)
}

func TestParseKeywordAsIdentifierAssignment(t *testing.T) {
	stmts := parse(t, "fi=1\n")
	require.Len(t, stmts, 1)
	a, ok := stmts[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "fi", a.Name)
}

func TestParseExportAssignment(t *testing.T) {
	stmts := parse(t, "export FOO=bar\n")
	require.Len(t, stmts, 1)
	a, ok := stmts[0].(*ast.Assignment)
	require.True(t, ok)
	assert.True(t, a.Export)
	assert.Equal(t, "FOO", a.Name)
}

func TestParseAndOrChain(t *testing.T) {
	stmts := parse(t, "cmd1 && cmd2 || cmd3\n")
	require.Len(t, stmts, 1)
	or, ok := stmts[0].(*ast.OrList)
	require.True(t, ok)
	_, ok = or.Left.(*ast.AndList)
	assert.True(t, ok)
}

func TestParsePipeline(t *testing.T) {
	stmts := parse(t, "cat f | grep x | wc -l\n")
	require.Len(t, stmts, 1)
	pipe, ok := stmts[0].(*ast.Pipeline)
	require.True(t, ok)
	assert.Len(t, pipe.Stages, 3)
}

func TestParseIf(t *testing.T) {
	stmts := parse(t, "if true; then echo yes; else echo no; fi\n")
	require.Len(t, stmts, 1)
	ifStmt, ok := stmts[0].(*ast.If)
	require.True(t, ok)
	assert.Len(t, ifStmt.Then, 1)
	assert.Len(t, ifStmt.Else, 1)
}

func TestParseIfElif(t *testing.T) {
	stmts := parse(t, "if a; then b; elif c; then d; fi\n")
	require.Len(t, stmts, 1)
	ifStmt := stmts[0].(*ast.If)
	require.Len(t, ifStmt.ElifArms, 1)
}

func TestParseForIn(t *testing.T) {
	stmts := parse(t, "for x in a b c; do echo $x; done\n")
	require.Len(t, stmts, 1)
	f, ok := stmts[0].(*ast.For)
	require.True(t, ok)
	assert.Equal(t, "x", f.Var)
	assert.Len(t, f.Words, 3)
}

func TestParseCFor(t *testing.T) {
	stmts := parse(t, "for ((i=0; i<10; i++)); do echo $i; done\n")
	require.Len(t, stmts, 1)
	cf, ok := stmts[0].(*ast.CFor)
	require.True(t, ok)
	assert.Equal(t, "i=0", cf.Init)
	assert.Equal(t, "i<10", cf.Cond)
	assert.Equal(t, "i++", cf.Step)
}

func TestParseWhile(t *testing.T) {
	stmts := parse(t, "while true; do echo hi; done\n")
	require.Len(t, stmts, 1)
	_, ok := stmts[0].(*ast.While)
	assert.True(t, ok)
}

func TestParseCase(t *testing.T) {
	stmts := parse(t, "case $x in\n  a|b) echo ab ;;\n  *) echo other ;;\nesac\n")
	require.Len(t, stmts, 1)
	c, ok := stmts[0].(*ast.Case)
	require.True(t, ok)
	require.Len(t, c.Arms, 2)
	assert.Len(t, c.Arms[0].Patterns, 2)
	assert.Equal(t, ";;", c.Arms[0].Terminator)
}

func TestParseFunctionParenForm(t *testing.T) {
	stmts := parse(t, "myfunc() { echo hi; }\n")
	require.Len(t, stmts, 1)
	fn, ok := stmts[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "myfunc", fn.Name)
	assert.False(t, fn.UsesFunctionKeyword)
}

func TestParseFunctionKeywordForm(t *testing.T) {
	stmts := parse(t, "function myfunc { echo hi; }\n")
	require.Len(t, stmts, 1)
	fn, ok := stmts[0].(*ast.Function)
	require.True(t, ok)
	assert.True(t, fn.UsesFunctionKeyword)
}

func TestParseDoubleBracketTest(t *testing.T) {
	stmts := parse(t, "if [[ -f x && -d y ]]; then echo yes; fi\n")
	require.Len(t, stmts, 1)
	ifStmt := stmts[0].(*ast.If)
	cmd, ok := ifStmt.Cond.(*ast.Command)
	require.True(t, ok)
	require.Len(t, cmd.Args, 1)
	test, ok := cmd.Args[0].(*ast.TestExpr)
	require.True(t, ok)
	assert.Equal(t, ast.TestAnd, test.Op)
}

func TestParseSingleBracketTest(t *testing.T) {
	stmts := parse(t, "if [ -f x ]; then echo yes; fi\n")
	require.Len(t, stmts, 1)
	ifStmt := stmts[0].(*ast.If)
	cmd := ifStmt.Cond.(*ast.Command)
	require.Len(t, cmd.Args, 1)
	test, ok := cmd.Args[0].(*ast.TestExpr)
	require.True(t, ok)
	assert.Equal(t, ast.TestUnary, test.Op)
	assert.Equal(t, "-f", test.Operator)
}

func TestParseHeredocAttachesToRedirect(t *testing.T) {
	stmts := parse(t, "cat <<EOF\nhello\nEOF\n")
	require.Len(t, stmts, 1)
	cmd, ok := stmts[0].(*ast.Command)
	require.True(t, ok)
	require.Len(t, cmd.Redirects, 1)
	assert.Equal(t, ast.HereDoc, cmd.Redirects[0].Kind)
	assert.Equal(t, "hello\n", cmd.Redirects[0].Body)
}

func TestParseBreakContinueLevels(t *testing.T) {
	stmts := parse(t, "for x in a; do break 2; done\n")
	f := stmts[0].(*ast.For)
	b, ok := f.Body[0].(*ast.Break)
	require.True(t, ok)
	assert.Equal(t, 2, b.Levels)
}

func TestParseNestedCommandSubstitutionInString(t *testing.T) {
	stmts := parse(t, `echo "$(echo "inner")"` + "\n")
	cmd := stmts[0].(*ast.Command)
	require.Len(t, cmd.Args, 1)
	_, ok := cmd.Args[0].(*ast.StringDouble)
	assert.True(t, ok)
}

func TestParseSubshell(t *testing.T) {
	stmts := parse(t, "(echo hi)\n")
	_, ok := stmts[0].(*ast.Subshell)
	assert.True(t, ok)
}

func TestParseBraceGroup(t *testing.T) {
	stmts := parse(t, "{ echo hi; }\n")
	_, ok := stmts[0].(*ast.BraceGroup)
	assert.True(t, ok)
}

func TestParseUnexpectedTokenError(t *testing.T) {
	f, err := source.New("t.sh", []byte("if true\n"))
	require.NoError(t, err)
	_, err = Parse(f)
	require.Error(t, err)
}
