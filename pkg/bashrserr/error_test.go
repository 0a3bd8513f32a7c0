package bashrserr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturesStackOnlyForInternalKinds(t *testing.T) {
	e := New(IOError, "write failed", errors.New("disk full"))
	assert.Empty(t, e.Stack)

	e2 := New(RuleInternalError, "checker panicked", errors.New("boom"))
	assert.NotEmpty(t, e2.Stack)
}

func TestErrorMessageFormat(t *testing.T) {
	e := New(ParseError, "unexpected token", errors.New("found ')'"))
	assert.Equal(t, "[ParseError] unexpected token: found ')'", e.Error())

	e2 := New(ParseError, "unexpected token", nil)
	assert.Equal(t, "[ParseError] unexpected token", e2.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	e := New(IOError, "read failed", cause)
	assert.Equal(t, cause, errors.Unwrap(e))
}

func TestIsCode(t *testing.T) {
	e := New(FixApplyError, "overlap detected", nil)
	var wrapped error = e
	assert.True(t, IsCode(wrapped, FixApplyError))
	assert.False(t, IsCode(wrapped, IOError))
	assert.False(t, IsCode(errors.New("plain"), FixApplyError))
}

func TestWrapPreservesCause(t *testing.T) {
	root := errors.New("root cause")
	e := Wrap(LexError, "lexing failed", root)
	require.Equal(t, root, e.Cause())
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{LexError, 2}, {ParseError, 2},
		{SuppressionParseError, 3}, {IgnoreFileError, 3},
		{RuleInternalError, 4}, {FixApplyError, 5}, {IOError, 6},
		{Internal, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.code.ExitCode())
	}
}

func TestAddDetail(t *testing.T) {
	e := New(RuleInternalError, "fix produced invalid parse", nil)
	e.AddDetail("rule SC2086").AddDetail("file t.sh")
	assert.Equal(t, []string{"rule SC2086", "file t.sh"}, e.Details)
}
