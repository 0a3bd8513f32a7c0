package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/make/parser"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func mustFile(t *testing.T, src string) *source.File {
	t.Helper()
	f, err := source.New("Makefile", []byte(src))
	require.NoError(t, err)
	return f
}

func lint(t *testing.T, src string) []diag.Diagnostic {
	t.Helper()
	f := mustFile(t, src)
	stmts, err := parser.Parse(f)
	require.NoError(t, err)
	return Lint(f, stmts)
}

func codesOf(diags []diag.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestCodesIsSortedAndNonEmpty(t *testing.T) {
	codes := Codes()
	require.NotEmpty(t, codes)
	for i := 1; i < len(codes); i++ {
		assert.Less(t, codes[i-1], codes[i])
	}
}

func TestLintOrdersBySourcePosition(t *testing.T) {
	diags := lint(t, "SRCS := $(wildcard *.go)\nall:\n    echo bad\n")
	require.Len(t, diags, 3)
	for i := 1; i < len(diags); i++ {
		assert.LessOrEqual(t, diags[i-1].Span.Start, diags[i].Span.Start)
	}
}

func TestMAKE001FlagsUnsortedWildcard(t *testing.T) {
	diags := lint(t, "SRCS := $(wildcard *.go)\n")
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "MAKE001", d.Code)
	assert.Equal(t, diag.Warning, d.Severity)
	require.NotNil(t, d.Fix)
	assert.Equal(t, "$(sort $(wildcard *.go))", d.Fix.Replacement)
	assert.Equal(t, diag.Safe, d.Fix.Safety)
}

func TestMAKE001SkipsWildcardAlreadySorted(t *testing.T) {
	diags := lint(t, "SRCS := $(sort $(wildcard *.go))\n")
	for _, d := range diags {
		assert.NotEqual(t, "MAKE001", d.Code)
	}
}

func TestMAKE002FlagsBareShellVarInSubmakeRecipe(t *testing.T) {
	diags := lint(t, "all:\n\t$(MAKE) -C sub build name=$name\n")
	var found *diag.Diagnostic
	for i := range diags {
		if diags[i].Code == "MAKE002" {
			found = &diags[i]
		}
	}
	require.NotNil(t, found)
	require.NotNil(t, found.Fix)
	assert.Equal(t, diag.SafeWithAssumptions, found.Fix.Safety)
}

func TestMAKE002IgnoresBareShellVarsWithoutSubmake(t *testing.T) {
	diags := lint(t, "all:\n\techo $name\n")
	for _, d := range diags {
		assert.NotEqual(t, "MAKE002", d.Code)
	}
}

func TestMAKE008FlagsSpaceIndentedRecipe(t *testing.T) {
	diags := lint(t, "all:\n    echo bad\n")
	var found *diag.Diagnostic
	for i := range diags {
		if diags[i].Code == "MAKE008" {
			found = &diags[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, diag.Error, found.Severity)
	require.NotNil(t, found.Fix)
	assert.Equal(t, "\t", found.Fix.Replacement)
	assert.Equal(t, diag.Safe, found.Fix.Safety)
}

func TestMAKE008SkipsTabIndentedRecipe(t *testing.T) {
	diags := lint(t, "all:\n\techo ok\n")
	for _, d := range diags {
		assert.NotEqual(t, "MAKE008", d.Code)
	}
}

func TestMAKE009FlagsWholeWordSudo(t *testing.T) {
	diags := lint(t, "install:\n\tsudo cp bin /usr/local/bin\n")
	var found *diag.Diagnostic
	for i := range diags {
		if diags[i].Code == "MAKE009" {
			found = &diags[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, diag.Warning, found.Severity)
	assert.Nil(t, found.Fix)
}

func TestMAKE009SkipsSudoSubstring(t *testing.T) {
	diags := lint(t, "install:\n\tunsudo cp bin /usr/local/bin\n")
	for _, d := range diags {
		assert.NotEqual(t, "MAKE009", d.Code)
	}
}

func TestMAKE011FlagsConventionalPhonyWithoutDeclaration(t *testing.T) {
	diags := lint(t, "clean:\n\trm -rf build\n")
	var found *diag.Diagnostic
	for i := range diags {
		if diags[i].Code == "MAKE011" {
			found = &diags[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, diag.Warning, found.Severity)
}

func TestMAKE011SkipsWhenPhonyDeclared(t *testing.T) {
	diags := lint(t, ".PHONY: clean\nclean:\n\trm -rf build\n")
	for _, d := range diags {
		assert.NotEqual(t, "MAKE011", d.Code)
	}
}

func TestMAKE011SkipsTargetWithPrereqs(t *testing.T) {
	diags := lint(t, "all: main.go\n\tgo build ./...\n")
	for _, d := range diags {
		assert.NotEqual(t, "MAKE011", d.Code)
	}
}

func TestMAKE018FlagsUnorderedConcurrentWriters(t *testing.T) {
	diags := lint(t, "a:\n\techo hi > out.log\nb:\n\techo bye > out.log\n")
	var found *diag.Diagnostic
	for i := range diags {
		if diags[i].Code == "MAKE018" {
			found = &diags[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, diag.Risk, found.Severity)
}

func TestMAKE018SkipsWritersWithDeclaredOrder(t *testing.T) {
	diags := lint(t, "a:\n\techo hi > out.log\nb: a\n\techo bye >> out.log\n")
	for _, d := range diags {
		assert.NotEqual(t, "MAKE018", d.Code)
	}
}

func TestMAKE018SkipsDevNullRedirects(t *testing.T) {
	diags := lint(t, "a:\n\techo hi > /dev/null\nb:\n\techo bye > /dev/null\n")
	for _, d := range diags {
		assert.NotEqual(t, "MAKE018", d.Code)
	}
}

func TestLintCombinesMultipleRuleFindings(t *testing.T) {
	diags := lint(t, ".PHONY: all\nall:\n    sudo echo $(wildcard *.go)\n")
	codes := codesOf(diags)
	assert.Contains(t, codes, "MAKE008")
	assert.Contains(t, codes, "MAKE009")
	assert.Contains(t, codes, "MAKE001")
}
