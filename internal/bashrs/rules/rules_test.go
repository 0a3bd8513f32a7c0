package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiml/bashrs/internal/bashrs/parser"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func mustFile(t *testing.T, src string) *source.File {
	t.Helper()
	f, err := source.New("t.sh", []byte(src))
	require.NoError(t, err)
	return f
}

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry()
	require.NoError(t, err)
	return reg
}

func lintCodes(t *testing.T, src string) []string {
	t.Helper()
	f := mustFile(t, src)
	reg := mustRegistry(t)
	diags, err := Lint(f, reg, Bash)
	require.NoError(t, err)
	var codes []string
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	return codes
}

func TestNewRegistryLoadsCatalogAndAttachesCheckers(t *testing.T) {
	reg := mustRegistry(t)
	m, ok := reg.Lookup("SC2086")
	require.True(t, ok)
	assert.True(t, m.Implemented())

	m, ok = reg.Lookup("SC2001")
	require.True(t, ok)
	assert.False(t, m.Implemented(), "catalog-only entries must have no checker")

	_, ok = reg.Lookup("NOPE")
	assert.False(t, ok)
}

func TestImplementedFiltersByShellCompat(t *testing.T) {
	reg := mustRegistry(t)
	bashOnly := reg.Implemented(Bash)
	shOnly := reg.Implemented(Sh)

	found := false
	for _, m := range bashOnly {
		if m.Code == "SC2219" {
			found = true
		}
	}
	assert.True(t, found, "SC2219 should apply under Bash")

	for _, m := range shOnly {
		assert.NotEqual(t, "SC2219", m.Code, "SC2219 is bash_only and must not apply under Sh")
	}
}

func TestSC2086FlagsUnquotedVariable(t *testing.T) {
	codes := lintCodes(t, "echo $x\n")
	assert.Contains(t, codes, "SC2086")
}

func TestSC2086SkipsDoubleQuotedVariable(t *testing.T) {
	codes := lintCodes(t, `echo "$x"`+"\n")
	assert.NotContains(t, codes, "SC2086")
}

func TestSC2086SkipsSpecialParams(t *testing.T) {
	codes := lintCodes(t, "echo $@\n")
	assert.NotContains(t, codes, "SC2086")
}

func TestSC2046FlagsUnquotedCommandSubstitution(t *testing.T) {
	codes := lintCodes(t, "echo $(ls)\n")
	assert.Contains(t, codes, "SC2046")
}

func TestSC2116FlagsUselessEchoSubstitution(t *testing.T) {
	codes := lintCodes(t, `x=$(echo hello)`+"\n")
	assert.Contains(t, codes, "SC2116")
}

func TestSC2116SkipsPipelineInSubstitution(t *testing.T) {
	codes := lintCodes(t, `x=$(echo hello | tr a-z A-Z)`+"\n")
	assert.NotContains(t, codes, "SC2116")
}

func TestSC2154FlagsUndeclaredVariable(t *testing.T) {
	codes := lintCodes(t, "echo \"$undeclared\"\n")
	assert.Contains(t, codes, "SC2154")
}

func TestSC2154SkipsAssignedVariable(t *testing.T) {
	codes := lintCodes(t, "x=1\necho \"$x\"\n")
	assert.NotContains(t, codes, "SC2154")
}

func TestSC2154SkipsBuiltinVariable(t *testing.T) {
	codes := lintCodes(t, "echo \"$HOME\"\n")
	assert.NotContains(t, codes, "SC2154")
}

func TestSC2059FlagsNonLiteralFormat(t *testing.T) {
	codes := lintCodes(t, `printf "$fmt" x`+"\n")
	assert.Contains(t, codes, "SC2059")
}

func TestSC2059SkipsLiteralFormat(t *testing.T) {
	codes := lintCodes(t, `printf "%s" x`+"\n")
	assert.NotContains(t, codes, "SC2059")
}

func TestSC2064FlagsUnquotedTrap(t *testing.T) {
	codes := lintCodes(t, `trap "rm -f $file" EXIT`+"\n")
	assert.Contains(t, codes, "SC2064")
}

func TestSC2114FlagsGlobSuffixedRmRf(t *testing.T) {
	codes := lintCodes(t, `rm -rf "$dir"/*`+"\n")
	assert.Contains(t, codes, "SC2114")
}

func TestSC2115FlagsBareVariableRmRf(t *testing.T) {
	codes := lintCodes(t, "rm -rf $dir\n")
	assert.Contains(t, codes, "SC2115")
}

func TestDET001FlagsRandom(t *testing.T) {
	codes := lintCodes(t, "echo $RANDOM\n")
	assert.Contains(t, codes, "DET001")
}

func TestDET002FlagsDateSubstitution(t *testing.T) {
	codes := lintCodes(t, `now=$(date +%s)`+"\n")
	assert.Contains(t, codes, "DET002")
}

func TestDET002RespectsMetricsMarker(t *testing.T) {
	codes := lintCodes(t, "# bashrs:metrics\nnow=$(date +%s)\n")
	assert.NotContains(t, codes, "DET002")
}

func TestIDEM001FlagsMkdirWithoutP(t *testing.T) {
	codes := lintCodes(t, "mkdir build\n")
	assert.Contains(t, codes, "IDEM001")
}

func TestIDEM001SkipsMkdirWithP(t *testing.T) {
	codes := lintCodes(t, "mkdir -p build\n")
	assert.NotContains(t, codes, "IDEM001")
}

func TestIDEM002FlagsRmWithoutF(t *testing.T) {
	codes := lintCodes(t, "rm build/out\n")
	assert.Contains(t, codes, "IDEM002")
}

func TestIDEM003FlagsLnSWithoutF(t *testing.T) {
	codes := lintCodes(t, "ln -s a b\n")
	assert.Contains(t, codes, "IDEM003")
}

func TestSEC001FlagsEvalOfVariable(t *testing.T) {
	codes := lintCodes(t, "eval \"$cmd\"\n")
	assert.Contains(t, codes, "SEC001")
}

func TestSEC002FlagsWorldWritableChmod(t *testing.T) {
	codes := lintCodes(t, "chmod 777 file\n")
	assert.Contains(t, codes, "SEC002")
}

func TestSEC008FlagsUnverifiedFetchPipe(t *testing.T) {
	codes := lintCodes(t, "curl https://example.com/install.sh | sh\n")
	assert.Contains(t, codes, "SEC008")
}

func TestSEC008SkipsVerifiedFetchPipe(t *testing.T) {
	codes := lintCodes(t, "curl https://example.com/install.sh | gpg --verify | sh\n")
	assert.NotContains(t, codes, "SEC008")
}

func TestSC2164FlagsUnguardedCd(t *testing.T) {
	codes := lintCodes(t, "cd /tmp\n")
	assert.Contains(t, codes, "SC2164")
}

func TestSC2164SkipsGuardedCd(t *testing.T) {
	codes := lintCodes(t, "cd /tmp || exit\n")
	assert.NotContains(t, codes, "SC2164")
}

func TestSC2006FlagsBackquotes(t *testing.T) {
	codes := lintCodes(t, "x=`ls`\n")
	assert.Contains(t, codes, "SC2006")
}

func TestSC2148FlagsMissingShebang(t *testing.T) {
	codes := lintCodes(t, "echo hi\n")
	assert.Contains(t, codes, "SC2148")
}

func TestSC2148SkipsValidShebang(t *testing.T) {
	codes := lintCodes(t, "#!/usr/bin/env bash\necho hi\n")
	assert.NotContains(t, codes, "SC2148")
}

func TestSC2219FlagsLet(t *testing.T) {
	codes := lintCodes(t, "let x=1+2\n")
	assert.Contains(t, codes, "SC2219")
}

func TestSC2251FlagsNegatedPipeline(t *testing.T) {
	codes := lintCodes(t, "! grep foo file | wc -l\n")
	assert.Contains(t, codes, "SC2251")
}

func TestCONFIG001FlagsDuplicatePathEntries(t *testing.T) {
	codes := lintCodes(t, "PATH=/usr/bin:/usr/local/bin:/usr/bin\n")
	assert.Contains(t, codes, "CONFIG-001")
}

func TestCONFIG002FlagsDynamicSource(t *testing.T) {
	codes := lintCodes(t, `source "$HOME/.extra"`+"\n")
	assert.Contains(t, codes, "CONFIG-002")
}

func TestCONFIG002SkipsStaticSource(t *testing.T) {
	codes := lintCodes(t, "source /etc/profile\n")
	assert.NotContains(t, codes, "CONFIG-002")
}

func TestCONFIG003FlagsUnsafeRmAlias(t *testing.T) {
	codes := lintCodes(t, "alias rm=rm\n")
	assert.Contains(t, codes, "CONFIG-003")
}

func TestCONFIG003SkipsSafeRmAlias(t *testing.T) {
	codes := lintCodes(t, "alias rm='rm -i'\n")
	assert.NotContains(t, codes, "CONFIG-003")
}

func TestCONFIG004FlagsRandomAssignment(t *testing.T) {
	codes := lintCodes(t, "seed=$RANDOM\n")
	assert.Contains(t, codes, "CONFIG-004")
}

func TestLintSuppressesInlineDirective(t *testing.T) {
	codes := lintCodes(t, "echo $x # shellcheck disable=SC2086\n")
	assert.NotContains(t, codes, "SC2086")
}

func TestLintReturnsParseErrorDiagnostic(t *testing.T) {
	f := mustFile(t, "if true\n")
	reg := mustRegistry(t)
	diags, err := Lint(f, reg, Bash)
	require.Error(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "PARSE_ERROR", diags[0].Code)
}

func TestDetectShellTypeFromShebang(t *testing.T) {
	st := DetectShellType("x.sh", []byte("#!/bin/zsh\necho hi\n"))
	assert.Equal(t, Zsh, st)
}

func TestDetectShellTypeFromExtension(t *testing.T) {
	st := DetectShellType("x.zsh", []byte("echo hi\n"))
	assert.Equal(t, Zsh, st)
}

func TestDetectShellTypeDefaultsToBash(t *testing.T) {
	st := DetectShellType("x", []byte("echo hi\n"))
	assert.Equal(t, Bash, st)
}

func TestDetectShellTypeFromShellcheckDirective(t *testing.T) {
	st := DetectShellType("x", []byte("#!/bin/sh\n# shellcheck shell=bash\necho hi\n"))
	assert.Equal(t, Bash, st)
}

func TestLintParsedUsesOnlyImplementedCheckersForShellType(t *testing.T) {
	reg := mustRegistry(t)
	f := mustFile(t, "let x=1\n")
	stmts, err := parser.Parse(f)
	require.NoError(t, err)

	diags := LintParsed(f, stmts, reg, Sh)
	for _, d := range diags {
		assert.NotEqual(t, "SC2219", d.Code, "SC2219 is bash_only and must not fire for Sh")
	}
}
