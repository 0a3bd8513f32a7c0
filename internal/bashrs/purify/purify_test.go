package purify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiml/bashrs/internal/bashrs/source"
)

func mustFile(t *testing.T, src string) *source.File {
	t.Helper()
	f, err := source.New("t.sh", []byte(src))
	require.NoError(t, err)
	return f
}

func codesOf(r *Result) []string {
	var codes []string
	for _, t := range r.Transformations {
		codes = append(codes, t.Code)
	}
	return codes
}

func TestPurifyReplacesRandomWithPlaceholder(t *testing.T) {
	f := mustFile(t, "echo $RANDOM\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Contains(t, codesOf(r), "DET001")
	assert.Equal(t, "echo 0\n", string(r.Output))
}

func TestPurifyHonorsCustomRandomPlaceholder(t *testing.T) {
	f := mustFile(t, "echo $RANDOM\n")
	r, err := Purify(f, Options{RandomPlaceholder: "42"})
	require.NoError(t, err)
	assert.Equal(t, "echo 42\n", string(r.Output))
}

func TestPurifyReplacesDateSubstitution(t *testing.T) {
	f := mustFile(t, "echo $(date +%s)\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Contains(t, codesOf(r), "DET002")
	assert.Equal(t, "echo $PURIFY_TIMESTAMP_PLACEHOLDER\n", string(r.Output))
}

func TestPurifySkipsDateWhenMetricsMarkerPresent(t *testing.T) {
	f := mustFile(t, "# bashrs:metrics\necho $(date +%s)\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.NotContains(t, codesOf(r), "DET002")
	assert.Equal(t, "# bashrs:metrics\necho $(date +%s)\n", string(r.Output))
}

func TestPurifyLeavesPIDArgumentToKillAlone(t *testing.T) {
	f := mustFile(t, "kill $$\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.NotContains(t, codesOf(r), "DET001")
	assert.Equal(t, "kill $$\n", string(r.Output))
}

func TestPurifyReplacesBarePIDOutsideKillContext(t *testing.T) {
	f := mustFile(t, "echo $$\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Contains(t, codesOf(r), "DET001")
	assert.Equal(t, "echo 0\n", string(r.Output))
}

func TestPurifyAddsMkdirDashP(t *testing.T) {
	f := mustFile(t, "mkdir /tmp/out\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Contains(t, codesOf(r), "IDEM001")
	assert.Equal(t, "mkdir -p /tmp/out\n", string(r.Output))
}

func TestPurifySkipsMkdirAlreadyHavingDashP(t *testing.T) {
	f := mustFile(t, "mkdir -p /tmp/out\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.NotContains(t, codesOf(r), "IDEM001")
	assert.Equal(t, "mkdir -p /tmp/out\n", string(r.Output))
}

func TestPurifyAddsRmDashF(t *testing.T) {
	f := mustFile(t, "rm /tmp/out\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Contains(t, codesOf(r), "IDEM002")
	assert.Equal(t, "rm -f /tmp/out\n", string(r.Output))
}

func TestPurifyMergesLnDashSIntoDashSF(t *testing.T) {
	f := mustFile(t, "ln -s /a /b\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Contains(t, codesOf(r), "IDEM003")
	assert.Equal(t, "ln -sf /a /b\n", string(r.Output))
}

func TestPurifyAddsPermissionGuardWhenRequested(t *testing.T) {
	f := mustFile(t, "mkdir /tmp/out\n")
	r, err := Purify(f, Options{PermissionGuard: true})
	require.NoError(t, err)
	assert.Contains(t, string(r.Output), `[ -w "$(dirname`)
	assert.Contains(t, string(r.Output), "mkdir -p /tmp/out")
}

func TestPurifyQuotesBareVariableArgument(t *testing.T) {
	f := mustFile(t, "echo $name\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Contains(t, codesOf(r), "QUOTE001")
	assert.Equal(t, "echo \"$name\"\n", string(r.Output))
}

func TestPurifyLeavesAtSignAndStarUnquoted(t *testing.T) {
	f := mustFile(t, "echo $@\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.NotContains(t, codesOf(r), "QUOTE001")
	assert.Equal(t, "echo $@\n", string(r.Output))
}

func TestPurifyRewritesFunctionKeyword(t *testing.T) {
	f := mustFile(t, "function greet {\n  echo hi\n}\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Contains(t, codesOf(r), "POSIX001")
	assert.Equal(t, "greet() {\n  echo hi\n}\n", string(r.Output))
}

func TestPurifyLeavesPOSIXFunctionFormAlone(t *testing.T) {
	f := mustFile(t, "greet() {\n  echo hi\n}\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.NotContains(t, codesOf(r), "POSIX001")
}

func TestPurifyRewritesDoubleBracketToSingle(t *testing.T) {
	f := mustFile(t, "if [[ -f /tmp/x ]]; then echo yes; fi\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Contains(t, codesOf(r), "POSIX002")
	assert.Equal(t, "if [ -f /tmp/x ]; then echo yes; fi\n", string(r.Output))
}

func TestPurifyLeavesDoubleBracketWithAndOrAlone(t *testing.T) {
	f := mustFile(t, "if [[ -f /tmp/x && -r /tmp/x ]]; then echo yes; fi\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.NotContains(t, codesOf(r), "POSIX002")
}

func TestPurifyLeavesDoubleBracketWithRegexAlone(t *testing.T) {
	f := mustFile(t, "if [[ $x =~ ^[0-9]+$ ]]; then echo yes; fi\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.NotContains(t, codesOf(r), "POSIX002")
}

func TestPurifyRewritesExprToArithmeticExpansion(t *testing.T) {
	f := mustFile(t, "total=$(expr $a + $b)\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Contains(t, codesOf(r), "POSIX003")
	assert.Equal(t, "total=$(( $a + $b ))\n", string(r.Output))
}

func TestPurifyIsIdempotent(t *testing.T) {
	src := "function greet {\n  mkdir /tmp/out\n  echo $RANDOM $name\n  if [[ -f /tmp/x ]]; then rm /tmp/x; fi\n}\n"
	f := mustFile(t, src)
	r, err := Purify(f, Options{})
	require.NoError(t, err)

	ok, err := Idempotent("t.sh", r.Output, Options{})
	require.NoError(t, err)
	assert.True(t, ok, "re-purifying already-purified output must be a no-op")
}

func TestPurifyOnCleanScriptProducesNoTransformations(t *testing.T) {
	f := mustFile(t, "greet() {\n  mkdir -p /tmp/out\n  echo \"$name\"\n}\n")
	r, err := Purify(f, Options{})
	require.NoError(t, err)
	assert.Empty(t, r.Transformations)
	assert.Equal(t, string(f.Data), string(r.Output))
}
