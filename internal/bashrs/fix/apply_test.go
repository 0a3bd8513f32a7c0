package fix

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/rules"
	"github.com/paiml/bashrs/internal/bashrs/source"
	"github.com/paiml/bashrs/pkg/reportstore"
)

func mustFile(t *testing.T, src string) *source.File {
	t.Helper()
	f, err := source.New("t.sh", []byte(src))
	require.NoError(t, err)
	return f
}

func lint(t *testing.T, f *source.File) []diag.Diagnostic {
	t.Helper()
	reg, err := rules.NewRegistry()
	require.NoError(t, err)
	diags, err := rules.Lint(f, reg, rules.Bash)
	require.NoError(t, err)
	return diags
}

func TestApplyQuotesUnquotedVariable(t *testing.T) {
	f := mustFile(t, "echo $x\n")
	diags := lint(t, f)
	// SC2148 (no shebang) sorts first and SC2154 (x never assigned) last;
	// neither carries a fix, so SC2086 at index 1 is the only one applied.
	require.Len(t, diags, 3)
	// "$x" sits at byte offset 5 (right after "echo "); a diagnostic
	// anchored at offset 0 is the zero-span bug this test used to mask.
	assert.Equal(t, source.NewSpan(5, 7), diags[1].Span)
	assert.Equal(t, "$x", string(f.Text(diags[1].Fix.Span)))

	result, err := Apply(f, diags, ModeSafeOnly)
	require.NoError(t, err)
	assert.Equal(t, "echo \"$x\"\n", string(result.Output))
	assert.Equal(t, 1, result.Transformations)
}

func TestApplySkipsUnsafeFixesByDefault(t *testing.T) {
	f := mustFile(t, "eval \"$cmd\"\n")
	diags := lint(t, f)
	result, err := Apply(f, diags, ModeSafeOnly)
	require.NoError(t, err)
	assert.Equal(t, string(f.Data), string(result.Output))
	assert.Equal(t, 0, result.Transformations)
	assert.NotEmpty(t, result.Discarded)
}

func TestApplyIncludesSafeWithAssumptionsWhenRequested(t *testing.T) {
	f := mustFile(t, "mkdir build\n")
	diags := lint(t, f)
	result, err := Apply(f, diags, ModeSafeWithAssumptions)
	require.NoError(t, err)
	assert.Contains(t, string(result.Output), "mkdir -p build")
}

func TestApplyExcludesSafeWithAssumptionsByDefault(t *testing.T) {
	f := mustFile(t, "mkdir build\n")
	diags := lint(t, f)
	result, err := Apply(f, diags, ModeSafeOnly)
	require.NoError(t, err)
	assert.Equal(t, string(f.Data), string(result.Output))
}

func TestApplyResolvesOverlapByPriority(t *testing.T) {
	// grep $(echo pattern) file triggers both SC2116 (useless echo) and
	// SC2046 (unquoted command substitution as a direct arg) over the
	// identical span; SC2116 must win per the documented priority order.
	f := mustFile(t, "grep $(echo pattern) file\n")
	diags := lint(t, f)

	var sc2116, sc2046 bool
	for _, d := range diags {
		switch d.Code {
		case "SC2116":
			sc2116 = true
		case "SC2046":
			sc2046 = true
		}
	}
	require.True(t, sc2116)
	require.True(t, sc2046)

	result, err := Apply(f, diags, ModeSafeOnly)
	require.NoError(t, err)
	assert.Equal(t, "grep pattern file\n", string(result.Output))
}

func TestApplyIsDeterministicAcrossRuns(t *testing.T) {
	f := mustFile(t, "echo $x\nrm file\n")
	diags := lint(t, f)
	r1, err := Apply(f, diags, ModeSafeOnly)
	require.NoError(t, err)
	r2, err := Apply(f, diags, ModeSafeOnly)
	require.NoError(t, err)
	assert.Equal(t, string(r1.Output), string(r2.Output))
}

func TestApplyAndWriteBacksUpBeforeOverwriting(t *testing.T) {
	dir := t.TempDir()
	path := "script.sh"
	store, err := reportstore.NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	src := "echo $x\n"
	require.NoError(t, store.Write(ctx, path, []byte(src)))

	f := mustFile(t, src)
	diags := lint(t, f)
	result, err := Apply(f, diags, ModeSafeOnly)
	require.NoError(t, err)

	wr, err := ApplyAndWrite(ctx, store, path, result)
	require.NoError(t, err)
	require.NotEmpty(t, wr.BackupPath)

	backupData, err := store.Read(ctx, wr.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, src, string(backupData))

	newData, err := store.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "echo \"$x\"\n", string(newData))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // script.sh + its one backup, no temp-file leftovers
}

func TestApplyAndWriteSkipsWriteWhenNothingApplied(t *testing.T) {
	dir := t.TempDir()
	path := "script.sh"
	store, err := reportstore.NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	src := "eval \"$cmd\"\n"
	require.NoError(t, store.Write(ctx, path, []byte(src)))

	f := mustFile(t, src)
	diags := lint(t, f)
	result, err := Apply(f, diags, ModeSafeOnly)
	require.NoError(t, err)

	wr, err := ApplyAndWrite(ctx, store, path, result)
	require.NoError(t, err)
	assert.Empty(t, wr.BackupPath)
}
