package diag

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

func TestSortOrdersByLineColumnCode(t *testing.T) {
	f := mustFile(t, "echo $x\necho $y\n")
	a := New(f, "SC2086", Warning, "a", source.NewSpan(13, 15))
	b := New(f, "SC2086", Warning, "b", source.NewSpan(5, 7))
	c := New(f, "SC2046", Warning, "c", source.NewSpan(5, 7))
	diags := []Diagnostic{a, b, c}
	Sort(diags)
	assert.Equal(t, "SC2046", diags[0].Code)
	assert.Equal(t, "SC2086", diags[1].Code)
	assert.Equal(t, "SC2086", diags[2].Code)
	assert.Equal(t, 1, diags[0].Position().Line)
	assert.Equal(t, 2, diags[2].Position().Line)
}

func TestWorstSeverityPicksMostSevere(t *testing.T) {
	f := mustFile(t, "x\n")
	diags := []Diagnostic{
		New(f, "X1", Note, "n", source.NewSpan(0, 1)),
		New(f, "X2", Error, "e", source.NewSpan(0, 1)),
		New(f, "X3", Warning, "w", source.NewSpan(0, 1)),
	}
	worst, ok := WorstSeverity(diags)
	require.True(t, ok)
	assert.Equal(t, Error, worst)
}

func TestWorstSeverityEmpty(t *testing.T) {
	_, ok := WorstSeverity(nil)
	assert.False(t, ok)
}

func TestWithFixAndHelpTopics(t *testing.T) {
	f := mustFile(t, "echo $x\n")
	d := New(f, "SC2086", Warning, "unquoted variable", source.NewSpan(5, 7))
	d = d.WithFix(Fix{
		Replacement: `"$x"`,
		Span:        source.NewSpan(5, 7),
		Safety:      Safe,
		Priority:    10,
		RuleCode:    "SC2086",
	})
	d = d.WithHelpTopics("quoting")
	require.NotNil(t, d.Fix)
	assert.Equal(t, `"$x"`, d.Fix.Replacement)
	assert.Equal(t, Safe, d.Fix.Safety)
	assert.Equal(t, []string{"quoting"}, d.HelpTopics)
}

func TestSourceContextUnboundDiagnostic(t *testing.T) {
	d := Diagnostic{Code: "X", Span: source.NewSpan(0, 1)}
	assert.Equal(t, "", d.SourceContext(2))
	assert.Equal(t, 1, d.Position().Line)
}

func TestSeverityStrings(t *testing.T) {
	cases := []struct {
		sev  Severity
		want string
	}{
		{Error, "error"}, {Warning, "warning"}, {Risk, "risk"},
		{Perf, "perf"}, {Info, "info"}, {Note, "note"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.sev.String())
	}
}

func TestFixSafetyStrings(t *testing.T) {
	assert.Equal(t, "safe", Safe.String())
	assert.Equal(t, "safe-with-assumptions", SafeWithAssumptions.String())
	assert.Equal(t, "unsafe", Unsafe.String())
}
