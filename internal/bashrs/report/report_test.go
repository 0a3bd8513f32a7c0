package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

func sampleDiagnostic(t *testing.T) diag.Diagnostic {
	t.Helper()
	f, err := source.New("deploy.sh", []byte("#!/bin/bash\necho $var\n"))
	require.NoError(t, err)
	span := source.NewSpan(17, 21) // "$var"
	d := diag.New(f, "SC2086", diag.Warning, "Double-quote to prevent globbing and word splitting.", span)
	return d.WithFix(diag.Fix{
		Replacement: `"$var"`,
		Span:        span,
		Safety:      diag.Safe,
		Priority:    10,
		RuleCode:    "SC2086",
	})
}

func TestWriteHumanIncludesCodeMessageAndUnderline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHuman(&buf, []diag.Diagnostic{sampleDiagnostic(t)}, false))
	out := buf.String()
	assert.Contains(t, out, "deploy.sh:2:6:")
	assert.Contains(t, out, "SC2086")
	assert.Contains(t, out, "Double-quote")
	assert.Contains(t, out, "^^^")
	assert.Contains(t, out, `fix (safe): "$var"`)
}

func TestWriteJSONMatchesPinnedFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []diag.Diagnostic{sampleDiagnostic(t)}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	entry := decoded[0]
	for _, key := range []string{"code", "severity", "message", "path", "line", "column", "end_line", "end_column", "fix"} {
		assert.Contains(t, entry, key)
	}
	assert.Equal(t, "SC2086", entry["code"])
	assert.Equal(t, "warning", entry["severity"])
	fix, ok := entry["fix"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, `"$var"`, fix["replacement"])
	assert.Equal(t, "safe", fix["safety"])
}

func TestWriteJSONOmitsFixWhenNil(t *testing.T) {
	f, err := source.New("x.sh", []byte("echo hi\n"))
	require.NoError(t, err)
	d := diag.New(f, "SC2059", diag.Error, "no fix here", source.NewSpan(0, 4))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []diag.Diagnostic{d}))
	assert.NotContains(t, buf.String(), `"fix"`)
}

func TestWriteSARIFProducesOneRuleAndResultPerDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, "bashrs", []diag.Diagnostic{sampleDiagnostic(t)}))

	var log map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	assert.Equal(t, "2.1.0", log["version"])
	runs := log["runs"].([]any)
	require.Len(t, runs, 1)
	run := runs[0].(map[string]any)
	results := run["results"].([]any)
	require.Len(t, results, 1)
	result := results[0].(map[string]any)
	assert.Equal(t, "SC2086", result["ruleId"])
	assert.Equal(t, "warning", result["level"])
}

func TestWriteMarkdownDiffFencesAsDiffBlock(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdownDiff(&buf, "Makefile", []byte("build:\n\tmkdir out\n"), []byte("build:\n\tmkdir -p out\n")))
	out := buf.String()
	assert.True(t, len(out) > 0)
	assert.Contains(t, out, "```diff")
	assert.Contains(t, out, "-\tmkdir out")
	assert.Contains(t, out, "+\tmkdir -p out")
}

func TestParseFormatDefaultsToHumanOnUnknownString(t *testing.T) {
	assert.Equal(t, JSON, ParseFormat("json"))
	assert.Equal(t, SARIF, ParseFormat("sarif"))
	assert.Equal(t, Markdown, ParseFormat("markdown"))
	assert.Equal(t, Human, ParseFormat("nonsense"))
}
