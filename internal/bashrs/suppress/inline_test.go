package suppress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInlinePerLineDirective(t *testing.T) {
	src := "echo hi\n# shellcheck disable=SC2086\necho $x\n"
	in := ParseInline([]byte(src))
	assert.True(t, in.Suppressed("SC2086", 3))
	assert.False(t, in.Suppressed("SC2046", 3))
	assert.False(t, in.Suppressed("SC2086", 1))
}

func TestParseInlineMultipleCodes(t *testing.T) {
	src := "# shellcheck disable=SC2086,SC2046\necho $(cat $f)\n"
	in := ParseInline([]byte(src))
	assert.True(t, in.Suppressed("SC2086", 2))
	assert.True(t, in.Suppressed("SC2046", 2))
}

func TestParseInlineFileWideDirective(t *testing.T) {
	src := "# shellcheck disable=SC2086\necho $x\necho $y\n"
	in := ParseInline([]byte(src))
	assert.True(t, in.Suppressed("SC2086", 2))
	assert.True(t, in.Suppressed("SC2086", 3))
}

func TestParseInlineIgnoresNonShellcheckComment(t *testing.T) {
	src := "# disable=SC2086\necho $x\n"
	in := ParseInline([]byte(src))
	assert.False(t, in.Suppressed("SC2086", 2))
}

func TestParseInlineToleratesWhitespace(t *testing.T) {
	src := "#   shellcheck   disable=SC2086\necho $x\n"
	in := ParseInline([]byte(src))
	assert.True(t, in.Suppressed("SC2086", 2))
}

func TestSuppressedOnNilInline(t *testing.T) {
	var in *Inline
	assert.False(t, in.Suppressed("SC2086", 1))
}
