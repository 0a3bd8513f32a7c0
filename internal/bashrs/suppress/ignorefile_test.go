package suppress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIgnoreFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".bashrsignore"), []byte(content), 0o644))
}

func TestIgnoreFileBasicMatch(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "vendor/\n*.generated.sh\n")
	ig, err := ParseIgnoreFile(dir, filepath.Join(dir, ".bashrsignore"))
	require.NoError(t, err)

	assert.True(t, ig.Match(filepath.Join(dir, "vendor")))
	assert.True(t, ig.Match(filepath.Join(dir, "foo.generated.sh")))
	assert.False(t, ig.Match(filepath.Join(dir, "foo.sh")))
}

func TestIgnoreFileReinclude(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "*.sh\n!keep.sh\n")
	ig, err := ParseIgnoreFile(dir, filepath.Join(dir, ".bashrsignore"))
	require.NoError(t, err)

	assert.True(t, ig.Match(filepath.Join(dir, "drop.sh")))
	assert.False(t, ig.Match(filepath.Join(dir, "keep.sh")))
}

func TestIgnoreFileCommentsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "# this comment should not match anything\n*.log\n")
	ig, err := ParseIgnoreFile(dir, filepath.Join(dir, ".bashrsignore"))
	require.NoError(t, err)
	assert.False(t, ig.Match(filepath.Join(dir, "this comment should not match anything")))
	assert.True(t, ig.Match(filepath.Join(dir, "out.log")))
}

func TestFindUpwardFindsClosest(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeIgnoreFile(t, root, "*.tmp\n")
	writeIgnoreFile(t, sub, "*.sh\n")

	ig, err := FindUpward(sub)
	require.NoError(t, err)
	require.NotNil(t, ig)
	assert.Equal(t, sub, ig.Dir)
}

func TestFindUpwardNoneFound(t *testing.T) {
	root := t.TempDir()
	ig, err := FindUpward(root)
	require.NoError(t, err)
	assert.Nil(t, ig)
}
