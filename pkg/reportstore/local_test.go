package reportstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLocalStorageWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.Write(ctx, "a/b.sh.bak", []byte("echo hi\n")))
	data, err := s.Read(ctx, "a/b.sh.bak")
	require.NoError(t, err)
	assert.Equal(t, "echo hi\n", string(data))
}

func TestLocalStorageReadMissingReturnsErrNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.Read(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageExists(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	ok, err := s.Exists(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "x", []byte("1")))
	ok, err = s.Exists(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStorageDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.Write(ctx, "x", []byte("1")))
	require.NoError(t, s.Delete(ctx, "x"))
	_, err := s.Read(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageList(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.Write(ctx, "reports/a.json", []byte("{}")))
	require.NoError(t, s.Write(ctx, "reports/b.json", []byte("{}")))

	paths, err := s.List(ctx, "reports")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"reports/a.json", "reports/b.json"}, paths)
}

func TestLocalStorageWriteIsAtomic(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "f.sh", []byte("one")))
	require.NoError(t, s.Write(ctx, "f.sh", []byte("two")))

	entries, err := os.ReadDir(filepath.Join(dir))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no leftover temp files after a successful rename")

	data, err := s.Read(ctx, "f.sh")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestBackupPathIsUnique(t *testing.T) {
	a := BackupPath("foo.sh")
	b := BackupPath("foo.sh")
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "foo.sh.")
	assert.Contains(t, a, ".bak")
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.Write(ctx, "f.sh", []byte("original")))

	backupPath, err := Backup(ctx, s, "f.sh")
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "f.sh", []byte("modified")))

	data, err := s.Read(ctx, backupPath)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}
