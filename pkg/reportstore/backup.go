package reportstore

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// BackupPath returns a ULID-suffixed sibling of path, so that concurrent
// fix-applicator workers backing up the same file (a rare but real
// possibility when a later config override re-processes a path the driver
// already finished) never collide on the same backup name.
func BackupPath(path string) string {
	return fmt.Sprintf("%s.%s.bak", path, ulid.Make().String())
}

// Backup reads the current contents at path and writes them back under a
// fresh BackupPath, returning that path. Used by internal/bashrs/fix before
// splicing any Fix into a file in-place.
func Backup(ctx context.Context, s Storage, path string) (string, error) {
	data, err := s.Read(ctx, path)
	if err != nil {
		return "", err
	}
	backupPath := BackupPath(path)
	if err := s.Write(ctx, backupPath, data); err != nil {
		return "", err
	}
	return backupPath, nil
}
