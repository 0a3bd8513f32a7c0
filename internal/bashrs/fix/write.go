package fix

import (
	"context"

	"github.com/paiml/bashrs/pkg/reportstore"
)

// WriteResult is what ApplyAndWrite reports back about the on-disk write,
// on top of the in-memory Result.
type WriteResult struct {
	*Result
	BackupPath string
}

// ApplyAndWrite applies fixes and, if any survived (Transformations > 0),
// persists the result to path via s: back up the current contents first
// (spec.md §4.I step 6), then overwrite. s is expected to write
// atomically (pkg/reportstore.LocalStorage does, via renameio); no partial
// write is ever visible at path.
func ApplyAndWrite(ctx context.Context, s reportstore.Storage, path string, result *Result) (*WriteResult, error) {
	if result.Transformations == 0 {
		return &WriteResult{Result: result}, nil
	}
	backupPath, err := reportstore.Backup(ctx, s, path)
	if err != nil {
		return nil, err
	}
	if err := s.Write(ctx, path, result.Output); err != nil {
		return nil, err
	}
	return &WriteResult{Result: result, BackupPath: backupPath}, nil
}
