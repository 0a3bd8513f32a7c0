// Package reportstore persists purify backups and lint reports, mirroring
// kazz187-taskguild's pkg/storage Local/S3 pair: one interface, two
// backends selected by configuration, each doing the concern its medium
// needs (atomic rename locally, a plain PUT to an object store remotely).
package reportstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested path does not exist in storage.
var ErrNotFound = errors.New("reportstore: not found")

// Storage abstracts over where purify backups (internal/bashrs/fix) and rendered
// reports (internal/bashrs/report) are written.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}
