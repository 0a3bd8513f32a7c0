package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/paiml/bashrs/pkg/reportstore"
)

// Config is the BASHRS_-prefixed environment layer for batch-run tuning,
// grounded on kazz187-taskguild/backend/internal/config.Env's
// envconfig.Process pattern. Run uses Workers only when
// Options.Workers <= 0; FileTimeout is loaded but not read by Run, which
// takes its per-file timeout from Options.FileTimeout alone.
type Config struct {
	Workers     int           `envconfig:"WORKERS" default:"0"`
	FileTimeout time.Duration `envconfig:"FILE_TIMEOUT" default:"30s"`

	// StorageBackend selects where fix/purify backups and mirrored
	// reports land: "local" (default) or "s3", the same two-backend
	// split as kazz187-taskguild/backend/pkg/storage.
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"local"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3Prefix       string `envconfig:"S3_PREFIX"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
}

const namespace = "BASHRS"

// LoadConfig reads Config from the environment, substituting a
// GOMAXPROCS-sized worker count when BASHRS_WORKERS is unset or zero.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(namespace, &cfg); err != nil {
		return Config{}, fmt.Errorf("driver: loading config: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return cfg, nil
}

// NewStorage builds the reportstore.Storage cfg.StorageBackend selects.
// "s3" requires BASHRS_S3_BUCKET; everything else (including the unset
// default) falls back to a LocalStorage rooted at "/", so absolute paths
// resolve unchanged on disk.
func (cfg Config) NewStorage(ctx context.Context) (reportstore.Storage, error) {
	switch cfg.StorageBackend {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("driver: BASHRS_S3_BUCKET is required when BASHRS_STORAGE_BACKEND=s3")
		}
		return reportstore.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
	default:
		return reportstore.NewLocalStorage("/")
	}
}
