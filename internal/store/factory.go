package store

import (
	"context"
	"fmt"

	"gallery-go/internal/config"
	"gallery-go/internal/gallery"
	"gallery-go/internal/storage"
)

// NewStoreFromConfig creates a ManifestStore based on the manifest config type.
// The s3 store lives in the storage bucket and reuses its connection settings.
func NewStoreFromConfig(ctx context.Context, cfg config.ManifestConfig, storageCfg config.StorageConfig) (gallery.ManifestStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Path == "" {
			return nil, fmt.Errorf("filesystem manifest requires path to be set")
		}
		return NewFileSystemStore(cfg.Path), nil
	case "s3":
		if cfg.S3Key == "" {
			return nil, fmt.Errorf("s3 manifest requires s3_key to be set")
		}
		if storageCfg.Type != "s3" || storageCfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 manifest requires s3 storage with s3_bucket set")
		}
		client, err := storage.NewS3Client(ctx, storageCfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, storageCfg.S3Bucket, cfg.S3Key), nil
	default:
		return nil, fmt.Errorf("unknown manifest type: %s", cfg.Type)
	}
}
