package storage

import (
	"context"
	"fmt"

	"gallery-go/internal/config"
	"gallery-go/internal/gallery"
)

// NewProviderFromConfig creates a StorageProvider based on the storage config type.
func NewProviderFromConfig(ctx context.Context, cfg config.StorageConfig) (gallery.StorageProvider, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryProvider(), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires s3_bucket to be set")
		}
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Provider(client, cfg.S3Bucket), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem storage requires fs_root to be set")
		}
		return NewFileSystemProvider(cfg.FSRoot), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
