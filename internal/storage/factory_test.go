package storage

import (
	"context"
	"testing"

	"gallery-go/internal/config"
)

func TestNewProviderFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{
			name:    "memory provider",
			cfg:     config.StorageConfig{Type: "memory"},
			wantErr: false,
		},
		{
			name:    "filesystem provider",
			cfg:     config.StorageConfig{Type: "filesystem", FSRoot: t.TempDir()},
			wantErr: false,
		},
		{
			name:    "filesystem provider without root",
			cfg:     config.StorageConfig{Type: "filesystem"},
			wantErr: true,
		},
		{
			name: "s3 provider",
			cfg: config.StorageConfig{
				Type:              "s3",
				S3Bucket:          "photos",
				S3Region:          "us-east-1",
				S3Endpoint:        "http://localhost:9000",
				S3AccessKeyID:     "minio",
				S3SecretAccessKey: "minio123",
				S3ForcePathStyle:  true,
			},
			wantErr: false,
		},
		{
			name:    "s3 provider without bucket",
			cfg:     config.StorageConfig{Type: "s3"},
			wantErr: true,
		},
		{
			name:    "unknown storage type",
			cfg:     config.StorageConfig{Type: "ftp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewProviderFromConfig(context.Background(), tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProviderFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != tt.wantErr {
				t.Errorf("NewProviderFromConfig() returned nil = %v, wantErr %v", got == nil, tt.wantErr)
			}
		})
	}
}
