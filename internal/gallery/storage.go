package gallery

import (
	"context"
	"time"
)

// StorageObject is the canonical form of one entry in a storage listing.
// Optional fields are nil when the backend did not report them.
type StorageObject struct {
	Key          string
	LastModified *time.Time
	ETag         *string
	Size         *int64
	StorageClass *string
}

// ETagValue returns the ETag or "" when absent.
func (o StorageObject) ETagValue() string {
	if o.ETag == nil {
		return ""
	}
	return *o.ETag
}

// SizeValue returns the size or 0 when absent.
func (o StorageObject) SizeValue() int64 {
	if o.Size == nil {
		return 0
	}
	return *o.Size
}

// StorageProvider lists photo objects from a storage backend.
type StorageProvider interface {
	// ListObjects returns every object whose key starts with prefix, in the
	// backend's listing order. Implementations follow continuation tokens.
	ListObjects(ctx context.Context, prefix string) ([]StorageObject, error)

	// ValidateSetup verifies that the backend is reachable and configured.
	ValidateSetup(ctx context.Context) error
}
