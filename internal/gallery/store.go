package gallery

import (
	"context"

	"gallery-go/internal/manifest"
)

// ManifestStore persists the manifest between builds.
type ManifestStore interface {
	// Load returns the stored manifest, or nil with no error when nothing has
	// been stored yet. Malformed content is reported with manifest.ErrMalformed.
	Load(ctx context.Context) (*manifest.Document, error)

	// Save replaces the stored manifest.
	Save(ctx context.Context, doc *manifest.Document) error

	// Location describes where the manifest lives, for logs and CLI output.
	Location() string
}
