package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gallery-go/internal/gallery"
)

const localStorageClass = "LOCAL"

// FileSystemProvider lists photos from a local directory. Keys are
// slash-separated paths relative to the root. ETags are the hex MD5 of the
// file content, like S3 single-part uploads.
type FileSystemProvider struct {
	root string
}

// NewFileSystemProvider creates a provider rooted at root.
func NewFileSystemProvider(root string) *FileSystemProvider {
	return &FileSystemProvider{root: root}
}

// ListObjects walks the root and returns regular files under prefix, sorted by key.
func (p *FileSystemProvider) ListObjects(ctx context.Context, prefix string) ([]gallery.StorageObject, error) {
	var objects []gallery.StorageObject

	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(p.root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		obj, err := p.stat(path, key)
		if err != nil {
			return err
		}
		objects = append(objects, obj)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", p.root, err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (p *FileSystemProvider) stat(path, key string) (gallery.StorageObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return gallery.StorageObject{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return gallery.StorageObject{}, fmt.Errorf("stat %s: %w", path, err)
	}

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return gallery.StorageObject{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	quoted := `"` + hex.EncodeToString(h.Sum(nil)) + `"`

	modTime := info.ModTime().UTC()
	size := info.Size()
	class := localStorageClass
	return gallery.StorageObject{
		Key:          key,
		LastModified: &modTime,
		ETag:         SanitizeETag(&quoted),
		Size:         &size,
		StorageClass: &class,
	}, nil
}

// ValidateSetup checks that the root exists and is a directory.
func (p *FileSystemProvider) ValidateSetup(_ context.Context) error {
	info, err := os.Stat(p.root)
	if err != nil {
		return fmt.Errorf("storage root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage root is not a directory: %s", p.root)
	}
	return nil
}

// Compile-time check that FileSystemProvider implements gallery.StorageProvider
var _ gallery.StorageProvider = (*FileSystemProvider)(nil)
