// Package store persists the manifest document between builds.
package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gallery-go/internal/gallery"
	"gallery-go/internal/manifest"
)

// FileSystemStore keeps the manifest in a single JSON file.
type FileSystemStore struct {
	path string
}

// NewFileSystemStore creates a store writing to path.
func NewFileSystemStore(path string) *FileSystemStore {
	return &FileSystemStore{path: path}
}

// Load reads the manifest file. A missing file yields nil, nil.
func (s *FileSystemStore) Load(_ context.Context) (*manifest.Document, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	doc, err := manifest.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return doc, nil
}

// Save writes the manifest using an atomic write (temp file + rename).
func (s *FileSystemStore) Save(_ context.Context, doc *manifest.Document) error {
	var buf bytes.Buffer
	if err := manifest.Encode(&buf, doc); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	return writeFile(s.path, &buf, int64(buf.Len()))
}

// Location returns the manifest file path.
func (s *FileSystemStore) Location() string {
	return s.path
}

// writeFile writes data from r to destPath via a temp file in the same
// directory so readers never see a partial manifest.
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements gallery.ManifestStore
var _ gallery.ManifestStore = (*FileSystemStore)(nil)
