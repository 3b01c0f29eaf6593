package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gallery-go/internal/gallery"
)

// ErrInjected is returned by MemoryProvider while failures are pending.
var ErrInjected = errors.New("injected listing failure")

// MemoryProvider is an in-memory StorageProvider, useful for testing.
// This implementation is safe for concurrent use.
type MemoryProvider struct {
	mu       sync.Mutex
	objects  map[string]gallery.StorageObject
	failures int
	calls    int
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{objects: make(map[string]gallery.StorageObject)}
}

// Put stores an object with the given content fingerprint. The ETag is quoted
// the way S3 returns it and sanitized on the way in.
func (m *MemoryProvider) Put(key, etag string, size int64, modified time.Time) {
	quoted := `"` + etag + `"`
	mod := modified.UTC()
	m.PutObject(gallery.StorageObject{
		Key:          key,
		LastModified: &mod,
		ETag:         SanitizeETag(&quoted),
		Size:         &size,
	})
}

// PutObject stores obj as is.
func (m *MemoryProvider) PutObject(obj gallery.StorageObject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[obj.Key] = obj
}

// Delete removes the object with the given key.
func (m *MemoryProvider) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
}

// FailNext makes the next n ListObjects calls return ErrInjected.
func (m *MemoryProvider) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

// Calls returns how many times ListObjects has been called.
func (m *MemoryProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ListObjects returns the stored objects under prefix, sorted by key.
func (m *MemoryProvider) ListObjects(ctx context.Context, prefix string) ([]gallery.StorageObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.failures > 0 {
		m.failures--
		return nil, ErrInjected
	}

	var out []gallery.StorageObject
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ValidateSetup always succeeds for the in-memory provider.
func (m *MemoryProvider) ValidateSetup(context.Context) error {
	return nil
}

// Compile-time check that MemoryProvider implements gallery.StorageProvider
var _ gallery.StorageProvider = (*MemoryProvider)(nil)
