package store

import (
	"bytes"
	"context"
	"sync"

	"gallery-go/internal/gallery"
	"gallery-go/internal/manifest"
)

// MemoryStore keeps the encoded manifest in memory, useful for testing.
// It stores bytes rather than the document so loads see what a real store
// would return. This implementation is safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SetRaw replaces the stored bytes, e.g. with a malformed or old manifest.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte{}, data...)
}

// Raw returns a copy of the stored bytes.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte{}, m.data...)
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryStore) Load(_ context.Context) (*manifest.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return manifest.Decode(bytes.NewReader(m.data))
}

func (m *MemoryStore) Save(_ context.Context, doc *manifest.Document) error {
	var buf bytes.Buffer
	if err := manifest.Encode(&buf, doc); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = buf.Bytes()
	m.saves++
	return nil
}

func (m *MemoryStore) Location() string {
	return "memory"
}

// Compile-time check that MemoryStore implements gallery.ManifestStore
var _ gallery.ManifestStore = (*MemoryStore)(nil)
