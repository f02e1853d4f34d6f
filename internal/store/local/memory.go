package local

import (
	"context"
	"sync"
)

// MemoryBlobs keeps blobs in a map. Contents are lost on exit.
type MemoryBlobs struct {
	mu    sync.RWMutex
	blobs map[string]string
}

// NewMemoryBlobs creates an empty in-memory blob area.
func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{blobs: make(map[string]string)}
}

func (m *MemoryBlobs) ReadBlob(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.blobs[key]
	return v, ok, nil
}

func (m *MemoryBlobs) WriteBlob(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = value
	return nil
}

func (m *MemoryBlobs) RemoveKeys(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.blobs, key)
	}
	return nil
}

// Len returns the number of stored blobs.
func (m *MemoryBlobs) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blobs)
}
