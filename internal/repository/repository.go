package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound sentinel
var ErrNotFound = errors.New("not found")

// BlobStore keeps opaque values under string keys.
type BlobStore interface {
	// Get returns ErrNotFound when key was never written.
	Get(ctx context.Context, key string) ([]byte, error)
	// Update replaces the value under key with fn(old) atomically with
	// respect to other Update calls on the same store. old is nil when the
	// key is absent. An error from fn aborts without writing.
	Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var old []byte
	if v, ok := m.data[key]; ok {
		old = append([]byte(nil), v...)
	}
	next, err := fn(old)
	if err != nil {
		return err
	}
	m.data[key] = append([]byte(nil), next...)
	return nil
}
