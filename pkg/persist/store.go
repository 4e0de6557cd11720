// Package persist saves the latest tracked value to a blob store whenever
// it changes, via a listener registered on the tracker.
package persist

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Load when no snapshot exists under the key.
var ErrNotFound = errors.New("persist: snapshot not found")

// Store is a keyed blob store for value snapshots.
type Store interface {
	// Save writes data under key, replacing any previous snapshot.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the snapshot stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
}

// MemStore is an in-memory Store for tests and single-process use.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		data: make(map[string][]byte),
	}
}

// Save stores a copy of data under key.
func (s *MemStore) Save(ctx context.Context, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = cp
	return nil
}

// Load returns a copy of the snapshot stored under key.
func (s *MemStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}
