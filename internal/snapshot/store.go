// Package snapshot keeps a client-local copy of the open document for crash
// recovery. The copy is a cache: it never wins over a successful load.
package snapshot

import (
	"context"
	"errors"
	"sync"
)

// DefaultKey is the single key the snapshot is stored under.
const DefaultKey = "resume_builder_data"

// ErrNotFound is returned by Load when no snapshot exists under the key.
var ErrNotFound = errors.New("snapshot not found")

// Store is a minimal durable key/value store.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
