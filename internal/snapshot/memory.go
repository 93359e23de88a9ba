package snapshot

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps snapshots in memory for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// PutSnapshot stores the markup and returns a memory:// URI.
func (s *MemoryStore) PutSnapshot(_ context.Context, path string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[path] = append([]byte(nil), data...)
	return fmt.Sprintf("memory://%s", path), nil
}

// Get returns the stored markup for a path (testing helper).
func (s *MemoryStore) Get(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[path]
	return data, ok
}

// NoOpStore discards snapshots. It is the default provider.
type NoOpStore struct{}

// PutSnapshot does nothing and returns an empty URI.
func (NoOpStore) PutSnapshot(_ context.Context, _ string, _ []byte) (string, error) {
	return "", nil
}
