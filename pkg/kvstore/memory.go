package kvstore

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process memory. The limit applies to the total size of all keys and
// values, the way a browser storage area is budgeted.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]string
	limit int64
}

// NewMemoryStore returns an empty store; limit <= 0 disables the quota.
func NewMemoryStore(limit int64) *MemoryStore {
	return &MemoryStore{data: make(map[string]string), limit: limit}
}

// Get returns the stored value.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	return value, ok, nil
}

// Set stores value, failing with ErrQuotaExceeded when the store would grow past its limit.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	used := 0
	for k, v := range s.data {
		if k == key {
			continue
		}
		used += len(k) + len(v)
	}
	if exceeds(s.limit, used+len(key)+len(value)) {
		return ErrQuotaExceeded
	}
	s.data[key] = value
	return nil
}

// Remove deletes key if present.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
