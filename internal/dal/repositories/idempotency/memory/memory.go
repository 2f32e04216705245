package memoryrepo

import (
	"context"
	"sync"
)

// MemoryIdempotencyStore is an in-memory idempotency guard.
type MemoryIdempotencyStore struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		locks: make(map[string]struct{}),
	}
}

func (s *MemoryIdempotencyStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	full := scope + ":" + key
	if _, ok := s.locks[full]; ok {
		return false, nil
	}
	s.locks[full] = struct{}{}

	return true, nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.locks, scope+":"+key)

	return nil
}
