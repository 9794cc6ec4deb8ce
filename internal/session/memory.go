package session

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	recs map[string]Record
}

// NewMemoryStore returns a process-local Store. Used in tests and
// single-node development runs; records never expire.
func NewMemoryStore() Store {
	return &memoryStore{recs: make(map[string]Record)}
}

func (s *memoryStore) Save(_ context.Context, key string, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[key] = *rec
	return nil
}

func (s *memoryStore) Load(_ context.Context, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := rec
	return &out, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, key)
	return nil
}
