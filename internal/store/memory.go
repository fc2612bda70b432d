package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore keeps everything in process memory. Lists never expire.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	lists   map[string][][]byte
	members map[string]map[string]struct{}
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		lists:   make(map[string][][]byte),
		members: make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

// load returns the live value of key. Callers hold mu.
func (s *MemoryStore) load(key string) ([]byte, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.load(key)
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{value: clone(value)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	delete(s.lists, key)
	delete(s.members, key)
	return nil
}

func (s *MemoryStore) AppendUnique(_ context.Context, key, member string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen, ok := s.members[key]
	if !ok {
		seen = make(map[string]struct{})
		s.members[key] = seen
	}
	if _, dup := seen[member]; dup {
		return false, nil
	}
	seen[member] = struct{}{}
	s.lists[key] = append(s.lists[key], clone(value))
	return true, nil
}

func (s *MemoryStore) List(_ context.Context, key string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	out := make([][]byte, len(list))
	for i, v := range list {
		out[i] = clone(v)
	}
	return out, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
