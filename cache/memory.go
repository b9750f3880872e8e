package cache

import (
	"context"
	"sync"
	"time"

	"github.com/RoyXiang/posterbot/media"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local store for development and tests. Entries
// are serialized on write so readers never share a record with the writer.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (s *MemoryStore) Put(_ context.Context, id string, record *media.Record, ttl time.Duration) error {
	b, err := encode(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.entries[Key(id)] = memoryEntry{value: b, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*media.Record, error) {
	s.mu.RLock()
	entry, ok := s.entries[Key(id)]
	s.mu.RUnlock()

	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrNotFound
	}
	return decode(entry.value)
}

func (s *MemoryStore) Close() error {
	return nil
}

// sweep drops expired entries. Callers hold the write lock.
func (s *MemoryStore) sweep() {
	now := s.now()
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}
