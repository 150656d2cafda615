package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store intended for tests and examples.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	saves   int
}

type memoryRecord struct {
	entries Entries
	meta    Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}}
}

func (s *MemoryStore) Load(_ context.Context, group string) (Entries, Meta, bool, error) {
	if err := ValidateGroup(group); err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[group]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return cloneEntries(record.entries), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore) Save(_ context.Context, group string, entries Entries, meta Meta) (Meta, error) {
	if err := ValidateGroup(group); err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	s.records[group] = memoryRecord{entries: cloneEntries(entries), meta: cloneMeta(meta)}
	s.saves++
	s.mu.Unlock()
	return cloneMeta(meta), nil
}

// Groups returns the number of stored groups.
func (s *MemoryStore) Groups() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Saves returns how many Save calls succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
