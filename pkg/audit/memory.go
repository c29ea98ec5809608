package audit

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
	closed  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Store implements Store.
func (m *MemoryStore) Store(_ context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewStoreError("memory", "store", errStoreClosed)
	}
	clone := *entry
	m.entries = append(m.entries, &clone)
	return nil
}

// Query implements Store.
func (m *MemoryStore) Query(_ context.Context, q *Query) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, NewStoreError("memory", "query", errStoreClosed)
	}
	out := q.apply(m.entries)
	for i, e := range out {
		clone := *e
		out[i] = &clone
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context, q *Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, NewStoreError("memory", "count", errStoreClosed)
	}
	var n int64
	for _, e := range m.entries {
		if q.Matches(e) {
			n++
		}
	}
	return n, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
