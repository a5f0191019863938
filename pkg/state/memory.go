package state

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps entries in a map. Values are copied in and out.
type MemoryStore struct {
	items  map[string][]byte
	mu     sync.RWMutex
	closed bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (ms *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return nil, ErrStoreClosed
	}
	value, ok := ms.items[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return slices.Clone(value), nil
}

func (ms *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return ErrStoreClosed
	}
	ms.items[key] = append([]byte{}, value...)
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return ErrStoreClosed
	}
	delete(ms.items, key)
	return nil
}

// Close makes later calls fail with ErrStoreClosed. It is idempotent.
func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.closed = true
	return nil
}

// Len returns the number of entries.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.items)
}

// Snapshot copies every entry.
func (ms *MemoryStore) Snapshot() map[string][]byte {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	snapshot := make(map[string][]byte, len(ms.items))
	for key, value := range ms.items {
		snapshot[key] = slices.Clone(value)
	}
	return snapshot
}

// Restore replaces the contents with snapshot.
func (ms *MemoryStore) Restore(snapshot map[string][]byte) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items = make(map[string][]byte, len(snapshot))
	for key, value := range snapshot {
		ms.items[key] = slices.Clone(value)
	}
}
