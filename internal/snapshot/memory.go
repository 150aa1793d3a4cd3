package snapshot

import (
	"context"
	"sync"
)

// MemoryStore keeps the snapshot in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	kv    map[string][]byte
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{kv: map[string][]byte{}}
}

func (m *MemoryStore) Save(_ context.Context, kv map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv = copyKV(kv)
	m.saves++
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyKV(m.kv), nil
}

// Saves reports how many snapshots have been written.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryStore) Close() error { return nil }
