// Package repository implements the key-value stores that persist wrapped device
// secrets and sealed master keys.
//
// Every store exposes the same two operations, Get and Put, addressed by namespace and
// key. Get returns deviceDomain.ErrKeyNotFound when the key is absent; any other error
// is an I/O failure. Stores that can write several keys at once also implement PutAll.
//
// # Available Stores
//
//   - MemoryStore: process memory, for tests and ephemeral use
//   - FileStore: one file per key under a base directory
//   - PostgreSQLStore / MySQLStore: kv_entries table, PutAll runs in a transaction
//   - RedisStore: one hash per namespace, PutAll is a single HSET
//   - S3Store: one object per key under an optional prefix
//
// Stored values are opaque bytes. Stores never interpret or log them.
package repository

import (
	"bytes"
	"context"
	"sync"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

// MemoryStore keeps values in a map. Values are copied on the way in and out so callers
// can zero their buffers freely.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

// Get returns a copy of the value stored under namespace/key.
func (m *MemoryStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[namespace][key]
	if !ok {
		return nil, deviceDomain.ErrKeyNotFound
	}
	return bytes.Clone(value), nil
}

// Put stores a copy of value under namespace/key.
func (m *MemoryStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(namespace, key, value)
	return nil
}

// PutAll stores every entry of values under namespace in one critical section.
func (m *MemoryStore) PutAll(ctx context.Context, namespace string, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, value := range values {
		m.put(namespace, key, value)
	}
	return nil
}

// Delete removes namespace/key. Deleting a missing key is a no-op.
func (m *MemoryStore) Delete(ctx context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data[namespace], key)
	return nil
}

func (m *MemoryStore) put(namespace, key string, value []byte) {
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		m.data[namespace] = ns
	}
	ns[key] = bytes.Clone(value)
}
