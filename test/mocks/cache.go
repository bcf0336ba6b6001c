// Package mocks holds hand-written test doubles shared across packages.
package mocks

import (
	"context"
	"sync"
	"time"
)

// MockCache is an in-memory stand-in for the Redis cache. Expirations are
// ignored; tests that care about TTL use miniredis instead.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	GetCalls int
	SetCalls int
	DelCalls int
}

// NewMockCache creates an empty mock cache.
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]string)}
}

// Get returns the stored value, or an empty string for a missing key the
// same way the Redis client does.
func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	return m.data[key], nil
}

// Set stores a value. String and byte-slice values are kept verbatim;
// anything else is dropped silently.
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++

	switch v := value.(type) {
	case string:
		m.data[key] = v
	case []byte:
		m.data[key] = string(v)
	}
	return nil
}

// Del removes keys.
func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DelCalls++

	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Exists counts how many of the given keys are present.
func (m *MockCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
	}
	return n, nil
}
