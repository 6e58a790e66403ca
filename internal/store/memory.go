package store

import (
	"sort"
	"strings"
	"sync"
)

// Memory is a process-local backend for tests and dev configs.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) Put(key, value string) error {
	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	value, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(prefix string) ([]string, error) {
	m.mu.RLock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error {
	return nil
}
