package storage

import (
	"sync"
)

// MemoryStorage is the in-process backend. A single instance shared by
// several mock backends plays the role of one browser's storage area
// shared by its tabs; watch callbacks are the storage-change events.
type MemoryStorage struct {
	mu       sync.RWMutex
	data     map[string]string
	watchers map[string]map[int]func(string)
	nextID   int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data:     make(map[string]string),
		watchers: make(map[string]map[int]func(string)),
	}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	old, existed := m.data[key]
	if existed && old == value {
		m.mu.Unlock()
		return nil
	}
	m.data[key] = value
	fns := make([]func(string), 0, len(m.watchers[key]))
	for _, fn := range m.watchers[key] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	// Watchers run synchronously on the writer's goroutine, mirroring
	// how storage events dispatch. They must stay cheap.
	for _, fn := range fns {
		fn(value)
	}
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStorage) Watch(key string, fn func(string)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watchers[key] == nil {
		m.watchers[key] = make(map[int]func(string))
	}
	id := m.nextID
	m.nextID++
	m.watchers[key][id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers[key], id)
	}
}

// Len reports the number of stored keys. Used by tests to check that
// transient sync keys get cleaned up.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
