package store

import (
	"sort"
	"sync"
)

// MemoryStore keeps everything in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[int64]Resource
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[int64]Resource),
	}
}

func (m *MemoryStore) Create(id int64, r Resource) (Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = r
	return r, nil
}

func (m *MemoryStore) Get(id int64) (Resource, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[id]
	return r, ok, nil
}

func (m *MemoryStore) Update(id int64, r Resource) (Resource, error) {
	return m.Create(id, r)
}

func (m *MemoryStore) Replace(id int64, r Resource) (Resource, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return Resource{}, false, nil
	}
	m.items[id] = r
	return r, true, nil
}

func (m *MemoryStore) Delete(id int64) (Resource, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return Resource{}, false, nil
	}
	delete(m.items, id)
	return r, true, nil
}

func (m *MemoryStore) List() ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]Item, 0, len(m.items))
	for id, r := range m.items {
		result = append(result, Item{ID: id, Resource: r})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MemoryStore) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}
