package pathenv

import "sync"

// MemoryStore is a Store backed by a map. It counts writes so callers can
// assert that a no-op run did not touch the store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	writes int
	// GetErr and SetErr, when set, are returned instead of touching the map.
	GetErr error
	SetErr error
}

func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: map[string]string{}}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *MemoryStore) Get(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", m.GetErr
	}
	return m.values[name], nil
}

func (m *MemoryStore) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[name] = value
	m.writes++
	return nil
}

func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
