package kv

import "sync"

// Memory is an in-process Store. It backs tests and the default backend when
// no data directory is configured.
type Memory struct {
	mu     sync.Mutex
	values map[string]string

	// FailWrites makes Set/Delete report an error; tests use it to exercise
	// the unavailable-store paths.
	FailWrites bool
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errWriteDisabled
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errWriteDisabled
	}
	delete(m.values, key)
	return nil
}
