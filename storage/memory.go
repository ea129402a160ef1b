package storage

import "sync"

// Memory is an in-process Storage. The zero value is empty and ready to use.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory returns a Memory holding a copy of data, or an empty one when
// data is nil.
func NewMemory(data []byte) *Memory {
	m := &Memory{}
	if data != nil {
		m.data = append([]byte(nil), data...)
	}
	return m
}

func (m *Memory) Save(data []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(make([]byte, 0, len(data)), data...)
	return true
}

func (m *Memory) Load() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, false
	}
	return append([]byte(nil), m.data...), true
}

func (m *Memory) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data != nil
}

// Delete clears the stored bytes. It always succeeds.
func (m *Memory) Delete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return true
}
