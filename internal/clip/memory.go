package clip

import "sync"

// Memory is an in-process backend. It keeps the clip exactly as written,
// label included. FailWrites makes SetPrimary return the given error.
type Memory struct {
	mu         sync.Mutex
	primary    *Clip
	writes     int
	FailWrites error
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Name() string { return "in-memory" }

func (m *Memory) Primary() (*Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.primary, nil
}

func (m *Memory) SetPrimary(c *Clip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.primary = c
	m.writes++
	return nil
}

// Clear empties the clipboard, as if another process had cleared it.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.primary = nil
	m.mu.Unlock()
}

// Writes returns the number of accepted SetPrimary calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *Memory) Close() {}
