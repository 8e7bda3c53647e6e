package mirror

import (
	"context"
	"maps"
	"sync"
)

// MemoryFlags keeps flags in process memory. Safe for concurrent use.
type MemoryFlags struct {
	mu    sync.RWMutex
	flags map[string]string
}

func NewMemoryFlags() *MemoryFlags {
	return &MemoryFlags{flags: make(map[string]string)}
}

func (m *MemoryFlags) WriteFlag(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[name] = value
	return nil
}

func (m *MemoryFlags) ClearFlag(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, name)
	return nil
}

func (m *MemoryFlags) ReadFlag(_ context.Context, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.flags[name]
	return v, ok, nil
}

// Snapshot returns a copy of all flags.
func (m *MemoryFlags) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.flags)
}
