package snapshot

import (
	"context"
	"sync"
)

// Memory keeps the payload in process. Used by tests and SNAPSHOT_BACKEND=memory.
type Memory struct {
	mu      sync.RWMutex
	payload []byte
}

// NewMemory returns an empty in-memory snapshot store.
func NewMemory() *Memory { return &Memory{} }

// Load returns a copy of the last saved payload, or nil when nothing was saved.
func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.payload == nil {
		return nil, nil
	}
	return append([]byte(nil), m.payload...), nil
}

// Save replaces the payload.
func (m *Memory) Save(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = append([]byte(nil), payload...)
	return nil
}
