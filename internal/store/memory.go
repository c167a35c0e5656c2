package store

import (
	"context"
	"sync"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu  sync.Mutex
	rec map[string]string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return nil, ErrNotFound
	}
	out := make(map[string]string, len(m.rec))
	for k, v := range m.rec {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Save(ctx context.Context, rec map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]string, len(rec))
	for k, v := range rec {
		cp[k] = v
	}
	m.rec = cp
	return nil
}

func (m *Memory) Close() error { return nil }
