package tokenstore

import (
	"context"
	"sync"
)

type Memory struct {
	mu sync.RWMutex
	t  Tokens
}

func NewMemory() *Memory {
	return &Memory{}
}

func MemoryFactory() Factory {
	return func(string) Store { return NewMemory() }
}

func (m *Memory) Load(context.Context) (Tokens, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t, nil
}

func (m *Memory) Save(_ context.Context, t Tokens) error {
	m.mu.Lock()
	m.t = t
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetAccess(_ context.Context, access string) error {
	m.mu.Lock()
	m.t.Access = access
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	m.t = Tokens{}
	m.mu.Unlock()
	return nil
}
