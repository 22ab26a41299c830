package tokenstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Credentials do not survive a restart, so it
// is only suitable for tests and ephemeral sessions.
type Memory struct {
	mu   sync.Mutex
	pair *Pair
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Save(_ context.Context, pair Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = &pair
	return nil
}

func (m *Memory) Load(_ context.Context) (Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pair == nil {
		return Pair{}, ErrNoCredentials
	}
	return *m.pair, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = nil
	return nil
}
