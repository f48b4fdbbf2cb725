package state

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore keeps sessions in process memory. Sessions are lost on restart.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[int64]Session)}
}

func (m *memoryStore) Get(_ context.Context, principal int64) (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[principal]
	if !ok {
		return Session{}, false, nil
	}
	return cloneSession(s), true, nil
}

func (m *memoryStore) Set(_ context.Context, principal int64, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[principal] = cloneSession(s)
	return nil
}

func (m *memoryStore) Clear(_ context.Context, principal int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, principal)
	return nil
}

func (m *memoryStore) Ping(context.Context) error { return nil }

func (m *memoryStore) Close() error { return nil }

// cloneSession detaches the optional draft fields so callers cannot mutate stored state.
func cloneSession(s Session) Session {
	s.Draft.Link = clonePtr(s.Draft.Link)
	s.Draft.PhotoRef = clonePtr(s.Draft.PhotoRef)
	s.Draft.DocumentRef = clonePtr(s.Draft.DocumentRef)
	return s
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
