package mocks

import (
	"context"
	"sync"

	"github.com/beautypk/photo-arena/internal/cache"
)

// MockSessionStore is an in-memory mock of the match session store
// Used for testing without requiring a real Redis instance
type MockSessionStore struct {
	PutFunc    func(ctx context.Context, matchID string, session *cache.MatchSession) error
	GetFunc    func(ctx context.Context, matchID string) (*cache.MatchSession, error)
	DeleteFunc func(ctx context.Context, matchID string) error

	mu       sync.Mutex
	sessions map[string]*cache.MatchSession
}

// NewMockSessionStore creates a mock store backed by an in-memory map.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]*cache.MatchSession)}
}

func (m *MockSessionStore) Put(ctx context.Context, matchID string, session *cache.MatchSession) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, matchID, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[matchID] = session
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, matchID string) (*cache.MatchSession, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, matchID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[matchID], nil
}

func (m *MockSessionStore) Delete(ctx context.Context, matchID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, matchID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, matchID)
	return nil
}

// Stored returns a copy of the stored sessions keyed by match id.
func (m *MockSessionStore) Stored() map[string]*cache.MatchSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*cache.MatchSession, len(m.sessions))
	for k, v := range m.sessions {
		out[k] = v
	}
	return out
}
