package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[int64]*Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[int64]*Session),
	}
}

// Get returns a copy of the user's session.
func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false, nil
	}
	if expired(s, m.ttl, m.now()) {
		delete(m.sessions, userID)
		return nil, false, nil
	}
	return s.Clone(), true, nil
}

// Save stores a copy of s and stamps UpdatedAt.
func (m *MemoryStore) Save(_ context.Context, userID int64, s *Session) error {
	if s == nil {
		return ErrNoSession
	}
	cp := s.Clone()
	cp.UpdatedAt = m.now()
	m.mu.Lock()
	m.sessions[userID] = cp
	m.mu.Unlock()
	return nil
}

// Clear removes the user's session. Clearing a missing session is not an error.
func (m *MemoryStore) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
