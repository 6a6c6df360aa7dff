package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

type sessionEntry struct {
	session   domain.CheckoutSession
	expiresAt time.Time
}

// SessionStore keeps checkout sessions in memory with a TTL.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]sessionEntry),
		now:      time.Now,
	}
}

// Get returns the session, or domain.ErrSessionNotFound when it is absent or expired.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[sessionID]
	if !ok || (!entry.expiresAt.IsZero() && s.now().After(entry.expiresAt)) {
		return nil, domain.ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

// Set stores a copy of the session. A zero ttl never expires.
func (s *SessionStore) Set(ctx context.Context, sessionID string, session *domain.CheckoutSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := sessionEntry{session: *session}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.sessions[sessionID] = entry
	return nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
