package memory

import (
	"context"
	"sync"
	"time"

	"tietotesti/internal/domain"
)

// IdentityStore is an in-memory implementation of app.IdentityStore.
type IdentityStore struct {
	mu       sync.RWMutex
	clock    func() time.Time
	sessions map[string]storedIdentity
}

type storedIdentity struct {
	identity  domain.Identity
	expiresAt time.Time
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		clock:    time.Now,
		sessions: make(map[string]storedIdentity),
	}
}

func (s *IdentityStore) Set(_ context.Context, sessionID string, identity domain.Identity, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := storedIdentity{identity: identity}
	if ttl > 0 {
		entry.expiresAt = s.clock().Add(ttl)
	}
	s.sessions[sessionID] = entry
	return nil
}

func (s *IdentityStore) Get(_ context.Context, sessionID string) (domain.Identity, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(s.clock()) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return entry.identity, nil
}

func (s *IdentityStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are held, expired ones included.
func (s *IdentityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
