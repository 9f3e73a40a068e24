package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is a Store backed by a map, used when no redis is available
// (tests, local development).
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uint]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uint]memoryEntry)}
}

func (s *MemoryStore) Save(_ context.Context, userID uint, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = memoryEntry{token: token, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[userID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.sessions, userID)
		return "", ErrNoSession
	}
	return entry.token, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
