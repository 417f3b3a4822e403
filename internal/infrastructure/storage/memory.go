// Package storage holds the storage drivers that need no external
// service: an in-memory map for development and a disabled driver for
// non-interactive execution contexts.
package storage

import (
	"context"
	"sync"

	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
)

// MemoryFactory keeps sessions in a process-local map. Intended for
// development and tests; nothing survives a restart.
type MemoryFactory struct {
	mu       sync.Mutex
	sessions map[string]*domain.PersistedSession
}

// NewMemoryFactory creates an empty MemoryFactory.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{sessions: make(map[string]*domain.PersistedSession)}
}

// ForClient returns the storage bound to one client id.
func (f *MemoryFactory) ForClient(clientID string) ports.SessionStorage {
	return &memoryStorage{factory: f, clientID: clientID}
}

type memoryStorage struct {
	factory  *MemoryFactory
	clientID string
}

var _ ports.SessionStorage = (*memoryStorage)(nil)

func (s *memoryStorage) Available() bool { return true }

func (s *memoryStorage) Load(_ context.Context) (*domain.PersistedSession, error) {
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()
	persisted, ok := s.factory.sessions[s.clientID]
	if !ok {
		return nil, nil
	}
	clone := *persisted
	if persisted.User != nil {
		user := *persisted.User
		clone.User = &user
	}
	return &clone, nil
}

func (s *memoryStorage) Save(_ context.Context, persisted *domain.PersistedSession) error {
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()
	clone := *persisted
	if persisted.User != nil {
		user := *persisted.User
		clone.User = &user
	}
	s.factory.sessions[s.clientID] = &clone
	return nil
}

func (s *memoryStorage) Clear(_ context.Context) error {
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()
	delete(s.factory.sessions, s.clientID)
	return nil
}
