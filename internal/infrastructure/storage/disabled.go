package storage

import (
	"context"

	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
)

// DisabledFactory models a non-interactive execution context with no
// durable storage: every operation is a no-op returning empty rather than
// an error, and Available reports false so the session store skips
// hydration entirely.
type DisabledFactory struct{}

// ForClient returns the shared disabled storage.
func (DisabledFactory) ForClient(string) ports.SessionStorage { return disabledStorage{} }

type disabledStorage struct{}

var _ ports.SessionStorage = disabledStorage{}

func (disabledStorage) Available() bool { return false }

func (disabledStorage) Load(context.Context) (*domain.PersistedSession, error) { return nil, nil }

func (disabledStorage) Save(context.Context, *domain.PersistedSession) error { return nil }

func (disabledStorage) Clear(context.Context) error { return nil }
