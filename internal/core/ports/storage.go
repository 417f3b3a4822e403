package ports

import (
	"context"

	"github.com/talentbridge/gateway/internal/core/domain"
)

// SessionStorage is durable client storage for one client's session. On a
// non-interactive execution context the storage reports unavailable and all
// operations are no-ops returning empty rather than failing.
type SessionStorage interface {
	// Available reports whether durable storage can be used at all.
	Available() bool
	// Load returns the persisted session, or (nil, nil) when absent.
	Load(ctx context.Context) (*domain.PersistedSession, error)
	// Save writes the persisted subset, last-write-wins.
	Save(ctx context.Context, s *domain.PersistedSession) error
	// Clear removes every storage key associated with the session,
	// legacy compatibility keys included.
	Clear(ctx context.Context) error
}

// StorageFactory binds the shared storage backend to a single client's
// namespace.
type StorageFactory interface {
	ForClient(clientID string) SessionStorage
}
