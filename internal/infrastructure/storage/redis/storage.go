// Package redis provides the primary durable client storage, one key
// namespace per client session.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
)

// Key layout per client. The session blob is authoritative; the raw token
// and raw user keys are legacy compatibility keys kept written in parallel
// for older client code paths that read them directly.
const (
	sessionKeyFmt = "session:%s"
	tokenKeyFmt   = "auth_token:%s"
	userKeyFmt    = "auth_user:%s"
)

const defaultTTL = 720 * time.Hour

// Factory binds a shared Redis client to per-client storage namespaces.
type Factory struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFactory creates a Factory. A non-positive ttl falls back to 30 days.
func NewFactory(client *redis.Client, ttl time.Duration) *Factory {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Factory{client: client, ttl: ttl}
}

// ForClient returns the storage bound to one client's namespace.
func (f *Factory) ForClient(clientID string) ports.SessionStorage {
	return &Storage{client: f.client, clientID: clientID, ttl: f.ttl}
}

// Storage implements ports.SessionStorage over Redis.
type Storage struct {
	client   *redis.Client
	clientID string
	ttl      time.Duration
}

var _ ports.SessionStorage = (*Storage)(nil)

// Available reports whether a Redis client is wired in.
func (s *Storage) Available() bool {
	return s.client != nil
}

// Load reads the session blob, falling back to the legacy raw keys when
// only those exist.
func (s *Storage) Load(ctx context.Context) (*domain.PersistedSession, error) {
	raw, err := s.client.Get(ctx, s.key(sessionKeyFmt)).Bytes()
	switch {
	case err == nil:
		var persisted domain.PersistedSession
		if err := json.Unmarshal(raw, &persisted); err != nil {
			return nil, fmt.Errorf("decode session blob: %w", err)
		}
		return &persisted, nil
	case errors.Is(err, redis.Nil):
		return s.loadLegacy(ctx)
	default:
		return nil, fmt.Errorf("read session blob: %w", err)
	}
}

func (s *Storage) loadLegacy(ctx context.Context) (*domain.PersistedSession, error) {
	token, err := s.client.Get(ctx, s.key(tokenKeyFmt)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read legacy token: %w", err)
	}

	persisted := &domain.PersistedSession{Token: token}
	rawUser, err := s.client.Get(ctx, s.key(userKeyFmt)).Bytes()
	if err == nil {
		var user domain.User
		if json.Unmarshal(rawUser, &user) == nil {
			persisted.User = &user
			persisted.IsAuthenticated = true
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read legacy user: %w", err)
	}
	return persisted, nil
}

// Save writes the blob and both legacy keys in one pipeline.
func (s *Storage) Save(ctx context.Context, persisted *domain.PersistedSession) error {
	blob, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("encode session blob: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(sessionKeyFmt), blob, s.ttl)
	pipe.Set(ctx, s.key(tokenKeyFmt), persisted.Token, s.ttl)
	if persisted.User != nil {
		rawUser, err := json.Marshal(persisted.User)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		pipe.Set(ctx, s.key(userKeyFmt), rawUser, s.ttl)
	} else {
		pipe.Del(ctx, s.key(userKeyFmt))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the blob and the legacy keys.
func (s *Storage) Clear(ctx context.Context) error {
	err := s.client.Del(ctx,
		s.key(sessionKeyFmt),
		s.key(tokenKeyFmt),
		s.key(userKeyFmt),
	).Err()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Storage) key(format string) string {
	return fmt.Sprintf(format, s.clientID)
}
