// Package dashboard fetches role-scoped dashboard payloads and exposes the
// data/loading/error triad a page renders from.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
)

// FallbackErrorMessage is shown when the backend fails without a
// user-displayable message.
const FallbackErrorMessage = "failed to load dashboard"

// Snapshot is one observable state of the loader. On a failed fetch Data
// keeps the previous payload (stale-while-error) so the page stays
// renderable and interactive.
type Snapshot struct {
	Data    domain.DashboardPayload
	Loading bool
	Err     string
}

// Loader fetches one client's dashboard. It refetches automatically when
// the requested role differs from the last loaded one, and on demand via
// Refetch.
type Loader struct {
	backend ports.BackendClient

	mu       sync.Mutex
	data     domain.DashboardPayload
	loading  bool
	err      string
	lastRole domain.Role
	fetched  bool
}

// NewLoader builds a Loader over the backend client.
func NewLoader(backend ports.BackendClient) *Loader {
	return &Loader{backend: backend}
}

// Load returns the payload for role, fetching it when the role changed or
// nothing has been fetched yet.
func (l *Loader) Load(ctx context.Context, token string, role domain.Role) Snapshot {
	l.mu.Lock()
	if l.fetched && l.lastRole == role && l.err == "" {
		snap := l.snapshotLocked()
		l.mu.Unlock()
		return snap
	}
	l.mu.Unlock()
	return l.fetch(ctx, token, role)
}

// Refetch repeats the last fetch, for manual retry or pull-to-refresh.
func (l *Loader) Refetch(ctx context.Context, token string, role domain.Role) Snapshot {
	return l.fetch(ctx, token, role)
}

// Snapshot returns the current triad without fetching.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Loader) fetch(ctx context.Context, token string, role domain.Role) Snapshot {
	l.mu.Lock()
	l.loading = true
	l.err = ""
	l.lastRole = role
	l.mu.Unlock()

	payload, err := l.backend.Dashboard(ctx, token, role)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		// Previous data stays in place; only the error surface changes.
		l.err = userMessage(err)
		return l.snapshotLocked()
	}
	l.data = payload
	l.fetched = true
	return l.snapshotLocked()
}

func (l *Loader) snapshotLocked() Snapshot {
	return Snapshot{Data: l.data, Loading: l.loading, Err: l.err}
}

func userMessage(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return FallbackErrorMessage
}
