package dashboard

import (
	"context"
	"sync"
	"testing"

	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
)

type stubBackend struct {
	mu      sync.Mutex
	payload domain.DashboardPayload
	err     error
	calls   int
}

func (b *stubBackend) Dashboard(_ context.Context, _ string, _ domain.Role) (domain.DashboardPayload, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.payload, b.err
}

func (b *stubBackend) set(payload domain.DashboardPayload, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payload = payload
	b.err = err
}

func (b *stubBackend) Login(context.Context, ports.Credentials) (*ports.AuthResult, error) {
	return nil, nil
}

func (b *stubBackend) Register(context.Context, ports.Registration) (*ports.AuthResult, error) {
	return nil, nil
}

func (b *stubBackend) Logout(context.Context, string) error { return nil }

func (b *stubBackend) CurrentUser(context.Context, string) (*domain.User, error) { return nil, nil }

func (b *stubBackend) ResendVerification(context.Context, string) error { return nil }

func TestLoad_Success(t *testing.T) {
	backend := &stubBackend{payload: domain.DashboardPayload{"stats": map[string]any{"projects": 3.0}}}
	loader := NewLoader(backend)

	snap := loader.Load(context.Background(), "tok1", domain.RoleTalent)
	if snap.Err != "" || snap.Loading {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Data == nil {
		t.Fatalf("expected payload")
	}
}

func TestLoad_SameRoleDoesNotRefetch(t *testing.T) {
	backend := &stubBackend{payload: domain.DashboardPayload{"ok": true}}
	loader := NewLoader(backend)

	loader.Load(context.Background(), "tok1", domain.RoleTalent)
	loader.Load(context.Background(), "tok1", domain.RoleTalent)

	if backend.calls != 1 {
		t.Fatalf("expected one fetch, got %d", backend.calls)
	}
}

func TestLoad_RoleChangeRefetches(t *testing.T) {
	backend := &stubBackend{payload: domain.DashboardPayload{"ok": true}}
	loader := NewLoader(backend)

	loader.Load(context.Background(), "tok1", domain.RoleTalent)
	loader.Load(context.Background(), "tok1", domain.RoleRecruiter)

	if backend.calls != 2 {
		t.Fatalf("expected refetch on role change, got %d calls", backend.calls)
	}
}

func TestLoad_ErrorKeepsPreviousData(t *testing.T) {
	backend := &stubBackend{payload: domain.DashboardPayload{"stats": "fresh"}}
	loader := NewLoader(backend)

	loader.Load(context.Background(), "tok1", domain.RoleRecruiter)
	backend.set(nil, &domain.APIError{Status: 500, Message: "Server error"})

	snap := loader.Refetch(context.Background(), "tok1", domain.RoleRecruiter)
	if snap.Loading {
		t.Fatalf("loading must be cleared")
	}
	if snap.Err != "Server error" {
		t.Fatalf("expected server message, got %q", snap.Err)
	}
	if snap.Data == nil || snap.Data["stats"] != "fresh" {
		t.Fatalf("previous data must be kept on failure: %+v", snap.Data)
	}
}

func TestLoad_ErrorFallbackMessage(t *testing.T) {
	backend := &stubBackend{err: context.DeadlineExceeded}
	loader := NewLoader(backend)

	snap := loader.Load(context.Background(), "tok1", domain.RoleRecruiter)
	if snap.Err != FallbackErrorMessage {
		t.Fatalf("expected fallback message, got %q", snap.Err)
	}
	if snap.Data != nil {
		t.Fatalf("no data expected on first failed fetch")
	}
}

func TestRefetch_RecoversAfterError(t *testing.T) {
	backend := &stubBackend{err: &domain.APIError{Status: 503, Message: "down"}}
	loader := NewLoader(backend)

	loader.Load(context.Background(), "tok1", domain.RoleAdmin)
	backend.set(domain.DashboardPayload{"ok": true}, nil)

	snap := loader.Refetch(context.Background(), "tok1", domain.RoleAdmin)
	if snap.Err != "" || snap.Data == nil {
		t.Fatalf("refetch must recover: %+v", snap)
	}
}

func TestLoad_RetriesAfterError(t *testing.T) {
	backend := &stubBackend{err: &domain.APIError{Status: 503, Message: "down"}}
	loader := NewLoader(backend)

	loader.Load(context.Background(), "tok1", domain.RoleAdmin)
	backend.set(domain.DashboardPayload{"ok": true}, nil)

	// A plain Load after a failure fetches again instead of caching the error.
	snap := loader.Load(context.Background(), "tok1", domain.RoleAdmin)
	if snap.Err != "" || snap.Data == nil {
		t.Fatalf("load after error must refetch: %+v", snap)
	}
}
