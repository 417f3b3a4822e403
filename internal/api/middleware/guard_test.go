package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
	"github.com/talentbridge/gateway/internal/core/session"
)

type stubBackend struct {
	user    *domain.User
	userErr error
	block   chan struct{}
}

func (b *stubBackend) Login(context.Context, ports.Credentials) (*ports.AuthResult, error) {
	return nil, nil
}

func (b *stubBackend) Register(context.Context, ports.Registration) (*ports.AuthResult, error) {
	return nil, nil
}

func (b *stubBackend) Logout(context.Context, string) error { return nil }

func (b *stubBackend) CurrentUser(context.Context, string) (*domain.User, error) {
	if b.block != nil {
		<-b.block
	}
	return b.user, b.userErr
}

func (b *stubBackend) Dashboard(context.Context, string, domain.Role) (domain.DashboardPayload, error) {
	return nil, nil
}

func (b *stubBackend) ResendVerification(context.Context, string) error { return nil }

type stubStorage struct {
	unavailable bool
	persisted   *domain.PersistedSession
}

func (s *stubStorage) Available() bool { return !s.unavailable }

func (s *stubStorage) Load(context.Context) (*domain.PersistedSession, error) {
	return s.persisted, nil
}

func (s *stubStorage) Save(_ context.Context, p *domain.PersistedSession) error {
	clone := *p
	s.persisted = &clone
	return nil
}

func (s *stubStorage) Clear(context.Context) error {
	s.persisted = nil
	return nil
}

func authenticatedStorage(role domain.Role) *stubStorage {
	return &stubStorage{persisted: &domain.PersistedSession{
		User:            &domain.User{ID: 1, Name: "Ada", UserType: role},
		Token:           "tok1",
		IsAuthenticated: true,
	}}
}

func guardContext(t *testing.T, store *session.Store) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ctxKeyStore, store)
	return c, rec
}

func testGuardConfig() GuardConfig {
	return GuardConfig{GraceWindow: 500 * time.Millisecond}
}

func TestProtected_RedirectsToLoginWhenUnauthenticated(t *testing.T) {
	store := session.NewStore(&stubStorage{}, &stubBackend{}, zerolog.Nop())
	c, rec := guardContext(t, store)

	mw := Protected(testGuardConfig())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("children must not render")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestProtected_RoleMismatchRedirectsToRoleHome(t *testing.T) {
	backend := &stubBackend{user: &domain.User{ID: 1, UserType: domain.RoleTalent}}
	store := session.NewStore(authenticatedStorage(domain.RoleTalent), backend, zerolog.Nop())
	c, rec := guardContext(t, store)

	mw := Protected(testGuardConfig(), domain.RoleRecruiter)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("children must not render for a mismatched role")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/talent/dashboard" {
		t.Fatalf("expected redirect to talent home, got %q", loc)
	}
}

func TestProtected_AllowsMatchingRole(t *testing.T) {
	backend := &stubBackend{user: &domain.User{ID: 1, UserType: domain.RoleRecruiter}}
	store := session.NewStore(authenticatedStorage(domain.RoleRecruiter), backend, zerolog.Nop())
	c, rec := guardContext(t, store)

	called := false
	mw := Protected(testGuardConfig(), domain.RoleRecruiter)
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProtected_AnyRoleWhenUnrestricted(t *testing.T) {
	backend := &stubBackend{user: &domain.User{ID: 1, UserType: domain.RoleTalent}}
	store := session.NewStore(authenticatedStorage(domain.RoleTalent), backend, zerolog.Nop())
	c, _ := guardContext(t, store)

	called := false
	mw := Protected(testGuardConfig())
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestProtected_UnhydratedIsNotUnauthenticated(t *testing.T) {
	// Verification never resolves inside the grace window; the guard must
	// proceed with the optimistic state instead of flash-redirecting.
	backend := &stubBackend{block: make(chan struct{})}
	defer close(backend.block)
	store := session.NewStore(authenticatedStorage(domain.RoleTalent), backend, zerolog.Nop())
	c, _ := guardContext(t, store)

	called := false
	mw := Protected(GuardConfig{GraceWindow: 50 * time.Millisecond}, domain.RoleTalent)
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("optimistically authenticated session must render children")
	}
}

func TestProtected_WaitsForVerificationRejection(t *testing.T) {
	backend := &stubBackend{userErr: &domain.APIError{Status: 401, Message: "token expired"}}
	store := session.NewStore(authenticatedStorage(domain.RoleTalent), backend, zerolog.Nop())
	c, rec := guardContext(t, store)

	mw := Protected(testGuardConfig(), domain.RoleTalent)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("children must not render after rejection")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("expected redirect to /login after rejection, got %q", loc)
	}
}

func TestProtected_InconsistentSessionForcesSignOut(t *testing.T) {
	// The backend verifies the token but returns no user record, leaving
	// an authenticated session without a user. The guard must treat that
	// as a full sign-out, not just a redirect.
	backend := &stubBackend{}
	storage := authenticatedStorage(domain.RoleTalent)
	store := session.NewStore(storage, backend, zerolog.Nop())
	c, rec := guardContext(t, store)

	mw := Protected(testGuardConfig())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("children must not render for an inconsistent session")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
	if snap := store.Snapshot(); snap.IsAuthenticated || snap.Token != "" || snap.User != nil {
		t.Fatalf("invariant violation must fully sign out: %+v", snap)
	}
	if storage.persisted != nil {
		t.Fatalf("storage must be cleared on sign-out")
	}
}

func TestProtected_MissingResolver(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Protected(testGuardConfig())
	handler := mw(func(c echo.Context) error { return nil })

	if err := handler(c); err == nil {
		t.Fatalf("expected error without resolver")
	}
}

func TestPublic_RedirectsAuthenticatedToRoleHome(t *testing.T) {
	backend := &stubBackend{user: &domain.User{ID: 1, UserType: domain.RoleRecruiter}}
	store := session.NewStore(authenticatedStorage(domain.RoleRecruiter), backend, zerolog.Nop())
	c, rec := guardContext(t, store)

	mw := Public(testGuardConfig())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("children must not render while authenticated")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/recruiter/dashboard" {
		t.Fatalf("expected recruiter home, got %q", loc)
	}
}

func TestPublic_AllowsUnauthenticated(t *testing.T) {
	store := session.NewStore(&stubStorage{}, &stubBackend{}, zerolog.Nop())
	c, rec := guardContext(t, store)

	called := false
	mw := Public(testGuardConfig())
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPublic_UnknownRoleFallsBackToLanding(t *testing.T) {
	backend := &stubBackend{user: &domain.User{ID: 1, UserType: "superuser"}}
	store := session.NewStore(authenticatedStorage("superuser"), backend, zerolog.Nop())
	c, rec := guardContext(t, store)

	mw := Public(testGuardConfig())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("children must not render")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/dashboard" {
		t.Fatalf("expected generic landing, got %q", loc)
	}
}
