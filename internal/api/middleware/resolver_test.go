package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/talentbridge/gateway/internal/infrastructure/storage"
)

func newTestResolver() *SessionResolver {
	return NewSessionResolver(storage.NewMemoryFactory(), &stubBackend{}, "tb_session", time.Hour, zerolog.Nop())
}

func TestResolver_NewClientGetsCookieAndStore(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	resolver := newTestResolver()
	handler := resolver.Middleware()(func(c echo.Context) error {
		if StoreFromContext(c) == nil {
			t.Fatalf("store not injected")
		}
		if LoaderFromContext(c) == nil {
			t.Fatalf("loader not injected")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "tb_session" || cookies[0].Value == "" {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
}

func TestResolver_SameCookieSameStore(t *testing.T) {
	e := echo.New()
	resolver := newTestResolver()

	var first, second any
	handler := resolver.Middleware()(func(c echo.Context) error {
		if first == nil {
			first = StoreFromContext(c)
		} else {
			second = StoreFromContext(c)
		}
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "tb_session", Value: "client-1"})
	if err := handler(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "tb_session", Value: "client-1"})
	if err := handler(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if first != second {
		t.Fatalf("same cookie must resolve to the same store")
	}
}

func TestResolver_DistinctClientsGetDistinctStores(t *testing.T) {
	e := echo.New()
	resolver := newTestResolver()

	stores := make(map[any]bool)
	handler := resolver.Middleware()(func(c echo.Context) error {
		stores[StoreFromContext(c)] = true
		return c.NoContent(http.StatusOK)
	})

	for _, id := range []string{"client-a", "client-b"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "tb_session", Value: id})
		if err := handler(e.NewContext(req, httptest.NewRecorder())); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	}

	if len(stores) != 2 {
		t.Fatalf("expected two distinct stores, got %d", len(stores))
	}
}

func serveWithCookie(t *testing.T, e *echo.Echo, handler echo.HandlerFunc, clientID string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "tb_session", Value: clientID})
	if err := handler(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func clientIDs(resolver *SessionResolver) map[string]bool {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	ids := make(map[string]bool, len(resolver.clients))
	for id := range resolver.clients {
		ids[id] = true
	}
	return ids
}

func TestResolver_IdleClientsEvictedAfterTTL(t *testing.T) {
	e := echo.New()
	resolver := newTestResolver()
	current := time.Now()
	resolver.now = func() time.Time { return current }

	handler := resolver.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	serveWithCookie(t, e, handler, "client-old")

	current = current.Add(2 * time.Hour)
	serveWithCookie(t, e, handler, "client-new")

	ids := clientIDs(resolver)
	if ids["client-old"] {
		t.Fatalf("idle client must be evicted after the session TTL")
	}
	if !ids["client-new"] || len(ids) != 1 {
		t.Fatalf("active client must survive the sweep: %+v", ids)
	}
}

func TestResolver_ActivityDefersEviction(t *testing.T) {
	e := echo.New()
	resolver := newTestResolver()
	current := time.Now()
	resolver.now = func() time.Time { return current }

	handler := resolver.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	serveWithCookie(t, e, handler, "client-a")
	current = current.Add(45 * time.Minute)
	serveWithCookie(t, e, handler, "client-a")
	current = current.Add(45 * time.Minute)
	serveWithCookie(t, e, handler, "client-b")

	ids := clientIDs(resolver)
	if !ids["client-a"] || !ids["client-b"] {
		t.Fatalf("recently active client must not be evicted: %+v", ids)
	}
}
