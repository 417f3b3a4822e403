package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/talentbridge/gateway/internal/api/metrics"
	"github.com/talentbridge/gateway/internal/core/dashboard"
	"github.com/talentbridge/gateway/internal/core/ports"
	"github.com/talentbridge/gateway/internal/core/session"
)

// Context keys set by the session resolver.
const (
	ctxKeyStore    = "session.store"
	ctxKeyLoader   = "dashboard.loader"
	ctxKeyClientID = "session.client_id"
)

// sweepInterval bounds how often the resolver scans for idle clients.
const sweepInterval = time.Minute

// clientState bundles the per-client session store and dashboard loader.
type clientState struct {
	store    *session.Store
	loader   *dashboard.Loader
	lastSeen time.Time
}

// SessionResolver identifies the client by cookie and injects its session
// store and dashboard loader into the request context. First-time clients
// get a fresh id and an empty, unhydrated store.
type SessionResolver struct {
	storage    ports.StorageFactory
	backend    ports.BackendClient
	log        zerolog.Logger
	cookieName string
	cookieTTL  time.Duration

	mu        sync.Mutex
	clients   map[string]*clientState
	lastSweep time.Time
	now       func() time.Time
}

// NewSessionResolver builds a SessionResolver over the storage factory and
// backend client.
func NewSessionResolver(storage ports.StorageFactory, backend ports.BackendClient, cookieName string, cookieTTL time.Duration, log zerolog.Logger) *SessionResolver {
	return &SessionResolver{
		storage:    storage,
		backend:    backend,
		log:        log,
		cookieName: cookieName,
		cookieTTL:  cookieTTL,
		clients:    make(map[string]*clientState),
		now:        time.Now,
	}
}

// Middleware returns the echo middleware performing the resolution.
func (r *SessionResolver) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID := r.clientID(c)
			state := r.state(clientID)

			c.Set(ctxKeyStore, state.store)
			c.Set(ctxKeyLoader, state.loader)
			c.Set(ctxKeyClientID, clientID)

			return next(c)
		}
	}
}

func (r *SessionResolver) clientID(c echo.Context) string {
	if cookie, err := c.Cookie(r.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     r.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(r.cookieTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (r *SessionResolver) state(clientID string) *clientState {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= sweepInterval {
		r.evictIdleLocked(now)
		r.lastSweep = now
	}

	if state, ok := r.clients[clientID]; ok {
		state.lastSeen = now
		return state
	}

	state := &clientState{
		store:    session.NewStore(r.storage.ForClient(clientID), r.backend, r.log),
		loader:   dashboard.NewLoader(r.backend),
		lastSeen: now,
	}
	r.clients[clientID] = state
	metrics.ActiveClientSessions.Set(float64(len(r.clients)))
	return state
}

// evictIdleLocked drops clients idle past the session TTL so the map
// tracks the durable-storage lifetime instead of growing with every
// cookie value ever seen.
func (r *SessionResolver) evictIdleLocked(now time.Time) {
	if r.cookieTTL <= 0 {
		return
	}
	cutoff := now.Add(-r.cookieTTL)
	evicted := false
	for id, state := range r.clients {
		if state.lastSeen.Before(cutoff) {
			delete(r.clients, id)
			evicted = true
		}
	}
	if evicted {
		metrics.ActiveClientSessions.Set(float64(len(r.clients)))
	}
}

// StoreFromContext returns the session store injected by the resolver, or
// nil when the resolver did not run.
func StoreFromContext(c echo.Context) *session.Store {
	store, _ := c.Get(ctxKeyStore).(*session.Store)
	return store
}

// LoaderFromContext returns the dashboard loader injected by the resolver,
// or nil when the resolver did not run.
func LoaderFromContext(c echo.Context) *dashboard.Loader {
	loader, _ := c.Get(ctxKeyLoader).(*dashboard.Loader)
	return loader
}
