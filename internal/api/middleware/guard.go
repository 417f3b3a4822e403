package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talentbridge/gateway/internal/api/metrics"
	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/session"
)

// GuardConfig tunes both guard variants.
type GuardConfig struct {
	// LoginRoute is where unauthenticated clients are sent.
	LoginRoute string
	// LandingRoute is the generic authenticated landing page, used when a
	// session carries no recognisable role.
	LandingRoute string
	// GraceWindow bounds how long a guard waits for a pending token
	// verification before deciding on whatever state is current. The
	// exact duration is a tunable heuristic, not a contract.
	GraceWindow time.Duration
}

func (cfg GuardConfig) withDefaults() GuardConfig {
	if cfg.LoginRoute == "" {
		cfg.LoginRoute = "/login"
	}
	if cfg.LandingRoute == "" {
		cfg.LandingRoute = "/dashboard"
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = time.Second
	}
	return cfg
}

// Protected gates routes that require authentication, optionally
// restricted to allowedRoles (empty means any authenticated session).
//
// An unhydrated session is indeterminate, never "unauthenticated": the
// guard triggers hydration and waits out the grace window before judging,
// so a reload never flash-redirects to login while durable storage is
// still being read. Unauthenticated sessions redirect to the login route;
// authenticated sessions with a disallowed role redirect to their own
// role's home route.
func Protected(cfg GuardConfig, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	cfg = cfg.withDefaults()
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := StoreFromContext(c)
			if store == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session resolver not configured")
			}

			awaitVerification(c, store, cfg.GraceWindow)

			snap := settledSnapshot(c, store)
			if !snap.IsAuthenticated {
				metrics.GuardDecisionsTotal.WithLabelValues("protected", "redirect_login").Inc()
				return c.Redirect(http.StatusSeeOther, cfg.LoginRoute)
			}

			if len(allowed) > 0 {
				role := snap.User.UserType
				if _, ok := allowed[role]; !ok {
					metrics.GuardDecisionsTotal.WithLabelValues("protected", "redirect_home").Inc()
					return c.Redirect(http.StatusSeeOther, role.HomeRoute())
				}
			}

			metrics.GuardDecisionsTotal.WithLabelValues("protected", "allow").Inc()
			return next(c)
		}
	}
}

// Public gates routes that must be hidden from authenticated sessions,
// such as the login and registration pages. It waits for hydration the
// same way Protected does, then redirects authenticated sessions to their
// role's home route and lets everyone else through.
func Public(cfg GuardConfig) echo.MiddlewareFunc {
	cfg = cfg.withDefaults()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := StoreFromContext(c)
			if store == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session resolver not configured")
			}

			awaitVerification(c, store, cfg.GraceWindow)

			snap := settledSnapshot(c, store)
			if snap.IsAuthenticated {
				target := cfg.LandingRoute
				if role, ok := snap.User.Role(); ok {
					target = role.HomeRoute()
				}
				metrics.GuardDecisionsTotal.WithLabelValues("public", "redirect_home").Inc()
				return c.Redirect(http.StatusSeeOther, target)
			}

			metrics.GuardDecisionsTotal.WithLabelValues("public", "allow").Inc()
			return next(c)
		}
	}
}

// settledSnapshot returns the current session, first forcing a full
// sign-out when it claims authentication without a user record. The
// store already clears inconsistent persisted state at hydration; this
// covers the in-memory equivalent.
func settledSnapshot(c echo.Context, store *session.Store) domain.Session {
	snap := store.Snapshot()
	if snap.IsAuthenticated && !snap.Consistent() {
		store.Logout(c.Request().Context())
		snap = store.Snapshot()
	}
	return snap
}

// awaitVerification holds the request in a verifying state while the
// store's background token verification settles, bounded by the grace
// window. If verification has not resolved by then the guard proceeds
// with the current state rather than blocking indefinitely.
func awaitVerification(c echo.Context, store *session.Store, grace time.Duration) {
	snap := store.Snapshot()

	var done <-chan struct{}
	if !snap.HasHydrated {
		done = store.CheckAuth(c.Request().Context())
	} else {
		done = store.VerificationDone()
	}
	if done == nil {
		return
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
	case <-c.Request().Context().Done():
	}
}
