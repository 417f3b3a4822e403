package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/talentbridge/gateway/internal/api/handler"
	"github.com/talentbridge/gateway/internal/api/middleware"
	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
	healthhandlers "github.com/talentbridge/gateway/internal/infrastructure/http/handlers"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Storage ports.StorageFactory
	Backend ports.BackendClient
	Log     zerolog.Logger

	SessionCookie string
	SessionTTL    time.Duration
	Guard         middleware.GuardConfig

	// Health maps dependency names to readiness checks.
	Health map[string]healthhandlers.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("gateway"))

	resolver := middleware.NewSessionResolver(deps.Storage, deps.Backend, deps.SessionCookie, deps.SessionTTL, deps.Log)
	e.Use(resolver.Middleware())

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Backend, deps.Log)
	dashHandler := handler.NewDashboardHandler(deps.Log)

	protected := middleware.Protected(deps.Guard)
	public := middleware.Public(deps.Guard)

	// --- Session lifecycle ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me, protected)
	e.POST("/auth/resend-verification", authHandler.ResendVerification, protected)

	// --- Public pages (hidden from authenticated sessions) ---
	e.GET("/login", authHandler.LoginPage, public)
	e.GET("/register", authHandler.RegisterPage, public)

	// --- Dashboards ---
	e.GET("/dashboard", dashHandler.Landing, protected)
	e.GET("/talent/dashboard", dashHandler.ForRole(domain.RoleTalent),
		middleware.Protected(deps.Guard, domain.RoleTalent))
	e.GET("/recruiter/dashboard", dashHandler.ForRole(domain.RoleRecruiter),
		middleware.Protected(deps.Guard, domain.RoleRecruiter))
	e.GET("/admin/dashboard", dashHandler.ForRole(domain.RoleAdmin),
		middleware.Protected(deps.Guard, domain.RoleAdmin))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := healthhandlers.NewHealthHandler()
	healthDepsHandler := healthhandlers.NewHealthDependenciesHandler(deps.Health)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
