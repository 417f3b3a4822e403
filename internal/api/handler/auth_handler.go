package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/talentbridge/gateway/internal/api/metrics"
	"github.com/talentbridge/gateway/internal/api/middleware"
	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
)

// AuthHandler exposes the session lifecycle over HTTP. The session store
// itself is resolved per client by the session resolver middleware.
type AuthHandler struct {
	backend ports.BackendClient
	log     zerolog.Logger
}

func NewAuthHandler(backend ports.BackendClient, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{backend: backend, log: log}
}

// Login authenticates the client against the marketplace backend.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	store := middleware.StoreFromContext(c)
	if store == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session resolver not configured")
	}

	err := store.Login(c.Request().Context(), ports.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	snap := store.Snapshot()
	return c.JSON(http.StatusOK, sessionResponse{User: snap.User, Token: snap.Token})
}

// Register creates a marketplace account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	store := middleware.StoreFromContext(c)
	if store == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session resolver not configured")
	}

	role, _ := domain.ParseRole(req.UserType)
	err := store.Register(c.Request().Context(), ports.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		UserType: role,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	snap := store.Snapshot()
	return c.JSON(http.StatusCreated, sessionResponse{User: snap.User, Token: snap.Token})
}

// Logout signs the client out. Local sign-out always succeeds, whatever
// the backend says.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	store := middleware.StoreFromContext(c)
	if store == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session resolver not configured")
	}
	store.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Me returns the current session's user record. The Protected guard
// upstream guarantees an authenticated session.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	store := middleware.StoreFromContext(c)
	if store == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session resolver not configured")
	}
	snap := store.Snapshot()
	return c.JSON(http.StatusOK, sessionResponse{User: snap.User})
}

// ResendVerification asks the backend to re-send the email verification.
//
// @Summary      Resend email verification
// @Tags         auth
// @Produce      json
// @Success      202  {object}  acceptedResponse
// @Router       /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	store := middleware.StoreFromContext(c)
	if store == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session resolver not configured")
	}
	snap := store.Snapshot()
	if !snap.IsAuthenticated {
		return domain.ErrUnauthenticated
	}
	if err := h.backend.ResendVerification(c.Request().Context(), snap.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "verification email sent"})
}

// LoginPage serves the login page descriptor; the Public guard upstream
// has already redirected authenticated sessions away.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, pageResponse{Page: "login"})
}

// RegisterPage serves the registration page descriptor.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.JSON(http.StatusOK, pageResponse{Page: "register"})
}
