package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/talentbridge/gateway/internal/api/metrics"
	"github.com/talentbridge/gateway/internal/api/middleware"
	"github.com/talentbridge/gateway/internal/core/dashboard"
	"github.com/talentbridge/gateway/internal/core/domain"
)

// DashboardHandler serves role-scoped dashboard payloads through the
// per-client dashboard loader.
type DashboardHandler struct {
	log zerolog.Logger
}

func NewDashboardHandler(log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{log: log}
}

// ForRole returns the handler for one role's dashboard route. A fetch
// failure surfaces as an inline error in the payload; the page stays
// interactive and `?refetch=1` retries.
//
// @Summary      Role dashboard
// @Tags         dashboard
// @Produce      json
// @Param        refetch  query     string  false  "Force a refetch"
// @Success      200      {object}  dashboardResponse
// @Router       /{role}/dashboard [get]
func (h *DashboardHandler) ForRole(role domain.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		store := middleware.StoreFromContext(c)
		loader := middleware.LoaderFromContext(c)
		if store == nil || loader == nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "session resolver not configured")
		}

		snap := store.Snapshot()

		var dsnap dashboard.Snapshot
		if c.QueryParam("refetch") != "" {
			dsnap = loader.Refetch(c.Request().Context(), snap.Token, role)
		} else {
			dsnap = loader.Load(c.Request().Context(), snap.Token, role)
		}

		result := "success"
		if dsnap.Err != "" {
			result = "failure"
		}
		metrics.DashboardFetchesTotal.WithLabelValues(string(role), result).Inc()

		return c.JSON(http.StatusOK, dashboardResponse{
			Data:    dsnap.Data,
			Loading: dsnap.Loading,
			Error:   dsnap.Err,
		})
	}
}

// Landing serves the generic authenticated landing page for sessions with
// no recognisable role.
func (h *DashboardHandler) Landing(c echo.Context) error {
	store := middleware.StoreFromContext(c)
	if store == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session resolver not configured")
	}
	snap := store.Snapshot()
	return c.JSON(http.StatusOK, sessionResponse{User: snap.User})
}
