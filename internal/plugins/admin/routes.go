package admin

import (
	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// RegisterRoutes sets up the dashboard routes for staff.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService, cfg config.AuthConfig) {
	staff := auth.RequireRole(authSvc, cfg, cfg.StaffRoles...)

	e.GET("/admin", h.Dashboard(cfg.AdminRoles), staff)
	e.GET("/api/dashboard", h.Stats(cfg.AdminRoles), staff)
}
