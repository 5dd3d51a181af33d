package audit

import (
	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// RegisterRoutes sets up the audit log routes. The log is admin only.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService, cfg config.AuthConfig) {
	requireAdmin := auth.RequireRole(authSvc, cfg, cfg.AdminRoles...)

	e.GET("/admin/audit", h.Log, requireAdmin)

	api := e.Group("/api/audit", requireAdmin)
	api.GET("", h.APIList)
	api.GET("/:type/:id", h.EntityHistory)
}
