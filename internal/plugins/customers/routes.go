package customers

import (
	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// RegisterRoutes sets up the customer routes for staff.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService, cfg config.AuthConfig) {
	staff := auth.RequireRole(authSvc, cfg, cfg.StaffRoles...)

	page := e.Group("/admin/customers", staff)
	page.GET("", h.List)
	page.POST("/selection", h.Selection)
	page.POST("/export", h.ExportForm)

	api := e.Group("/api/customers", staff)
	api.GET("", h.APIList)
	api.GET("/stats", h.Stats)
	api.POST("/export", h.Export)
	api.GET("/:id", h.APIGet)
}
