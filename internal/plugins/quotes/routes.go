package quotes

import (
	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// RegisterRoutes sets up the quote routes for staff.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService, cfg config.AuthConfig) {
	staff := auth.RequireRole(authSvc, cfg, cfg.StaffRoles...)

	page := e.Group("/admin/quotes", staff)
	page.GET("", h.List)
	page.POST("", h.CreateForm)
	page.POST("/:id/status", h.UpdateStatusForm)

	api := e.Group("/api/quotes", staff)
	api.GET("", h.APIList)
	api.POST("", h.Create)
	api.GET("/:id", h.APIGet)
	api.PUT("/:id/status", h.UpdateStatus)
}
