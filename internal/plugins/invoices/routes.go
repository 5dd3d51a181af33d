package invoices

import (
	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// RegisterRoutes sets up the invoice routes. Invoices are admin only.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService, cfg config.AuthConfig) {
	requireAdmin := auth.RequireRole(authSvc, cfg, cfg.AdminRoles...)

	page := e.Group("/admin/invoices", requireAdmin)
	page.GET("", h.List)
	page.POST("", h.CreateForm)
	page.POST("/:id/status", h.UpdateStatusForm)

	api := e.Group("/api/invoices", requireAdmin)
	api.GET("", h.APIList)
	api.POST("", h.Create)
	api.GET("/:id", h.APIGet)
	api.PUT("/:id/status", h.UpdateStatus)
}
