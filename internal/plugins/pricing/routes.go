package pricing

import (
	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// RegisterRoutes sets up the pricing rule routes. Rules are admin only.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService, cfg config.AuthConfig) {
	requireAdmin := auth.RequireRole(authSvc, cfg, cfg.AdminRoles...)

	page := e.Group("/admin/pricing", requireAdmin)
	page.GET("", h.List)
	page.POST("", h.CreateForm)
	page.POST("/:id/active", h.ToggleForm)
	page.POST("/:id/delete", h.DeleteForm)

	api := e.Group("/api/pricing/rules", requireAdmin)
	api.GET("", h.APIList)
	api.POST("", h.Create)
	api.GET("/:id", h.APIGet)
	api.PUT("/:id", h.Update)
	api.PUT("/:id/active", h.SetActive)
	api.DELETE("/:id", h.Delete)
}
