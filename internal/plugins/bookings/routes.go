package bookings

import (
	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// RegisterRoutes sets up the booking routes for staff.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService, cfg config.AuthConfig) {
	staff := auth.RequireRole(authSvc, cfg, cfg.StaffRoles...)

	page := e.Group("/admin/bookings", staff)
	page.GET("", h.List)
	page.POST("/selection", h.Selection)
	page.POST("/bulk/status", h.BulkStatusForm)
	page.GET("/:id", h.Detail)
	page.POST("/:id/status", h.UpdateStatusForm)
	page.GET("/:id/invoice.pdf", h.Invoice)

	api := e.Group("/api/bookings", staff)
	api.GET("", h.APIList)
	api.GET("/stats", h.Stats)
	api.POST("/bulk/status", h.BulkStatus)
	api.GET("/:id", h.APIGet)
	api.PUT("/:id/status", h.UpdateStatus)
	api.GET("/:id/invoice.pdf", h.Invoice)
}
