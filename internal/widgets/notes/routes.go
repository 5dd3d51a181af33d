package notes

import (
	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// RegisterRoutes sets up the booking note routes for staff.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService, cfg config.AuthConfig) {
	staff := auth.RequireRole(authSvc, cfg, cfg.StaffRoles...)

	page := e.Group("/admin/bookings/:id/notes", staff)
	page.POST("", h.CreateForm)
	page.POST("/:noteId/delete", h.DeleteForm)

	api := e.Group("/api/bookings/:id/notes", staff)
	api.GET("", h.List)
	api.POST("", h.Create)
	api.PUT("/:noteId", h.Update)
	api.DELETE("/:noteId", h.Delete)
}
