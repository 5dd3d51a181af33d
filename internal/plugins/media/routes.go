package media

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// RegisterRoutes sets up the media routes. Every route, file serving
// included, is staff only. maxUploadSize bounds the upload request body so
// oversized payloads are rejected before being read into memory.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService, cfg config.AuthConfig, rdb *redis.Client, maxUploadSize int64) {
	staff := auth.RequireRole(authSvc, cfg, cfg.StaffRoles...)

	e.GET("/media/:id", h.Serve, staff)
	e.GET("/media/:id/thumb/:size", h.ServeThumbnail, staff)

	page := e.Group("/admin/media", staff)
	page.GET("", h.List)
	page.POST("/:id/delete", h.DeleteForm)

	api := e.Group("/api/media", staff)
	api.GET("", h.APIList)
	api.GET("/stats", h.Stats)
	api.GET("/:id", h.APIGet)
	api.DELETE("/:id", h.Delete)

	// Multipart encoding adds overhead on top of the file itself.
	bodyLimit := bodyLimitMiddleware(maxUploadSize + maxUploadSize/10)
	uploadRateLimit := middleware.RateLimit(rdb, "media-upload", 30, time.Minute)

	e.GET("/api/bookings/:id/media", h.ListByBooking, staff)
	e.POST("/api/bookings/:id/media", h.Upload, staff, uploadRateLimit, bodyLimit)
}

// bodyLimitMiddleware rejects request bodies larger than maxBytes.
func bodyLimitMiddleware(maxBytes int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().ContentLength > maxBytes {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body too large; maximum is %d MB", maxBytes/(1024*1024)))
			}
			c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxBytes)
			return next(c)
		}
	}
}
