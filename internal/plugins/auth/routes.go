package auth

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/plusvans/admin/internal/middleware"
)

// RegisterRoutes sets up the public auth routes. The gate middleware is
// exported separately for other plugins to use on their route groups.
//
// Credential POSTs are rate-limited per IP: 10 attempts per minute.
func RegisterRoutes(e *echo.Echo, h *Handler, rdb *redis.Client) {
	limit := middleware.RateLimit(rdb, "login", 10, time.Minute)

	e.GET("/auth/signin", h.SignInForm)
	e.POST("/auth/signin", h.SignIn, limit)
	e.POST("/auth/signout", h.SignOut)
	e.GET("/unauthorized", h.Unauthorized)

	api := e.Group("/api/auth")
	api.POST("/login", h.APILogin, limit)
	api.POST("/logout", h.APILogout)
}
