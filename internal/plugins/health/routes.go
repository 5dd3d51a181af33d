package health

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the public health endpoints.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/healthz", h.Local)
	e.GET("/api/healthz", h.Backend)
}
