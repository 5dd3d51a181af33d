package health

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
)

// isoMillis matches the millisecond UTC timestamps the dashboard expects.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Handler serves the health endpoints.
type Handler struct {
	service HealthService
	now     func() time.Time
}

// NewHandler creates a health handler.
func NewHandler(service HealthService) *Handler {
	return &Handler{service: service, now: time.Now}
}

// Backend relays the remote backend's health (GET /api/healthz). On success
// the backend's fields are merged over {"status":"ok"}; on any failure the
// response is 503 with a message and timestamp.
func (h *Handler) Backend(c echo.Context) error {
	fields, err := h.service.Backend(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":    "error",
			"message":   apperror.SafeMessage(err),
			"timestamp": h.now().UTC().Format(isoMillis),
		})
	}

	out := make(map[string]any, len(fields)+1)
	out["status"] = "ok"
	for k, v := range fields {
		out[k] = v
	}
	return c.JSON(http.StatusOK, out)
}

// Local reports this process's own dependencies (GET /healthz).
func (h *Handler) Local(c echo.Context) error {
	checks, ok := h.service.Local(c.Request().Context())
	status, code := "ok", http.StatusOK
	if !ok {
		status, code = "error", http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"checks": checks,
	})
}
