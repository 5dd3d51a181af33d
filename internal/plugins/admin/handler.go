// Package admin renders the staff dashboard: booking, customer and media
// figures plus the latest audit activity.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/plugins/auth"
	"github.com/plusvans/admin/internal/plugins/bookings"
	"github.com/plusvans/admin/internal/plugins/customers"
	"github.com/plusvans/admin/internal/plugins/media"
)

// recentActivityLimit is how many audit entries the dashboard shows.
const recentActivityLimit = 10

// BookingStats provides booking counts for the dashboard.
type BookingStats interface {
	Stats(ctx context.Context) (*bookings.Stats, error)
}

// CustomerStats provides customer counts for the dashboard.
type CustomerStats interface {
	Stats(ctx context.Context) (*customers.Stats, error)
}

// MediaStats provides upload figures for the dashboard.
type MediaStats interface {
	Stats(ctx context.Context) (*media.Stats, error)
}

// RecentActivity provides the newest audit entries.
type RecentActivity interface {
	Recent(ctx context.Context, limit int) ([]audit.AuditEntry, error)
}

// Handler handles admin dashboard HTTP requests. Depends on other plugins'
// services through interfaces, never their repositories.
type Handler struct {
	bookings  BookingStats
	customers CustomerStats
	media     MediaStats
	activity  RecentActivity
}

// NewHandler creates a new admin handler.
func NewHandler(b BookingStats, c CustomerStats, m MediaStats) *Handler {
	return &Handler{bookings: b, customers: c, media: m}
}

// SetActivity wires the audit log. Only admins see recent activity, so the
// dashboard omits it when no source is set or the viewer is not an admin.
func (h *Handler) SetActivity(a RecentActivity) {
	h.activity = a
}

// DashboardData is everything the dashboard renders. A nil section failed
// to load.
type DashboardData struct {
	Bookings  *bookings.Stats    `json:"bookings"`
	Customers *customers.Stats   `json:"customers"`
	Media     *media.Stats       `json:"media"`
	Activity  []audit.AuditEntry `json:"activity,omitempty"`
}

func (h *Handler) load(ctx context.Context, withActivity bool) DashboardData {
	var d DashboardData
	var err error

	if d.Bookings, err = h.bookings.Stats(ctx); err != nil {
		slog.Error("loading booking stats", slog.Any("error", err))
	}
	if d.Customers, err = h.customers.Stats(ctx); err != nil {
		slog.Error("loading customer stats", slog.Any("error", err))
	}
	if d.Media, err = h.media.Stats(ctx); err != nil {
		slog.Error("loading media stats", slog.Any("error", err))
	}
	if withActivity && h.activity != nil {
		if d.Activity, err = h.activity.Recent(ctx, recentActivityLimit); err != nil {
			slog.Error("loading recent activity", slog.Any("error", err))
		}
	}
	return d
}

func (h *Handler) canSeeActivity(c echo.Context, adminRoles []string) bool {
	p := auth.GetProfile(c)
	if p == nil {
		return false
	}
	for _, r := range adminRoles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Dashboard renders the overview page (GET /admin).
func (h *Handler) Dashboard(adminRoles []string) echo.HandlerFunc {
	return func(c echo.Context) error {
		d := h.load(c.Request().Context(), h.canSeeActivity(c, adminRoles))
		return middleware.Render(c, http.StatusOK, DashboardPage(d))
	}
}

// Stats returns the dashboard figures as JSON (GET /api/dashboard).
func (h *Handler) Stats(adminRoles []string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, h.load(c.Request().Context(), h.canSeeActivity(c, adminRoles)))
	}
}
