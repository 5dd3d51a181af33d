package audit

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/auth"
	"github.com/plusvans/admin/internal/widgets/listview"
)

// Handler handles HTTP requests for audit log operations. Handlers are thin:
// bind request, call service, render response. No business logic lives here.
type Handler struct {
	service AuditService
	list    *listview.Controller
}

// NewHandler creates a new audit handler.
func NewHandler(service AuditService, list *listview.Controller) *Handler {
	return &Handler{service: service, list: list}
}

// ActorFrom returns the signed-in staff member as an audit Actor.
func ActorFrom(c echo.Context) Actor {
	p := auth.GetProfile(c)
	if p == nil {
		return Actor{}
	}
	return Actor{UserID: p.ID, Name: p.Name}
}

// Log renders the audit log page (GET /admin/audit).
func (h *Handler) Log(c echo.Context) error {
	st := h.list.Current(c)

	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		slog.Error("loading audit log", slog.Any("error", err))
		return middleware.Render(c, http.StatusOK, LogPage(h.list.BasePath(), st, nil))
	}

	h.list.Persist(c, st)
	return middleware.Render(c, http.StatusOK, LogPage(h.list.BasePath(), st, &page))
}

// APIList returns one page of the log as JSON (GET /api/audit).
func (h *Handler) APIList(c echo.Context) error {
	st := listview.Stateless(c)
	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// EntityHistory returns the change log of one entity
// (GET /api/audit/:type/:id).
func (h *Handler) EntityHistory(c echo.Context) error {
	entries, err := h.service.EntityHistory(c.Request().Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
