package customers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/widgets/listview"
)

// Handler handles HTTP requests for customer operations.
type Handler struct {
	service CustomerService
	list    *listview.Controller
}

// NewHandler creates a new customer handler.
func NewHandler(service CustomerService, list *listview.Controller) *Handler {
	return &Handler{service: service, list: list}
}

// List renders the customer list (GET /admin/customers).
func (h *Handler) List(c echo.Context) error {
	st := h.list.Current(c)

	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		slog.Error("loading customers", slog.Any("error", err))
		return middleware.Render(c, http.StatusOK, ListPage(h.list.BasePath(), st, nil, time.Now()))
	}

	h.list.Persist(c, st)
	return middleware.Render(c, http.StatusOK, ListPage(h.list.BasePath(), st, &page, time.Now()))
}

// APIList returns one page of customers as JSON (GET /api/customers).
func (h *Handler) APIList(c echo.Context) error {
	st := listview.Stateless(c)
	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// APIGet returns one customer (GET /api/customers/:id).
func (h *Handler) APIGet(c echo.Context) error {
	cust, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cust)
}

// Stats returns customer counts (GET /api/customers/stats).
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Selection toggles rows in the stored selection
// (POST /admin/customers/selection).
func (h *Handler) Selection(c echo.Context) error {
	return h.list.Selection(c)
}

// ExportForm downloads the selected customers as CSV
// (POST /admin/customers/export).
func (h *Handler) ExportForm(c echo.Context) error {
	st := h.list.Load(c)
	return h.export(c, st.SelectedIDs())
}

// Export downloads the listed customers as CSV (POST /api/customers/export).
func (h *Handler) Export(c echo.Context) error {
	var req ExportRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	return h.export(c, req.IDs)
}

func (h *Handler) export(c echo.Context, ids []string) error {
	out, err := h.service.Export(c.Request().Context(), audit.ActorFrom(c), ids)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+exportFilename(time.Now())+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", out)
}
