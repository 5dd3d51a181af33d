package invoices

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/widgets/listview"
)

// Handler handles HTTP requests for invoices.
type Handler struct {
	service InvoiceService
	list    *listview.Controller
}

// NewHandler creates a new invoice handler.
func NewHandler(service InvoiceService, list *listview.Controller) *Handler {
	return &Handler{service: service, list: list}
}

// List renders the invoice list (GET /admin/invoices).
func (h *Handler) List(c echo.Context) error {
	st := h.list.Current(c)

	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		slog.Error("loading invoices", slog.Any("error", err))
		return middleware.Render(c, http.StatusOK, ListPage(h.list.BasePath(), st, nil))
	}

	h.list.Persist(c, st)
	return middleware.Render(c, http.StatusOK, ListPage(h.list.BasePath(), st, &page))
}

// CreateForm issues an invoice from the list page (POST /admin/invoices).
func (h *Handler) CreateForm(c echo.Context) error {
	var req CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid form")
	}
	if _, err := h.service.Create(c.Request().Context(), audit.ActorFrom(c), req); err != nil {
		return err
	}
	return middleware.Navigate(c, h.list.BasePath())
}

// UpdateStatusForm moves an invoice along (POST /admin/invoices/:id/status).
func (h *Handler) UpdateStatusForm(c echo.Context) error {
	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid form")
	}
	if _, err := h.service.UpdateStatus(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), req); err != nil {
		return err
	}
	return middleware.Navigate(c, h.list.BasePath())
}

// APIList returns one page of invoices as JSON (GET /api/invoices).
func (h *Handler) APIList(c echo.Context) error {
	st := listview.Stateless(c)
	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// APIGet returns one invoice (GET /api/invoices/:id).
func (h *Handler) APIGet(c echo.Context) error {
	inv, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

// Create issues an invoice (POST /api/invoices).
func (h *Handler) Create(c echo.Context) error {
	var req CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	inv, err := h.service.Create(c.Request().Context(), audit.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, inv)
}

// UpdateStatus moves an invoice along (PUT /api/invoices/:id/status).
func (h *Handler) UpdateStatus(c echo.Context) error {
	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	inv, err := h.service.UpdateStatus(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}
