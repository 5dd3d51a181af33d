package quotes

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/plugins/auth"
	"github.com/plusvans/admin/internal/widgets/listview"
)

// Handler handles HTTP requests for quote operations.
type Handler struct {
	service QuoteService
	list    *listview.Controller
}

// NewHandler creates a new quote handler.
func NewHandler(service QuoteService, list *listview.Controller) *Handler {
	return &Handler{service: service, list: list}
}

// sessionToken is the signed-in caller's token, forwarded to the backend
// procedures.
func sessionToken(c echo.Context) string {
	if s := auth.GetSession(c); s != nil {
		return s.Token
	}
	return ""
}

// List renders the quotes page (GET /admin/quotes).
func (h *Handler) List(c echo.Context) error {
	st := h.list.Current(c)

	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		slog.Error("loading quotes", slog.Any("error", err))
		return middleware.Render(c, http.StatusOK, ListPage(h.list.BasePath(), st, nil))
	}

	h.list.Persist(c, st)
	return middleware.Render(c, http.StatusOK, ListPage(h.list.BasePath(), st, &page))
}

// APIList returns one page of quotes as JSON (GET /api/quotes).
func (h *Handler) APIList(c echo.Context) error {
	st := listview.Stateless(c)
	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// APIGet returns one quote (GET /api/quotes/:id).
func (h *Handler) APIGet(c echo.Context) error {
	q, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}

// Create prices and records a quote (POST /api/quotes).
func (h *Handler) Create(c echo.Context) error {
	var req CreateQuoteRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	q, err := h.service.Create(c.Request().Context(), audit.ActorFrom(c), sessionToken(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, q)
}

// CreateForm prices a quote from the quotes page (POST /admin/quotes).
func (h *Handler) CreateForm(c echo.Context) error {
	volume, err := strconv.ParseFloat(c.FormValue("volume"), 64)
	if err != nil {
		return apperror.NewValidation("volume must be a number")
	}

	if _, err := h.service.Create(c.Request().Context(), audit.ActorFrom(c), sessionToken(c), CreateQuoteRequest{
		BookingID:      c.FormValue("booking_id"),
		Postcode:       c.FormValue("postcode"),
		Volume:         volume,
		CollectionDate: c.FormValue("collection_date"),
		HeavyItems:     c.FormValue("heavy_items") != "",
		Dismantling:    c.FormValue("dismantling_required") != "",
	}); err != nil {
		return err
	}
	return middleware.Navigate(c, h.list.BasePath())
}

// UpdateStatus moves a quote to another status (PUT /api/quotes/:id/status).
func (h *Handler) UpdateStatus(c echo.Context) error {
	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	q, err := h.service.UpdateStatus(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}

// UpdateStatusForm changes a quote's status from the quotes page
// (POST /admin/quotes/:id/status).
func (h *Handler) UpdateStatusForm(c echo.Context) error {
	if _, err := h.service.UpdateStatus(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), StatusUpdateRequest{
		Status: c.FormValue("status"),
	}); err != nil {
		return err
	}
	return middleware.Navigate(c, h.list.BasePath())
}
