package bookings

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/widgets/listview"
	"github.com/plusvans/admin/internal/widgets/notes"
)

// Handler handles HTTP requests for booking operations. Handlers are thin:
// bind request, call service, render response. No business logic lives here.
type Handler struct {
	service BookingService
	notes   notes.NoteService
	list    *listview.Controller
}

// NewHandler creates a new booking handler. noteSvc may be nil, in which
// case the detail page shows no notes.
func NewHandler(service BookingService, noteSvc notes.NoteService, list *listview.Controller) *Handler {
	return &Handler{service: service, notes: noteSvc, list: list}
}

// List renders the bookings list (GET /admin/bookings).
func (h *Handler) List(c echo.Context) error {
	st := h.list.Current(c)

	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		slog.Error("loading bookings", slog.Any("error", err))
		return middleware.Render(c, http.StatusOK, ListPage(h.list.BasePath(), st, nil))
	}

	h.list.Persist(c, st)
	return middleware.Render(c, http.StatusOK, ListPage(h.list.BasePath(), st, &page))
}

// APIList returns one page of bookings as JSON (GET /api/bookings).
func (h *Handler) APIList(c echo.Context) error {
	st := listview.Stateless(c)
	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Selection toggles rows in the stored selection
// (POST /admin/bookings/selection).
func (h *Handler) Selection(c echo.Context) error {
	return h.list.Selection(c)
}

// Detail renders one booking (GET /admin/bookings/:id).
func (h *Handler) Detail(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.service.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	var list []notes.Note
	if h.notes != nil {
		list, err = h.notes.List(ctx, b.ID)
		if err != nil {
			slog.Warn("loading booking notes",
				slog.String("booking_id", b.ID),
				slog.Any("error", err),
			)
		}
	}
	return middleware.Render(c, http.StatusOK, DetailPage(b, notes.Panel(b.ID, list)))
}

// APIGet returns one booking as JSON (GET /api/bookings/:id).
func (h *Handler) APIGet(c echo.Context) error {
	b, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// UpdateStatusForm changes a booking's status from the detail page
// (POST /admin/bookings/:id/status).
func (h *Handler) UpdateStatusForm(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.service.UpdateStatus(c.Request().Context(), audit.ActorFrom(c), id, StatusUpdateRequest{
		Status: c.FormValue("status"),
		Reason: c.FormValue("reason"),
	}); err != nil {
		return err
	}
	return middleware.Navigate(c, h.list.BasePath()+"/"+id)
}

// UpdateStatus changes a booking's status (PUT /api/bookings/:id/status).
func (h *Handler) UpdateStatus(c echo.Context) error {
	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	b, err := h.service.UpdateStatus(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// BulkStatusForm applies a status to every selected booking and clears the
// selection (POST /admin/bookings/bulk/status).
func (h *Handler) BulkStatusForm(c echo.Context) error {
	st := h.list.Load(c)
	if _, err := h.service.BulkUpdateStatus(c.Request().Context(), audit.ActorFrom(c), BulkStatusRequest{
		IDs:    st.SelectedIDs(),
		Status: c.FormValue("status"),
		Reason: c.FormValue("reason"),
	}); err != nil {
		return err
	}
	h.list.ClearSelection(c)
	return middleware.Navigate(c, h.list.BasePath())
}

// BulkStatus applies a status to the listed bookings
// (POST /api/bookings/bulk/status).
func (h *Handler) BulkStatus(c echo.Context) error {
	var req BulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	n, err := h.service.BulkUpdateStatus(c.Request().Context(), audit.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"updated": n})
}

// Invoice streams the booking's invoice PDF
// (GET /admin/bookings/:id/invoice.pdf).
func (h *Handler) Invoice(c echo.Context) error {
	pdf, filename, err := h.service.Invoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(pdf)))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// Stats returns booking counts per status (GET /api/bookings/stats).
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
