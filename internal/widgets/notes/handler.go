package notes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/backend"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// Handler handles HTTP requests for note operations. Handlers are thin:
// bind request, call service, render response. No business logic lives here.
type Handler struct {
	service NoteService
}

// NewHandler creates a new note handler backed by the given service.
func NewHandler(service NoteService) *Handler {
	return &Handler{service: service}
}

func isAdmin(c echo.Context) bool {
	p := auth.GetProfile(c)
	return p != nil && p.Role == backend.RoleAdmin
}

func detailPath(bookingID string) string {
	return "/admin/bookings/" + bookingID
}

// List returns a booking's notes (GET /api/bookings/:id/notes).
func (h *Handler) List(c echo.Context) error {
	notes, err := h.service.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notes)
}

// Create adds a note (POST /api/bookings/:id/notes).
func (h *Handler) Create(c echo.Context) error {
	var req CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	note, err := h.service.Create(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, note)
}

// Update edits a note (PUT /api/bookings/:id/notes/:noteId).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	note, err := h.service.Update(c.Request().Context(), audit.ActorFrom(c), c.Param("noteId"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

// Delete removes a note (DELETE /api/bookings/:id/notes/:noteId).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), audit.ActorFrom(c), c.Param("noteId"), isAdmin(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateForm adds a note from the booking page form
// (POST /admin/bookings/:id/notes) and returns to the booking.
func (h *Handler) CreateForm(c echo.Context) error {
	bookingID := c.Param("id")
	if _, err := h.service.Create(c.Request().Context(), audit.ActorFrom(c), bookingID, CreateNoteRequest{
		Body: c.FormValue("body"),
	}); err != nil {
		return err
	}
	return middleware.Navigate(c, detailPath(bookingID))
}

// DeleteForm removes a note from the booking page
// (POST /admin/bookings/:id/notes/:noteId/delete).
func (h *Handler) DeleteForm(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), audit.ActorFrom(c), c.Param("noteId"), isAdmin(c)); err != nil {
		return err
	}
	return middleware.Navigate(c, detailPath(c.Param("id")))
}
