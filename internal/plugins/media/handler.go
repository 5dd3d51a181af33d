package media

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/widgets/listview"
)

// Handler handles HTTP requests for media operations.
type Handler struct {
	service MediaService
	list    *listview.Controller
}

// NewHandler creates a new media handler.
func NewHandler(service MediaService, list *listview.Controller) *Handler {
	return &Handler{service: service, list: list}
}

// filterByAlias lets "filterBy" stand in for the status filter.
func filterByAlias(c echo.Context) {
	q := c.QueryParams()
	if v := q.Get("filterBy"); v != "" && !q.Has("status") {
		q.Set("status", v)
	}
}

// List renders the media library (GET /admin/media).
func (h *Handler) List(c echo.Context) error {
	filterByAlias(c)
	st := h.list.Current(c)

	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		slog.Error("loading media library", slog.Any("error", err))
		return middleware.Render(c, http.StatusOK, LibraryPage(h.list.BasePath(), st, nil))
	}

	h.list.Persist(c, st)
	return middleware.Render(c, http.StatusOK, LibraryPage(h.list.BasePath(), st, &page))
}

// APIList returns one page of uploads as JSON (GET /api/media).
func (h *Handler) APIList(c echo.Context) error {
	filterByAlias(c)
	st := listview.Stateless(c)
	page, err := h.service.List(c.Request().Context(), &st)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ListByBooking returns a booking's photos (GET /api/bookings/:id/media).
func (h *Handler) ListByBooking(c echo.Context) error {
	files, err := h.service.ListByBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

// Stats returns upload statistics (GET /api/media/stats).
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Upload handles multipart photo uploads (POST /api/bookings/:id/media).
func (h *Handler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return apperror.NewBadRequest("no file provided")
	}

	src, err := file.Open()
	if err != nil {
		return apperror.NewInternal(err)
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return apperror.NewInternal(err)
	}

	mediaFile, err := h.service.Upload(c.Request().Context(), audit.ActorFrom(c), UploadInput{
		BookingID:           c.Param("id"),
		OriginalName:        file.Filename,
		MimeType:            file.Header.Get("Content-Type"),
		FileBytes:           fileBytes,
		WasteLocation:       c.FormValue("waste_location"),
		AccessRestricted:    formBool(c, "access_restricted"),
		DismantlingRequired: formBool(c, "dismantling_required"),
	})
	if err != nil {
		return err
	}

	resp := UploadResponse{
		ID:       mediaFile.ID,
		URL:      "/media/" + mediaFile.ID,
		MimeType: mediaFile.MimeType,
		FileSize: mediaFile.FileSize,
	}
	if _, ok := mediaFile.ThumbnailPaths["300"]; ok {
		resp.ThumbnailURL = "/media/" + mediaFile.ID + "/thumb/300"
	}
	return c.JSON(http.StatusCreated, resp)
}

func formBool(c echo.Context, name string) bool {
	switch c.FormValue(name) {
	case "true", "on", "1":
		return true
	}
	return false
}

// Serve streams a photo (GET /media/:id).
func (h *Handler) Serve(c echo.Context) error {
	file, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	// UUID-based filenames never change, but photos are private.
	c.Response().Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	c.Response().Header().Set(echo.HeaderContentType, file.MimeType)
	return c.File(h.service.FilePath(file))
}

// ServeThumbnail streams a thumbnail (GET /media/:id/thumb/:size).
func (h *Handler) ServeThumbnail(c echo.Context) error {
	size := c.Param("size")
	if _, ok := ThumbnailSizes[size]; !ok {
		return apperror.NewBadRequest("invalid thumbnail size")
	}

	file, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	c.Response().Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	return c.File(h.service.ThumbnailPath(file, size))
}

// APIGet returns a photo's metadata (GET /api/media/:id).
func (h *Handler) APIGet(c echo.Context) error {
	file, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, file)
}

// Delete removes a photo (DELETE /api/media/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), c.QueryParam("reason")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteForm removes a photo from the library page
// (POST /admin/media/:id/delete).
func (h *Handler) DeleteForm(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), audit.ActorFrom(c), c.Param("id"), c.FormValue("reason")); err != nil {
		return err
	}
	return middleware.Navigate(c, h.list.BasePath())
}
