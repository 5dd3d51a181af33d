// Package listview binds the listing view state to HTTP requests. Each admin
// list page owns a Controller: it loads the operator's stored filters, page
// and selection, folds the request's query parameters in, and saves the
// result back so the view is restored on the next visit.
package listview

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// StateStore is the persistence the controller needs.
type StateStore interface {
	Load(ctx context.Context, sessionKey, view string, fallback listing.ViewState) (listing.ViewState, error)
	Save(ctx context.Context, sessionKey, view string, st listing.ViewState) error
}

// Controller manages one named list view.
type Controller struct {
	store    StateStore
	view     string
	basePath string
	perPage  int
}

// NewController creates a controller for view, served at basePath. store may
// be nil, in which case state lives only for the request.
func NewController(store StateStore, view, basePath string) *Controller {
	return &Controller{store: store, view: view, basePath: basePath, perPage: listing.DefaultPerPage}
}

// BasePath returns the list page URL.
func (ctl *Controller) BasePath() string {
	return ctl.basePath
}

// Load returns the stored state for the current session without applying
// any request parameters. Store failures fall back to the initial state.
func (ctl *Controller) Load(c echo.Context) listing.ViewState {
	initial := listing.NewViewState(ctl.perPage)
	key := auth.GetSessionKey(c)
	if ctl.store == nil || key == "" {
		return initial
	}

	st, err := ctl.store.Load(c.Request().Context(), key, ctl.view, initial)
	if err != nil {
		slog.Warn("loading list view state",
			slog.String("view", ctl.view),
			slog.Any("error", err),
		)
		return initial
	}
	return st
}

// Current loads the stored state and applies the request's query parameters.
func (ctl *Controller) Current(c echo.Context) listing.ViewState {
	st := ctl.Load(c)
	st.ApplyValues(c.QueryParams())
	return st
}

// Persist saves st for the current session. Failures are logged only; the
// page still renders with the in-memory state.
func (ctl *Controller) Persist(c echo.Context, st listing.ViewState) {
	key := auth.GetSessionKey(c)
	if ctl.store == nil || key == "" {
		return
	}
	if err := ctl.store.Save(c.Request().Context(), key, ctl.view, st); err != nil {
		slog.Warn("saving list view state",
			slog.String("view", ctl.view),
			slog.Any("error", err),
		)
	}
}

// Stateless builds a fresh state from the query parameters alone. JSON list
// endpoints use it so API clients never depend on server-side state.
func Stateless(c echo.Context) listing.ViewState {
	st := listing.NewViewState(listing.DefaultPerPage)
	st.ApplyValues(c.QueryParams())
	return st
}

// Selection handles POST {basePath}/selection. A form carrying "id" toggles
// that row; a form carrying "all" toggles every row listed in "visible".
func (ctl *Controller) Selection(c echo.Context) error {
	st := ctl.Load(c)

	if c.FormValue("all") != "" {
		form, err := c.FormParams()
		if err != nil {
			return err
		}
		st.ToggleAll(form["visible"])
	} else if id := c.FormValue("id"); id != "" {
		st.Toggle(id)
	}

	ctl.Persist(c, st)

	if middleware.IsAPI(c) {
		return c.JSON(http.StatusOK, map[string]any{"selected": st.SelectedIDs()})
	}
	return middleware.Navigate(c, ctl.basePath)
}

// ClearSelection empties the selection, used after a bulk action completes.
func (ctl *Controller) ClearSelection(c echo.Context) {
	st := ctl.Load(c)
	st.ClearSelection()
	ctl.Persist(c, st)
}
