package listview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/backend"
	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/plugins/auth"
)

// memoryStore is an in-memory StateStore keyed by session and view.
type memoryStore struct {
	states  map[string]listing.ViewState
	loadErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: map[string]listing.ViewState{}}
}

func (m *memoryStore) Load(ctx context.Context, sessionKey, view string, fallback listing.ViewState) (listing.ViewState, error) {
	if m.loadErr != nil {
		return fallback, m.loadErr
	}
	st, ok := m.states[sessionKey+"/"+view]
	if !ok {
		return fallback, nil
	}
	return st, nil
}

func (m *memoryStore) Save(ctx context.Context, sessionKey, view string, st listing.ViewState) error {
	m.states[sessionKey+"/"+view] = st
	return nil
}

// signedIn returns an echo context carrying an admitted session for token.
func signedIn(req *http.Request, token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = auth.WithSessionState()(func(echo.Context) error { return nil })(c)
	auth.GetSessionState(c).Authenticate(token, &backend.Profile{ID: "u1", Role: backend.RoleAdmin})
	return c, rec
}

func TestCurrent_RestoresStoredFilters(t *testing.T) {
	store := newMemoryStore()
	ctl := NewController(store, "bookings", "/admin/bookings")

	c, _ := signedIn(httptest.NewRequest(http.MethodGet, "/admin/bookings?status=pending&search=NW1", nil), "tok")
	st := ctl.Current(c)
	ctl.Persist(c, st)

	// A bare page link keeps the stored filters.
	c, _ = signedIn(httptest.NewRequest(http.MethodGet, "/admin/bookings?page=2", nil), "tok")
	st = ctl.Current(c)
	if st.Filters.Status != "pending" || st.Filters.Search != "NW1" {
		t.Errorf("expected stored filters, got %+v", st.Filters)
	}
	if st.Window.CurrentPage != 2 {
		t.Errorf("expected page 2, got %d", st.Window.CurrentPage)
	}
}

func TestCurrent_SessionsAreIsolated(t *testing.T) {
	store := newMemoryStore()
	ctl := NewController(store, "bookings", "/admin/bookings")

	c, _ := signedIn(httptest.NewRequest(http.MethodGet, "/admin/bookings?status=completed", nil), "tok-a")
	ctl.Persist(c, ctl.Current(c))

	c, _ = signedIn(httptest.NewRequest(http.MethodGet, "/admin/bookings", nil), "tok-b")
	if st := ctl.Current(c); st.Filters.Status != listing.StatusAll {
		t.Errorf("expected default filters for another session, got %q", st.Filters.Status)
	}
}

func TestCurrent_StoreFailureFallsBack(t *testing.T) {
	store := newMemoryStore()
	store.loadErr = errors.New("redis down")
	ctl := NewController(store, "bookings", "/admin/bookings")

	c, _ := signedIn(httptest.NewRequest(http.MethodGet, "/admin/bookings?page=3", nil), "tok")
	st := ctl.Current(c)
	if st.Window.CurrentPage != 3 || st.Filters != listing.DefaultFilters() {
		t.Errorf("expected initial state with query applied, got %+v", st)
	}
}

func TestSelection_ToggleRowAndAll(t *testing.T) {
	store := newMemoryStore()
	ctl := NewController(store, "customers", "/admin/customers")

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/customers/selection", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		c, rec := signedIn(req, "tok")
		if err := ctl.Selection(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return rec
	}

	rec := post(url.Values{"id": {"c2"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/customers" {
		t.Errorf("expected redirect back to list, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	c, _ := signedIn(httptest.NewRequest(http.MethodGet, "/admin/customers", nil), "tok")
	if ids := ctl.Load(c).SelectedIDs(); len(ids) != 1 || ids[0] != "c2" {
		t.Fatalf("expected [c2], got %v", ids)
	}

	post(url.Values{"all": {"1"}, "visible": {"c1", "c2", "c3"}})
	if ids := ctl.Load(c).SelectedIDs(); len(ids) != 3 {
		t.Fatalf("expected all visible selected, got %v", ids)
	}

	post(url.Values{"all": {"1"}, "visible": {"c1", "c2", "c3"}})
	if ids := ctl.Load(c).SelectedIDs(); len(ids) != 0 {
		t.Errorf("expected selection cleared, got %v", ids)
	}
}

func TestSelection_PageChangeClearsSelection(t *testing.T) {
	store := newMemoryStore()
	ctl := NewController(store, "customers", "/admin/customers")

	c, _ := signedIn(httptest.NewRequest(http.MethodGet, "/admin/customers", nil), "tok")
	st := ctl.Current(c)
	st.Toggle("c1")
	ctl.Persist(c, st)

	c, _ = signedIn(httptest.NewRequest(http.MethodGet, "/admin/customers?page=2", nil), "tok")
	if st := ctl.Current(c); len(st.SelectedIDs()) != 0 {
		t.Errorf("expected selection cleared on page change, got %v", st.SelectedIDs())
	}
}

func TestStateless_IgnoresStore(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/bookings?per_page=25&status=pending", nil), httptest.NewRecorder())

	st := Stateless(c)
	if st.Window.ItemsPerPage != 25 {
		t.Errorf("expected 25 per page, got %d", st.Window.ItemsPerPage)
	}
	if st.Filters.Status != "pending" {
		t.Errorf("expected status pending, got %q", st.Filters.Status)
	}
}
