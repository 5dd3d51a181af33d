package invoices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/widgets/listview"
)

func newTestHandler(repo *mockInvoiceRepo) *Handler {
	svc := newTestService(repo, &mockBookings{booking: confirmedBooking()}, nil)
	return NewHandler(svc, listview.NewController(nil, "invoices", "/admin/invoices"))
}

func TestHandler_ListShowsOverdueAndPDFLink(t *testing.T) {
	h := newTestHandler(&mockInvoiceRepo{
		listFn: func(ctx context.Context, f listing.Filters) ([]Invoice, error) {
			return []Invoice{*storedInvoice(StatusSent, today.AddDate(0, 0, -1))}, nil
		},
	})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin/invoices", nil), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"INV-202403-3F2A9C4E",
		`status-overdue`,
		`/admin/bookings/3f2a9c4e-1111-2222-3333-444455556666/invoice.pdf`,
		`value="paid"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body", want)
		}
	}
}

func TestHandler_CreateFormRedirects(t *testing.T) {
	repo := &mockInvoiceRepo{}
	h := newTestHandler(repo)

	form := url.Values{"booking_id": {"3f2a9c4e-1111-2222-3333-444455556666"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/invoices", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	e := echo.New()
	rec := httptest.NewRecorder()
	if err := h.CreateForm(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/admin/invoices" {
		t.Errorf("expected redirect to list, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if repo.created == nil {
		t.Error("expected an invoice to be stored")
	}
}

func TestRegisterRoutes(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e, newTestHandler(&mockInvoiceRepo{}), nil, config.AuthConfig{})

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /admin/invoices",
		"POST /admin/invoices/:id/status",
		"GET /api/invoices",
		"POST /api/invoices",
		"PUT /api/invoices/:id/status",
	} {
		if !routes[want] {
			t.Errorf("missing route %s", want)
		}
	}
}
