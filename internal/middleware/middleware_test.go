package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/plusvans/admin/internal/apperror"
)

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequestID_ReusesValidHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Request-ID", "proxy-abc.123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequestID()(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := GetRequestID(c); got != "proxy-abc.123" {
		t.Errorf("expected proxy ID, got %q", got)
	}
	if rec.Header().Get("X-Request-ID") != "proxy-abc.123" {
		t.Errorf("expected ID echoed in response header")
	}
}

func TestRequestID_ReplacesMalformedHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Request-ID", "bad id <script>")
	c := e.NewContext(req, httptest.NewRecorder())

	if err := RequestID()(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := GetRequestID(c)
	if got == "" || got == "bad id <script>" {
		t.Errorf("expected generated ID, got %q", got)
	}
}

func TestCSRF_IssuesCookieOnSafeRequest(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := CSRF(false)(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if GetCSRFToken(c) == "" {
		t.Fatal("expected token in context")
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), CSRFCookieName+"=") {
		t.Errorf("expected CSRF cookie to be set, got %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestCSRF_RejectsMismatchedForm(t *testing.T) {
	e := echo.New()
	form := url.Values{"csrf_token": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/bookings/bulk/status", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "right"})
	c := e.NewContext(req, httptest.NewRecorder())

	err := CSRF(false)(ok)(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestCSRF_AcceptsMatchingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin/quotes", nil)
	req.Header.Set("X-CSRF-Token", "right")
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "right"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := CSRF(false)(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCSRF_SkipsJSONAPI(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := CSRF(false)(ok)(c); err != nil {
		t.Fatalf("expected JSON API request to pass, got %v", err)
	}
}

func TestRateLimit_BlocksAfterMax(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	e := echo.New()
	limit := RateLimit(rdb, "login", 2, time.Minute)

	for i := 0; i < 2; i++ {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/signin", nil), httptest.NewRecorder())
		if err := limit(ok)(c); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i+1, err)
		}
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/signin", nil), rec)
	err := limit(ok)(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimit_FailsOpenWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/signin", nil), httptest.NewRecorder())
	if err := RateLimit(rdb, "login", 1, time.Minute)(ok)(c); err != nil {
		t.Fatalf("expected request through, got %v", err)
	}
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin", nil), httptest.NewRecorder())

	err := Recovery()(func(c echo.Context) error { panic("boom") })(c)
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected internal AppError, got %v", err)
	}
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	e := echo.New()
	mw := CORS(CORSConfig{AllowedOrigins: []string{"https://admin.plusvans.co.uk/"}, AllowCredentials: true})

	req := httptest.NewRequest(http.MethodOptions, "/api/bookings", nil)
	req.Header.Set("Origin", "https://admin.plusvans.co.uk")
	rec := httptest.NewRecorder()
	if err := mw(ok)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected preflight 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("expected credentials allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	if err := mw(ok)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("expected no CORS headers for unknown origin")
	}
}

func TestNavigate(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	if err := Navigate(e.NewContext(httptest.NewRequest(http.MethodPost, "/x", nil), rec), "/admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin" {
		t.Errorf("expected 303 to /admin, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	if err := Navigate(e.NewContext(req, rec), "/admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("HX-Redirect") != "/admin" {
		t.Errorf("expected HX-Redirect, got %q", rec.Header().Get("HX-Redirect"))
	}
}
