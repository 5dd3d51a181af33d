package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/backend"
)

func newHandlerContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(contextKeyState, NewSessionState())
	return c, rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestAPILogin_SetsCookieAndRelaysBody(t *testing.T) {
	h := NewHandler(&mockAuthService{}, testAuthConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"a","password":"b"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newHandlerContext(req)

	if err := h.APILogin(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"token_type":"bearer"`) {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	ck := findCookie(rec, "auth_token")
	if ck == nil {
		t.Fatal("expected session cookie")
	}
	if !ck.HttpOnly || ck.SameSite != http.SameSiteLaxMode || ck.Path != "/" || ck.MaxAge != 30*24*60*60 {
		t.Errorf("unexpected cookie attributes %+v", ck)
	}
	if ck.Secure {
		t.Error("cookie should not be Secure outside production")
	}
}

func TestAPILogin_SecureCookieInProduction(t *testing.T) {
	cfg := testAuthConfig()
	cfg.SecureCookies = true
	h := NewHandler(&mockAuthService{}, cfg)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"a","password":"b"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newHandlerContext(req)

	if err := h.APILogin(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ck := findCookie(rec, "auth_token"); ck == nil || !ck.Secure {
		t.Error("expected Secure cookie")
	}
}

func TestAPILogin_RelaysBackendFailure(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, input LoginInput) (*backend.Grant, error) {
			return nil, apperror.NewStatus(http.StatusUnauthorized, "Incorrect email or password")
		},
	}
	h := NewHandler(svc, testAuthConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"a","password":"b"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newHandlerContext(req)

	if err := h.APILogin(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect email or password") {
		t.Errorf("expected backend detail, got %s", rec.Body.String())
	}
	if findCookie(rec, "auth_token") != nil {
		t.Error("no cookie on failure")
	}
}

func TestSignIn_RedirectsToLocalCallbackOnly(t *testing.T) {
	tests := []struct {
		callback string
		want     string
	}{
		{"/admin/bookings?page=2", "/admin/bookings?page=2"},
		{"https://evil.example/admin", "/admin"},
		{"//evil.example", "/admin"},
		{"", "/admin"},
	}

	for _, tt := range tests {
		h := NewHandler(&mockAuthService{}, testAuthConfig())
		form := url.Values{"username": {"a"}, "password": {"b"}, "callbackUrl": {tt.callback}}
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		c, rec := newHandlerContext(req)

		if err := h.SignIn(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != tt.want {
			t.Errorf("callback %q: got %d %q, want %q", tt.callback, rec.Code, rec.Header().Get("Location"), tt.want)
		}
	}
}

func TestSignIn_FailureRerendersForm(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, input LoginInput) (*backend.Grant, error) {
			return nil, apperror.NewStatus(http.StatusUnauthorized, "Login failed")
		},
	}
	h := NewHandler(svc, testAuthConfig())
	form := url.Values{"username": {"dee<script>"}, "password": {"bad"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c, rec := newHandlerContext(req)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Login failed") {
		t.Error("expected error message in form")
	}
	if strings.Contains(body, "dee<script>") {
		t.Error("username must be escaped")
	}
}

func TestLogout_ClearsEverythingWithoutBackend(t *testing.T) {
	svc := &mockAuthService{}
	h := NewHandler(svc, testAuthConfig())
	req := withCookie(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), "tok")
	c, rec := newHandlerContext(req)
	GetSessionState(c).Authenticate("tok", &backend.Profile{ID: "u1"})

	if err := h.APILogout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if ck := findCookie(rec, "auth_token"); ck == nil || ck.MaxAge >= 0 {
		t.Errorf("expected cookie deletion, got %+v", ck)
	}
	if GetSessionState(c).Authenticated() {
		t.Error("expected session state cleared")
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "tok" {
		t.Errorf("expected server-side state dropped, got %v", svc.loggedOut)
	}
}

func TestSignOut_RedirectsToSignIn(t *testing.T) {
	h := NewHandler(&mockAuthService{}, testAuthConfig())
	c, rec := newHandlerContext(httptest.NewRequest(http.MethodPost, "/auth/signout", nil))

	if err := h.SignOut(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth/signin" {
		t.Errorf("unexpected response %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestSafeCallback(t *testing.T) {
	tests := map[string]string{
		"/admin/customers": "/admin/customers",
		`/\evil.example`:   "/admin",
		"javascript:alert": "/admin",
		"admin":            "/admin",
	}
	for in, want := range tests {
		if got := safeCallback(in, "/admin"); got != want {
			t.Errorf("safeCallback(%q) = %q, want %q", in, got, want)
		}
	}
}
