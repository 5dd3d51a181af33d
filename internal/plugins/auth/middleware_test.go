package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/backend"
	"github.com/plusvans/admin/internal/config"
)

// mockAuthService implements AuthService for middleware and handler tests.
type mockAuthService struct {
	loginFn       func(ctx context.Context, input LoginInput) (*backend.Grant, error)
	loadProfileFn func(ctx context.Context, token string) (*backend.Profile, error)
	loggedOut     []string
}

func (m *mockAuthService) Login(ctx context.Context, input LoginInput) (*backend.Grant, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, input)
	}
	return &backend.Grant{AccessToken: "tok", Body: []byte(`{"access_token":"tok","token_type":"bearer"}`)}, nil
}

func (m *mockAuthService) LoadProfile(ctx context.Context, token string) (*backend.Profile, error) {
	if m.loadProfileFn != nil {
		return m.loadProfileFn(ctx, token)
	}
	return &backend.Profile{ID: "u1", Name: "Dee", Role: backend.RoleAdmin}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, token string) {
	m.loggedOut = append(m.loggedOut, token)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		CookieName:       "auth_token",
		AdminPrefix:      "/admin",
		SignInPath:       "/auth/signin",
		UnauthorizedPath: "/unauthorized",
		SessionMaxAge:    30 * 24 * time.Hour,
		ProfileCacheTTL:  5 * time.Minute,
	}
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "protected content")
}

// serve runs mw around okHandler for req with a fresh SessionState.
func serve(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(contextKeyState, NewSessionState())
	if err := mw(okHandler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c
}

func withCookie(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	return req
}

func TestRequireSession_RedirectsWithCallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
	rec, _ := serve(RequireSession(testAuthConfig()), req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/signin?callbackUrl=%2Fadmin%2Fbookings" {
		t.Errorf("unexpected redirect %q", loc)
	}
}

func TestRequireSession_PresenceOnly(t *testing.T) {
	req := withCookie(httptest.NewRequest(http.MethodGet, "/admin/bookings", nil), "not-even-a-jwt")
	rec, _ := serve(RequireSession(testAuthConfig()), req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected pass-through with any cookie, got %d", rec.Code)
	}
}

func TestRequireSession_IgnoresPathsOutsidePrefix(t *testing.T) {
	for _, path := range []string{"/auth/signin", "/administrator", "/healthz"} {
		rec, _ := serve(RequireSession(testAuthConfig()), httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected pass-through, got %d", path, rec.Code)
		}
	}
}

func TestRequireSession_HTMXGetsHXRedirect(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("HX-Request", "true")
	rec, _ := serve(RequireSession(testAuthConfig()), req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/auth/signin?callbackUrl=%2Fadmin" {
		t.Errorf("unexpected HX-Redirect %q", got)
	}
}

func TestRequireRole_Authorized(t *testing.T) {
	svc := &mockAuthService{}
	req := withCookie(httptest.NewRequest(http.MethodGet, "/admin/bookings", nil), "tok")
	rec, c := serve(RequireRole(svc, testAuthConfig(), backend.RoleAdmin), req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "protected content") {
		t.Fatalf("expected protected content, got %d %q", rec.Code, rec.Body.String())
	}
	if GetProfile(c) == nil || GetUserID(c) != "u1" {
		t.Error("expected profile in context")
	}
	if GetSessionKey(c) != SessionKey("tok") {
		t.Error("expected session state authenticated")
	}
}

func TestGetProfile_ReadsSessionState(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin", nil), httptest.NewRecorder())
	if GetProfile(c) != nil {
		t.Fatal("expected no profile without a session state")
	}

	c.Set(contextKeyState, NewSessionState())
	GetSessionState(c).Authenticate("tok", &backend.Profile{ID: "u9", Role: backend.RoleOps})
	if p := GetProfile(c); p == nil || p.ID != "u9" {
		t.Fatalf("expected profile from session state, got %+v", p)
	}

	GetSessionState(c).Clear()
	if GetProfile(c) != nil || GetUserID(c) != "" {
		t.Error("expected no profile after clear")
	}
}

func TestRequireRole_AttachesSessionStateWhenMissing(t *testing.T) {
	e := echo.New()
	req := withCookie(httptest.NewRequest(http.MethodGet, "/admin/bookings", nil), "tok")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequireRole(&mockAuthService{}, testAuthConfig())(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if GetSessionState(c) == nil || GetUserID(c) != "u1" {
		t.Error("expected an authenticated session state")
	}
}

func TestRequireRole_MismatchGoesToUnauthorized(t *testing.T) {
	svc := &mockAuthService{
		loadProfileFn: func(ctx context.Context, token string) (*backend.Profile, error) {
			return &backend.Profile{ID: "u2", Role: "staff"}, nil
		},
	}
	req := withCookie(httptest.NewRequest(http.MethodGet, "/admin/settings", nil), "tok")
	rec, c := serve(RequireRole(svc, testAuthConfig(), backend.RoleAdmin), req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/unauthorized" {
		t.Fatalf("expected redirect to /unauthorized, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if strings.Contains(rec.Body.String(), "protected content") {
		t.Error("protected content rendered on role mismatch")
	}
	if GetSession(c) != nil {
		t.Error("session must not be admitted on role mismatch")
	}
}

func TestRequireRole_RejectedTokenClearsCookie(t *testing.T) {
	svc := &mockAuthService{
		loadProfileFn: func(ctx context.Context, token string) (*backend.Profile, error) {
			return nil, apperror.NewUnauthorized("session expired or invalid")
		},
	}
	req := withCookie(httptest.NewRequest(http.MethodGet, "/admin/bookings", nil), "stale")
	rec, _ := serve(RequireRole(svc, testAuthConfig()), req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "auth_token=;") {
		t.Errorf("expected cookie cleared, got %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestRequireRole_BackendDownFailsClosedKeepsCookie(t *testing.T) {
	svc := &mockAuthService{
		loadProfileFn: func(ctx context.Context, token string) (*backend.Profile, error) {
			return nil, apperror.NewUnavailable("Backend service is unreachable", nil)
		},
	}
	req := withCookie(httptest.NewRequest(http.MethodGet, "/api/bookings", nil), "tok")
	rec, _ := serve(RequireRole(svc, testAuthConfig()), req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for API, got %d", rec.Code)
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Error("cookie should survive a backend outage")
	}
}

func TestRequireRole_CancelledRequestWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	svc := &mockAuthService{
		loadProfileFn: func(ctx context.Context, token string) (*backend.Profile, error) {
			<-release
			return &backend.Profile{ID: "u1", Role: backend.RoleAdmin}, nil
		},
	}
	defer close(release)

	req := withCookie(httptest.NewRequest(http.MethodGet, "/admin", nil), "tok").WithContext(ctx)
	cancel()
	rec, c := serve(RequireRole(svc, testAuthConfig()), req)

	if rec.Body.Len() != 0 || c.Response().Committed {
		t.Errorf("expected nothing written, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestSignInURL(t *testing.T) {
	cfg := testAuthConfig()
	if got := SignInURL(cfg, "/admin/bookings"); got != "/auth/signin?callbackUrl=%2Fadmin%2Fbookings" {
		t.Errorf("unexpected %q", got)
	}
	if got := SignInURL(cfg, ""); got != "/auth/signin" {
		t.Errorf("unexpected %q", got)
	}
}
