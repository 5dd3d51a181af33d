package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/templates/pages"
)

// Handler handles HTTP requests for sign-in and sign-out. Handlers are thin:
// they bind the request, call the service, and render the response.
type Handler struct {
	service AuthService
	cfg     config.AuthConfig
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService, cfg config.AuthConfig) *Handler {
	return &Handler{service: service, cfg: cfg}
}

// SignInForm renders the sign-in page (GET /auth/signin). A user who already
// holds a working staff session goes straight to the callback.
func (h *Handler) SignInForm(c echo.Context) error {
	callback := safeCallback(c.QueryParam("callbackUrl"), h.cfg.AdminPrefix)

	if token := getSessionToken(c, h.cfg.CookieName); token != "" {
		if p, err := h.service.LoadProfile(c.Request().Context(), token); err == nil && p.IsStaff() {
			return c.Redirect(http.StatusSeeOther, callback)
		}
	}

	csrfToken := middleware.GetCSRFToken(c)
	return middleware.Render(c, http.StatusOK, SignInPage(csrfToken, "", callback, ""))
}

// SignIn processes the sign-in form (POST /auth/signin).
func (h *Handler) SignIn(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	callback := safeCallback(req.CallbackURL, h.cfg.AdminPrefix)

	grant, err := h.service.Login(c.Request().Context(), LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		csrfToken := middleware.GetCSRFToken(c)
		errMsg := apperror.SafeMessage(err)
		if middleware.IsHTMX(c) {
			return middleware.Render(c, http.StatusOK, SignInForm(csrfToken, req.Username, callback, errMsg))
		}
		return middleware.Render(c, http.StatusOK, SignInPage(csrfToken, req.Username, callback, errMsg))
	}

	setSessionCookie(c, h.cfg, grant.AccessToken)
	return middleware.Navigate(c, callback)
}

// APILogin is the JSON login endpoint (POST /api/auth/login). On success the
// backend's token payload is relayed unchanged; on failure the backend's
// status and detail message are relayed.
func (h *Handler) APILogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	grant, err := h.service.Login(c.Request().Context(), LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return c.JSON(apperror.SafeCode(err), map[string]string{
			"error": apperror.SafeMessage(err),
		})
	}

	setSessionCookie(c, h.cfg, grant.AccessToken)
	return c.JSONBlob(http.StatusOK, grant.Body)
}

// APILogout clears the session (POST /api/auth/logout). Always succeeds.
func (h *Handler) APILogout(c echo.Context) error {
	h.endSession(c)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// SignOut clears the session and returns to sign-in (POST /auth/signout).
func (h *Handler) SignOut(c echo.Context) error {
	h.endSession(c)
	return middleware.Navigate(c, h.cfg.SignInPath)
}

// Unauthorized renders the role-mismatch page (GET /unauthorized).
func (h *Handler) Unauthorized(c echo.Context) error {
	return middleware.Render(c, http.StatusForbidden, pages.UnauthorizedPage())
}

// endSession drops server-side state, the request's session and the cookie.
// The backend is not called; logout never depends on the remote side.
func (h *Handler) endSession(c echo.Context) {
	if token := getSessionToken(c, h.cfg.CookieName); token != "" {
		h.service.Logout(c.Request().Context(), token)
	}
	if state := GetSessionState(c); state != nil {
		state.Clear()
	}
	clearSessionCookie(c, h.cfg)
}

// safeCallback accepts only same-site absolute paths, falling back to def.
func safeCallback(raw, def string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, `/\`) {
		return def
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return def
	}
	return u.RequestURI()
}

// --- Cookie helpers ---

// getSessionToken reads the session token from the cookie.
func getSessionToken(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// setSessionCookie sets the session cookie: HttpOnly, SameSite=Lax, Secure
// when configured (always in production), path /, 30-day max age.
func setSessionCookie(c echo.Context, cfg config.AuthConfig, token string) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookies || c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
	})
}

// clearSessionCookie removes the session cookie.
func clearSessionCookie(c echo.Context, cfg config.AuthConfig) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookies || c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
