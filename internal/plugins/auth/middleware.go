package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/backend"
	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/templates/pages"
)

// contextKeyState holds the request's SessionState in Echo context. Other
// plugins use the exported getters below.
const contextKeyState = "auth_session_state"

// WithSessionState attaches a fresh, unauthenticated SessionState to every
// request. RequireRole authenticates it; logout clears it.
func WithSessionState() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(contextKeyState, NewSessionState())
			return next(c)
		}
	}
}

// RequireSession is the edge check for the admin area: any request under
// cfg.AdminPrefix without the session cookie is sent to sign-in with the
// requested path as callbackUrl. Only presence is checked; the token is
// validated later by RequireRole.
func RequireSession(cfg config.AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !underPrefix(c.Request().URL.Path, cfg.AdminPrefix) {
				return next(c)
			}
			if getSessionToken(c, cfg.CookieName) == "" {
				return handleUnauthenticated(c, cfg)
			}
			return next(c)
		}
	}
}

// RequireRole verifies the session against the backend profile and admits
// the request when the user's role is one of roles (any role when empty).
// The token check and the profile load feed a Gate; the profile is loaded
// on its own goroutine bound to the request context, and if the request is
// cancelled first the result is discarded and nothing is written.
func RequireRole(service AuthService, cfg config.AuthConfig, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			gate := NewGate(roles...)

			token := getSessionToken(c, cfg.CookieName)
			gate.TokenChecked(token != "")

			var loadErr error
			if token != "" {
				type result struct {
					profile *backend.Profile
					err     error
				}
				done := make(chan result, 1)
				go func() {
					p, err := service.LoadProfile(ctx, token)
					done <- result{profile: p, err: err}
				}()

				select {
				case <-ctx.Done():
					slog.Debug("request cancelled during profile load",
						slog.String("path", c.Request().URL.Path),
					)
					return nil
				case r := <-done:
					loadErr = r.err
					gate.ProfileLoaded(r.profile, r.err)
				}
			}

			switch gate.Decision() {
			case DecisionRender:
				ensureSessionState(c).Authenticate(token, gate.Profile())
				return next(c)

			case DecisionUnauthorized:
				slog.Info("role mismatch",
					slog.String("user_id", gate.Profile().ID),
					slog.String("role", gate.Profile().Role),
					slog.String("path", c.Request().URL.Path),
				)
				return handleUnauthorized(c, cfg)

			case DecisionSignIn:
				if loadErr != nil {
					if apperror.SafeCode(loadErr) == http.StatusUnauthorized {
						clearSessionCookie(c, cfg)
					} else {
						slog.Warn("profile load failed; treating as signed out",
							slog.Any("error", loadErr),
						)
					}
				}
				return handleUnauthenticated(c, cfg)

			default:
				return middleware.Render(c, http.StatusOK, pages.LoadingPage())
			}
		}
	}
}

// handleUnauthenticated sends the client to sign-in: 401 JSON for the API,
// HX-Redirect for HTMX, 303 otherwise.
func handleUnauthenticated(c echo.Context, cfg config.AuthConfig) error {
	if middleware.IsAPI(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error":   "unauthorized",
			"message": "authentication required",
		})
	}
	return middleware.Navigate(c, SignInURL(cfg, c.Request().URL.Path))
}

// handleUnauthorized sends a role-mismatched client to the unauthorized page.
func handleUnauthorized(c echo.Context, cfg config.AuthConfig) error {
	if middleware.IsAPI(c) {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error":   "forbidden",
			"message": "insufficient role",
		})
	}
	return middleware.Navigate(c, cfg.UnauthorizedPath)
}

// SignInURL is the sign-in route with callbackUrl set to path.
func SignInURL(cfg config.AuthConfig, path string) string {
	if path == "" {
		return cfg.SignInPath
	}
	return cfg.SignInPath + "?callbackUrl=" + url.QueryEscape(path)
}

// underPrefix reports whether path is prefix itself or below it.
func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, strings.TrimRight(prefix, "/")+"/")
}

// --- Exported getters for other plugins ---

// GetSessionState returns the request's SessionState, or nil when
// WithSessionState is not applied.
func GetSessionState(c echo.Context) *SessionState {
	s, _ := c.Get(contextKeyState).(*SessionState)
	return s
}

// ensureSessionState returns the request's SessionState, attaching one when
// WithSessionState did not run.
func ensureSessionState(c echo.Context) *SessionState {
	if s := GetSessionState(c); s != nil {
		return s
	}
	s := NewSessionState()
	c.Set(contextKeyState, s)
	return s
}

// GetSession returns the admitted session, or nil.
func GetSession(c echo.Context) *Session {
	if s := GetSessionState(c); s != nil {
		return s.Session()
	}
	return nil
}

// GetProfile returns the signed-in user's profile, or nil.
func GetProfile(c echo.Context) *backend.Profile {
	if s := GetSession(c); s != nil {
		return s.Profile
	}
	return nil
}

// GetUserID returns the signed-in user's ID, or "".
func GetUserID(c echo.Context) string {
	if p := GetProfile(c); p != nil {
		return p.ID
	}
	return ""
}

// GetSessionKey returns the storage key of the admitted session, or "".
func GetSessionKey(c echo.Context) string {
	if s := GetSession(c); s != nil {
		return s.Key
	}
	return ""
}
