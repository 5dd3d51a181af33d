// Package app is the application bootstrap and dependency injection root.
// It holds the shared infrastructure (DB pool, Redis client, backend client,
// Echo instance) and wires every plugin and widget together.
package app

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/backend"
	"github.com/plusvans/admin/internal/config"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/auth"
	"github.com/plusvans/admin/internal/templates/pages"
)

// trustedProxyCIDRs are the reverse proxy ranges allowed to set
// X-Forwarded-For. The admin runs behind a proxy on a private network.
var trustedProxyCIDRs = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"fd00::/8",
}

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB connection pool shared by all plugins.
	DB *sql.DB

	// Redis backs the profile cache, list view state and rate limits.
	Redis *redis.Client

	// Backend is the client for the remote API that owns sign-in,
	// profiles and the pricing procedures.
	Backend *backend.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client, api *backend.Client) (*App, error) {
	e := echo.New()

	// We log our own startup line.
	e.HideBanner = true
	e.HidePort = true

	// c.RealIP() must return the client, not the proxy: rate limiting and
	// the request log key on it.
	if err := middleware.TrustedProxies(e, trustedProxyCIDRs); err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Backend: api,
		Echo:    e,
	}

	app.setupMiddleware()
	e.HTTPErrorHandler = app.errorHandler

	e.Static("/static", "static")

	return app, nil
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first, innermost (CSRF) runs last.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.Recovery())

	// Before the logger so every log line carries the ID.
	a.Echo.Use(middleware.RequestID())
	a.Echo.Use(middleware.RequestLogger())

	a.Echo.Use(middleware.SecurityHeaders(a.Config.IsProduction()))

	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{a.Config.BaseURL},
		AllowCredentials: true,
	}))

	a.Echo.Use(middleware.CSRF(a.Config.Auth.SecureCookies))

	// Every request starts unauthenticated; RequireRole admits it.
	a.Echo.Use(auth.WithSessionState())

	// Edge check: no cookie under the admin prefix means sign-in.
	a.Echo.Use(auth.RequireSession(a.Config.Auth))
}

// errorHandler maps errors to HTTP responses: JSON for the API, the error
// page for browsers.
//
// HTMX requests that hit a 401 get HX-Redirect to sign-in. A rejected HTMX
// mutation gets a notification event and no swap. Other HTMX errors are
// retargeted to body so the error page replaces the whole page instead of
// landing in a partial target.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "An unexpected error occurred"

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message

		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("request_id", middleware.GetRequestID(c)),
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = defaultErrorMessage(code)
		}
	default:
		slog.Error("unhandled error",
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	if middleware.IsAPI(c) {
		_ = c.JSON(code, map[string]string{
			"error":   http.StatusText(code),
			"message": message,
		})
		return
	}

	if code == http.StatusUnauthorized {
		_ = middleware.Navigate(c, auth.SignInURL(a.Config.Auth, c.Request().URL.Path))
		return
	}

	if middleware.IsHTMX(c) {
		// A failed mutation leaves the page as it was and raises a toast.
		if c.Request().Method != http.MethodGet && code < http.StatusInternalServerError {
			notify(c, code, message)
			return
		}
		c.Response().Header().Set("HX-Retarget", "body")
		c.Response().Header().Set("HX-Reswap", "innerHTML")
	}

	_ = middleware.Render(c, code, pages.ErrorPage(code, message))
}

// notify answers an HTMX request with an HX-Trigger "notify" event and no
// swap, so the client shows message without touching the page.
func notify(c echo.Context, code int, message string) {
	payload, err := json.Marshal(map[string]any{
		"notify": map[string]string{"level": "error", "message": message},
	})
	if err != nil {
		payload = []byte(`{"notify":{"level":"error"}}`)
	}
	h := c.Response().Header()
	h.Set("HX-Trigger", string(payload))
	h.Set("HX-Reswap", "none")
	_ = c.NoContent(code)
}

// defaultErrorMessage returns a user-friendly message for common HTTP status codes
// when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusUnauthorized:
		return "You need to sign in to access this page."
	case http.StatusForbidden:
		return "You don't have permission to access this resource."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist or has been moved."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusConflict:
		return "This action conflicts with the current state."
	case http.StatusRequestEntityTooLarge:
		return "The uploaded file is too large."
	case http.StatusUnprocessableEntity:
		return "The submitted data could not be processed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusBadGateway:
		return "The backend returned an invalid response."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "Something went wrong on our end. Please try again."
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting Plus Vans admin server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}
