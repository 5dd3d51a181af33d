package middleware

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// validRequestID bounds what an upstream proxy may hand us as a request ID.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID ensures every request has an ID for logs and error pages. A
// well-formed X-Request-ID from the proxy is reused; otherwise a UUID is
// generated. The ID is echoed in the response header.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(requestIDHeader)
			if !validRequestID.MatchString(rid) {
				rid = uuid.NewString()
			}
			c.Set(requestIDKey, rid)
			c.Response().Header().Set(requestIDHeader, rid)
			return next(c)
		}
	}
}

// GetRequestID returns the request ID, or "" when RequestID is not applied.
func GetRequestID(c echo.Context) string {
	if c == nil {
		return ""
	}
	rid, _ := c.Get(requestIDKey).(string)
	return rid
}
