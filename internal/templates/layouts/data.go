// Package layouts provides typed context helpers for passing layout data from
// handlers/middleware to templates, plus the single navigation list. Only
// simple types are stored so this package imports no plugin.
//
// Data flow: Handler/Middleware → Echo Context → LayoutInjector → Go Context → template
package layouts

import (
	"context"
	"strings"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey string

const (
	keyIsAuthenticated ctxKey = "layout_is_authenticated"
	keyUserID          ctxKey = "layout_user_id"
	keyUserName        ctxKey = "layout_user_name"
	keyUserEmail       ctxKey = "layout_user_email"
	keyUserRole        ctxKey = "layout_user_role"
	keyCSRFToken       ctxKey = "layout_csrf_token"
	keyActivePath      ctxKey = "layout_active_path"
	keyRequestID       ctxKey = "layout_request_id"
)

// NavItem is one sidebar entry. Roles lists who may see it; empty means
// every signed-in staff member.
type NavItem struct {
	Label string
	Path  string
	Roles []string
}

// navItems is the only navigation definition in the app.
var navItems = []NavItem{
	{Label: "Dashboard", Path: "/admin"},
	{Label: "Bookings", Path: "/admin/bookings"},
	{Label: "Customers", Path: "/admin/customers"},
	{Label: "Media", Path: "/admin/media"},
	{Label: "Quotes", Path: "/admin/quotes", Roles: []string{"admin", "ops"}},
	{Label: "Pricing rules", Path: "/admin/pricing", Roles: []string{"admin"}},
	{Label: "Invoices", Path: "/admin/invoices", Roles: []string{"admin"}},
	{Label: "Audit log", Path: "/admin/audit", Roles: []string{"admin"}},
}

// Nav returns the navigation entries visible to role.
func Nav(role string) []NavItem {
	out := make([]NavItem, 0, len(navItems))
	for _, item := range navItems {
		if len(item.Roles) == 0 {
			out = append(out, item)
			continue
		}
		for _, r := range item.Roles {
			if r == role {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// IsActive reports whether item should be highlighted for the current path.
// The dashboard only matches exactly; sections match their subtree.
func (item NavItem) IsActive(activePath string) bool {
	if item.Path == "/admin" {
		return activePath == "/admin" || activePath == "/admin/"
	}
	return activePath == item.Path || strings.HasPrefix(activePath, item.Path+"/")
}

// --- Setters (called by the layout injector in app/routes.go) ---

// SetIsAuthenticated marks whether the current request has a valid session.
func SetIsAuthenticated(ctx context.Context, authed bool) context.Context {
	return context.WithValue(ctx, keyIsAuthenticated, authed)
}

// SetUserID stores the authenticated user's ID in context.
func SetUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyUserID, id)
}

// SetUserName stores the authenticated user's display name in context.
func SetUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyUserName, name)
}

// SetUserEmail stores the authenticated user's email in context.
func SetUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, keyUserEmail, email)
}

// SetUserRole stores the authenticated user's role.
func SetUserRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, keyUserRole, role)
}

// SetCSRFToken stores the CSRF token for forms.
func SetCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, keyCSRFToken, token)
}

// SetActivePath stores the request path for nav highlighting.
func SetActivePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, keyActivePath, path)
}

// SetRequestID stores the request correlation ID shown on error pages.
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// --- Getters (called by templates) ---

// IsAuthenticated reports whether the request carries a verified session.
func IsAuthenticated(ctx context.Context) bool {
	v, _ := ctx.Value(keyIsAuthenticated).(bool)
	return v
}

// GetUserID returns the signed-in user's ID.
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, keyUserID)
}

// GetUserName returns the signed-in user's display name.
func GetUserName(ctx context.Context) string {
	return stringValue(ctx, keyUserName)
}

// GetUserEmail returns the signed-in user's email.
func GetUserEmail(ctx context.Context) string {
	return stringValue(ctx, keyUserEmail)
}

// GetUserRole returns the signed-in user's role.
func GetUserRole(ctx context.Context) string {
	return stringValue(ctx, keyUserRole)
}

// GetCSRFToken returns the CSRF token.
func GetCSRFToken(ctx context.Context) string {
	return stringValue(ctx, keyCSRFToken)
}

// GetActivePath returns the current request path.
func GetActivePath(ctx context.Context) string {
	return stringValue(ctx, keyActivePath)
}

// GetRequestID returns the request correlation ID.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, keyRequestID)
}

func stringValue(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}
