package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/plusvans/admin/internal/apperror"
)

// Roles a backend profile can carry.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleOps      = "ops"
	RoleSupport  = "support"
)

// Profile is the signed-in user as reported by GET /profile/me.
type Profile struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
	Role  string  `json:"role"`
}

// IsStaff reports whether the profile belongs to back-office staff.
func (p *Profile) IsStaff() bool {
	switch p.Role {
	case RoleAdmin, RoleOps, RoleSupport:
		return true
	}
	return false
}

// Grant is a successful password grant. Body is the backend's response,
// relayed unchanged to API clients.
type Grant struct {
	AccessToken string
	TokenType   string
	Body        json.RawMessage
}

// PasswordGrant exchanges credentials for a bearer token via
// POST {API_URL}/auth/login. Backend rejections keep the backend's status
// and detail message, defaulting to "Login failed".
func (c *Client) PasswordGrant(ctx context.Context, username, password string) (*Grant, error) {
	form := url.Values{
		"username":   {username},
		"password":   {password},
		"grant_type": {"password"},
	}

	status, body, err := c.postForm(ctx, "/auth/login", form)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, apperror.NewStatus(status, detailMessage(body, "Login failed"))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		return nil, apperror.NewStatus(http.StatusBadGateway, "Login failed")
	}
	if tok.TokenType == "" {
		tok.TokenType = "bearer"
	}

	return &Grant{AccessToken: tok.AccessToken, TokenType: tok.TokenType, Body: body}, nil
}

// Profile fetches the profile of the user owning token. A rejected token
// yields a 401 AppError.
func (c *Client) Profile(ctx context.Context, token string) (*Profile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/profile/me", nil, token)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, apperror.NewUnauthorized("session expired or invalid")
	case status < 200 || status > 299:
		return nil, apperror.NewStatus(status, detailMessage(body, "Failed to load profile"))
	}

	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, apperror.NewStatus(http.StatusBadGateway, "Failed to load profile")
	}
	if p.ID == "" || p.Role == "" {
		return nil, apperror.NewStatus(http.StatusBadGateway, fmt.Sprintf("incomplete profile for %q", p.Email))
	}
	return &p, nil
}
