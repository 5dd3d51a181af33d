// Package auth gates the admin area. The session is an opaque bearer token
// issued by the backend and kept in an HttpOnly cookie; this package never
// decodes it. Presence of the cookie is checked at the edge (RequireSession)
// and the user's role is checked against their backend profile (RequireRole).
package auth

import (
	"github.com/plusvans/admin/internal/backend"
)

// --- Request DTOs (bound from HTTP requests) ---

// LoginRequest holds the credentials submitted by the sign-in form or the
// JSON login endpoint.
type LoginRequest struct {
	Username    string `json:"username" form:"username"`
	Password    string `json:"password" form:"password"`
	CallbackURL string `json:"callbackUrl" form:"callbackUrl" query:"callbackUrl"`
}

// --- Service Input DTOs (passed from handler to service) ---

// LoginInput is the validated input for a password grant.
type LoginInput struct {
	Username string
	Password string
}

// --- Session ---

// Session is the authenticated request's identity: the raw token, the key
// derived from it for server-side storage, and the backend profile.
type Session struct {
	Token   string
	Key     string
	Profile *backend.Profile
}

// SessionState is the per-request authentication state. It starts
// unauthenticated, becomes authenticated once the gate admits the request,
// and is cleared on logout. One instance lives in each request's context.
type SessionState struct {
	session *Session
}

// NewSessionState returns an unauthenticated state.
func NewSessionState() *SessionState {
	return &SessionState{}
}

// Authenticate records the admitted session.
func (s *SessionState) Authenticate(token string, profile *backend.Profile) {
	s.session = &Session{Token: token, Key: SessionKey(token), Profile: profile}
}

// Clear drops the session.
func (s *SessionState) Clear() {
	s.session = nil
}

// Authenticated reports whether a session has been admitted.
func (s *SessionState) Authenticated() bool {
	return s.session != nil
}

// Session returns the admitted session, or nil.
func (s *SessionState) Session() *Session {
	return s.session
}
