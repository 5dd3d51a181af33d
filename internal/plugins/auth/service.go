package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/backend"
)

// Authenticator is the part of the backend client the auth service needs.
type Authenticator interface {
	PasswordGrant(ctx context.Context, username, password string) (*backend.Grant, error)
	Profile(ctx context.Context, token string) (*backend.Profile, error)
}

// LogoutHook runs on logout with the session key, e.g. to drop list view
// state. Hook errors are logged, never returned.
type LogoutHook func(ctx context.Context, sessionKey string) error

// AuthService defines the business logic contract for authentication.
// Handlers call these methods and never touch the backend directly.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*backend.Grant, error)
	LoadProfile(ctx context.Context, token string) (*backend.Profile, error)
	Logout(ctx context.Context, token string)
}

// authService implements AuthService against the backend with a profile cache.
type authService struct {
	backend Authenticator
	cache   ProfileCache
	hooks   []LogoutHook
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(b Authenticator, cache ProfileCache, hooks ...LogoutHook) AuthService {
	return &authService{backend: b, cache: cache, hooks: hooks}
}

// Login exchanges credentials for a token. Backend failures are returned
// as-is so the handler can relay the backend's status and detail.
func (s *authService) Login(ctx context.Context, input LoginInput) (*backend.Grant, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, apperror.NewBadRequest("username and password are required")
	}

	grant, err := s.backend.PasswordGrant(ctx, username, input.Password)
	if err != nil {
		slog.Info("login rejected",
			slog.String("username", username),
			slog.Int("status", apperror.SafeCode(err)),
		)
		return nil, err
	}

	slog.Info("user logged in", slog.String("username", username))
	return grant, nil
}

// LoadProfile returns the profile for token, from cache when possible. Cache
// failures degrade to a backend call.
func (s *authService) LoadProfile(ctx context.Context, token string) (*backend.Profile, error) {
	key := SessionKey(token)

	if cached, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("profile cache read failed", slog.Any("error", err))
	} else if cached != nil {
		return cached, nil
	}

	profile, err := s.backend.Profile(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, key, profile); err != nil {
		slog.Warn("profile cache write failed", slog.Any("error", err))
	}
	return profile, nil
}

// Logout forgets everything held server-side for token. It never fails:
// the cookie is cleared by the handler regardless.
func (s *authService) Logout(ctx context.Context, token string) {
	key := SessionKey(token)

	if err := s.cache.Evict(ctx, key); err != nil {
		slog.Warn("evicting cached profile", slog.Any("error", err))
	}
	for _, hook := range s.hooks {
		if err := hook(ctx, key); err != nil {
			slog.Warn("logout hook failed", slog.Any("error", err))
		}
	}
}
