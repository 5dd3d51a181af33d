package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/backend"
)

// --- Mocks ---

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct {
	passwordGrantFn func(ctx context.Context, username, password string) (*backend.Grant, error)
	profileFn       func(ctx context.Context, token string) (*backend.Profile, error)
	profileCalls    int
}

func (m *mockAuthenticator) PasswordGrant(ctx context.Context, username, password string) (*backend.Grant, error) {
	if m.passwordGrantFn != nil {
		return m.passwordGrantFn(ctx, username, password)
	}
	return &backend.Grant{AccessToken: "tok", TokenType: "bearer", Body: []byte(`{"access_token":"tok"}`)}, nil
}

func (m *mockAuthenticator) Profile(ctx context.Context, token string) (*backend.Profile, error) {
	m.profileCalls++
	if m.profileFn != nil {
		return m.profileFn(ctx, token)
	}
	return &backend.Profile{ID: "u1", Name: "Dee", Email: "dee@plusvans.co.uk", Role: backend.RoleAdmin}, nil
}

// mockProfileCache implements ProfileCache in memory.
type mockProfileCache struct {
	entries map[string]*backend.Profile
	getErr  error
	evicted []string
}

func newMockProfileCache() *mockProfileCache {
	return &mockProfileCache{entries: map[string]*backend.Profile{}}
}

func (m *mockProfileCache) Get(ctx context.Context, key string) (*backend.Profile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[key], nil
}

func (m *mockProfileCache) Put(ctx context.Context, key string, p *backend.Profile) error {
	m.entries[key] = p
	return nil
}

func (m *mockProfileCache) Evict(ctx context.Context, key string) error {
	delete(m.entries, key)
	m.evicted = append(m.evicted, key)
	return nil
}

func newTestAuthService(b *mockAuthenticator, cache *mockProfileCache, hooks ...LogoutHook) *authService {
	return &authService{backend: b, cache: cache, hooks: hooks}
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	var gotUser string
	b := &mockAuthenticator{
		passwordGrantFn: func(ctx context.Context, username, password string) (*backend.Grant, error) {
			gotUser = username
			return &backend.Grant{AccessToken: "tok-9"}, nil
		},
	}
	svc := newTestAuthService(b, newMockProfileCache())

	grant, err := svc.Login(context.Background(), LoginInput{Username: "  ops@plusvans.co.uk ", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grant.AccessToken != "tok-9" {
		t.Errorf("expected tok-9, got %q", grant.AccessToken)
	}
	if gotUser != "ops@plusvans.co.uk" {
		t.Errorf("expected trimmed username, got %q", gotUser)
	}
}

func TestLogin_MissingCredentials(t *testing.T) {
	svc := newTestAuthService(&mockAuthenticator{}, newMockProfileCache())
	_, err := svc.Login(context.Background(), LoginInput{Username: " ", Password: "pw"})
	assertAppError(t, err, 400)
}

func TestLogin_RelaysBackendRejection(t *testing.T) {
	b := &mockAuthenticator{
		passwordGrantFn: func(ctx context.Context, username, password string) (*backend.Grant, error) {
			return nil, apperror.NewStatus(401, "Incorrect email or password")
		},
	}
	svc := newTestAuthService(b, newMockProfileCache())

	_, err := svc.Login(context.Background(), LoginInput{Username: "a", Password: "b"})
	assertAppError(t, err, 401)
	if apperror.SafeMessage(err) != "Incorrect email or password" {
		t.Errorf("unexpected message %q", apperror.SafeMessage(err))
	}
}

// --- Profile Tests ---

func TestLoadProfile_CachesBackendResult(t *testing.T) {
	b := &mockAuthenticator{}
	cache := newMockProfileCache()
	svc := newTestAuthService(b, cache)

	for i := 0; i < 3; i++ {
		p, err := svc.LoadProfile(context.Background(), "tok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID != "u1" {
			t.Errorf("unexpected profile %+v", p)
		}
	}
	if b.profileCalls != 1 {
		t.Errorf("expected 1 backend call, got %d", b.profileCalls)
	}
	if _, ok := cache.entries[SessionKey("tok")]; !ok {
		t.Error("expected profile cached under the session key")
	}
}

func TestLoadProfile_CacheFailureFallsBackToBackend(t *testing.T) {
	b := &mockAuthenticator{}
	cache := newMockProfileCache()
	cache.getErr = errors.New("redis down")
	svc := newTestAuthService(b, cache)

	if _, err := svc.LoadProfile(context.Background(), "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.profileCalls != 1 {
		t.Errorf("expected backend call, got %d", b.profileCalls)
	}
}

func TestLoadProfile_BackendErrorNotCached(t *testing.T) {
	b := &mockAuthenticator{
		profileFn: func(ctx context.Context, token string) (*backend.Profile, error) {
			return nil, apperror.NewUnauthorized("session expired or invalid")
		},
	}
	cache := newMockProfileCache()
	svc := newTestAuthService(b, cache)

	_, err := svc.LoadProfile(context.Background(), "tok")
	assertAppError(t, err, 401)
	if len(cache.entries) != 0 {
		t.Error("expected nothing cached")
	}
}

// --- Logout Tests ---

func TestLogout_EvictsAndRunsHooks(t *testing.T) {
	cache := newMockProfileCache()
	var hookKeys []string
	hooks := []LogoutHook{
		func(ctx context.Context, key string) error {
			hookKeys = append(hookKeys, key)
			return errors.New("view state store down")
		},
		func(ctx context.Context, key string) error {
			hookKeys = append(hookKeys, key)
			return nil
		},
	}
	svc := newTestAuthService(&mockAuthenticator{}, cache, hooks...)

	svc.Logout(context.Background(), "tok")

	key := SessionKey("tok")
	if len(cache.evicted) != 1 || cache.evicted[0] != key {
		t.Errorf("expected eviction of %s, got %v", key, cache.evicted)
	}
	if len(hookKeys) != 2 {
		t.Errorf("expected both hooks to run despite failure, got %v", hookKeys)
	}
}

// --- Redis profile cache ---

func TestRedisProfileCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cache := NewProfileCache(rdb, 5*time.Minute)
	ctx := context.Background()
	key := SessionKey("tok")

	p, err := cache.Get(ctx, key)
	if err != nil || p != nil {
		t.Fatalf("expected clean miss, got %v, %v", p, err)
	}

	if err := cache.Put(ctx, key, &backend.Profile{ID: "u1", Role: backend.RoleOps}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ttl := mr.TTL(profileKeyPrefix + key); ttl != 5*time.Minute {
		t.Errorf("expected 5m TTL, got %v", ttl)
	}

	p, err = cache.Get(ctx, key)
	if err != nil || p == nil || p.Role != backend.RoleOps {
		t.Fatalf("unexpected cached profile %+v, %v", p, err)
	}

	if err := cache.Evict(ctx, key); err != nil {
		t.Fatalf("evict: %v", err)
	}
	if p, _ := cache.Get(ctx, key); p != nil {
		t.Error("expected miss after evict")
	}
}

func TestSessionKey_StableAndOpaque(t *testing.T) {
	a, b := SessionKey("secret-token"), SessionKey("secret-token")
	if a != b {
		t.Error("expected stable key")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == SessionKey("other-token") {
		t.Error("expected distinct keys for distinct tokens")
	}
}
