// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. A local .env file is honoured in development.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Config holds all application configuration. Populated from environment
// variables at startup and passed to other packages explicitly.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for CORS and absolute links.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// MigrationsPath is the directory holding golang-migrate SQL files.
	MigrationsPath string

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Backend  BackendConfig
	Upload   UploadConfig
}

// DatabaseConfig holds MariaDB connection parameters. If DATABASE_URL is set
// it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format. If no port is
	// specified, 3306 is appended automatically.
	Host     string
	User     string
	Password string
	Name     string

	// dsnOverride is set when DATABASE_URL is provided.
	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. The driver's
// FormatDSN handles escaping of special characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds the auth gate and session cookie settings.
type AuthConfig struct {
	// CookieName is the session cookie holding the backend bearer token.
	CookieName string

	// AdminPrefix is the path prefix that requires a session cookie.
	AdminPrefix string

	// SignInPath is where unauthenticated users are sent.
	SignInPath string

	// UnauthorizedPath is where role-mismatched users are sent.
	UnauthorizedPath string

	// SessionMaxAge is the cookie lifetime (30 days).
	SessionMaxAge time.Duration

	// ProfileCacheTTL bounds how long a fetched user profile is reused.
	ProfileCacheTTL time.Duration

	// SecureCookies forces the Secure flag (always on in production).
	SecureCookies bool

	// StaffRoles may use the operational pages (bookings, customers,
	// media, quotes).
	StaffRoles []string

	// AdminRoles may use the admin-only pages (audit log, pricing rules,
	// invoices).
	AdminRoles []string
}

// BackendConfig points at the remote backend that owns authentication,
// profiles, health, and the pricing/quote stored procedures.
type BackendConfig struct {
	// APIURL is the backend base URL, e.g. "https://api.plusvans.co.uk".
	APIURL string

	// Timeout bounds every backend call.
	Timeout time.Duration
}

// UploadConfig holds media upload settings.
type UploadConfig struct {
	// MaxSize is the maximum upload file size in bytes.
	MaxSize int64

	// MediaPath is the root directory for media file storage.
	MediaPath string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present; variables
// already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("ignoring unreadable .env file", slog.Any("error", err))
	}

	cfg := &Config{
		Env:            getEnv("ENV", "development"),
		Port:           getEnvInt("PORT", 8080),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel:       getEnv("LOG_LEVEL", "debug"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "db/migrations"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "plusvans"),
			Password:        getEnv("DB_PASSWORD", "plusvans"),
			Name:            getEnv("DB_NAME", "plusvans"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Auth: AuthConfig{
			CookieName:       getEnv("AUTH_COOKIE_NAME", "auth_token"),
			AdminPrefix:      getEnv("ADMIN_PREFIX", "/admin"),
			SignInPath:       getEnv("SIGNIN_PATH", "/auth/signin"),
			UnauthorizedPath: getEnv("UNAUTHORIZED_PATH", "/unauthorized"),
			SessionMaxAge:    getEnvDuration("SESSION_MAX_AGE", 30*24*time.Hour),
			ProfileCacheTTL:  getEnvDuration("PROFILE_CACHE_TTL", 5*time.Minute),
			SecureCookies:    getEnvBool("SECURE_COOKIES", false),
			StaffRoles:       getEnvList("STAFF_ROLES", []string{"admin", "ops"}),
			AdminRoles:       getEnvList("ADMIN_ROLES", []string{"admin"}),
		},

		Backend: BackendConfig{
			APIURL:  strings.TrimRight(getEnv("API_URL", ""), "/"),
			Timeout: getEnvDuration("API_TIMEOUT", 10*time.Second),
		},

		Upload: UploadConfig{
			MaxSize:   getEnvInt64("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB
			MediaPath: getEnv("MEDIA_PATH", "./media"),
		},
	}

	if cfg.IsProduction() {
		if cfg.Backend.APIURL == "" {
			return nil, fmt.Errorf("API_URL is required in production")
		}
		cfg.Auth.SecureCookies = true
	}

	if !strings.HasPrefix(cfg.Auth.AdminPrefix, "/") {
		return nil, fmt.Errorf("ADMIN_PREFIX must start with /, got %q", cfg.Auth.AdminPrefix)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true for "production" or "prod" in any case.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// --- Helper functions for reading environment variables ---

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "720h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated list, dropping blank entries.
func getEnvList(key string, defaultVal []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
