// Package health exposes two health endpoints: a passthrough of the remote
// backend's /healthz for the dashboard, and a local liveness check of this
// process's own MariaDB and Redis connections for the container runtime.
package health

import (
	"context"
	"log/slog"
	"time"
)

// BackendChecker fetches the remote backend's health document.
type BackendChecker interface {
	Health(ctx context.Context) (map[string]any, error)
}

// Check is one local dependency ping.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthService defines the health contract used by the handler.
type HealthService interface {
	// Backend returns the backend's health fields. Any failure is an error.
	Backend(ctx context.Context) (map[string]any, error)

	// Local pings every local dependency and reports each one's status.
	Local(ctx context.Context) (map[string]string, bool)
}

type healthService struct {
	backend BackendChecker
	checks  []Check
	timeout time.Duration
}

// NewHealthService creates a health service. timeout bounds each local ping.
func NewHealthService(b BackendChecker, timeout time.Duration, checks ...Check) HealthService {
	return &healthService{backend: b, checks: checks, timeout: timeout}
}

func (s *healthService) Backend(ctx context.Context) (map[string]any, error) {
	fields, err := s.backend.Health(ctx)
	if err != nil {
		slog.Warn("backend health check failed", slog.Any("error", err))
		return nil, err
	}
	return fields, nil
}

func (s *healthService) Local(ctx context.Context) (map[string]string, bool) {
	results := make(map[string]string, len(s.checks))
	healthy := true

	for _, check := range s.checks {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := check.Ping(pingCtx)
		cancel()

		if err != nil {
			slog.Warn("dependency unhealthy", slog.String("check", check.Name), slog.Any("error", err))
			results[check.Name] = "down"
			healthy = false
			continue
		}
		results[check.Name] = "up"
	}
	return results, healthy
}
