// Package database owns the MariaDB and Redis connection lifecycle (open,
// pool configuration, ping, close) and the schema migrations. Connections are
// created once in main and handed to every repository explicitly.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Registers the "mysql" driver used for MariaDB.
	_ "github.com/go-sql-driver/mysql"

	"github.com/plusvans/admin/internal/config"
)

const (
	connectAttempts = 10
	pingTimeout     = 5 * time.Second
	maxBackoff      = 30 * time.Second
)

// NewMariaDB opens the shared MariaDB pool and waits until it answers a ping.
func NewMariaDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening mariadb connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := waitReady("mariadb", db.PingContext); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// waitReady pings until success, doubling the pause between attempts. The
// database container often starts after this one.
func waitReady(name string, ping func(ctx context.Context) error) error {
	backoff := time.Second
	var err error

	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = ping(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == connectAttempts {
			return fmt.Errorf("pinging %s after %d attempts: %w", name, attempt, err)
		}

		slog.Warn("dependency not ready, retrying",
			slog.String("dependency", name),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.Any("error", err),
		)
		time.Sleep(backoff)
		backoff = min(backoff*2, maxBackoff)
	}
}
