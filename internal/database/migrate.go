package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"

	// Reads migrations from db/migrations on disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations brings the admin schema (profiles, bookings, media_uploads,
// quotes, admin_audit_log) up to date. It runs on every start; a dirty
// schema stops startup so a half-applied migration is fixed by hand.
func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("loading migrations from %s: %w", migrationsPath, err)
	}

	if _, dirty, verr := m.Version(); verr == nil && dirty {
		return errors.New("schema is dirty; fix the failed migration and force its version")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", err)
	}
	slog.Info("schema up to date", slog.Uint64("version", uint64(version)))
	return nil
}
