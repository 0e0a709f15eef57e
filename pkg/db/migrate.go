package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"campusreserve/pkg/config"
)

// Migrate applies every pending migration found at migrationsPath (e.g. file://migrations).
// It returns the schema version after the run.
func Migrate(migrationsPath string, cfg config.Config) (uint, error) {
	return MigrateURL(migrationsPath, migrationConnString(cfg))
}

// MigrateURL is Migrate against an explicit database URL; integration tests use it.
func MigrateURL(migrationsPath, databaseURL string) (uint, error) {
	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return 0, fmt.Errorf("init migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("migrate version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
