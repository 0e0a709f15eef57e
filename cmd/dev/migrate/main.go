package main

import (
	"context"
	"fmt"
	"os"

	"campusreserve/pkg/config"
	"campusreserve/pkg/db"
	"campusreserve/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}

	// This uses DIRECT_URL if set (recommended for pooled hosted Postgres).
	version, err := db.Migrate(cfg.MigrationsPath, cfg)
	if err != nil {
		log.Errorw("migrate failed", "error", err)
		os.Exit(1)
	}

	// Sanity check: ensure the runtime connection can open (uses DATABASE_URL if set).
	// DSNs are never logged.
	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		log.Errorw("runtime db open failed", "error", err)
		os.Exit(1)
	}
	pool.Close()

	log.Infow("migrations applied", "version", version)
}
