package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"campusreserve/internal/catalog"
	"campusreserve/pkg/config"
	"campusreserve/pkg/db"
	"campusreserve/pkg/logger"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply migrations and upsert the demo laboratories and rooms",
		RunE:  runSeed,
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if cfg.MigrationsPath != "" {
		if _, err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer pool.Close()

	repo := catalog.NewRepository(pool)
	for _, r := range catalog.DemoResources() {
		saved, err := repo.Upsert(ctx, r)
		if err != nil {
			return err
		}
		log.Infow("resource seeded", "id", saved.ID, "kind", saved.Kind, "name", saved.Name, "active", saved.IsActive)
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", saved.ID, saved.Kind, saved.Name)
	}
	return nil
}
