package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"campusreserve/internal/catalog"
	"campusreserve/internal/httpapi"
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

	if err := run(cfg, log); err != nil {
		log.Errorw("api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var backend httpapi.Backend
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warnw("using in-memory store; data is lost on restart")
		backend = httpapi.MemoryBackend(cfg, catalog.NewMemory(catalog.DemoResources()...))
	default:
		if cfg.MigrationsPath != "" {
			version, err := db.Migrate(cfg.MigrationsPath, cfg)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Infow("migrations applied", "version", version)
		}

		pool, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer pool.Close()
		backend = httpapi.PostgresBackend(pool, cfg, log)
	}

	router, err := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:      cfg,
		Log:      log,
		Backend:  backend,
		Notifier: httpapi.NewNotifier(cfg, log),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("http listening", "addr", cfg.HTTPAddr, "backend", cfg.StoreBackend,
			"timezone", cfg.Booking.Location.String(), "enforce_overlap", cfg.Booking.EnforceOverlap)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
