package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pm-dashboard/internal/cache"
	"pm-dashboard/internal/config"
	"pm-dashboard/internal/database"
	"pm-dashboard/internal/handlers"
	"pm-dashboard/internal/logger"
	"pm-dashboard/internal/server"
	"pm-dashboard/internal/settings"
)

func main() {
	cfg := config.Load()

	lg, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBDSN, lg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword, lg); err != nil {
		return err
	}

	var views cache.ViewCache = cache.NewMemory(cfg.ViewCacheTTL)
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.RedisURL, cfg.ViewCacheTTL, lg)
		if err != nil {
			lg.Warn("redis unavailable, using in-memory view cache", zap.Error(err))
		} else {
			defer rc.Close()
			views = rc
		}
	}

	store := settings.NewStore(db)
	debouncer := settings.NewDebouncer(cfg.SettingsDebounce, store.Upsert, lg)
	// несохранённые настройки таблиц пишем при остановке
	defer debouncer.Flush()

	h := handlers.New(handlers.Options{
		DB:        db,
		Logger:    lg,
		Views:     views,
		JWTSecret: cfg.JWTSecret,
		Debouncer: debouncer,
	})
	r := server.NewRouter(cfg, db, h, lg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
