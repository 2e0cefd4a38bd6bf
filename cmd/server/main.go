package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nadmax/tasktracker/internal/api"
	"github.com/nadmax/tasktracker/internal/cache"
	"github.com/nadmax/tasktracker/internal/config"
	"github.com/nadmax/tasktracker/internal/dashboard"
	"github.com/nadmax/tasktracker/internal/logger"
	"github.com/nadmax/tasktracker/internal/repository"
	"github.com/nadmax/tasktracker/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.NewPostgresRepository(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	if err := repository.Migrate(repo.DB()); err != nil {
		return err
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	metricsCache := cache.NewMetricsCache(redisClient)
	defer func() {
		if err := metricsCache.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}()

	log.Info("Connected to dependencies", "redis_addr", cfg.RedisAddr, "env", cfg.AppEnv)

	dash := dashboard.NewService(repo, metricsCache,
		dashboard.WithTTL(cfg.MetricsCacheTTL),
		dashboard.WithLogger(log),
	)

	handler := api.NewAPI(api.Dependencies{
		Tasks:       service.NewTaskService(repo, repo, dash, log),
		Employees:   service.NewEmployeeService(repo, repo, log),
		Dashboard:   dash,
		Database:    repo,
		Cache:       metricsCache,
		Logger:      log,
		FrontendURL: cfg.FrontendURL,

		ExposeErrors: !cfg.IsProduction(),
	})

	go startMetricsCollector(ctx, dash, gaugeInterval)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Port)
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

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
