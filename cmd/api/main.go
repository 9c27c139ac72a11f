package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pcelinjak/hivelog/internal/auth"
	"github.com/pcelinjak/hivelog/internal/config"
	"github.com/pcelinjak/hivelog/internal/db"
	httpx "github.com/pcelinjak/hivelog/internal/http"
	"github.com/pcelinjak/hivelog/internal/http/handlers"
	"github.com/pcelinjak/hivelog/internal/observability"
	"github.com/pcelinjak/hivelog/internal/redisclient"
	"github.com/pcelinjak/hivelog/internal/reminders"
	"github.com/pcelinjak/hivelog/internal/repo/memory"
	"github.com/pcelinjak/hivelog/internal/repo/postgres"
	"github.com/pcelinjak/hivelog/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "hivelog:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, cfg.Env, cfg.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	tokens, err := auth.NewManager(cfg.JWTSecret)
	if err != nil {
		return err
	}
	hasher := security.NewPasswordHasher(cfg.BcryptCost)

	deps := httpx.Deps{
		Config:    cfg,
		Tokens:    tokens,
		Hasher:    hasher,
		Prom:      prom,
		Gatherer:  reg,
		Readiness: map[string]handlers.Pinger{},
	}

	switch cfg.Store {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		deps.Users = store.Users()
		deps.Hives = store.Hives()
		deps.Activities = store.Activities()
		deps.Comments = store.Comments()
		deps.Notifications = store.Notifications()
	default:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}

		deps.Users = postgres.NewUsersRepo(pool, prom)
		deps.Hives = postgres.NewHivesRepo(pool, prom)
		deps.Activities = postgres.NewActivitiesRepo(pool, prom)
		deps.Comments = postgres.NewCommentsRepo(pool, prom)
		deps.Notifications = postgres.NewNotificationsRepo(pool, prom)
		deps.Readiness["postgres"] = pool
	}

	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rc.Close()

		deps.Locker = reminders.NewRedisLocker(rc.Raw())
		deps.Readiness["redis"] = rc
	}

	seedCtx, cancel := config.WithTimeout(10 * time.Second)
	err = db.EnsurePrivilegedUser(seedCtx, deps.Users, hasher, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("seed privileged user: %w", err)
	}

	router := httpx.NewRouter(log, deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}
	log.Info("server shutting down")

	shutdownCtx, cancelShutdown := config.WithTimeout(10 * time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}
