package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mayaportal/internal/auth"
	authMetrics "mayaportal/internal/auth/metrics"
	"mayaportal/internal/platform/config"
	"mayaportal/internal/platform/database"
	"mayaportal/internal/platform/health"
	"mayaportal/internal/platform/httpserver"
	"mayaportal/internal/platform/logger"
	"mayaportal/internal/stats"
	"mayaportal/internal/stats/cache"
	statsMetrics "mayaportal/internal/stats/metrics"
	"mayaportal/internal/stats/store"
	"mayaportal/internal/stats/tracer"
	"mayaportal/internal/stats/workers/retention"
	httptransport "mayaportal/internal/transport/http"
	"mayaportal/pkg/gate"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("initializing metrics portal",
		"addr", cfg.Addr(),
		"environment", cfg.Environment,
		"report_kinds", cfg.ReportKinds,
		"cookie_domain_set", cfg.CookieDomain != "",
	)

	db, err := database.Open(database.Config{
		URL:     cfg.DatabaseURL,
		MaxOpen: cfg.DBPoolMaxSize,
	})
	if err != nil {
		log.Error("open event store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	codec := gate.NewCodec(cfg.SigningSecret, cfg.TokenTTL())
	policy := gate.NewPolicy(cfg.CookieDomain)
	authService := auth.NewService(cfg.LoginPassword, codec, policy, authMetrics.New(), log)

	statsService := stats.NewService(
		cfg.ReportKinds,
		store.NewPostgres(db, nil),
		cache.New(),
		tracer.NewOTel(),
		statsMetrics.New(),
		log,
		stats.WithMaxWindowDays(cfg.MaxWindowDays()),
	)

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("database", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return database.Ping(ctx, db)
	})

	router := httptransport.NewRouter(
		httptransport.NewAuthHandler(authService, log),
		httptransport.NewStatsHandler(statsService, log),
		healthHandler,
		codec,
		log,
	)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	sweeper, err := retention.New(statsService,
		retention.WithRetention(cfg.SnapshotRetention),
		retention.WithInterval(cfg.SnapshotSweepInterval),
		retention.WithLogger(log),
	)
	if err != nil {
		log.Error("configure retention worker", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := sweeper.Start(workerCtx); err != nil && err != context.Canceled {
			log.Error("retention worker stopped", "error", err)
		}
	}()

	if cfg.WarmSnapshots {
		go func() {
			if err := statsService.Warm(workerCtx, cfg.WarmWindowDays); err != nil {
				log.Warn("snapshot warmup incomplete", "error", err)
			}
		}()
	}

	srv := httpserver.New(cfg.Addr(), router)

	log.Info("starting http server", "addr", cfg.Addr())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
