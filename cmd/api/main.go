package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/scalara/backend/internal/auth"
	"github.com/scalara/backend/internal/config"
	"github.com/scalara/backend/internal/db"
	"github.com/scalara/backend/internal/domain/metrics"
	"github.com/scalara/backend/internal/http/handlers"
	"github.com/scalara/backend/internal/observability"
	"github.com/scalara/backend/internal/pipeline"
	neo4jrepo "github.com/scalara/backend/internal/repository/neo4j"
	postgresrepo "github.com/scalara/backend/internal/repository/postgres"
	"github.com/scalara/backend/internal/server"
	"github.com/scalara/backend/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	driver, err := db.NewNeo4jDriver(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect neo4j", "err", err)
		os.Exit(1)
	}
	defer driver.Close(context.Background())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	graphRepo := neo4jrepo.NewGraphRepository(driver, cfg.Neo4jDatabase)
	checkpointRepo := postgresrepo.NewCheckpointRepository(pool)
	hub := ws.NewHub()

	orchestrator := pipeline.NewOrchestrator(
		graphRepo,
		postgresrepo.NewLedgerRepository(pool),
		checkpointRepo,
		postgresrepo.NewAdvisoryLocker(pool),
		pipeline.Options{
			Concurrency:  int(cfg.PipelineConcurrency),
			StageTimeout: cfg.PipelineStageTimeout,
			Logger:       logger,
			Metrics:      observability.NewPipelineMetrics(reg),
			Notifier:     ws.NewRunNotifier(hub, logger),
		},
	)

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pingers: map[string]handlers.Pinger{
			"postgres": pool,
			"neo4j":    graphRepo,
		},
		ProcessHandler: handlers.NewProcessHandler(orchestrator, checkpointRepo, logger),
		MetricsHandler: handlers.NewMetricsHandler(metrics.NewService(graphRepo)),
		WSHandler:      ws.NewHandler(hub),
		JWTManager:     auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey),
		Gatherer:       reg,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr(), "auth_enabled", cfg.AuthEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}
