package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/harvester-service/internal/adapter/chromedp_fetcher"
	"github.com/user/harvester-service/internal/adapter/postgres"
	redis_adapter "github.com/user/harvester-service/internal/adapter/redis"
	"github.com/user/harvester-service/internal/adapter/searchapi"
	"github.com/user/harvester-service/internal/delivery/http/handler"
	"github.com/user/harvester-service/internal/delivery/http/router"
	"github.com/user/harvester-service/internal/parser"
	"github.com/user/harvester-service/internal/usecase"
	"github.com/user/harvester-service/pkg/config"
	"github.com/user/harvester-service/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger.Init(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	slog.Info("Logger initialized", "level", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connections ---
	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
		slog.Error("Unable to ensure database schema", "error", err)
		os.Exit(1)
	}
	slog.Info("PostgreSQL connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	categoryRepo := postgres.NewCategoryRepo(dbpool)
	productRepo := postgres.NewProductRepo(dbpool)
	templateRepo := postgres.NewTemplateRepo(dbpool)
	recordRepo := postgres.NewProductRecordRepo(dbpool)
	processedRepo := postgres.NewProcessedURLRepo(dbpool)
	statsRepo := postgres.NewStatsRepo(dbpool)
	cooldownRepo := redis_adapter.NewCooldownRepo(rdb)

	// --- Collaborators ---
	discoveryClient := searchapi.NewClient(
		cfg.SearchAPIURL, cfg.SearchAPIKey, cfg.SearchMaxResults, cfg.SearchTimeout())
	fetcher := chromedp_fetcher.NewChromedpFetcher(cfg.MaxConcurrency, cfg.PageLoadTimeout())

	// --- Cyclers ---
	discoveryCycler := usecase.NewDiscoveryCycler(
		categoryRepo, productRepo, templateRepo, discoveryClient, cooldownRepo,
		cfg.QueryCooldown(), cfg.DiscoveryPause(), cfg.EmptyQueuePoll())

	extractionCycler := usecase.NewExtractionCycler(
		productRepo, templateRepo, recordRepo, processedRepo, fetcher,
		cooldownRepo, parser.New(),
		cfg.BlockCooldown(), cfg.ExtractionPause(), cfg.EmptyQueuePoll())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		usecase.Supervise(ctx, "discovery", discoveryCycler.Run)
	}()
	go func() {
		defer wg.Done()
		// Give discovery a head start on a fresh store before the
		// extraction side starts looking for templates.
		if !waitOrDone(ctx, cfg.ExtractionStartDelay()) {
			return
		}
		usecase.Supervise(ctx, "extraction", extractionCycler.Run)
	}()
	slog.Info("Cyclers started")

	// --- HTTP Server (health, stats, metrics) ---
	opsHandler := handler.NewHandler(dbpool, cooldownRepo, statsRepo)
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(opsHandler),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		slog.Info("Starting ops server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Ops server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down, waiting for cyclers to finish current iteration")

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Ops server forced to shut down", "error", err)
	}
	slog.Info("Shutdown complete")
}

func waitOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
