package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendorguard/internal/api"
	"vendorguard/internal/api/handlers"
	"vendorguard/internal/config"
	"vendorguard/internal/domain/services"
	"vendorguard/internal/infrastructure/cache"
	"vendorguard/internal/infrastructure/database"
	"vendorguard/internal/infrastructure/database/repository"
	"vendorguard/internal/infrastructure/graph"
	"vendorguard/internal/streaming"
	"vendorguard/pkg/logger"
)

func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting VendorGuard")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Infrastructure. The service keeps assessing with whatever is actually
	// up, so every connection failure here degrades instead of exiting.
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without persistence")
	}
	defer func() {
		if db != nil {
			db.Close()
		}
	}()

	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
	}
	defer func() {
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	var repo *repository.SubmissionRepository
	if db != nil {
		repo = repository.NewSubmissionRepository(db, log)
		if err := repo.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to initialize database schema")
		}
	}

	var graphRepo *graph.GraphRepository
	if cfg.Neo4j.Enabled {
		neo4jClient, err := graph.NewNeo4jClient(ctx, cfg.Neo4j, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Neo4j, graph features disabled")
		} else {
			defer neo4jClient.Close(ctx)
			graphRepo = graph.NewGraphRepository(neo4jClient, log)
		}
	}

	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without event streaming")
		}
	}

	// In-memory stores, hydrated from history when the database is up
	baseline := services.NewBaselineStore(cfg.Assessment.BaselineSize)
	window := services.NewWindowStore(time.Duration(cfg.Assessment.WindowHours) * time.Hour)
	hydrateStores(ctx, repo, baseline, window, cfg.Assessment, log)

	// Analyzer pipeline
	analyzers := []services.Analyzer{
		services.NewLegalAnalyzer(services.DefaultLegalConfig(), log),
		services.NewPaymentAnalyzer(nil, log),
		services.NewBehavioralAnalyzer(baseline, log),
		services.NewNetworkAnalyzer(window, log),
		services.NewEntityAnalyzer(nil, log),
		services.NewTrustAnalyzer(services.NewLiveProber(cfg.Assessment.ProbeTimeout), nil, log),
	}
	orchestrator := services.NewOrchestrator(analyzers, cfg.Assessment.Weights, cfg.Assessment.AnalyzerTimeout, log)

	service := services.NewAssessmentService(orchestrator, baseline, window, log)
	if repo != nil {
		service.WithStore(repo)
	}
	if graphRepo != nil {
		service.WithGraph(graphRepo)
	}
	if natsPublisher != nil {
		service.WithPublisher(streaming.NewDecisionPublisherAdapter(natsPublisher))
	}
	if redisCache != nil {
		service.WithCache(redisCache, cfg.Assessment.DecisionCacheTTL)
	}

	h := handlers.NewHandlers(handlers.Dependencies{
		Service:   service,
		Repo:      repo,
		DB:        db,
		Cache:     redisCache,
		Publisher: natsPublisher,
		Logger:    log,
	})

	router := api.NewRouter(*cfg, h, redisCache, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if natsPublisher != nil {
		natsPublisher.Close()
	}

	log.Info().Msg("shutdown complete")
}

// hydrateStores seeds the baseline and window stores from stored submissions
// so restarts do not blind the behavioral and network analyzers.
func hydrateStores(
	ctx context.Context,
	repo *repository.SubmissionRepository,
	baseline *services.BaselineStore,
	window *services.WindowStore,
	cfg config.AssessmentConfig,
	log *logger.Logger,
) {
	if repo == nil {
		return
	}

	nameLens, descLens, err := repo.RecentLengths(ctx, cfg.BaselineSize)
	if err != nil {
		log.Warn().Err(err).Msg("failed to hydrate baseline store")
	} else {
		baseline.Seed(nameLens, descLens)
	}

	since := time.Now().Add(-time.Duration(cfg.WindowHours) * time.Hour)
	entries, err := repo.RecentWindow(ctx, since, cfg.BaselineSize)
	if err != nil {
		log.Warn().Err(err).Msg("failed to hydrate window store")
		return
	}
	window.Seed(entries)

	log.Info().
		Int("baseline_samples", len(nameLens)).
		Int("window_entries", len(entries)).
		Msg("in-memory stores hydrated from history")
}
