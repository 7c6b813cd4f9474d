package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"bookscout/internal/config"
	"bookscout/internal/database"
	"bookscout/internal/logger"
	"bookscout/internal/scrape"
	"bookscout/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Database credentials come from .env in deployments without a proper
	// environment; missing file is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer dbService.Close()

	if err := dbService.Health(ctx); err != nil {
		log.Fatal("Database health check failed", zap.Error(err))
	}

	if err := database.RunMigrations(dbService.DB(), "migrations", log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	opts := scrape.Options{
		UserAgent: cfg.Scrape.UserAgent,
		Timeout:   cfg.Scrape.Timeout,
	}

	adapters := []scrape.Adapter{}
	for _, store := range cfg.Scrape.Stores {
		switch store {
		case "biblusi":
			adapters = append(adapters, scrape.NewBiblusi(opts, cfg.Scrape.BiblusiCategory))
		case "parnasi":
			adapters = append(adapters, scrape.NewParnasi(opts))
		default:
			log.Warn("Unknown store in config, skipping", zap.String("store", store))
		}
	}

	ingest := service.NewIngestService(dbService.DB(), log)
	metrics := scrape.NewMetrics()
	runner := scrape.NewRunner(
		adapters,
		ingest,
		cfg.Scrape.RequestsPerSecond,
		cfg.Scrape.StartPage,
		cfg.Scrape.Pages,
		log,
		metrics,
	)

	runErr := runner.Run(ctx)
	metrics.LogSummary(log)
	if runErr != nil {
		log.Fatal("Scrape run aborted", zap.Error(runErr))
	}

	log.Info("Scrape run complete")
}
