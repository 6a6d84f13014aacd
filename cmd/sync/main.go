package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	credentialapp "github.com/sellerstats/backend/internal/application/credential"
	"github.com/sellerstats/backend/internal/application/ingest"
	"github.com/sellerstats/backend/internal/application/report"
	subscriptionapp "github.com/sellerstats/backend/internal/application/subscription"
	"github.com/sellerstats/backend/internal/application/syncpass"
	"github.com/sellerstats/backend/internal/infrastructure/config"
	"github.com/sellerstats/backend/internal/infrastructure/crypto"
	"github.com/sellerstats/backend/internal/infrastructure/logger"
	"github.com/sellerstats/backend/internal/infrastructure/persistence"
	"github.com/sellerstats/backend/internal/infrastructure/telemetry"
	"github.com/sellerstats/backend/internal/infrastructure/wildberries"
)

// main runs exactly one sync pass and exits. Scheduling belongs to the
// external job runner.
func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Upper bound for the whole pass")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.FromConfig(cfg.App, cfg.Log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	if err := run(cfg, log, timeout); err != nil {
		log.Error("Sync pass failed", zap.Error(err))
		logger.Sync(log)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tel, err := telemetry.New(ctx, telemetry.FromConfig(cfg.Telemetry), log)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() { _ = tel.Shutdown(ctx) }()
	metrics, err := telemetry.NewSyncMetrics(tel.Meter())
	if err != nil {
		return fmt.Errorf("init sync metrics: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database, telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database), log, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	keyring, err := crypto.NewKeyring(cfg.Vault)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}

	loc := cfg.App.Location()
	uow := persistence.NewGormUnitOfWorkFactory(db.DB)
	client := wildberries.NewClient(cfg.Marketplace, loc, log)

	gate := subscriptionapp.NewGate(subscriptionapp.GateConfigFrom(cfg.Subscription), log)
	credentials := credentialapp.NewService(uow, keyring, gate, client, log)

	syncer := syncpass.NewSyncer(
		uow,
		credentials,
		client,
		ingest.NewPipeline(ingest.ConfigFrom(cfg.Ingest), log),
		report.NewAggregator(loc, log),
		report.NewStockReporter(uow, loc, log),
		syncpass.NewLogNotifier(log),
		loc,
		log,
	)
	runner := syncpass.NewRunner(credentials, syncer, syncpass.RunnerConfigFrom(cfg.Ingest), log).
		WithMetrics(metrics)

	rep, err := runner.RunOnce(ctx)
	if err != nil {
		return err
	}
	if fields, err := db.StatsFields(); err == nil {
		log.Info("Database pool after pass", fields...)
	}
	if n := len(rep.Failures); n > 0 && n == rep.Targets {
		return fmt.Errorf("all %d users failed", n)
	}
	return nil
}
