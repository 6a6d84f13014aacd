package syncpass

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sellerstats/backend/internal/domain/credential"
	"github.com/sellerstats/backend/internal/domain/task"
	"github.com/sellerstats/backend/internal/infrastructure/config"
	logctx "github.com/sellerstats/backend/internal/infrastructure/logger"
	"github.com/sellerstats/backend/internal/infrastructure/telemetry"
)

// DefaultWorkers is the number of concurrent user cycles
const DefaultWorkers = 4

// TargetLister lists the credentials a pass syncs
type TargetLister interface {
	ListSyncTargets(ctx context.Context) ([]credential.SyncTarget, error)
}

// UserSyncer runs the cycle of one user
type UserSyncer interface {
	SyncUser(ctx context.Context, target credential.SyncTarget) (*Result, error)
}

// Metrics receives pass and cycle measurements
type Metrics interface {
	RecordCycle(ctx context.Context, outcome string, d time.Duration)
	RecordRecords(ctx context.Context, stream string, n int64)
	RecordNotices(ctx context.Context, n int)
	RecordPass(ctx context.Context, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordCycle(context.Context, string, time.Duration) {}
func (noopMetrics) RecordRecords(context.Context, string, int64) {}
func (noopMetrics) RecordNotices(context.Context, int) {}
func (noopMetrics) RecordPass(context.Context, time.Duration) {}

var _ Metrics = (*telemetry.SyncMetrics)(nil)

// RunnerConfig holds the pass settings
type RunnerConfig struct {
	Workers int
}

// DefaultRunnerConfig returns the default pass settings
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{Workers: DefaultWorkers}
}

// RunnerConfigFrom builds the pass settings from the ingest configuration
func RunnerConfigFrom(cfg config.IngestConfig) RunnerConfig {
	out := DefaultRunnerConfig()
	if cfg.Workers > 0 {
		out.Workers = cfg.Workers
	}
	return out
}

// UserFailure is the error of one user's cycle
type UserFailure struct {
	UserID int64
	Err    error
}

// PassReport summarises one pass
type PassReport struct {
	RunID        uuid.UUID
	Targets      int
	Succeeded    int
	Unauthorized int
	Notices      int
	Failures     []UserFailure
	Duration     time.Duration
}

// Runner runs one cycle per target with bounded concurrency
type Runner struct {
	targets TargetLister
	syncer  UserSyncer
	config  RunnerConfig
	metrics Metrics
	logger  *zap.Logger
}

// NewRunner creates a new Runner
func NewRunner(targets TargetLister, syncer UserSyncer, cfg RunnerConfig, logger *zap.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Runner{
		targets: targets,
		syncer:  syncer,
		config:  cfg,
		metrics: noopMetrics{},
		logger:  logger.Named("sync_runner"),
	}
}

// WithMetrics sets the sink for pass measurements
func (r *Runner) WithMetrics(m Metrics) *Runner {
	if m != nil {
		r.metrics = m
	}
	return r
}

// RunOnce syncs every target. A user's failure is recorded in the report
// and never cancels or fails another user's cycle; the returned error is
// reserved for failing to list targets.
func (r *Runner) RunOnce(ctx context.Context) (*PassReport, error) {
	started := time.Now()
	rep := &PassReport{RunID: uuid.New()}
	ctx, span := telemetry.StartSpan(ctx, "sync_runner", "run_once", telemetry.AttrRunID.String(rep.RunID.String()))
	ctx, logger := logctx.WithRunID(ctx, r.logger, rep.RunID.String())

	targets, err := r.targets.ListSyncTargets(ctx)
	if err != nil {
		err = fmt.Errorf("list targets: %w", err)
		telemetry.EndSpan(span, err)
		return rep, err
	}
	rep.Targets = len(targets)
	span.SetAttributes(telemetry.AttrTargets.Int(len(targets)))
	logger.Info("Sync pass started", zap.Int("targets", len(targets)), zap.Int("workers", r.config.Workers))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(r.config.Workers)

	for _, target := range targets {
		g.Go(func() error {
			cycleStarted := time.Now()
			result, err := r.syncer.SyncUser(ctx, target)
			r.observe(ctx, result, err, time.Since(cycleStarted))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("User sync failed", zap.Int64("user_id", target.UserID), zap.Error(err))
				rep.Failures = append(rep.Failures, UserFailure{UserID: target.UserID, Err: err})
				return nil
			}
			rep.Succeeded++
			if result.Unauthorized {
				rep.Unauthorized++
			}
			rep.Notices += len(result.Notices)
			return nil
		})
	}
	_ = g.Wait()

	rep.Duration = time.Since(started)
	r.metrics.RecordPass(ctx, rep.Duration)
	telemetry.EndSpan(span, nil)
	logger.Info("Sync pass finished",
		zap.Int("succeeded", rep.Succeeded),
		zap.Int("failed", len(rep.Failures)),
		zap.Int("unauthorized", rep.Unauthorized),
		zap.Int("notices", rep.Notices),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}

func (r *Runner) observe(ctx context.Context, result *Result, err error, d time.Duration) {
	outcome := telemetry.OutcomeOK
	switch {
	case err != nil || result == nil:
		outcome = telemetry.OutcomeFailed
	case result.Unauthorized:
		outcome = telemetry.OutcomeUnauthorized
	case len(result.StreamErrors) > 0:
		outcome = telemetry.OutcomePartial
	}
	r.metrics.RecordCycle(ctx, outcome, d)
	if err != nil || result == nil {
		return
	}
	r.metrics.RecordRecords(ctx, string(task.NameOrders), int64(result.Orders))
	r.metrics.RecordRecords(ctx, string(task.NameSales), result.Sales)
	r.metrics.RecordRecords(ctx, string(task.NameStocks), result.Stocks)
	r.metrics.RecordNotices(ctx, len(result.Notices))
}
