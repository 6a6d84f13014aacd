// Package syncpass runs the fetch-and-ingest cycle of every seller with an
// active credential. One pass is triggered externally; scheduling is not
// this package's concern.
package syncpass

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sellerstats/backend/internal/application/ingest"
	"github.com/sellerstats/backend/internal/application/report"
	"github.com/sellerstats/backend/internal/application/unitofwork"
	"github.com/sellerstats/backend/internal/domain/credential"
	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/domain/shared"
	"github.com/sellerstats/backend/internal/domain/task"
	logctx "github.com/sellerstats/backend/internal/infrastructure/logger"
	"github.com/sellerstats/backend/internal/infrastructure/telemetry"
)

// CredentialOpener decrypts a sealed credential
type CredentialOpener interface {
	Open(ciphertext string) (string, error)
}

// Notifier delivers order notices to sellers
type Notifier interface {
	Notify(ctx context.Context, notices []report.OrderNotice) error
}

// Result summarises one user's cycle
type Result struct {
	UserID int64
	// Unauthorized is set when the marketplace rejected the key; the user's
	// credentials were deactivated and the cycle stopped
	Unauthorized bool
	Orders       int
	Sales        int64
	Stocks       int64
	Notices      []report.OrderNotice
	// StreamErrors holds upstream failures of individual streams. The cycle
	// still commits the other streams; the failed cursor stays in place.
	StreamErrors map[task.Name]error
}

// Syncer runs the cycle of one user
type Syncer struct {
	uow        unitofwork.Factory
	opener     CredentialOpener
	client     marketplace.Client
	pipeline   *ingest.Pipeline
	aggregator *report.Aggregator
	stocks     *report.StockReporter
	notifier   Notifier
	loc        *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// NewSyncer creates a new Syncer
func NewSyncer(
	uow unitofwork.Factory,
	opener CredentialOpener,
	client marketplace.Client,
	pipeline *ingest.Pipeline,
	aggregator *report.Aggregator,
	stocks *report.StockReporter,
	notifier Notifier,
	loc *time.Location,
	logger *zap.Logger,
) *Syncer {
	if loc == nil {
		loc = time.UTC
	}
	return &Syncer{
		uow:        uow,
		opener:     opener,
		client:     client,
		pipeline:   pipeline,
		aggregator: aggregator,
		stocks:     stocks,
		notifier:   notifier,
		loc:        loc,
		now:        time.Now,
		logger:     logger.Named("syncer"),
	}
}

// WithClock replaces the clock used for default cursors
func (s *Syncer) WithClock(now func() time.Time) *Syncer {
	s.now = now
	return s
}

// SyncUser runs the cycle of one target in its own unit of work. Notices are
// delivered only after the unit of work committed.
func (s *Syncer) SyncUser(ctx context.Context, target credential.SyncTarget) (*Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "syncer", "sync_user", telemetry.AttrUserID.Int64(target.UserID))

	result, err := s.syncUser(ctx, target)
	if err == nil {
		span.SetAttributes(
			telemetry.AttrOrders.Int(result.Orders),
			telemetry.AttrSales.Int64(result.Sales),
			telemetry.AttrStocks.Int64(result.Stocks),
		)
	}
	telemetry.EndSpan(span, err)
	return result, err
}

func (s *Syncer) syncUser(ctx context.Context, target credential.SyncTarget) (*Result, error) {
	ctx, logger := logctx.WithUserID(ctx, s.logger, target.UserID)
	logger = logger.With(zap.String("title", target.Title))
	result := &Result{UserID: target.UserID, StreamErrors: make(map[task.Name]error)}

	token, err := s.opener.Open(target.Ciphertext)
	if err != nil {
		return result, fmt.Errorf("open credential: %w", err)
	}

	err = unitofwork.Run(ctx, s.uow, func(repos unitofwork.Repositories) error {
		now := s.now()

		created, stop, err := s.syncOrders(ctx, repos, target.UserID, token, now, result)
		if err != nil || stop {
			return err
		}
		result.Orders = len(created)

		// Orders committed by this cycle are never inserted again, so their
		// notices are built before a later stream can stop the cycle.
		for i := range created {
			result.Notices = append(result.Notices, s.buildNotice(ctx, repos, target, created[i]))
		}

		if stop, err = s.syncSales(ctx, repos, target.UserID, token, now, result); err != nil || stop {
			return err
		}
		_, err = s.syncStocks(ctx, repos, target.UserID, token, now, result)
		return err
	})
	if err != nil {
		result.Notices = nil
		return result, err
	}

	if result.Unauthorized {
		logger.Warn("Marketplace rejected the key, credentials deactivated",
			zap.Int("orders", result.Orders),
		)
	} else {
		logger.Info("User synced",
			zap.Int("orders", result.Orders),
			zap.Int64("sales", result.Sales),
			zap.Int64("stocks", result.Stocks),
			zap.Int("stream_errors", len(result.StreamErrors)),
		)
	}

	if len(result.Notices) > 0 && s.notifier != nil {
		if err := s.notifier.Notify(ctx, result.Notices); err != nil {
			return result, fmt.Errorf("notify: %w", err)
		}
	}
	return result, nil
}

func (s *Syncer) syncOrders(
	ctx context.Context,
	repos unitofwork.Repositories,
	userID int64,
	token string,
	now time.Time,
	result *Result,
) ([]marketplace.Order, bool, error) {
	status, err := s.loadStatus(ctx, repos, userID, task.NameOrders)
	if err != nil {
		return nil, false, err
	}
	since := status.CursorOr(now)

	records, err := s.client.FetchOrders(ctx, token, since)
	if err != nil {
		stop, err := s.fetchFailed(ctx, repos, status, err, result)
		return nil, stop, err
	}

	cursor := since
	for i := range records {
		records[i].UserID = userID
		if records[i].LastChangeDate.After(cursor) {
			cursor = records[i].LastChangeDate
		}
	}

	created, err := s.pipeline.IngestOrders(ctx, repos.Orders(), records)
	if err != nil {
		return nil, false, fmt.Errorf("ingest orders: %w", err)
	}
	status.Complete(cursor)
	return created, false, s.saveStatus(ctx, repos, status)
}

func (s *Syncer) syncSales(
	ctx context.Context,
	repos unitofwork.Repositories,
	userID int64,
	token string,
	now time.Time,
	result *Result,
) (bool, error) {
	status, err := s.loadStatus(ctx, repos, userID, task.NameSales)
	if err != nil {
		return false, err
	}
	since := status.CursorOr(now)

	records, err := s.client.FetchSales(ctx, token, since)
	if err != nil {
		return s.fetchFailed(ctx, repos, status, err, result)
	}

	cursor := since
	for i := range records {
		records[i].UserID = userID
		if records[i].LastChangeDate.After(cursor) {
			cursor = records[i].LastChangeDate
		}
	}

	inserted, err := s.pipeline.IngestSales(ctx, repos.Sales(), records)
	if err != nil {
		return false, fmt.Errorf("ingest sales: %w", err)
	}
	result.Sales = inserted
	status.Complete(cursor)
	return false, s.saveStatus(ctx, repos, status)
}

func (s *Syncer) syncStocks(
	ctx context.Context,
	repos unitofwork.Repositories,
	userID int64,
	token string,
	now time.Time,
	result *Result,
) (bool, error) {
	status, err := s.loadStatus(ctx, repos, userID, task.NameStocks)
	if err != nil {
		return false, err
	}
	since := status.CursorOr(now)

	records, err := s.client.FetchStocks(ctx, token, since)
	if err != nil {
		return s.fetchFailed(ctx, repos, status, err, result)
	}

	cursor := since
	for i := range records {
		records[i].UserID = userID
		if records[i].LastChangeDate.After(cursor) {
			cursor = records[i].LastChangeDate
		}
	}

	affected, err := s.pipeline.IngestStocks(ctx, repos.Stocks(), records)
	if err != nil {
		return false, fmt.Errorf("ingest stocks: %w", err)
	}
	result.Stocks = affected
	status.Complete(cursor)
	return false, s.saveStatus(ctx, repos, status)
}

// fetchFailed handles an upstream error of one stream. An authentication
// rejection deactivates the user's credentials and stops the cycle; other
// errors are recorded on the stream status and the cycle continues.
func (s *Syncer) fetchFailed(
	ctx context.Context,
	repos unitofwork.Repositories,
	status *task.TaskStatus,
	fetchErr error,
	result *Result,
) (bool, error) {
	if errors.Is(fetchErr, marketplace.ErrUnauthorized) {
		result.Unauthorized = true
		if _, err := repos.Credentials().DeactivateAllForUser(ctx, status.UserID); err != nil {
			return true, fmt.Errorf("deactivate credentials: %w", err)
		}
		return true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return true, ctxErr
	}

	s.logger.Warn("Stream fetch failed",
		zap.Int64("user_id", status.UserID),
		zap.String("task", string(status.Task)),
		zap.Error(fetchErr),
	)
	result.StreamErrors[status.Task] = fetchErr
	status.Fail(fetchErr)
	return false, s.saveStatus(ctx, repos, status)
}

func (s *Syncer) buildNotice(ctx context.Context, repos unitofwork.Repositories, target credential.SyncTarget, order marketplace.Order) report.OrderNotice {
	orders := repos.Orders()
	notice := report.OrderNotice{
		UserID:     target.UserID,
		ExternalID: target.ExternalID,
		Order:      order,
		Counter:    s.aggregator.DayCounterAndAmount(ctx, orders, target.UserID, order.ID, order.Date),
		Totals: s.aggregator.CombinedTotals(ctx, orders, target.UserID, order.ID, order.NmID, order.Date,
			order.DiscountedPrice().Amount()),
		Location: s.loc,
	}
	if stock := s.stocks.StockReportWith(ctx, repos.Stocks(), target.UserID, order.NmID); stock.Err == nil {
		notice.Stock = stock.Value
	}
	return notice
}

func (s *Syncer) loadStatus(ctx context.Context, repos unitofwork.Repositories, userID int64, name task.Name) (*task.TaskStatus, error) {
	status, err := repos.TaskStatuses().Find(ctx, userID, name)
	if errors.Is(err, shared.ErrNotFound) {
		return &task.TaskStatus{UserID: userID, Task: name, Status: task.StatusPending}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s status: %w", name, err)
	}
	return status, nil
}

func (s *Syncer) saveStatus(ctx context.Context, repos unitofwork.Repositories, status *task.TaskStatus) error {
	if err := repos.TaskStatuses().Save(ctx, status); err != nil {
		return fmt.Errorf("save %s status: %w", status.Task, err)
	}
	return nil
}

var _ UserSyncer = (*Syncer)(nil)
