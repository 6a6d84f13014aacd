// Package ingest writes upstream records to storage. Orders and sales are
// immutable facts deduplicated by their natural key; stock snapshots are
// current state upserted in chunks.
package ingest

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/infrastructure/config"
)

const (
	// DefaultStockChunkSize bounds the rows of one stock upsert statement
	DefaultStockChunkSize = 500
	// DefaultSaleBatchSize bounds the rows of one sales insert statement
	DefaultSaleBatchSize = 100
)

// Config holds the pipeline batching settings
type Config struct {
	StockChunkSize int
	SaleBatchSize  int
}

// DefaultConfig returns the default pipeline settings
func DefaultConfig() Config {
	return Config{
		StockChunkSize: DefaultStockChunkSize,
		SaleBatchSize:  DefaultSaleBatchSize,
	}
}

// ConfigFrom builds the pipeline settings from the ingest configuration,
// keeping defaults for unset values
func ConfigFrom(cfg config.IngestConfig) Config {
	out := DefaultConfig()
	if cfg.StockChunkSize > 0 {
		out.StockChunkSize = cfg.StockChunkSize
	}
	if cfg.SaleBatchSize > 0 {
		out.SaleBatchSize = cfg.SaleBatchSize
	}
	return out
}

// Pipeline validates and writes upstream records
type Pipeline struct {
	config    Config
	validator *Validator
	logger    *zap.Logger
}

// NewPipeline creates a new Pipeline
func NewPipeline(cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.StockChunkSize <= 0 {
		cfg.StockChunkSize = DefaultStockChunkSize
	}
	if cfg.SaleBatchSize <= 0 {
		cfg.SaleBatchSize = DefaultSaleBatchSize
	}
	return &Pipeline{
		config:    cfg,
		validator: NewValidator(),
		logger:    logger.Named("ingest"),
	}
}

// IngestOrders inserts every valid record whose dedup key is not stored yet
// and returns the newly stored orders in input order. Each insert runs in
// its own savepoint: an invalid or failing record is logged and skipped and
// the surrounding transaction stays usable. Only context cancellation
// aborts the batch.
func (p *Pipeline) IngestOrders(ctx context.Context, repo marketplace.OrderRepository, records []marketplace.OrderInput) ([]marketplace.Order, error) {
	created := make([]marketplace.Order, 0, len(records))
	var skipped int

	for i := range records {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		in := &records[i]

		if err := p.validator.Validate(in); err != nil {
			skipped++
			p.logger.Warn("Skipping invalid order",
				zap.Int64("user_id", in.UserID),
				zap.String("srid", in.SRID),
				zap.Error(err),
			)
			continue
		}

		order, inserted, err := repo.InsertIfAbsent(ctx, in)
		if err != nil {
			skipped++
			p.logger.Error("Failed to insert order",
				zap.Int64("user_id", in.UserID),
				zap.String("srid", in.SRID),
				zap.Int64("nm_id", in.NmID),
				zap.Error(err),
			)
			continue
		}
		if inserted {
			created = append(created, *order)
		}
	}

	p.logger.Debug("Orders ingested",
		zap.Int("received", len(records)),
		zap.Int("created", len(created)),
		zap.Int("skipped", skipped),
	)
	return created, nil
}

// IngestSales inserts the valid records in batches, ignoring those whose
// dedup key is already stored. It returns the number of inserted rows.
func (p *Pipeline) IngestSales(ctx context.Context, repo marketplace.SaleRepository, records []marketplace.SaleInput) (int64, error) {
	valid := make([]marketplace.SaleInput, 0, len(records))
	for i := range records {
		if err := p.validator.Validate(&records[i]); err != nil {
			p.logger.Warn("Skipping invalid sale",
				zap.Int64("user_id", records[i].UserID),
				zap.String("srid", records[i].SRID),
				zap.Error(err),
			)
			continue
		}
		valid = append(valid, records[i])
	}
	if len(valid) == 0 {
		return 0, nil
	}

	inserted, err := repo.InsertIgnoringConflicts(ctx, valid, p.config.SaleBatchSize)
	if err != nil {
		return inserted, fmt.Errorf("insert sales: %w", err)
	}
	return inserted, nil
}

// IngestStocks collapses records sharing a stock key to the last
// occurrence, then upserts them in chunks of the configured size. It
// returns the number of affected rows.
func (p *Pipeline) IngestStocks(ctx context.Context, repo marketplace.StockRepository, records []marketplace.StockInput) (int64, error) {
	rows := p.collapseStocks(records)
	if len(rows) == 0 {
		return 0, nil
	}

	var affected int64
	chunk := 0
	for batch := range slices.Chunk(rows, p.config.StockChunkSize) {
		n, err := repo.UpsertBatch(ctx, batch)
		if err != nil {
			return affected, fmt.Errorf("upsert stock chunk %d: %w", chunk, err)
		}
		affected += n
		chunk++
	}
	return affected, nil
}

// collapseStocks drops invalid rows and keeps, per key, the position of the
// first occurrence with the values of the last one. One statement may not
// touch the same key twice.
func (p *Pipeline) collapseStocks(records []marketplace.StockInput) []marketplace.StockInput {
	index := make(map[marketplace.StockKey]int, len(records))
	rows := make([]marketplace.StockInput, 0, len(records))
	for i := range records {
		if err := p.validator.Validate(&records[i]); err != nil {
			p.logger.Warn("Skipping invalid stock row",
				zap.Int64("user_id", records[i].UserID),
				zap.String("warehouse", records[i].WarehouseName),
				zap.Error(err),
			)
			continue
		}
		key := records[i].Key()
		if at, ok := index[key]; ok {
			rows[at] = records[i]
			continue
		}
		index[key] = len(rows)
		rows = append(rows, records[i])
	}
	return rows
}
