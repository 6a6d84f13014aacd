package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/infrastructure/config"
	"github.com/sellerstats/backend/internal/testutil"
)

var day = time.Date(2025, 5, 18, 10, 0, 0, 0, time.UTC)

func order(srid string, nmID int64) marketplace.OrderInput {
	return marketplace.OrderInput{
		UserID:          1,
		Date:            day,
		LastChangeDate:  day,
		SRID:            srid,
		NmID:            nmID,
		TechSize:        "0",
		TotalPrice:      decimal.NewFromInt(1000),
		DiscountPercent: decimal.NewFromInt(10),
	}
}

func stock(warehouse string, nmID, qty int64) marketplace.StockInput {
	return marketplace.StockInput{
		UserID:         1,
		LastChangeDate: day,
		WarehouseName:  warehouse,
		NmID:           nmID,
		Quantity:       qty,
	}
}

func newTestPipeline(cfg Config) *Pipeline {
	return NewPipeline(cfg, zap.NewNop())
}

func TestPipeline_IngestOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("returns only new orders and skips invalid and failing records", func(t *testing.T) {
		repo := new(testutil.OrderRepository)
		fresh, dup, failing := order("a", 10), order("b", 10), order("c", 10)
		invalid := order("", 10)

		repo.On("InsertIfAbsent", mock.Anything, &fresh).
			Return(&marketplace.Order{ID: 1, OrderInput: fresh}, true, nil).Once()
		repo.On("InsertIfAbsent", mock.Anything, &dup).Return(nil, false, nil).Once()
		repo.On("InsertIfAbsent", mock.Anything, &failing).
			Return(nil, false, errors.New("value too long")).Once()

		got, err := newTestPipeline(DefaultConfig()).IngestOrders(ctx, repo,
			[]marketplace.OrderInput{fresh, invalid, dup, failing})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, "a", got[0].SRID)
		repo.AssertNumberOfCalls(t, "InsertIfAbsent", 3)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		repo := new(testutil.OrderRepository)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		got, err := newTestPipeline(DefaultConfig()).IngestOrders(cancelled, repo,
			[]marketplace.OrderInput{order("a", 10)})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, got)
		repo.AssertNotCalled(t, "InsertIfAbsent", mock.Anything, mock.Anything)
	})
}

func TestPipeline_IngestSales(t *testing.T) {
	ctx := context.Background()
	valid := marketplace.SaleInput{UserID: 1, Date: day, SRID: "s1", NmID: 10, SaleID: "S1"}
	invalid := marketplace.SaleInput{UserID: 1, Date: day, SRID: "s2", NmID: 0}

	t.Run("filters invalid rows and passes the batch size", func(t *testing.T) {
		repo := new(testutil.SaleRepository)
		repo.On("InsertIgnoringConflicts", mock.Anything, []marketplace.SaleInput{valid}, 25).
			Return(int64(1), nil).Once()

		n, err := newTestPipeline(Config{SaleBatchSize: 25}).IngestSales(ctx, repo,
			[]marketplace.SaleInput{valid, invalid})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		repo.AssertExpectations(t)
	})

	t.Run("nothing valid skips storage", func(t *testing.T) {
		repo := new(testutil.SaleRepository)

		n, err := newTestPipeline(DefaultConfig()).IngestSales(ctx, repo, []marketplace.SaleInput{invalid})
		require.NoError(t, err)
		assert.Zero(t, n)
		repo.AssertNotCalled(t, "InsertIgnoringConflicts", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage error is wrapped", func(t *testing.T) {
		repo := new(testutil.SaleRepository)
		repo.On("InsertIgnoringConflicts", mock.Anything, mock.Anything, mock.Anything).
			Return(int64(0), errors.New("boom"))

		_, err := newTestPipeline(DefaultConfig()).IngestSales(ctx, repo, []marketplace.SaleInput{valid})
		assert.ErrorContains(t, err, "insert sales: boom")
	})
}

func TestPipeline_IngestStocks(t *testing.T) {
	ctx := context.Background()

	t.Run("chunks by the configured size", func(t *testing.T) {
		repo := new(testutil.StockRepository)
		var sizes []int
		repo.On("UpsertBatch", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				sizes = append(sizes, len(args.Get(1).([]marketplace.StockInput)))
			}).
			Return(int64(1), nil)

		records := make([]marketplace.StockInput, 0, 1200)
		for i := 0; i < 1200; i++ {
			records = append(records, stock(fmt.Sprintf("WH-%d", i%3), int64(i+1), 5))
		}

		n, err := newTestPipeline(DefaultConfig()).IngestStocks(ctx, repo, records)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.Equal(t, []int{500, 500, 200}, sizes)
	})

	t.Run("duplicate keys collapse to the last occurrence", func(t *testing.T) {
		repo := new(testutil.StockRepository)
		var written []marketplace.StockInput
		repo.On("UpsertBatch", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				written = append(written, args.Get(1).([]marketplace.StockInput)...)
			}).
			Return(int64(2), nil).Once()

		_, err := newTestPipeline(DefaultConfig()).IngestStocks(ctx, repo, []marketplace.StockInput{
			stock("Коледино", 10, 3),
			stock("Казань", 10, 4),
			stock("Коледино", 10, 7),
			stock("", 10, 9),
		})
		require.NoError(t, err)
		require.Len(t, written, 2)
		assert.Equal(t, "Коледино", written[0].WarehouseName)
		assert.Equal(t, int64(7), written[0].Quantity)
		assert.Equal(t, "Казань", written[1].WarehouseName)
	})

	t.Run("chunk failure stops and reports progress", func(t *testing.T) {
		repo := new(testutil.StockRepository)
		repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(int64(2), nil).Once()
		repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(int64(0), errors.New("deadlock")).Once()

		n, err := newTestPipeline(Config{StockChunkSize: 2}).IngestStocks(ctx, repo, []marketplace.StockInput{
			stock("A", 1, 1), stock("A", 2, 1), stock("A", 3, 1), stock("A", 4, 1), stock("A", 5, 1),
		})
		assert.ErrorContains(t, err, "upsert stock chunk 1")
		assert.Equal(t, int64(2), n)
		repo.AssertNumberOfCalls(t, "UpsertBatch", 2)
	})
}

func TestConfigFrom(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFrom(config.IngestConfig{}))
	assert.Equal(t, Config{StockChunkSize: 50, SaleBatchSize: 10},
		ConfigFrom(config.IngestConfig{StockChunkSize: 50, SaleBatchSize: 10}))
}
