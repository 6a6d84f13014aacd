package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/infrastructure/persistence/models"
)

func orderInput(userID int64, srid string, nmID int64, date time.Time, price, discount string) *marketplace.OrderInput {
	return &marketplace.OrderInput{
		UserID:          userID,
		Date:            date,
		LastChangeDate:  date,
		SRID:            srid,
		NmID:            nmID,
		TechSize:        "0",
		WarehouseName:   "Коледино",
		TotalPrice:      decimal.RequireFromString(price),
		DiscountPercent: decimal.RequireFromString(discount),
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got.Round(2)), "want %s, got %s", want, got)
}

func TestGormOrderRepository_InsertIfAbsentIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	in := orderInput(1, "srid-1", 42, at(10, 0), "1000", "10")

	order, inserted, err := repo.InsertIfAbsent(ctx, in)
	require.NoError(t, err)
	require.True(t, inserted)
	require.NotNil(t, order)
	assert.Positive(t, order.ID)
	assert.Equal(t, "srid-1", order.SRID)

	again, inserted, err := repo.InsertIfAbsent(ctx, in)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Nil(t, again)

	cancelled := *in
	cancelled.IsCancel = true
	_, inserted, err = repo.InsertIfAbsent(ctx, &cancelled)
	require.NoError(t, err)
	assert.True(t, inserted, "is_cancel is part of the dedup key")

	var count int64
	require.NoError(t, db.Model(&models.OrderModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestGormOrderRepository_InsertIfAbsentInsideTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tx := db.Begin()
	require.NoError(t, tx.Error)
	repo := NewGormOrderRepository(tx)

	_, inserted, err := repo.InsertIfAbsent(ctx, orderInput(1, "srid-1", 42, at(10, 0), "100", "0"))
	require.NoError(t, err)
	assert.True(t, inserted)

	_, inserted, err = repo.InsertIfAbsent(ctx, orderInput(1, "srid-1", 42, at(10, 0), "100", "0"))
	require.NoError(t, err)
	assert.False(t, inserted)

	_, inserted, err = repo.InsertIfAbsent(ctx, orderInput(1, "srid-2", 42, at(11, 0), "200", "0"))
	require.NoError(t, err)
	assert.True(t, inserted)

	require.NoError(t, tx.Commit().Error)

	var count int64
	require.NoError(t, db.Model(&models.OrderModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestGormOrderRepository_SumOrders(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	insert := func(in *marketplace.OrderInput) *marketplace.Order {
		order, inserted, err := repo.InsertIfAbsent(ctx, in)
		require.NoError(t, err)
		require.True(t, inserted)
		return order
	}

	yesterday := func(hour int) time.Time { return at(hour, 0).AddDate(0, 0, -1) }

	first := insert(orderInput(1, "a", 42, at(9, 0), "1000", "10"))
	second := insert(orderInput(1, "b", 42, at(10, 0), "500", "0"))
	cancelled := orderInput(1, "c", 42, at(11, 0), "700", "0")
	cancelled.IsCancel = true
	third := insert(cancelled)
	other := insert(orderInput(1, "d", 77, at(12, 0), "300", "0"))
	insert(orderInput(2, "e", 42, at(12, 0), "9999", "0"))
	insert(orderInput(1, "f", 42, yesterday(20), "400", "50"))

	start, next := marketplace.DayRange(at(12, 0))

	t.Run("day counter before order id", func(t *testing.T) {
		totals, err := repo.SumOrders(ctx, marketplace.OrderFilter{
			UserID: 1, From: start, Until: next, BeforeID: third.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), totals.Count)
		assertDecimal(t, "1400", totals.Amount)
	})

	t.Run("cancelled orders are excluded", func(t *testing.T) {
		totals, err := repo.SumOrders(ctx, marketplace.OrderFilter{
			UserID: 1, From: start, Until: next,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), totals.Count)
		assertDecimal(t, "1700", totals.Amount)
	})

	t.Run("item through an inclusive instant", func(t *testing.T) {
		totals, err := repo.SumOrders(ctx, marketplace.OrderFilter{
			UserID: 1, NmID: 42, From: start, Until: second.Date, UntilInclusive: true,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), totals.Count)
		assertDecimal(t, "1400", totals.Amount)
	})

	t.Run("exclusive bound drops the boundary order", func(t *testing.T) {
		totals, err := repo.SumOrders(ctx, marketplace.OrderFilter{
			UserID: 1, NmID: 42, From: start, Until: second.Date,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), totals.Count)
		assertDecimal(t, "900", totals.Amount)
	})

	t.Run("previous day", func(t *testing.T) {
		prevStart := start.AddDate(0, 0, -1)
		totals, err := repo.SumOrders(ctx, marketplace.OrderFilter{
			UserID: 1, NmID: 42, From: prevStart, Until: start, BeforeID: other.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), totals.Count, "yesterday's order was inserted after other")

		totals, err = repo.SumOrders(ctx, marketplace.OrderFilter{
			UserID: 1, NmID: 42, From: prevStart, Until: start,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), totals.Count)
		assertDecimal(t, "200", totals.Amount)
	})

	t.Run("no rows gives zero totals", func(t *testing.T) {
		totals, err := repo.SumOrders(ctx, marketplace.OrderFilter{
			UserID: 1, From: start, Until: next, BeforeID: first.ID,
		})
		require.NoError(t, err)
		assert.True(t, totals.IsEmpty())
		assert.True(t, totals.Amount.IsZero())
	})
}

func TestGormOrderRepository_SumOrdersStorageError(t *testing.T) {
	gormDB, mock, _ := newMockDB(t)
	repo := NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS count`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.SumOrders(context.Background(), marketplace.OrderFilter{UserID: 1})
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_InsertIfAbsentStorageError(t *testing.T) {
	gormDB, mock, _ := newMockDB(t)
	repo := NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	order, inserted, err := repo.InsertIfAbsent(context.Background(), orderInput(1, "a", 42, at(9, 0), "1", "0"))
	assert.Error(t, err)
	assert.False(t, inserted)
	assert.Nil(t, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func saleInput(userID int64, srid, saleID string, date time.Time) marketplace.SaleInput {
	return marketplace.SaleInput{
		UserID:          userID,
		Date:            date,
		LastChangeDate:  date,
		SRID:            srid,
		SaleID:          saleID,
		NmID:            42,
		TechSize:        "0",
		TotalPrice:      decimal.NewFromInt(1000),
		DiscountPercent: decimal.NewFromInt(10),
		ForPay:          decimal.NewFromInt(850),
	}
}

func TestGormSaleRepository_InsertIgnoringConflicts(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	batch := []marketplace.SaleInput{
		saleInput(1, "a", "S1", at(9, 0)),
		saleInput(1, "b", "S2", at(10, 0)),
		saleInput(1, "c", "R3", at(11, 0)),
	}

	n, err := repo.InsertIgnoringConflicts(ctx, batch, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	replay := append(batch, saleInput(1, "d", "S4", at(12, 0)))
	n, err = repo.InsertIgnoringConflicts(ctx, replay, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int64
	require.NoError(t, db.Model(&models.SaleModel{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)

	n, err = repo.InsertIgnoringConflicts(ctx, nil, 2)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func stockInput(userID int64, warehouse string, nmID, qty int64, changed time.Time) marketplace.StockInput {
	return marketplace.StockInput{
		UserID:         userID,
		LastChangeDate: changed,
		WarehouseName:  warehouse,
		NmID:           nmID,
		Quantity:       qty,
		QuantityFull:   qty,
	}
}

func TestGormStockRepository_UpsertBatchLastWriterWins(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, []marketplace.StockInput{
		stockInput(1, "Коледино", 42, 5, at(8, 0)),
		stockInput(1, "Казань", 42, 3, at(8, 0)),
	})
	require.NoError(t, err)

	_, err = repo.UpsertBatch(ctx, []marketplace.StockInput{
		stockInput(1, "Коледино", 42, 9, at(9, 0)),
	})
	require.NoError(t, err)

	var rows []models.StockModel
	require.NoError(t, db.Order("warehouse_name ASC").Find(&rows).Error)
	require.Len(t, rows, 2)

	kazan, koledino := rows[0].ToInput(), rows[1].ToInput()
	assert.Equal(t, "Казань", kazan.WarehouseName)
	assert.Equal(t, int64(3), kazan.Quantity)
	assert.Equal(t, "Коледино", koledino.WarehouseName)
	assert.Equal(t, int64(9), koledino.Quantity)
	assert.True(t, at(9, 0).Equal(koledino.LastChangeDate))
}

func TestGormStockRepository_UpsertBatchManyRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormStockRepository(db)

	batch := make([]marketplace.StockInput, 0, 120)
	for i := range 120 {
		batch = append(batch, stockInput(1, fmt.Sprintf("wh-%03d", i), 42, int64(i), at(8, 0)))
	}

	n, err := repo.UpsertBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, int64(120), n)

	n, err = repo.UpsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormStockRepository_GroupedByWarehouse(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, []marketplace.StockInput{
		stockInput(1, "Коледино", 42, 5, at(8, 0)),
		stockInput(1, "Казань", 42, 3, at(9, 0)),
		stockInput(1, "Тула", 42, 0, at(9, 0)),
		stockInput(1, "Коледино", 77, 8, at(9, 0)),
		stockInput(2, "Коледино", 42, 100, at(9, 0)),
	})
	require.NoError(t, err)

	rows, err := repo.GroupedByWarehouse(ctx, 1, 42)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Казань", rows[0].WarehouseName)
	assert.Equal(t, int64(3), rows[0].Quantity)
	assert.Equal(t, "Коледино", rows[1].WarehouseName)
	assert.Equal(t, int64(5), rows[1].Quantity)

	rows, err = repo.GroupedByWarehouse(ctx, 1, 999)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGormStockRepository_GroupedByWarehouseStorageError(t *testing.T) {
	gormDB, mock, _ := newMockDB(t)
	repo := NewGormStockRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT warehouse_name, last_change_date, SUM\(quantity\)`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	rows, err := repo.GroupedByWarehouse(context.Background(), 1, 42)
	assert.EqualError(t, err, "connection reset")
	assert.Nil(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockRepository_UpsertBatchStorageError(t *testing.T) {
	gormDB, mock, _ := newMockDB(t)
	repo := NewGormStockRepository(gormDB)

	mock.ExpectQuery(`INSERT INTO "stocks"`).
		WillReturnError(errors.New("deadlock detected"))

	_, err := repo.UpsertBatch(context.Background(), []marketplace.StockInput{
		stockInput(1, "Коледино", 42, 5, at(8, 0)),
	})
	assert.EqualError(t, err, "deadlock detected")
	assert.NoError(t, mock.ExpectationsWereMet())
}
