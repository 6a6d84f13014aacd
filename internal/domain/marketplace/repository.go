package marketplace

import (
	"context"
	"time"
)

// OrderRepository persists orders and answers the aggregates over them
type OrderRepository interface {
	// InsertIfAbsent inserts the order unless its dedup key already exists.
	// It returns the stored row and true when inserted, nil and false on a
	// conflict.
	InsertIfAbsent(ctx context.Context, in *OrderInput) (*Order, bool, error)

	// SumOrders counts and sums the discounted price of the non-cancelled
	// orders selected by the filter
	SumOrders(ctx context.Context, filter OrderFilter) (Totals, error)
}

// SaleRepository persists sales
type SaleRepository interface {
	// InsertIgnoringConflicts inserts the sales in batches of batchSize,
	// skipping rows whose dedup key already exists. It returns the number of
	// inserted rows.
	InsertIgnoringConflicts(ctx context.Context, sales []SaleInput, batchSize int) (int64, error)
}

// StockRepository persists stock snapshots
type StockRepository interface {
	// UpsertBatch writes the rows in one statement, overwriting quantity and
	// last_change_date on key conflicts. Keys must be unique within rows.
	UpsertBatch(ctx context.Context, rows []StockInput) (int64, error)

	// GroupedByWarehouse returns the summed quantity of the item per
	// (warehouse, last_change_date), keeping only positive sums
	GroupedByWarehouse(ctx context.Context, userID, nmID int64) ([]WarehouseQuantity, error)
}

// Client is the marketplace API consumed by the sync pass. Implementations
// map an authentication rejection to ErrUnauthorized.
type Client interface {
	// Ping checks that the token is accepted
	Ping(ctx context.Context, token string) error
	FetchOrders(ctx context.Context, token string, since time.Time) ([]OrderInput, error)
	FetchSales(ctx context.Context, token string, since time.Time) ([]SaleInput, error)
	FetchStocks(ctx context.Context, token string, since time.Time) ([]StockInput, error)
}
