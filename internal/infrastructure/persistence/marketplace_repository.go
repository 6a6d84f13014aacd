package persistence

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/infrastructure/persistence/models"
)

// dedupColumns is the conflict target shared by orders and sales
var dedupColumns = []clause.Column{
	{Name: "date"},
	{Name: "user_id"},
	{Name: "srid"},
	{Name: "nm_id"},
	{Name: "is_cancel"},
	{Name: "tech_size"},
}

// stockKeyColumns is the conflict target of stock snapshots
var stockKeyColumns = []clause.Column{
	{Name: "user_id"},
	{Name: "warehouse_name"},
	{Name: "nm_id"},
}

// discountedSum is the amount every order aggregate sums
const discountedSum = "SUM(total_price * (1 - discount_percent / 100.0))"

// savepoint runs fn in its own transaction. Bound to an open transaction
// this becomes a savepoint, so a failing statement rolls back only itself and
// the surrounding transaction stays usable.
func savepoint(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// GormOrderRepository implements marketplace.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// InsertIfAbsent inserts the order with ON CONFLICT DO NOTHING on the dedup
// key. The statement runs in a savepoint so a failing record leaves the
// surrounding transaction usable.
func (r *GormOrderRepository) InsertIfAbsent(ctx context.Context, in *marketplace.OrderInput) (*marketplace.Order, bool, error) {
	model := models.OrderModelFromInput(in)
	var inserted bool

	err := savepoint(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   dedupColumns,
			DoNothing: true,
		}).Create(model)
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected == 1
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		return nil, false, nil
	}
	return model.ToDomain(), true, nil
}

// totalsRow is the scan target of SumOrders
type totalsRow struct {
	Count  int64
	Amount decimal.NullDecimal
}

// SumOrders counts and sums the discounted price of non-cancelled orders.
// The read runs in a savepoint; a failed aggregate must not abort the ingest
// transaction it shares.
func (r *GormOrderRepository) SumOrders(ctx context.Context, f marketplace.OrderFilter) (marketplace.Totals, error) {
	var row totalsRow
	err := savepoint(ctx, r.db, func(tx *gorm.DB) error {
		q := tx.Model(&models.OrderModel{}).
			Select("COUNT(*) AS count, "+discountedSum+" AS amount").
			Where("user_id = ? AND is_cancel = ?", f.UserID, false)

		if f.NmID != 0 {
			q = q.Where("nm_id = ?", f.NmID)
		}
		if !f.From.IsZero() {
			q = q.Where(clause.Gte{Column: clause.Column{Name: "date"}, Value: f.From})
		}
		if !f.Until.IsZero() {
			if f.UntilInclusive {
				q = q.Where(clause.Lte{Column: clause.Column{Name: "date"}, Value: f.Until})
			} else {
				q = q.Where(clause.Lt{Column: clause.Column{Name: "date"}, Value: f.Until})
			}
		}
		if f.BeforeID > 0 {
			q = q.Where("id < ?", f.BeforeID)
		}
		return q.Scan(&row).Error
	})
	if err != nil {
		return marketplace.Totals{}, err
	}

	totals := marketplace.Totals{Count: row.Count, Amount: decimal.Zero}
	if row.Amount.Valid {
		totals.Amount = row.Amount.Decimal
	}
	return totals, nil
}

// ---------------------------------------------------------------------------
// Sales
// ---------------------------------------------------------------------------

// GormSaleRepository implements marketplace.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// InsertIgnoringConflicts inserts the sales in batches, skipping existing keys
func (r *GormSaleRepository) InsertIgnoringConflicts(ctx context.Context, sales []marketplace.SaleInput, batchSize int) (int64, error) {
	if len(sales) == 0 {
		return 0, nil
	}

	rows := make([]*models.SaleModel, len(sales))
	for i := range sales {
		rows[i] = models.SaleModelFromInput(&sales[i])
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   dedupColumns,
			DoNothing: true,
		}).
		CreateInBatches(rows, batchSize)
	return result.RowsAffected, result.Error
}

// ---------------------------------------------------------------------------
// Stocks
// ---------------------------------------------------------------------------

// GormStockRepository implements marketplace.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// UpsertBatch writes all rows in one statement, overwriting quantity and
// last_change_date of existing keys
func (r *GormStockRepository) UpsertBatch(ctx context.Context, rows []marketplace.StockInput) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch := make([]*models.StockModel, len(rows))
	for i := range rows {
		batch[i] = models.StockModelFromInput(&rows[i])
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   stockKeyColumns,
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "last_change_date"}),
		}).
		Create(&batch)
	return result.RowsAffected, result.Error
}

// GroupedByWarehouse sums the item's quantity per (warehouse, last_change_date)
// and keeps the positive sums. Like SumOrders it reads in a savepoint.
func (r *GormStockRepository) GroupedByWarehouse(ctx context.Context, userID, nmID int64) ([]marketplace.WarehouseQuantity, error) {
	var rows []marketplace.WarehouseQuantity
	err := savepoint(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Model(&models.StockModel{}).
			Select("warehouse_name, last_change_date, SUM(quantity) AS quantity").
			Where("user_id = ? AND nm_id = ?", userID, nmID).
			Group("warehouse_name, last_change_date").
			Having("SUM(quantity) > ?", 0).
			Order("warehouse_name ASC").
			Order("last_change_date ASC").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var (
	_ marketplace.OrderRepository = (*GormOrderRepository)(nil)
	_ marketplace.SaleRepository  = (*GormSaleRepository)(nil)
	_ marketplace.StockRepository = (*GormStockRepository)(nil)
)
