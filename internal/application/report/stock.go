package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sellerstats/backend/internal/application/unitofwork"
	"github.com/sellerstats/backend/internal/domain/marketplace"
)

// StockReporter renders the current stock of an item across warehouses
type StockReporter struct {
	uow    unitofwork.Factory
	loc    *time.Location
	logger *zap.Logger
}

// NewStockReporter creates a new StockReporter
func NewStockReporter(uow unitofwork.Factory, loc *time.Location, logger *zap.Logger) *StockReporter {
	if loc == nil {
		loc = time.UTC
	}
	return &StockReporter{
		uow:    uow,
		loc:    loc,
		logger: logger.Named("stock_report"),
	}
}

// StockReport renders the item's stock in its own unit of work. On storage
// failure the unit of work is rolled back and the outcome carries no text.
func (r *StockReporter) StockReport(ctx context.Context, userID, nmID int64) Outcome[string] {
	var text string
	err := unitofwork.Run(ctx, r.uow, func(repos unitofwork.Repositories) error {
		var err error
		text, err = r.render(ctx, repos.Stocks(), userID, nmID)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to build stock report",
			zap.Int64("user_id", userID),
			zap.Int64("nm_id", nmID),
			zap.Error(err),
		)
		return degraded("", err)
	}
	return ok(text)
}

// StockReportWith renders the item's stock using the caller's repository
func (r *StockReporter) StockReportWith(ctx context.Context, stocks marketplace.StockRepository, userID, nmID int64) Outcome[string] {
	text, err := r.render(ctx, stocks, userID, nmID)
	if err != nil {
		r.logger.Error("Failed to build stock report",
			zap.Int64("user_id", userID),
			zap.Int64("nm_id", nmID),
			zap.Error(err),
		)
		return degraded("", err)
	}
	return ok(text)
}

func (r *StockReporter) render(ctx context.Context, stocks marketplace.StockRepository, userID, nmID int64) (string, error) {
	rows, err := stocks.GroupedByWarehouse(ctx, userID, nmID)
	if err != nil {
		return "", err
	}
	return FormatStockReport(nmID, rows, r.loc), nil
}

// FormatStockReport keeps the latest row of every warehouse and renders them
// sorted by warehouse name under the most recent update date
func FormatStockReport(nmID int64, rows []marketplace.WarehouseQuantity, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	latest := make(map[string]marketplace.WarehouseQuantity, len(rows))
	for _, row := range rows {
		if cur, seen := latest[row.WarehouseName]; !seen || row.LastChangeDate.After(cur.LastChangeDate) {
			latest[row.WarehouseName] = row
		}
	}

	var (
		total   int64
		updated time.Time
		names   = make([]string, 0, len(latest))
	)
	for name, row := range latest {
		total += row.Quantity
		if row.LastChangeDate.After(updated) {
			updated = row.LastChangeDate
		}
		names = append(names, name)
	}
	if total == 0 {
		return fmt.Sprintf("Остаток для %d: 0", nmID)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Дата обновления: %s\n", updated.In(loc).Format("2006-01-02"))
	for _, name := range names {
		fmt.Fprintf(&b, "📦 %s – %d шт.\n", name, latest[name].Quantity)
	}
	fmt.Fprintf(&b, "\n📦 Всего: %d шт.", total)
	return b.String()
}
