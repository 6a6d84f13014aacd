package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/domain/shared/valueobject"
)

// Aggregator computes the per-order aggregates over stored orders. Calendar
// days are taken in the configured location.
type Aggregator struct {
	loc    *time.Location
	logger *zap.Logger
}

// NewAggregator creates a new Aggregator
func NewAggregator(loc *time.Location, logger *zap.Logger) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{
		loc:    loc,
		logger: logger.Named("aggregator"),
	}
}

// DayCounterAndAmount numbers the order within its calendar day and sums the
// discounted price of the non-cancelled orders stored before it. On storage
// failure the value falls back to number 1 and amount 0.
func (a *Aggregator) DayCounterAndAmount(ctx context.Context, orders marketplace.OrderRepository, userID, orderID int64, date time.Time) Outcome[DayCounter] {
	from, until := marketplace.DayRange(date.In(a.loc))
	totals, err := orders.SumOrders(ctx, marketplace.OrderFilter{
		UserID:   userID,
		From:     from,
		Until:    until,
		BeforeID: orderID,
	})
	if err != nil {
		a.logger.Error("Failed to compute day counter",
			zap.Int64("user_id", userID),
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return degraded(DayCounter{Number: 1}, err)
	}

	return ok(DayCounter{
		Number: totals.Count + 1,
		Amount: valueobject.NewMoneyRUB(totals.Amount).Units(),
	})
}

// CombinedTotals summarises the item's orders from the start of the day
// through date, plus the previous day's orders stored before orderID.
// provisional is the amount of the order being reported; it is the whole
// today total when nothing is stored for today yet, and is added to the
// stored total otherwise.
func (a *Aggregator) CombinedTotals(
	ctx context.Context,
	orders marketplace.OrderRepository,
	userID, orderID, nmID int64,
	date time.Time,
	provisional decimal.Decimal,
) Outcome[CombinedTotals] {
	if provisional.IsZero() {
		a.logger.Warn("Order carried no amount",
			zap.Int64("user_id", userID),
			zap.Int64("order_id", orderID),
		)
		return degraded(CombinedTotals{}, ErrNoProvisionalTotal)
	}

	date = date.In(a.loc)
	dayStart := marketplace.StartOfDay(date)

	today, err := orders.SumOrders(ctx, marketplace.OrderFilter{
		UserID:         userID,
		NmID:           nmID,
		From:           dayStart,
		Until:          date,
		UntilInclusive: true,
	})
	if err != nil {
		return a.totalsFailed(userID, orderID, err)
	}

	yesterday, err := orders.SumOrders(ctx, marketplace.OrderFilter{
		UserID:   userID,
		NmID:     nmID,
		From:     dayStart.AddDate(0, 0, -1),
		Until:    dayStart,
		BeforeID: orderID,
	})
	if err != nil {
		return a.totalsFailed(userID, orderID, err)
	}

	todayAmount := provisional
	if !today.IsEmpty() {
		todayAmount = today.Amount.Add(provisional)
	}

	return ok(CombinedTotals{
		Today: Summary{
			Count:  today.Count,
			Amount: valueobject.NewMoneyRUB(todayAmount).Units(),
		},
		Yesterday: Summary{
			Count:  yesterday.Count,
			Amount: valueobject.NewMoneyRUB(yesterday.Amount).Units(),
		},
	})
}

func (a *Aggregator) totalsFailed(userID, orderID int64, err error) Outcome[CombinedTotals] {
	a.logger.Error("Failed to compute combined totals",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", orderID),
		zap.Error(err),
	)
	return degraded(CombinedTotals{}, err)
}
