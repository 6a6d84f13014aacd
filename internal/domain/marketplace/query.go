package marketplace

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderFilter selects the non-cancelled orders an aggregate runs over
type OrderFilter struct {
	UserID int64
	// NmID restricts to one item; 0 means every item
	NmID int64
	From time.Time
	// Until is exclusive unless UntilInclusive is set
	Until          time.Time
	UntilInclusive bool
	// BeforeID keeps only orders with id < BeforeID; 0 disables the cutoff
	BeforeID int64
}

// Totals is the count and discounted amount of a set of orders
type Totals struct {
	Count  int64
	Amount decimal.Decimal
}

// IsEmpty reports whether no order or no amount was found
func (t Totals) IsEmpty() bool {
	return t.Count == 0 || t.Amount.IsZero()
}

// StartOfDay returns midnight of the calendar day of t in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayRange returns the half-open [start, next) range of t's calendar day
func DayRange(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}
