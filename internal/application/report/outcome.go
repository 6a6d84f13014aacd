// Package report answers the per-order aggregates and the stock report
// shown to sellers. Every answer is an Outcome: a usable value even when
// storage failed, with the failure attached.
package report

import (
	"errors"
	"fmt"
)

// ErrNoProvisionalTotal is attached when the upstream order carried no
// amount, so combined totals cannot be computed
var ErrNoProvisionalTotal = errors.New("report: provisional total is zero")

// Outcome carries a value together with the error that degraded it. Err is
// nil for a legitimate result, including a legitimately empty one.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Degraded reports whether the value is a fallback
func (o Outcome[T]) Degraded() bool {
	return o.Err != nil
}

func ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func degraded[T any](v T, err error) Outcome[T] {
	return Outcome[T]{Value: v, Err: err}
}

// Summary is a count of orders and their rounded amount in roubles
type Summary struct {
	Count  int64
	Amount int64
}

// String renders the summary as "<count> на <amount>"
func (s Summary) String() string {
	return fmt.Sprintf("%d на %d", s.Count, s.Amount)
}

// DayCounter is the position of an order within its day plus the amount of
// the orders before it
type DayCounter struct {
	Number int64
	Amount int64
}

// CombinedTotals holds the today and yesterday summaries of one item
type CombinedTotals struct {
	Today     Summary
	Yesterday Summary
}
