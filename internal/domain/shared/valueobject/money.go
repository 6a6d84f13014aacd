package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// RUB is the currency every marketplace amount is reported in
const RUB Currency = "RUB"

var hundred = decimal.NewFromInt(100)

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoneyRUB creates Money in RUB
func NewMoneyRUB(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: RUB}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// ApplyDiscount returns the Money after applying a percentage discount:
// amount * (1 - percent/100)
func (m Money) ApplyDiscount(discountPercent decimal.Decimal) Money {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return Money{
		amount:   m.amount.Mul(factor),
		currency: m.currency,
	}
}

// Units rounds the amount to whole currency units using banker's rounding
// (half to even), so 2.5 becomes 2 and 3.5 becomes 4.
func (m Money) Units() int64 {
	return m.amount.RoundBank(0).IntPart()
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
