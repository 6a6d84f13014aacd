package marketplace

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrder_DiscountedPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount string
		want     string
	}{
		{"no discount", "1000", "0", "1000"},
		{"half price", "1000", "50", "500"},
		{"fractional", "1999.90", "15", "1699.915"},
		{"full discount", "300", "100", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{OrderInput: OrderInput{
				TotalPrice:      decimal.RequireFromString(tt.price),
				DiscountPercent: decimal.RequireFromString(tt.discount),
			}}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(o.DiscountedPrice().Amount()),
				"got %s", o.DiscountedPrice().Amount())
		})
	}
}

func TestDedupKey_SharedByOrdersAndSales(t *testing.T) {
	date := time.Date(2025, 5, 18, 10, 30, 0, 0, time.UTC)
	order := OrderInput{UserID: 1, Date: date, SRID: "s1", NmID: 42, TechSize: "M"}
	sale := SaleInput{UserID: 1, Date: date, SRID: "s1", NmID: 42, TechSize: "M", SaleID: "S1"}

	assert.Equal(t, order.DedupKey(), sale.DedupKey())

	order.IsCancel = true
	assert.NotEqual(t, order.DedupKey(), sale.DedupKey())
}

func TestSaleInput_IsReturn(t *testing.T) {
	assert.True(t, SaleInput{SaleID: "R123"}.IsReturn())
	assert.False(t, SaleInput{SaleID: "S123"}.IsReturn())
	assert.False(t, SaleInput{}.IsReturn())
}

func TestDayRange(t *testing.T) {
	at := time.Date(2025, 5, 18, 23, 59, 59, 0, time.UTC)
	start, next := DayRange(at)

	assert.Equal(t, time.Date(2025, 5, 18, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC), next)
	assert.Equal(t, start, StartOfDay(at))
}

func TestTotals_IsEmpty(t *testing.T) {
	assert.True(t, Totals{}.IsEmpty())
	assert.True(t, Totals{Count: 2}.IsEmpty())
	assert.True(t, Totals{Amount: decimal.NewFromInt(5)}.IsEmpty())
	assert.False(t, Totals{Count: 1, Amount: decimal.NewFromInt(5)}.IsEmpty())
}
