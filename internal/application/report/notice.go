package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/sellerstats/backend/internal/domain/marketplace"
)

// OrderNotice is the message sent to a seller about one new order
type OrderNotice struct {
	UserID     int64
	ExternalID int64
	Order      marketplace.Order
	Counter    Outcome[DayCounter]
	Totals     Outcome[CombinedTotals]
	// Stock is the rendered stock report; empty when it could not be built
	Stock    string
	Location *time.Location
}

// Degraded reports whether any part of the notice fell back to a default
func (n OrderNotice) Degraded() bool {
	return n.Counter.Degraded() || n.Totals.Degraded()
}

// Text renders the notice
func (n OrderNotice) Text() string {
	loc := n.Location
	if loc == nil {
		loc = time.UTC
	}
	o := n.Order

	var b strings.Builder
	fmt.Fprintf(&b, "🛒 Заказ № %d за сегодня на %d ₽\n", n.Counter.Value.Number, n.Counter.Value.Amount)
	fmt.Fprintf(&b, "📅 %s\n", o.Date.In(loc).Format("2006-01-02 15:04"))
	if o.Brand != "" || o.Subject != "" {
		fmt.Fprintf(&b, "🏷 %s\n", strings.TrimSpace(o.Brand+" "+o.Subject))
	}
	fmt.Fprintf(&b, "🆔 Артикул: %d (%s)\n", o.NmID, o.SupplierArticle)
	fmt.Fprintf(&b, "💰 Цена: %d ₽\n", o.DiscountedPrice().Units())
	if o.WarehouseName != "" {
		fmt.Fprintf(&b, "🚚 %s → %s\n", o.WarehouseName, o.RegionName)
	}
	if n.Totals.Err == nil {
		fmt.Fprintf(&b, "📈 Сегодня: %s\n", n.Totals.Value.Today)
		fmt.Fprintf(&b, "📉 Вчера: %s\n", n.Totals.Value.Yesterday)
	}
	if n.Stock != "" {
		b.WriteString("\n")
		b.WriteString(n.Stock)
	}
	return strings.TrimRight(b.String(), "\n")
}
