package marketplace

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerstats/backend/internal/domain/shared/valueobject"
)

// OrderInput is one order record as received from the statistics API,
// already bound to the owning user
type OrderInput struct {
	UserID          int64           `json:"-" validate:"gt=0"`
	Date            time.Time       `json:"date" validate:"required"`
	LastChangeDate  time.Time       `json:"lastChangeDate"`
	SRID            string          `json:"srid" validate:"required,max=100"`
	GNumber         string          `json:"gNumber" validate:"max=100"`
	NmID            int64           `json:"nmId" validate:"gt=0"`
	SupplierArticle string          `json:"supplierArticle" validate:"max=150"`
	Barcode         string          `json:"barcode" validate:"max=50"`
	Brand           string          `json:"brand" validate:"max=150"`
	Category        string          `json:"category" validate:"max=150"`
	Subject         string          `json:"subject" validate:"max=150"`
	TechSize        string          `json:"techSize" validate:"max=50"`
	WarehouseName   string          `json:"warehouseName" validate:"max=150"`
	RegionName      string          `json:"regionName" validate:"max=150"`
	TotalPrice      decimal.Decimal `json:"totalPrice" validate:"gte=0"`
	DiscountPercent decimal.Decimal `json:"discountPercent" validate:"gte=0,lte=100"`
	SPP             decimal.Decimal `json:"spp" validate:"gte=0,lte=100"`
	FinishedPrice   decimal.Decimal `json:"finishedPrice" validate:"gte=0"`
	PriceWithDisc   decimal.Decimal `json:"priceWithDisc" validate:"gte=0"`
	IsCancel        bool            `json:"isCancel"`
	CancelDate      *time.Time      `json:"cancelDate,omitempty"`
}

// DedupKey returns the natural key a stored order is unique on
func (in OrderInput) DedupKey() DedupKey {
	return DedupKey{
		Date:     in.Date,
		UserID:   in.UserID,
		SRID:     in.SRID,
		NmID:     in.NmID,
		IsCancel: in.IsCancel,
		TechSize: in.TechSize,
	}
}

// Order is a persisted order. ID is the storage sequence and defines the
// order's position within the day.
type Order struct {
	ID int64
	OrderInput
	CreatedAt time.Time
}

// DiscountedPrice returns total_price * (1 - discount_percent / 100) in
// roubles. It is the per-order amount every aggregate sums.
func (o *Order) DiscountedPrice() valueobject.Money {
	return valueobject.NewMoneyRUB(o.TotalPrice).ApplyDiscount(o.DiscountPercent)
}

// DedupKey is the attribute tuple storage treats as unique for orders and
// sales. A record with a given key is written at most once; first writer wins.
type DedupKey struct {
	Date     time.Time
	UserID   int64
	SRID     string
	NmID     int64
	IsCancel bool
	TechSize string
}
