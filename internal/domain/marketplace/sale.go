package marketplace

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleInput is one sale or return record as received from the statistics API.
// It shares the order dedup key.
type SaleInput struct {
	UserID          int64           `json:"-" validate:"gt=0"`
	Date            time.Time       `json:"date" validate:"required"`
	LastChangeDate  time.Time       `json:"lastChangeDate"`
	SRID            string          `json:"srid" validate:"required,max=100"`
	SaleID          string          `json:"saleID" validate:"max=50"`
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
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent" validate:"gte=0,lte=100"`
	SPP             decimal.Decimal `json:"spp" validate:"gte=0,lte=100"`
	ForPay          decimal.Decimal `json:"forPay"`
	FinishedPrice   decimal.Decimal `json:"finishedPrice"`
	PriceWithDisc   decimal.Decimal `json:"priceWithDisc"`
	IsCancel        bool            `json:"isCancel"`
}

// DedupKey returns the natural key a stored sale is unique on
func (in SaleInput) DedupKey() DedupKey {
	return DedupKey{
		Date:     in.Date,
		UserID:   in.UserID,
		SRID:     in.SRID,
		NmID:     in.NmID,
		IsCancel: in.IsCancel,
		TechSize: in.TechSize,
	}
}

// IsReturn reports whether the record is a return rather than a sale.
// The statistics API prefixes return ids with "R".
func (in SaleInput) IsReturn() bool {
	return len(in.SaleID) > 0 && in.SaleID[0] == 'R'
}
