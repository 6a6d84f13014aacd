package wildberries

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerstats/backend/internal/domain/marketplace"
)

// wireTimeLayouts are the timestamp formats the statistics API emits. Values
// without an offset are in the marketplace's local time.
var wireTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02",
}

// parseWireTime parses a statistics API timestamp. Empty values and the
// zero date the API uses for "never" yield the zero time.
func parseWireTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0001-01-01") {
		return time.Time{}, nil
	}
	var firstErr error
	for _, layout := range wireTimeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// pingResponse is the body of GET /ping
type pingResponse struct {
	TS     string `json:"TS"`
	Status string `json:"Status"`
}

// orderRecord is one element of GET /api/v1/supplier/orders
type orderRecord struct {
	Date            string          `json:"date"`
	LastChangeDate  string          `json:"lastChangeDate"`
	SRID            string          `json:"srid"`
	GNumber         string          `json:"gNumber"`
	NmID            int64           `json:"nmId"`
	SupplierArticle string          `json:"supplierArticle"`
	Barcode         string          `json:"barcode"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	Subject         string          `json:"subject"`
	TechSize        string          `json:"techSize"`
	WarehouseName   string          `json:"warehouseName"`
	RegionName      string          `json:"regionName"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	SPP             decimal.Decimal `json:"spp"`
	FinishedPrice   decimal.Decimal `json:"finishedPrice"`
	PriceWithDisc   decimal.Decimal `json:"priceWithDisc"`
	IsCancel        bool            `json:"isCancel"`
	CancelDate      string          `json:"cancelDate"`
}

func (r *orderRecord) toInput(loc *time.Location) (marketplace.OrderInput, error) {
	date, err := parseWireTime(r.Date, loc)
	if err != nil {
		return marketplace.OrderInput{}, err
	}
	changed, err := parseWireTime(r.LastChangeDate, loc)
	if err != nil {
		return marketplace.OrderInput{}, err
	}
	cancelled, err := parseWireTime(r.CancelDate, loc)
	if err != nil {
		return marketplace.OrderInput{}, err
	}

	in := marketplace.OrderInput{
		Date:            date,
		LastChangeDate:  changed,
		SRID:            r.SRID,
		GNumber:         r.GNumber,
		NmID:            r.NmID,
		SupplierArticle: r.SupplierArticle,
		Barcode:         r.Barcode,
		Brand:           r.Brand,
		Category:        r.Category,
		Subject:         r.Subject,
		TechSize:        r.TechSize,
		WarehouseName:   r.WarehouseName,
		RegionName:      r.RegionName,
		TotalPrice:      r.TotalPrice,
		DiscountPercent: r.DiscountPercent,
		SPP:             r.SPP,
		FinishedPrice:   r.FinishedPrice,
		PriceWithDisc:   r.PriceWithDisc,
		IsCancel:        r.IsCancel,
	}
	if !cancelled.IsZero() {
		in.CancelDate = &cancelled
	}
	return in, nil
}

// saleRecord is one element of GET /api/v1/supplier/sales
type saleRecord struct {
	Date            string          `json:"date"`
	LastChangeDate  string          `json:"lastChangeDate"`
	SRID            string          `json:"srid"`
	SaleID          string          `json:"saleID"`
	GNumber         string          `json:"gNumber"`
	NmID            int64           `json:"nmId"`
	SupplierArticle string          `json:"supplierArticle"`
	Barcode         string          `json:"barcode"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	Subject         string          `json:"subject"`
	TechSize        string          `json:"techSize"`
	WarehouseName   string          `json:"warehouseName"`
	RegionName      string          `json:"regionName"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	SPP             decimal.Decimal `json:"spp"`
	ForPay          decimal.Decimal `json:"forPay"`
	FinishedPrice   decimal.Decimal `json:"finishedPrice"`
	PriceWithDisc   decimal.Decimal `json:"priceWithDisc"`
	IsCancel        bool            `json:"isCancel"`
}

func (r *saleRecord) toInput(loc *time.Location) (marketplace.SaleInput, error) {
	date, err := parseWireTime(r.Date, loc)
	if err != nil {
		return marketplace.SaleInput{}, err
	}
	changed, err := parseWireTime(r.LastChangeDate, loc)
	if err != nil {
		return marketplace.SaleInput{}, err
	}

	return marketplace.SaleInput{
		Date:            date,
		LastChangeDate:  changed,
		SRID:            r.SRID,
		SaleID:          r.SaleID,
		GNumber:         r.GNumber,
		NmID:            r.NmID,
		SupplierArticle: r.SupplierArticle,
		Barcode:         r.Barcode,
		Brand:           r.Brand,
		Category:        r.Category,
		Subject:         r.Subject,
		TechSize:        r.TechSize,
		WarehouseName:   r.WarehouseName,
		RegionName:      r.RegionName,
		TotalPrice:      r.TotalPrice,
		DiscountPercent: r.DiscountPercent,
		SPP:             r.SPP,
		ForPay:          r.ForPay,
		FinishedPrice:   r.FinishedPrice,
		PriceWithDisc:   r.PriceWithDisc,
		IsCancel:        r.IsCancel,
	}, nil
}

// stockRecord is one element of GET /api/v1/supplier/stocks
type stockRecord struct {
	LastChangeDate  string `json:"lastChangeDate"`
	WarehouseName   string `json:"warehouseName"`
	NmID            int64  `json:"nmId"`
	SupplierArticle string `json:"supplierArticle"`
	TechSize        string `json:"techSize"`
	Barcode         string `json:"barcode"`
	Quantity        int64  `json:"quantity"`
	QuantityFull    int64  `json:"quantityFull"`
}

func (r *stockRecord) toInput(loc *time.Location) (marketplace.StockInput, error) {
	changed, err := parseWireTime(r.LastChangeDate, loc)
	if err != nil {
		return marketplace.StockInput{}, err
	}
	return marketplace.StockInput{
		LastChangeDate:  changed,
		WarehouseName:   r.WarehouseName,
		NmID:            r.NmID,
		SupplierArticle: r.SupplierArticle,
		TechSize:        r.TechSize,
		Barcode:         r.Barcode,
		Quantity:        r.Quantity,
		QuantityFull:    r.QuantityFull,
	}, nil
}
