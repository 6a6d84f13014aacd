package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerstats/backend/internal/domain/marketplace"
)

// OrderModel is the persistence model for an order. The uq_orders_dedup
// index is the conflict target of the insert-if-absent write.
type OrderModel struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	Date            time.Time       `gorm:"not null;uniqueIndex:uq_orders_dedup,priority:1"`
	UserID          int64           `gorm:"not null;uniqueIndex:uq_orders_dedup,priority:2"`
	SRID            string          `gorm:"column:srid;type:varchar(100);not null;uniqueIndex:uq_orders_dedup,priority:3"`
	NmID            int64           `gorm:"column:nm_id;not null;uniqueIndex:uq_orders_dedup,priority:4"`
	IsCancel        bool            `gorm:"not null;uniqueIndex:uq_orders_dedup,priority:5"`
	TechSize        string          `gorm:"type:varchar(50);not null;uniqueIndex:uq_orders_dedup,priority:6"`
	LastChangeDate  time.Time
	GNumber         string          `gorm:"column:g_number;type:varchar(100)"`
	SupplierArticle string          `gorm:"type:varchar(150)"`
	Barcode         string          `gorm:"type:varchar(50)"`
	Brand           string          `gorm:"type:varchar(150)"`
	Category        string          `gorm:"type:varchar(150)"`
	Subject         string          `gorm:"type:varchar(150)"`
	WarehouseName   string          `gorm:"type:varchar(150)"`
	RegionName      string          `gorm:"type:varchar(150)"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	SPP             decimal.Decimal `gorm:"column:spp;type:numeric(5,2);not null"`
	FinishedPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PriceWithDisc   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CancelDate      *time.Time
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *marketplace.Order {
	return &marketplace.Order{
		ID: m.ID,
		OrderInput: marketplace.OrderInput{
			UserID:          m.UserID,
			Date:            m.Date,
			LastChangeDate:  m.LastChangeDate,
			SRID:            m.SRID,
			GNumber:         m.GNumber,
			NmID:            m.NmID,
			SupplierArticle: m.SupplierArticle,
			Barcode:         m.Barcode,
			Brand:           m.Brand,
			Category:        m.Category,
			Subject:         m.Subject,
			TechSize:        m.TechSize,
			WarehouseName:   m.WarehouseName,
			RegionName:      m.RegionName,
			TotalPrice:      m.TotalPrice,
			DiscountPercent: m.DiscountPercent,
			SPP:             m.SPP,
			FinishedPrice:   m.FinishedPrice,
			PriceWithDisc:   m.PriceWithDisc,
			IsCancel:        m.IsCancel,
			CancelDate:      m.CancelDate,
		},
		CreatedAt: m.CreatedAt,
	}
}

// OrderModelFromInput creates a new persistence model from an order record
func OrderModelFromInput(in *marketplace.OrderInput) *OrderModel {
	return &OrderModel{
		Date:            in.Date,
		UserID:          in.UserID,
		SRID:            in.SRID,
		NmID:            in.NmID,
		IsCancel:        in.IsCancel,
		TechSize:        in.TechSize,
		LastChangeDate:  in.LastChangeDate,
		GNumber:         in.GNumber,
		SupplierArticle: in.SupplierArticle,
		Barcode:         in.Barcode,
		Brand:           in.Brand,
		Category:        in.Category,
		Subject:         in.Subject,
		WarehouseName:   in.WarehouseName,
		RegionName:      in.RegionName,
		TotalPrice:      in.TotalPrice,
		DiscountPercent: in.DiscountPercent,
		SPP:             in.SPP,
		FinishedPrice:   in.FinishedPrice,
		PriceWithDisc:   in.PriceWithDisc,
		CancelDate:      in.CancelDate,
		CreatedAt:       time.Now(),
	}
}

// SaleModel is the persistence model for a sale or return. It shares the
// order dedup key.
type SaleModel struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	Date            time.Time       `gorm:"not null;uniqueIndex:uq_sales_dedup,priority:1"`
	UserID          int64           `gorm:"not null;uniqueIndex:uq_sales_dedup,priority:2"`
	SRID            string          `gorm:"column:srid;type:varchar(100);not null;uniqueIndex:uq_sales_dedup,priority:3"`
	NmID            int64           `gorm:"column:nm_id;not null;uniqueIndex:uq_sales_dedup,priority:4"`
	IsCancel        bool            `gorm:"not null;uniqueIndex:uq_sales_dedup,priority:5"`
	TechSize        string          `gorm:"type:varchar(50);not null;uniqueIndex:uq_sales_dedup,priority:6"`
	SaleID          string          `gorm:"column:sale_id;type:varchar(50)"`
	LastChangeDate  time.Time
	GNumber         string          `gorm:"column:g_number;type:varchar(100)"`
	SupplierArticle string          `gorm:"type:varchar(150)"`
	Barcode         string          `gorm:"type:varchar(50)"`
	Brand           string          `gorm:"type:varchar(150)"`
	Category        string          `gorm:"type:varchar(150)"`
	Subject         string          `gorm:"type:varchar(150)"`
	WarehouseName   string          `gorm:"type:varchar(150)"`
	RegionName      string          `gorm:"type:varchar(150)"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	SPP             decimal.Decimal `gorm:"column:spp;type:numeric(5,2);not null"`
	ForPay          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	FinishedPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PriceWithDisc   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleModelFromInput creates a new persistence model from a sale record
func SaleModelFromInput(in *marketplace.SaleInput) *SaleModel {
	return &SaleModel{
		Date:            in.Date,
		UserID:          in.UserID,
		SRID:            in.SRID,
		NmID:            in.NmID,
		IsCancel:        in.IsCancel,
		TechSize:        in.TechSize,
		SaleID:          in.SaleID,
		LastChangeDate:  in.LastChangeDate,
		GNumber:         in.GNumber,
		SupplierArticle: in.SupplierArticle,
		Barcode:         in.Barcode,
		Brand:           in.Brand,
		Category:        in.Category,
		Subject:         in.Subject,
		WarehouseName:   in.WarehouseName,
		RegionName:      in.RegionName,
		TotalPrice:      in.TotalPrice,
		DiscountPercent: in.DiscountPercent,
		SPP:             in.SPP,
		ForPay:          in.ForPay,
		FinishedPrice:   in.FinishedPrice,
		PriceWithDisc:   in.PriceWithDisc,
		CreatedAt:       time.Now(),
	}
}

// StockModel is the persistence model for a stock snapshot. Rows are
// overwritten on uq_stocks_key.
type StockModel struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	UserID          int64     `gorm:"not null;uniqueIndex:uq_stocks_key,priority:1"`
	WarehouseName   string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_stocks_key,priority:2"`
	NmID            int64     `gorm:"column:nm_id;not null;uniqueIndex:uq_stocks_key,priority:3"`
	SupplierArticle string    `gorm:"type:varchar(150)"`
	TechSize        string    `gorm:"type:varchar(50)"`
	Barcode         string    `gorm:"type:varchar(50)"`
	Quantity        int64     `gorm:"not null"`
	QuantityFull    int64     `gorm:"not null"`
	LastChangeDate  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockModel) TableName() string {
	return "stocks"
}

// StockModelFromInput creates a new persistence model from a stock record
func StockModelFromInput(in *marketplace.StockInput) *StockModel {
	return &StockModel{
		UserID:          in.UserID,
		WarehouseName:   in.WarehouseName,
		NmID:            in.NmID,
		SupplierArticle: in.SupplierArticle,
		TechSize:        in.TechSize,
		Barcode:         in.Barcode,
		Quantity:        in.Quantity,
		QuantityFull:    in.QuantityFull,
		LastChangeDate:  in.LastChangeDate,
	}
}

// ToInput converts the persistence model back to a stock record
func (m *StockModel) ToInput() marketplace.StockInput {
	return marketplace.StockInput{
		UserID:          m.UserID,
		LastChangeDate:  m.LastChangeDate,
		WarehouseName:   m.WarehouseName,
		NmID:            m.NmID,
		SupplierArticle: m.SupplierArticle,
		TechSize:        m.TechSize,
		Barcode:         m.Barcode,
		Quantity:        m.Quantity,
		QuantityFull:    m.QuantityFull,
	}
}

// AllModels lists every model in migration order
func AllModels() []any {
	return []any{
		&UserModel{},
		&DelegateModel{},
		&CredentialModel{},
		&SubscriptionModel{},
		&TaskStatusModel{},
		&OrderModel{},
		&SaleModel{},
		&StockModel{},
	}
}
