package marketplace

import "time"

// StockInput is one warehouse stock row as received from the statistics API
type StockInput struct {
	UserID          int64     `json:"-" validate:"gt=0"`
	LastChangeDate  time.Time `json:"lastChangeDate" validate:"required"`
	WarehouseName   string    `json:"warehouseName" validate:"required,max=150"`
	NmID            int64     `json:"nmId" validate:"gt=0"`
	SupplierArticle string    `json:"supplierArticle" validate:"max=150"`
	TechSize        string    `json:"techSize" validate:"max=50"`
	Barcode         string    `json:"barcode" validate:"max=50"`
	Quantity        int64     `json:"quantity"`
	QuantityFull    int64     `json:"quantityFull"`
}

// Key returns the upsert key of the snapshot
func (in StockInput) Key() StockKey {
	return StockKey{UserID: in.UserID, WarehouseName: in.WarehouseName, NmID: in.NmID}
}

// StockKey identifies one stock snapshot row; later writes overwrite
// quantity and last_change_date
type StockKey struct {
	UserID        int64
	WarehouseName string
	NmID          int64
}

// WarehouseQuantity is the summed positive quantity of one item in one
// warehouse at one last_change_date
type WarehouseQuantity struct {
	WarehouseName  string
	LastChangeDate time.Time
	Quantity       int64
}
