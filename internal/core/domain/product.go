package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAdjustmentType names why a product's stock level moved.
type StockAdjustmentType string

const (
	AdjustInitial          StockAdjustmentType = "initial"
	AdjustSale             StockAdjustmentType = "sale"
	AdjustPurchaseReceived StockAdjustmentType = "purchase_received"
	AdjustManualIn         StockAdjustmentType = "manual_in"
	AdjustManualOut        StockAdjustmentType = "manual_out"
	AdjustReturnCustomer   StockAdjustmentType = "return_customer"
	AdjustReturnSupplier   StockAdjustmentType = "return_supplier"
)

// StockAdjustment is one entry of a product's inventory log.
type StockAdjustment struct {
	ID                string              `json:"id" validate:"required"`
	Date              time.Time           `json:"date" validate:"required"`
	Type              StockAdjustmentType `json:"type" validate:"required,oneof=initial sale purchase_received manual_in manual_out return_customer return_supplier"`
	QuantityChange    decimal.Decimal     `json:"quantityChange"`
	NewStockLevel     decimal.Decimal     `json:"newStockLevel"`
	RelatedInvoiceRef string              `json:"relatedInvoiceRef,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	ActorID           string              `json:"actorID"`
}

// Product is a stocked item. CurrentStock mirrors the NewStockLevel of the latest adjustment.
type Product struct {
	Name              string            `json:"name" validate:"required,max=200"`
	SKU               string            `json:"sku,omitempty" validate:"max=100"`
	Unit              string            `json:"unit,omitempty" validate:"max=20"`
	SalePrice         decimal.Decimal   `json:"salePrice" validate:"gte=0"`
	PurchasePrice     decimal.Decimal   `json:"purchasePrice" validate:"gte=0"`
	LowStockThreshold decimal.Decimal   `json:"lowStockThreshold" validate:"gte=0"`
	CurrentStock      decimal.Decimal   `json:"currentStock"`
	Adjustments       []StockAdjustment `json:"adjustments" validate:"dive"`
}

func (p Product) Clone() Product {
	out := p
	out.Adjustments = append([]StockAdjustment(nil), p.Adjustments...)
	return out
}

// StockStatus classifies a quantity against a low-stock threshold.
type StockStatus string

const (
	InStock    StockStatus = "IN_STOCK"
	LowStock   StockStatus = "LOW_STOCK"
	OutOfStock StockStatus = "OUT_OF_STOCK"
)

// StockPosition is the derived stock view of one product at a point in time.
type StockPosition struct {
	ProductID       string          `json:"productID"`
	CurrentStock    decimal.Decimal `json:"currentStock"`
	Committed       decimal.Decimal `json:"committed"`
	Available       decimal.Decimal `json:"available"`
	CurrentStatus   StockStatus     `json:"currentStatus"`
	AvailableStatus StockStatus     `json:"availableStatus"`
}
