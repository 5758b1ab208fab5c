package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/shopspring/decimal"
)

// CreateProductRequest defines a new stocked product. A positive OpeningStock is
// recorded as the initial adjustment, dated OpeningDate or now.
type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required,max=200"`
	SKU               string          `json:"sku" binding:"max=100"`
	Unit              string          `json:"unit" binding:"max=20"`
	SalePrice         decimal.Decimal `json:"salePrice" binding:"gte=0" swaggertype:"string"`
	PurchasePrice     decimal.Decimal `json:"purchasePrice" binding:"gte=0" swaggertype:"string"`
	LowStockThreshold decimal.Decimal `json:"lowStockThreshold" binding:"gte=0" swaggertype:"string"`
	OpeningStock      decimal.Decimal `json:"openingStock" binding:"gte=0" swaggertype:"string"`
	OpeningDate       *time.Time      `json:"openingDate"`
}

// UpdateProductRequest replaces the descriptive fields of a product.
type UpdateProductRequest struct {
	Name              string          `json:"name" binding:"required,max=200"`
	SKU               string          `json:"sku" binding:"max=100"`
	Unit              string          `json:"unit" binding:"max=20"`
	SalePrice         decimal.Decimal `json:"salePrice" binding:"gte=0" swaggertype:"string"`
	PurchasePrice     decimal.Decimal `json:"purchasePrice" binding:"gte=0" swaggertype:"string"`
	LowStockThreshold decimal.Decimal `json:"lowStockThreshold" binding:"gte=0" swaggertype:"string"`
}

// StockAdjustmentRequest records a stock movement. Outgoing types take a negative
// quantity, incoming types a positive one.
type StockAdjustmentRequest struct {
	Date              *time.Time                 `json:"date"`
	Type              domain.StockAdjustmentType `json:"type" binding:"required,oneof=initial sale purchase_received manual_in manual_out return_customer return_supplier"`
	QuantityChange    decimal.Decimal            `json:"quantityChange" swaggertype:"string"`
	RelatedInvoiceRef string                     `json:"relatedInvoiceRef"`
	Notes             string                     `json:"notes" binding:"max=500"`
}

// ProductResponse is a product with its metadata.
type ProductResponse struct {
	EntityMeta
	domain.Product
}

// StockPositionResponse is the stock view of a product at a date.
type StockPositionResponse struct {
	domain.StockPosition
	AsOf time.Time `json:"asOf"`
}

// ToProductResponse converts a stored product.
func ToProductResponse(e *versioning.Entity[domain.Product]) ProductResponse {
	return ProductResponse{EntityMeta: toMeta(e.Header, e.HistoryLen()), Product: e.State}
}

// ToListProductResponse converts a slice of stored products.
func ToListProductResponse(es []*versioning.Entity[domain.Product]) []ProductResponse {
	out := make([]ProductResponse, len(es))
	for i, e := range es {
		out[i] = ToProductResponse(e)
	}
	return out
}
