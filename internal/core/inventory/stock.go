// Package inventory tracks product stock levels and the quantities reserved by
// open sales invoices.
package inventory

import (
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/invoicing"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/shopspring/decimal"
)

// Classify maps a quantity to a stock status against a low-stock threshold.
func Classify(quantity, lowStockThreshold decimal.Decimal) domain.StockStatus {
	switch {
	case !quantity.IsPositive():
		return domain.OutOfStock
	case quantity.LessThanOrEqual(lowStockThreshold):
		return domain.LowStock
	default:
		return domain.InStock
	}
}

// CommittedFor sums the quantities of productID on non-deleted sales invoices
// that are still open (pending, partially paid or overdue) as of asOf.
func CommittedFor(productID string, invoices []*versioning.Entity[domain.Invoice], asOf time.Time) decimal.Decimal {
	committed := decimal.Zero
	for _, inv := range invoices {
		if inv.IsDeleted || inv.State.Kind != domain.Sales {
			continue
		}
		if !invoicing.DeriveStatus(inv.State, asOf).IsOpen() {
			continue
		}
		for _, item := range inv.State.Items {
			if item.ProductRef == productID {
				committed = committed.Add(item.Quantity)
			}
		}
	}
	return committed
}

// AvailableForSale is current stock minus committed stock. It may be negative.
func AvailableForSale(product domain.Product, committed decimal.Decimal) decimal.Decimal {
	return product.CurrentStock.Sub(committed)
}

// PositionOf builds the full stock view of a product.
func PositionOf(productID string, product domain.Product, invoices []*versioning.Entity[domain.Invoice], asOf time.Time) domain.StockPosition {
	committed := CommittedFor(productID, invoices, asOf)
	available := AvailableForSale(product, committed)
	return domain.StockPosition{
		ProductID:       productID,
		CurrentStock:    product.CurrentStock,
		Committed:       committed,
		Available:       available,
		CurrentStatus:   Classify(product.CurrentStock, product.LowStockThreshold),
		AvailableStatus: Classify(available, product.LowStockThreshold),
	}
}
