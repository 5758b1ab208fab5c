package services

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
)

// ProductReaderSvc defines read operations for products
type ProductReaderSvc interface {
	// GetProduct retrieves a product owned by userID.
	GetProduct(ctx context.Context, productID string, userID string) (*versioning.Entity[domain.Product], error)

	// ListProducts retrieves the products owned by userID in creation order.
	ListProducts(ctx context.Context, userID string, includeDeleted bool) ([]*versioning.Entity[domain.Product], error)

	// GetProductHistory returns the version records of a product.
	GetProductHistory(ctx context.Context, productID string, userID string) ([]versioning.Record, error)
}

// ProductWriterSvc defines write operations for products
type ProductWriterSvc interface {
	// CreateProduct persists a new product with its opening stock.
	CreateProduct(ctx context.Context, req dto.CreateProductRequest, userID string) (*versioning.Entity[domain.Product], error)

	// UpdateProduct changes the descriptive fields of a product.
	UpdateProduct(ctx context.Context, productID string, req dto.UpdateProductRequest, userID string) (*versioning.Entity[domain.Product], error)

	// DeleteProduct soft-deletes a product.
	DeleteProduct(ctx context.Context, productID string, userID string) (*versioning.Entity[domain.Product], error)

	// RestoreProduct undoes a soft delete.
	RestoreProduct(ctx context.Context, productID string, userID string) (*versioning.Entity[domain.Product], error)
}

// StockLedgerSvc defines stock movement and position operations
type StockLedgerSvc interface {
	// AdjustStock records a stock movement.
	AdjustStock(ctx context.Context, productID string, req dto.StockAdjustmentRequest, userID string) (*versioning.Entity[domain.Product], error)

	// GetStockPosition returns current, committed and available stock as of asOf.
	GetStockPosition(ctx context.Context, productID string, asOf time.Time, userID string) (*domain.StockPosition, error)
}

// StockSvcFacade combines all stock-related service interfaces
type StockSvcFacade interface {
	ProductReaderSvc
	ProductWriterSvc
	StockLedgerSvc
}
