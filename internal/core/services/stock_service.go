package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/inventory"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
)

type stockService struct {
	BaseService
}

// NewStockService creates a product and stock service over the dataset.
func NewStockService(data *Dataset) *stockService {
	return &stockService{BaseService: BaseService{data: data}}
}

func (s *stockService) CreateProduct(ctx context.Context, req dto.CreateProductRequest, userID string) (*versioning.Entity[domain.Product], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	p := domain.Product{
		Name:              strings.TrimSpace(req.Name),
		SKU:               strings.TrimSpace(req.SKU),
		Unit:              strings.TrimSpace(req.Unit),
		SalePrice:         req.SalePrice,
		PurchasePrice:     req.PurchasePrice,
		LowStockThreshold: req.LowStockThreshold,
	}
	var openingDate time.Time
	if req.OpeningDate != nil {
		openingDate = *req.OpeningDate
	}

	created, err := s.data.Stock.Create(ctx, userID, userID, p, req.OpeningStock, openingDate)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create product")
		return nil, err
	}
	s.LogInfo(ctx, "Product created",
		slog.String("product_id", created.ID),
		slog.String("opening_stock", created.State.CurrentStock.String()))
	return created, nil
}

func (s *stockService) GetProduct(ctx context.Context, productID string, userID string) (*versioning.Entity[domain.Product], error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	return owned(s.data.Products, productID, userID)
}

func (s *stockService) ListProducts(ctx context.Context, userID string, includeDeleted bool) ([]*versioning.Entity[domain.Product], error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	return s.data.Products.List(ownedBy[domain.Product](userID, includeDeleted)), nil
}

func (s *stockService) GetProductHistory(ctx context.Context, productID string, userID string) ([]versioning.Record, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	e, err := owned(s.data.Products, productID, userID)
	if err != nil {
		return nil, err
	}
	return e.History(), nil
}

func (s *stockService) UpdateProduct(ctx context.Context, productID string, req dto.UpdateProductRequest, userID string) (*versioning.Entity[domain.Product], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Products, productID, userID); err != nil {
		return nil, err
	}
	updated, err := s.data.Stock.Update(ctx, productID, userID, domain.Product{
		Name:              strings.TrimSpace(req.Name),
		SKU:               strings.TrimSpace(req.SKU),
		Unit:              strings.TrimSpace(req.Unit),
		SalePrice:         req.SalePrice,
		PurchasePrice:     req.PurchasePrice,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to update product", slog.String("product_id", productID))
		return nil, err
	}
	s.LogInfo(ctx, "Product updated", slog.String("product_id", productID))
	return updated, nil
}

func (s *stockService) DeleteProduct(ctx context.Context, productID string, userID string) (*versioning.Entity[domain.Product], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Products, productID, userID); err != nil {
		return nil, err
	}
	deleted, err := s.data.Products.SoftDelete(ctx, productID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete product", slog.String("product_id", productID))
		return nil, err
	}
	s.LogInfo(ctx, "Product deleted", slog.String("product_id", productID))
	return deleted, nil
}

func (s *stockService) RestoreProduct(ctx context.Context, productID string, userID string) (*versioning.Entity[domain.Product], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Products, productID, userID); err != nil {
		return nil, err
	}
	restored, err := s.data.Products.Restore(ctx, productID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to restore product", slog.String("product_id", productID))
		return nil, err
	}
	s.LogInfo(ctx, "Product restored", slog.String("product_id", productID))
	return restored, nil
}

func (s *stockService) AdjustStock(ctx context.Context, productID string, req dto.StockAdjustmentRequest, userID string) (*versioning.Entity[domain.Product], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Products, productID, userID); err != nil {
		return nil, err
	}
	if err := liveRef(s.data.Invoices, "relatedInvoiceRef", req.RelatedInvoiceRef, userID); err != nil {
		return nil, err
	}
	in := inventory.AdjustmentInput{
		Type:              req.Type,
		QuantityChange:    req.QuantityChange,
		RelatedInvoiceRef: req.RelatedInvoiceRef,
		Notes:             req.Notes,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}

	adjusted, err := s.data.Stock.Adjust(ctx, productID, userID, in)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to adjust stock", slog.String("product_id", productID))
		return nil, err
	}
	if adjusted.State.CurrentStock.IsNegative() {
		s.LogInfo(ctx, "Stock level is negative", slog.String("product_id", productID), slog.String("current_stock", adjusted.State.CurrentStock.String()))
	}
	s.LogInfo(ctx, "Stock adjusted",
		slog.String("product_id", productID),
		slog.String("type", string(req.Type)),
		slog.String("quantity_change", req.QuantityChange.String()))
	return adjusted, nil
}

func (s *stockService) GetStockPosition(ctx context.Context, productID string, asOf time.Time, userID string) (*domain.StockPosition, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if _, err := owned(s.data.Products, productID, userID); err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.data.now()
	}
	pos, err := s.data.Stock.Position(productID, asOf)
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

