package services

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/bookkeeping_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_app/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_app/internal/platform/config"
)

// NewServiceContainer loads the dataset from the version log, if one is
// configured, and wires every service over it.
func NewServiceContainer(ctx context.Context, cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...DatasetOption) (*portssvc.ServiceContainer, error) {
	if repos.VersionLog != nil {
		opts = append(opts, WithVersionLog(repos.VersionLog))
	}
	data := NewDataset(opts...)
	if repos.VersionLog != nil {
		if err := data.Load(ctx, repos.VersionLog); err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
	}

	return &portssvc.ServiceContainer{
		Counterparty: NewCounterpartyService(data),
		Invoice:      NewInvoiceService(data, WithAutoStock(cfg.AutoStockOnSettlement)),
		Stock:        NewStockService(data),
		Banking:      NewBankingService(data),
	}, nil
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.CounterpartySvcFacade = (*counterpartyService)(nil)
	_ portssvc.InvoiceSvcFacade      = (*invoiceService)(nil)
	_ portssvc.StockSvcFacade        = (*stockService)(nil)
	_ portssvc.BankingSvcFacade      = (*bankingService)(nil)
)
