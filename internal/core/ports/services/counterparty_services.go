package services

import (
	"context"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
)

// CounterpartyReaderSvc defines read operations for counterparties
type CounterpartyReaderSvc interface {
	// GetCounterparty retrieves a counterparty owned by userID.
	GetCounterparty(ctx context.Context, counterpartyID string, userID string) (*versioning.Entity[domain.Counterparty], error)

	// ListCounterparties retrieves the counterparties owned by userID in creation order.
	ListCounterparties(ctx context.Context, userID string, includeDeleted bool) ([]*versioning.Entity[domain.Counterparty], error)

	// GetCounterpartyHistory returns the version records of a counterparty.
	GetCounterpartyHistory(ctx context.Context, counterpartyID string, userID string) ([]versioning.Record, error)
}

// CounterpartyWriterSvc defines write operations for counterparties
type CounterpartyWriterSvc interface {
	// CreateCounterparty persists a new counterparty.
	CreateCounterparty(ctx context.Context, req dto.CreateCounterpartyRequest, userID string) (*versioning.Entity[domain.Counterparty], error)

	// UpdateCounterparty changes a counterparty. expectedVersion > 0 guards the write.
	UpdateCounterparty(ctx context.Context, counterpartyID string, req dto.UpdateCounterpartyRequest, expectedVersion int, userID string) (*versioning.Entity[domain.Counterparty], error)

	// DeleteCounterparty soft-deletes a counterparty. Its ledger is kept.
	DeleteCounterparty(ctx context.Context, counterpartyID string, userID string) (*versioning.Entity[domain.Counterparty], error)

	// RestoreCounterparty undoes a soft delete.
	RestoreCounterparty(ctx context.Context, counterpartyID string, userID string) (*versioning.Entity[domain.Counterparty], error)
}

// PersonLedgerSvc defines the running-balance ledger operations of a counterparty
type PersonLedgerSvc interface {
	// AddLedgerEntry inserts an entry at its date and rebalances later entries.
	AddLedgerEntry(ctx context.Context, counterpartyID string, req dto.CreateLedgerEntryRequest, userID string) (*domain.LedgerEntry, error)

	// DeleteLedgerEntry removes an entry and rebalances later entries.
	DeleteLedgerEntry(ctx context.Context, counterpartyID string, entryID string, userID string) error

	// ListLedgerEntries returns one page of entries in ledger order and the token of the next page.
	ListLedgerEntries(ctx context.Context, counterpartyID string, params dto.ListLedgerEntriesParams, userID string) ([]domain.LedgerEntry, string, error)

	// GetBalance summarises the ledger of a counterparty.
	GetBalance(ctx context.Context, counterpartyID string, userID string) (*domain.CounterpartyBalance, error)
}

// CounterpartySvcFacade combines all counterparty-related service interfaces
type CounterpartySvcFacade interface {
	CounterpartyReaderSvc
	CounterpartyWriterSvc
	PersonLedgerSvc
}
