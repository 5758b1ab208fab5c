package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/inventory"
	"github.com/SscSPs/bookkeeping_app/internal/core/invoicing"
	"github.com/SscSPs/bookkeeping_app/internal/core/ledger"
	portsrepo "github.com/SscSPs/bookkeeping_app/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
)

// Dataset is the single bookkeeping dataset every service works on. Writers hold
// mu exclusively across all the stores they touch, so readers that combine
// collections (statements, stock commitments) always see a consistent set.
type Dataset struct {
	mu sync.RWMutex

	Counterparties *versioning.Store[domain.Counterparty]
	LedgerEntries  *versioning.Store[domain.LedgerEntry]
	Invoices       *versioning.Store[domain.Invoice]
	Products       *versioning.Store[domain.Product]
	Accounts       *versioning.Store[domain.BankAccount]
	Transactions   *versioning.Store[domain.Transaction]

	Book   *ledger.Book
	Engine *invoicing.Engine
	Stock  *inventory.Ledger

	clock func() time.Time
}

// DatasetOption configures a Dataset.
type DatasetOption func(*datasetConfig)

type datasetConfig struct {
	clock func() time.Time
	sink  versioning.Sink
	newID func() string
}

// WithDatasetClock overrides the time source of every store and engine.
func WithDatasetClock(clock func() time.Time) DatasetOption {
	return func(c *datasetConfig) { c.clock = clock }
}

// WithVersionLog persists every commit through sink.
func WithVersionLog(sink versioning.Sink) DatasetOption {
	return func(c *datasetConfig) { c.sink = sink }
}

// WithDatasetIDGenerator overrides id generation of every store and engine.
func WithDatasetIDGenerator(newID func() string) DatasetOption {
	return func(c *datasetConfig) { c.newID = newID }
}

// NewDataset builds an empty dataset.
func NewDataset(opts ...DatasetOption) *Dataset {
	cfg := datasetConfig{clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	storeOpts := []versioning.Option{versioning.WithClock(cfg.clock)}
	bookOpts := []ledger.Option{ledger.WithClock(cfg.clock)}
	engineOpts := []invoicing.EngineOption{invoicing.WithClock(cfg.clock)}
	stockOpts := []inventory.Option{inventory.WithClock(cfg.clock)}
	if cfg.sink != nil {
		storeOpts = append(storeOpts, versioning.WithSink(cfg.sink))
	}
	if cfg.newID != nil {
		storeOpts = append(storeOpts, versioning.WithIDGenerator(cfg.newID))
		bookOpts = append(bookOpts, ledger.WithIDGenerator(cfg.newID))
		engineOpts = append(engineOpts, invoicing.WithPaymentIDGenerator(cfg.newID))
		stockOpts = append(stockOpts, inventory.WithIDGenerator(cfg.newID))
	}

	d := &Dataset{
		Counterparties: versioning.NewStore[domain.Counterparty](domain.KindCounterparty, storeOpts...),
		LedgerEntries:  versioning.NewStore[domain.LedgerEntry](domain.KindLedgerEntry, storeOpts...),
		Invoices:       versioning.NewStore[domain.Invoice](domain.KindInvoice, storeOpts...),
		Products:       versioning.NewStore[domain.Product](domain.KindProduct, storeOpts...),
		Accounts:       versioning.NewStore[domain.BankAccount](domain.KindBankAccount, storeOpts...),
		Transactions:   versioning.NewStore[domain.Transaction](domain.KindTransaction, storeOpts...),
		Book:           ledger.NewBook(bookOpts...),
		clock:          cfg.clock,
	}
	d.Engine = invoicing.NewEngine(d.Invoices, engineOpts...)
	d.Stock = inventory.NewLedger(d.Products, d.Invoices, stockOpts...)
	return d
}

// Load hydrates every store from the version log and rebuilds the ledger book
// from the live ledger entries. Sequence numbering resumes after the highest
// entry ever logged, removed ones included.
func (d *Dataset) Load(ctx context.Context, repo portsrepo.VersionLogReader) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	hydrators := []struct {
		kind    string
		hydrate func([]versioning.StoredEntity) error
	}{
		{domain.KindCounterparty, d.Counterparties.Hydrate},
		{domain.KindLedgerEntry, d.LedgerEntries.Hydrate},
		{domain.KindInvoice, d.Invoices.Hydrate},
		{domain.KindProduct, d.Products.Hydrate},
		{domain.KindBankAccount, d.Accounts.Hydrate},
		{domain.KindTransaction, d.Transactions.Hydrate},
	}
	for _, h := range hydrators {
		items, err := repo.LoadKind(ctx, h.kind)
		if err != nil {
			return fmt.Errorf("load %s: %w", h.kind, err)
		}
		if err := h.hydrate(items); err != nil {
			return err
		}
		slog.Debug("Hydrated store", slog.String("kind", h.kind), slog.Int("count", len(items)))
	}

	all := d.LedgerEntries.List(func(*versioning.Entity[domain.LedgerEntry]) bool { return true })
	sort.Slice(all, func(i, j int) bool { return all[i].State.Seq < all[j].State.Seq })
	for _, e := range all {
		if e.IsDeleted {
			continue
		}
		if _, err := d.Book.Insert(e.State); err != nil {
			return fmt.Errorf("rebuild ledger entry %s: %w", e.ID, err)
		}
	}
	if n := len(all); n > 0 {
		d.Book.ReserveSeq(all[n-1].State.Seq)
	}
	return nil
}

func (d *Dataset) now() time.Time {
	return d.clock()
}

// postLedgerEntry adds an entry to the book and records it in the ledger entry
// log. The book change is undone when the log write fails. Callers hold mu.
func (d *Dataset) postLedgerEntry(ctx context.Context, ownerID, actorID string, in ledger.NewEntry) (domain.LedgerEntry, error) {
	entry, err := d.Book.AddEntry(in)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	if _, err := d.LedgerEntries.CreateWithID(ctx, entry.ID, ownerID, actorID, entry); err != nil {
		if _, undoErr := d.Book.DeleteEntry(entry.ID); undoErr != nil {
			slog.Error("Failed to undo ledger entry", slog.String("entry_id", entry.ID), slog.String("error", undoErr.Error()))
		}
		return domain.LedgerEntry{}, err
	}
	return entry, nil
}

// removeLedgerEntry removes an entry from the book and marks it deleted in the
// ledger entry log. The book change is undone when the log write fails. Callers hold mu.
func (d *Dataset) removeLedgerEntry(ctx context.Context, actorID, entryID string) error {
	removed, err := d.Book.DeleteEntry(entryID)
	if err != nil {
		return err
	}
	if _, err := d.LedgerEntries.SoftDelete(ctx, entryID, actorID); err != nil {
		if _, undoErr := d.Book.Insert(removed); undoErr != nil {
			slog.Error("Failed to undo ledger entry removal", slog.String("entry_id", entryID), slog.String("error", undoErr.Error()))
		}
		return err
	}
	return nil
}
