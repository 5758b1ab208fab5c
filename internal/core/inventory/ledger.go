package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentInput is a stock movement to record. A zero Date means now.
type AdjustmentInput struct {
	Date              time.Time
	Type              domain.StockAdjustmentType
	QuantityChange    decimal.Decimal
	RelatedInvoiceRef string
	Notes             string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for default adjustment dates.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithIDGenerator overrides adjustment id generation.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// Ledger records stock adjustments on versioned products.
type Ledger struct {
	products *versioning.Store[domain.Product]
	invoices *versioning.Store[domain.Invoice]
	clock    func() time.Time
	newID    func() string
}

// NewLedger returns a Ledger. invoices is read to work out committed stock.
func NewLedger(products *versioning.Store[domain.Product], invoices *versioning.Store[domain.Invoice], opts ...Option) *Ledger {
	l := &Ledger{products: products, invoices: invoices, clock: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Products exposes the product store for reads.
func (l *Ledger) Products() *versioning.Store[domain.Product] {
	return l.products
}

// Create stores a new product. A positive openingStock is recorded as an
// "initial" adjustment inside the same created record.
func (l *Ledger) Create(ctx context.Context, ownerID, actorID string, p domain.Product, openingStock decimal.Decimal, asOf time.Time) (*versioning.Entity[domain.Product], error) {
	p = p.Clone()
	p.Adjustments = nil
	p.CurrentStock = decimal.Zero
	if openingStock.IsNegative() {
		return nil, apperrors.NewValidationError("openingStock", "must not be negative")
	}
	if openingStock.IsPositive() {
		var err error
		p, err = l.insert(p, actorID, AdjustmentInput{Date: asOf, Type: domain.AdjustInitial, QuantityChange: openingStock})
		if err != nil {
			return nil, err
		}
	}
	return l.products.Create(ctx, ownerID, actorID, p)
}

// Update changes the descriptive fields of a product. Stock is only changed by Adjust.
func (l *Ledger) Update(ctx context.Context, id, actorID string, p domain.Product) (*versioning.Entity[domain.Product], error) {
	return l.products.Mutate(ctx, id, domain.ActionUpdated, actorID, func(cur domain.Product) (domain.Product, error) {
		cur.Name = p.Name
		cur.SKU = p.SKU
		cur.Unit = p.Unit
		cur.SalePrice = p.SalePrice
		cur.PurchasePrice = p.PurchasePrice
		cur.LowStockThreshold = p.LowStockThreshold
		return cur, nil
	})
}

// Adjust records a stock movement at its date and recomputes every later stock
// level. Negative levels are recorded, not prevented.
func (l *Ledger) Adjust(ctx context.Context, productID, actorID string, in AdjustmentInput) (*versioning.Entity[domain.Product], error) {
	return l.products.Mutate(ctx, productID, domain.ActionUpdated, actorID, func(cur domain.Product) (domain.Product, error) {
		return l.insert(cur, actorID, in)
	})
}

// PostInvoice records the stock effect of an invoice: "sale" adjustments for a
// sales invoice and "purchase_received" for a purchase invoice, one per product
// line. Lines already posted for this invoice are skipped.
func (l *Ledger) PostInvoice(ctx context.Context, actorID, invoiceID string, inv domain.Invoice, date time.Time) error {
	typ := domain.AdjustSale
	if inv.Kind == domain.Purchase {
		typ = domain.AdjustPurchaseReceived
	}

	perProduct := map[string]decimal.Decimal{}
	var order []string
	for _, item := range inv.Items {
		if item.ProductRef == "" {
			continue
		}
		if _, seen := perProduct[item.ProductRef]; !seen {
			order = append(order, item.ProductRef)
			perProduct[item.ProductRef] = decimal.Zero
		}
		perProduct[item.ProductRef] = perProduct[item.ProductRef].Add(item.Quantity)
	}

	for _, productID := range order {
		qty := perProduct[productID]
		if typ == domain.AdjustSale {
			qty = qty.Neg()
		}
		_, err := l.products.Mutate(ctx, productID, domain.ActionUpdated, actorID, func(cur domain.Product) (domain.Product, error) {
			for _, adj := range cur.Adjustments {
				if adj.RelatedInvoiceRef == invoiceID && adj.Type == typ {
					return cur, errAlreadyPosted
				}
			}
			return l.insert(cur, actorID, AdjustmentInput{
				Date:              date,
				Type:              typ,
				QuantityChange:    qty,
				RelatedInvoiceRef: invoiceID,
			})
		})
		if err != nil && !errors.Is(err, errAlreadyPosted) {
			return err
		}
	}
	return nil
}

// Position returns current, committed and available stock as of asOf.
func (l *Ledger) Position(productID string, asOf time.Time) (domain.StockPosition, error) {
	p, err := l.products.Get(productID)
	if err != nil {
		return domain.StockPosition{}, err
	}
	return PositionOf(productID, p.State, l.invoices.List(nil), asOf), nil
}

// CommittedFor is CommittedFor over every stored invoice.
func (l *Ledger) CommittedFor(productID string, asOf time.Time) decimal.Decimal {
	return CommittedFor(productID, l.invoices.List(nil), asOf)
}

// AvailableForSale is current stock minus committed stock as of asOf.
func (l *Ledger) AvailableForSale(productID string, asOf time.Time) (decimal.Decimal, error) {
	p, err := l.products.Get(productID)
	if err != nil {
		return decimal.Zero, err
	}
	return AvailableForSale(p.State, l.CommittedFor(productID, asOf)), nil
}

var errAlreadyPosted = errors.New("invoice already posted")

func (l *Ledger) insert(p domain.Product, actorID string, in AdjustmentInput) (domain.Product, error) {
	if err := checkDirection(in.Type, in.QuantityChange); err != nil {
		return p, err
	}
	date := in.Date
	if date.IsZero() {
		date = l.clock()
	}
	adj := domain.StockAdjustment{
		ID:                l.newID(),
		Date:              date.UTC(),
		Type:              in.Type,
		QuantityChange:    in.QuantityChange,
		RelatedInvoiceRef: in.RelatedInvoiceRef,
		Notes:             strings.TrimSpace(in.Notes),
		ActorID:           actorID,
	}

	// first position with a strictly later date keeps equal dates in insertion order
	pos := sort.Search(len(p.Adjustments), func(i int) bool { return p.Adjustments[i].Date.After(adj.Date) })
	next := make([]domain.StockAdjustment, 0, len(p.Adjustments)+1)
	next = append(next, p.Adjustments[:pos]...)
	next = append(next, adj)
	next = append(next, p.Adjustments[pos:]...)

	level := decimal.Zero
	if pos > 0 {
		level = next[pos-1].NewStockLevel
	}
	for i := pos; i < len(next); i++ {
		level = level.Add(next[i].QuantityChange)
		next[i].NewStockLevel = level
	}

	p.Adjustments = next
	p.CurrentStock = level
	return p, nil
}

func checkDirection(typ domain.StockAdjustmentType, qty decimal.Decimal) error {
	switch typ {
	case domain.AdjustInitial:
		if qty.IsNegative() {
			return apperrors.NewValidationError("quantityChange", "must not be negative for initial stock")
		}
		return nil
	case domain.AdjustPurchaseReceived, domain.AdjustManualIn, domain.AdjustReturnCustomer:
		if !qty.IsPositive() {
			return apperrors.NewValidationError("quantityChange", "must be positive for "+string(typ))
		}
	case domain.AdjustSale, domain.AdjustManualOut, domain.AdjustReturnSupplier:
		if !qty.IsNegative() {
			return apperrors.NewValidationError("quantityChange", "must be negative for "+string(typ))
		}
	default:
		return apperrors.NewValidationError("type", "unknown adjustment type "+string(typ))
	}
	return nil
}
