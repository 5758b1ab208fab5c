package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/inventory"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func n(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }

func salesInvoice(id string, status domain.PaymentStatus, deleted bool, lines ...domain.InvoiceItem) *versioning.Entity[domain.Invoice] {
	total := decimal.Zero
	for i := range lines {
		lines[i].LineTotal = lines[i].Quantity.Mul(lines[i].UnitPrice)
		total = total.Add(lines[i].LineTotal)
	}
	inv := domain.Invoice{Kind: domain.Sales, Items: lines, TotalAmount: total, PaymentStatus: status}
	if status == domain.StatusPaid {
		inv.Payments = []domain.InvoicePayment{{Amount: total}}
	}
	if status == domain.StatusPartiallyPaid {
		inv.Payments = []domain.InvoicePayment{{Amount: total.Div(n(2))}}
	}
	return &versioning.Entity[domain.Invoice]{Header: versioning.Header{ID: id, IsDeleted: deleted}, State: inv}
}

func line(product string, qty int64) domain.InvoiceItem {
	return domain.InvoiceItem{ProductRef: product, Quantity: n(qty), UnitPrice: n(10)}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		qty, threshold int64
		want           domain.StockStatus
	}{
		{0, 5, domain.OutOfStock},
		{-3, 5, domain.OutOfStock},
		{5, 5, domain.LowStock},
		{1, 5, domain.LowStock},
		{6, 5, domain.InStock},
		{1, 0, domain.InStock},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, inventory.Classify(n(tt.qty), n(tt.threshold)), "qty=%d threshold=%d", tt.qty, tt.threshold)
	}
}

func TestCommittedFor(t *testing.T) {
	invoices := []*versioning.Entity[domain.Invoice]{
		salesInvoice("i1", domain.StatusPending, false, line("P", 3)),
		salesInvoice("i2", domain.StatusPartiallyPaid, false, line("P", 2), line("Q", 7)),
		salesInvoice("i3", domain.StatusPaid, false, line("P", 5)),
	}
	assert.True(t, inventory.CommittedFor("P", invoices, day(1)).Equal(n(5)))

	invoices = append(invoices,
		salesInvoice("i4", domain.StatusCancelled, false, line("P", 11)),
		salesInvoice("i5", domain.StatusPending, true, line("P", 13)),
	)
	assert.True(t, inventory.CommittedFor("P", invoices, day(1)).Equal(n(5)), "cancelled and deleted invoices are excluded")

	purchase := salesInvoice("i6", domain.StatusPending, false, line("P", 17))
	purchase.State.Kind = domain.Purchase
	invoices = append(invoices, purchase)
	assert.True(t, inventory.CommittedFor("P", invoices, day(1)).Equal(n(5)), "purchase invoices commit nothing")

	assert.True(t, inventory.CommittedFor("Q", invoices, day(1)).Equal(n(7)))
	assert.True(t, inventory.CommittedFor("missing", invoices, day(1)).IsZero())
}

type fixture struct {
	ctx      context.Context
	products *versioning.Store[domain.Product]
	invoices *versioning.Store[domain.Invoice]
	ledger   *inventory.Ledger
}

func newFixture() fixture {
	clock := func() time.Time { return day(15) }
	products := versioning.NewStore[domain.Product](domain.KindProduct, versioning.WithClock(clock))
	invoices := versioning.NewStore[domain.Invoice](domain.KindInvoice, versioning.WithClock(clock))
	return fixture{
		ctx:      context.Background(),
		products: products,
		invoices: invoices,
		ledger:   inventory.NewLedger(products, invoices, inventory.WithClock(clock)),
	}
}

func widget() domain.Product {
	return domain.Product{Name: "Widget", Unit: "pcs", LowStockThreshold: n(2)}
}

func levels(p domain.Product) []string {
	out := make([]string, len(p.Adjustments))
	for i, a := range p.Adjustments {
		out[i] = a.NewStockLevel.String()
	}
	return out
}

func TestLedger_CreateWithOpeningStock(t *testing.T) {
	f := newFixture()

	p, err := f.ledger.Create(f.ctx, "owner", "actor", widget(), n(10), day(1))
	require.NoError(t, err)
	require.Len(t, p.State.Adjustments, 1)
	assert.Equal(t, domain.AdjustInitial, p.State.Adjustments[0].Type)
	assert.True(t, p.State.CurrentStock.Equal(n(10)))
	assert.Equal(t, 1, p.HistoryLen())

	empty, err := f.ledger.Create(f.ctx, "owner", "actor", widget(), decimal.Zero, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, empty.State.Adjustments)
	assert.True(t, empty.State.CurrentStock.IsZero())

	_, err = f.ledger.Create(f.ctx, "owner", "actor", widget(), n(-1), day(1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLedger_AdjustRecomputesLevels(t *testing.T) {
	f := newFixture()
	p, err := f.ledger.Create(f.ctx, "owner", "actor", widget(), n(10), day(1))
	require.NoError(t, err)

	_, err = f.ledger.Adjust(f.ctx, p.ID, "actor", inventory.AdjustmentInput{Date: day(10), Type: domain.AdjustSale, QuantityChange: n(-4)})
	require.NoError(t, err)
	backdated, err := f.ledger.Adjust(f.ctx, p.ID, "actor", inventory.AdjustmentInput{Date: day(5), Type: domain.AdjustManualIn, QuantityChange: n(3)})
	require.NoError(t, err)

	assert.Equal(t, []string{"10", "13", "9"}, levels(backdated.State))
	assert.True(t, backdated.State.CurrentStock.Equal(n(9)))

	oversold, err := f.ledger.Adjust(f.ctx, p.ID, "actor", inventory.AdjustmentInput{Date: day(11), Type: domain.AdjustManualOut, QuantityChange: n(-12)})
	require.NoError(t, err, "negative stock is recorded")
	assert.True(t, oversold.State.CurrentStock.Equal(n(-3)))
	assert.Equal(t, 4, oversold.HistoryLen())
}

func TestLedger_AdjustDirection(t *testing.T) {
	f := newFixture()
	p, err := f.ledger.Create(f.ctx, "owner", "actor", widget(), n(10), day(1))
	require.NoError(t, err)

	tests := []struct {
		name string
		typ  domain.StockAdjustmentType
		qty  int64
	}{
		{"sale must decrease", domain.AdjustSale, 2},
		{"manual out must decrease", domain.AdjustManualOut, 1},
		{"supplier return must decrease", domain.AdjustReturnSupplier, 0},
		{"purchase must increase", domain.AdjustPurchaseReceived, -2},
		{"manual in must increase", domain.AdjustManualIn, 0},
		{"customer return must increase", domain.AdjustReturnCustomer, -1},
		{"unknown type", "shrinkage", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Adjust(f.ctx, p.ID, "actor", inventory.AdjustmentInput{Type: tt.typ, QuantityChange: n(tt.qty)})
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	got, err := f.products.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.HistoryLen())
}

func TestLedger_Position(t *testing.T) {
	f := newFixture()
	p, err := f.ledger.Create(f.ctx, "owner", "actor", widget(), n(6), day(1))
	require.NoError(t, err)

	for _, qty := range []int64{3, 2} {
		inv := domain.Invoice{
			Kind:          domain.Sales,
			IssueDate:     day(2),
			Items:         []domain.InvoiceItem{line(p.ID, qty)},
			TotalAmount:   n(qty * 10),
			PaymentStatus: domain.StatusPending,
		}
		_, err := f.invoices.Create(f.ctx, "owner", "actor", inv)
		require.NoError(t, err)
	}

	pos, err := f.ledger.Position(p.ID, day(15))
	require.NoError(t, err)
	assert.True(t, pos.CurrentStock.Equal(n(6)))
	assert.True(t, pos.Committed.Equal(n(5)))
	assert.True(t, pos.Available.Equal(n(1)))
	assert.Equal(t, domain.InStock, pos.CurrentStatus)
	assert.Equal(t, domain.LowStock, pos.AvailableStatus)

	avail, err := f.ledger.AvailableForSale(p.ID, day(15))
	require.NoError(t, err)
	assert.True(t, avail.Equal(n(1)))

	_, err = f.ledger.Position("missing", day(15))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLedger_PostInvoiceOnce(t *testing.T) {
	f := newFixture()
	p, err := f.ledger.Create(f.ctx, "owner", "actor", widget(), n(10), day(1))
	require.NoError(t, err)

	inv := domain.Invoice{Kind: domain.Sales, Items: []domain.InvoiceItem{line(p.ID, 2), line(p.ID, 1), {Description: "service", Quantity: n(1)}}}
	require.NoError(t, f.ledger.PostInvoice(f.ctx, "actor", "inv-1", inv, day(3)))
	require.NoError(t, f.ledger.PostInvoice(f.ctx, "actor", "inv-1", inv, day(3)))

	got, err := f.products.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.State.Adjustments, 2)
	assert.Equal(t, domain.AdjustSale, got.State.Adjustments[1].Type)
	assert.Equal(t, "inv-1", got.State.Adjustments[1].RelatedInvoiceRef)
	assert.True(t, got.State.CurrentStock.Equal(n(7)))

	purchase := domain.Invoice{Kind: domain.Purchase, Items: []domain.InvoiceItem{line(p.ID, 4)}}
	require.NoError(t, f.ledger.PostInvoice(f.ctx, "actor", "inv-2", purchase, day(4)))
	got, err = f.products.Get(p.ID)
	require.NoError(t, err)
	assert.True(t, got.State.CurrentStock.Equal(n(11)))

	err = f.ledger.PostInvoice(f.ctx, "actor", "inv-3", domain.Invoice{Kind: domain.Sales, Items: []domain.InvoiceItem{line("missing", 1)}}, day(4))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
