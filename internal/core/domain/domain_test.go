package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestVersionAction_IsValid(t *testing.T) {
	tests := []struct {
		action domain.VersionAction
		want   bool
	}{
		{domain.ActionCreated, true},
		{domain.ActionUpdated, true},
		{domain.ActionDeleted, true},
		{domain.ActionRestored, true},
		{domain.ActionPaymentRecorded, true},
		{"archived", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.action.IsValid())
		})
	}
}

func TestPaymentStatus_IsOpen(t *testing.T) {
	tests := []struct {
		status domain.PaymentStatus
		want   bool
	}{
		{domain.StatusPending, true},
		{domain.StatusPartiallyPaid, true},
		{domain.StatusOverdue, true},
		{domain.StatusPaid, false},
		{domain.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsOpen())
		})
	}
}

func TestBalanceStatus_Label(t *testing.T) {
	assert.Equal(t, "counterparty owes user", domain.CounterpartyOwesUser.Label())
	assert.Equal(t, "user owes counterparty", domain.UserOwesCounterparty.Label())
	assert.Equal(t, "settled", domain.Settled.Label())
}

func TestAdjustmentConstructors(t *testing.T) {
	assert.True(t, domain.NoAdjustment().IsNone())

	pct := domain.Percentage(decimal.NewFromInt(10))
	assert.False(t, pct.IsNone())
	assert.Equal(t, domain.PercentageKind, pct.Kind)

	fixed := domain.Fixed(decimal.NewFromFloat(2.5))
	assert.Equal(t, domain.FixedKind, fixed.Kind)
	assert.True(t, fixed.Value.Equal(decimal.NewFromFloat(2.5)))
}

func TestInvoice_CloneSharesNothing(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	inv := domain.Invoice{
		Kind:     domain.Sales,
		Items:    []domain.InvoiceItem{{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
		Payments: []domain.InvoicePayment{{ID: "p1", Amount: decimal.NewFromInt(5)}},
		DueDate:  &due,
	}

	cp := inv.Clone()
	cp.Items[0].Quantity = decimal.NewFromInt(99)
	cp.Payments[0].Amount = decimal.NewFromInt(99)
	*cp.DueDate = due.AddDate(1, 0, 0)

	assert.True(t, inv.Items[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, inv.Payments[0].Amount.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, due, *inv.DueDate)
}

func TestProduct_CloneSharesNothing(t *testing.T) {
	p := domain.Product{
		Name:        "Widget",
		Adjustments: []domain.StockAdjustment{{ID: "a1", Type: domain.AdjustInitial, QuantityChange: decimal.NewFromInt(3)}},
	}

	cp := p.Clone()
	cp.Adjustments[0].QuantityChange = decimal.NewFromInt(-1)
	cp.Adjustments = append(cp.Adjustments, domain.StockAdjustment{ID: "a2"})

	assert.Len(t, p.Adjustments, 1)
	assert.True(t, p.Adjustments[0].QuantityChange.Equal(decimal.NewFromInt(3)))
}

func TestAllStatementSources(t *testing.T) {
	flags := domain.AllStatementSources()
	assert.True(t, flags.Transactions)
	assert.True(t, flags.SalesPayments)
	assert.True(t, flags.PurchasePayments)
	assert.True(t, flags.DebtSettlements)
}
