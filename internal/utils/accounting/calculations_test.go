package accounting_test

import (
	"testing"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		name  string
		entry domain.LedgerEntry
		want  string
	}{
		{"debit is positive", domain.LedgerEntry{Type: domain.Debit, Amount: decimal.NewFromInt(40)}, "40"},
		{"credit is negative", domain.LedgerEntry{Type: domain.Credit, Amount: decimal.NewFromInt(40)}, "-40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accounting.SignedAmount(tt.entry).String())
		})
	}
}

func TestBalanceStatus(t *testing.T) {
	assert.Equal(t, domain.CounterpartyOwesUser, accounting.BalanceStatus(decimal.NewFromInt(5)))
	assert.Equal(t, domain.UserOwesCounterparty, accounting.BalanceStatus(decimal.NewFromInt(-5)))
	assert.Equal(t, domain.Settled, accounting.BalanceStatus(decimal.Zero))
	assert.Equal(t, "settled", domain.Settled.Label())
}

func TestSignedCashFlowAndPayment(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	assert.True(t, accounting.SignedCashFlow(domain.Transaction{Flow: domain.Income, Amount: hundred}).Equal(hundred))
	assert.True(t, accounting.SignedCashFlow(domain.Transaction{Flow: domain.Expense, Amount: hundred}).Equal(hundred.Neg()))

	p := domain.InvoicePayment{Amount: hundred}
	assert.True(t, accounting.SignedPayment(domain.Sales, p).Equal(hundred))
	assert.True(t, accounting.SignedPayment(domain.Purchase, p).Equal(hundred.Neg()))
}

func TestSettlementEntryType(t *testing.T) {
	assert.Equal(t, domain.Credit, accounting.SettlementEntryType(domain.Income))
	assert.Equal(t, domain.Debit, accounting.SettlementEntryType(domain.Expense))
}
