package accounting

import (
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the counterparty ledger sign convention to an entry.
// DEBIT -> positive (counterparty owes the user more)
// CREDIT -> negative (counterparty owes the user less)
// This is the only place the convention is encoded.
func SignedAmount(entry domain.LedgerEntry) decimal.Decimal {
	if entry.Type == domain.Credit {
		return entry.Amount.Neg()
	}
	return entry.Amount
}

// BalanceStatus classifies a net counterparty balance.
func BalanceStatus(balance decimal.Decimal) domain.BalanceStatus {
	switch balance.Sign() {
	case 1:
		return domain.CounterpartyOwesUser
	case -1:
		return domain.UserOwesCounterparty
	default:
		return domain.Settled
	}
}

// SignedCashFlow returns the effect of a direct transaction on a bank balance.
// INCOME -> positive, EXPENSE -> negative.
func SignedCashFlow(txn domain.Transaction) decimal.Decimal {
	if txn.Flow == domain.Expense {
		return txn.Amount.Neg()
	}
	return txn.Amount
}

// SignedPayment returns the effect of an invoice payment on a bank balance.
// Sales payments bring money in, purchase payments take it out.
func SignedPayment(kind domain.InvoiceKind, payment domain.InvoicePayment) decimal.Decimal {
	if kind == domain.Purchase {
		return payment.Amount.Neg()
	}
	return payment.Amount
}

// SettlementEntryType maps a debt settlement to the ledger side it posts.
// Money received from a counterparty reduces what they owe (CREDIT);
// money paid to them reduces what the user owes (DEBIT).
func SettlementEntryType(flow domain.TransactionFlow) domain.EntryType {
	if flow == domain.Income {
		return domain.Credit
	}
	return domain.Debit
}
