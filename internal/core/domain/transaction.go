package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFlow indicates whether money came in or went out.
type TransactionFlow string

const (
	Income  TransactionFlow = "INCOME"
	Expense TransactionFlow = "EXPENSE"
)

// TransactionCategory separates ordinary cash-book lines from counterparty debt settlements.
type TransactionCategory string

const (
	CategoryGeneral        TransactionCategory = "GENERAL"
	CategoryDebtSettlement TransactionCategory = "DEBT_SETTLEMENT"
)

// Transaction is a direct income or expense record, optionally tied to a bank account
// and, for debt settlements, to a counterparty.
type Transaction struct {
	Date            time.Time           `json:"date" validate:"required"`
	Flow            TransactionFlow     `json:"flow" validate:"required,oneof=INCOME EXPENSE"`
	Category        TransactionCategory `json:"category" validate:"required,oneof=GENERAL DEBT_SETTLEMENT"`
	Amount          decimal.Decimal     `json:"amount" validate:"gt=0"`
	Description     string              `json:"description,omitempty" validate:"max=500"`
	BankAccountRef  string              `json:"bankAccountRef,omitempty"`
	CounterpartyRef string              `json:"counterpartyRef,omitempty" validate:"required_if=Category DEBT_SETTLEMENT"`
	LedgerEntryRef  string              `json:"ledgerEntryRef,omitempty"` // entry posted for a debt settlement
}

func (t Transaction) Clone() Transaction { return t }
