package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementSource names where a bank statement line came from.
type StatementSource string

const (
	SourceTransaction     StatementSource = "TRANSACTION"
	SourceSalesPayment    StatementSource = "SALES_PAYMENT"
	SourcePurchasePayment StatementSource = "PURCHASE_PAYMENT"
	SourceDebtSettlement  StatementSource = "DEBT_SETTLEMENT"
)

// StatementFlags selects which record families a statement merges.
type StatementFlags struct {
	Transactions     bool `json:"transactions"`
	SalesPayments    bool `json:"salesPayments"`
	PurchasePayments bool `json:"purchasePayments"`
	DebtSettlements  bool `json:"debtSettlements"`
}

// AllStatementSources includes every record family.
func AllStatementSources() StatementFlags {
	return StatementFlags{Transactions: true, SalesPayments: true, PurchasePayments: true, DebtSettlements: true}
}

// StatementLine is one movement on a bank statement. Money in is a credit, money out a debit.
type StatementLine struct {
	Date           time.Time       `json:"date"`
	Source         StatementSource `json:"source"`
	ReferenceID    string          `json:"referenceID"`
	BankAccountRef string          `json:"bankAccountRef"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Balance        decimal.Decimal `json:"balance"`
}

// BankStatement is a derived statement over one or more accounts.
type BankStatement struct {
	AccountIDs     []string        `json:"accountIDs"`
	PeriodStart    time.Time       `json:"periodStart"`
	PeriodEnd      time.Time       `json:"periodEnd"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Lines          []StatementLine `json:"lines"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}
