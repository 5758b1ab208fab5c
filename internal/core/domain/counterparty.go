package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CounterpartyKind classifies who the user trades with.
type CounterpartyKind string

const (
	Customer CounterpartyKind = "CUSTOMER"
	Supplier CounterpartyKind = "SUPPLIER"
	Both     CounterpartyKind = "BOTH"
)

// Counterparty is a person or business the user keeps a running balance with.
type Counterparty struct {
	Name  string           `json:"name" validate:"required,max=200"`
	Phone string           `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email string           `json:"email,omitempty" validate:"omitempty,email"`
	Kind  CounterpartyKind `json:"kind" validate:"required,oneof=CUSTOMER SUPPLIER BOTH"`
	Notes string           `json:"notes,omitempty" validate:"max=2000"`
}

func (c Counterparty) Clone() Counterparty { return c }

// EntryType indicates whether a ledger line is a Debit or a Credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"  // counterparty owes the user more
	Credit EntryType = "CREDIT" // counterparty owes the user less
)

// LedgerEntry is one dated, signed movement of value against a counterparty balance.
type LedgerEntry struct {
	ID                string          `json:"id" validate:"required"`
	PersonID          string          `json:"personID" validate:"required"`
	Date              time.Time       `json:"date" validate:"required"`
	Type              EntryType       `json:"type" validate:"required,oneof=DEBIT CREDIT"`
	Amount            decimal.Decimal `json:"amount" validate:"gt=0"`
	Description       string          `json:"description" validate:"max=500"`
	Seq               int64           `json:"seq"`               // insertion order, tie-break for equal dates
	BalanceAfterEntry decimal.Decimal `json:"balanceAfterEntry"` // derived
	CreatedAt         time.Time       `json:"createdAt"`
}

func (e LedgerEntry) Clone() LedgerEntry { return e }

// BalanceStatus describes which side of a counterparty balance is owed.
type BalanceStatus string

const (
	CounterpartyOwesUser BalanceStatus = "COUNTERPARTY_OWES_USER"
	UserOwesCounterparty BalanceStatus = "USER_OWES_COUNTERPARTY"
	Settled              BalanceStatus = "SETTLED"
)

// Label returns the human readable form of the status.
func (s BalanceStatus) Label() string {
	switch s {
	case CounterpartyOwesUser:
		return "counterparty owes user"
	case UserOwesCounterparty:
		return "user owes counterparty"
	default:
		return "settled"
	}
}

// CounterpartyBalance summarises a counterparty's ledger.
type CounterpartyBalance struct {
	PersonID   string          `json:"personID"`
	NetBalance decimal.Decimal `json:"netBalance"`
	Status     BalanceStatus   `json:"status"`
	EntryCount int             `json:"entryCount"`
}
