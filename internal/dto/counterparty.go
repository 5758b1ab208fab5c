package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/shopspring/decimal"
)

// CreateCounterpartyRequest defines the data needed to create a counterparty.
type CreateCounterpartyRequest struct {
	Name  string                  `json:"name" binding:"required,max=200"`
	Phone string                  `json:"phone"`
	Email string                  `json:"email" binding:"omitempty,email"`
	Kind  domain.CounterpartyKind `json:"kind" binding:"required,oneof=CUSTOMER SUPPLIER BOTH"`
	Notes string                  `json:"notes"`
}

// UpdateCounterpartyRequest carries the fields to change. Nil fields are kept.
type UpdateCounterpartyRequest struct {
	Name  *string                  `json:"name" binding:"omitempty,max=200"`
	Phone *string                  `json:"phone"`
	Email *string                  `json:"email"`
	Kind  *domain.CounterpartyKind `json:"kind" binding:"omitempty,oneof=CUSTOMER SUPPLIER BOTH"`
	Notes *string                  `json:"notes"`
}

// CounterpartyResponse is a counterparty with its lifecycle metadata.
type CounterpartyResponse struct {
	EntityMeta
	domain.Counterparty
}

// ToCounterpartyResponse converts a stored counterparty.
func ToCounterpartyResponse(e *versioning.Entity[domain.Counterparty]) CounterpartyResponse {
	return CounterpartyResponse{EntityMeta: toMeta(e.Header, e.HistoryLen()), Counterparty: e.State}
}

// ToListCounterpartyResponse converts a slice of stored counterparties.
func ToListCounterpartyResponse(es []*versioning.Entity[domain.Counterparty]) []CounterpartyResponse {
	out := make([]CounterpartyResponse, len(es))
	for i, e := range es {
		out[i] = ToCounterpartyResponse(e)
	}
	return out
}

// CreateLedgerEntryRequest defines a new ledger line against a counterparty.
type CreateLedgerEntryRequest struct {
	Date        time.Time        `json:"date" binding:"required"`
	Type        domain.EntryType `json:"type" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal  `json:"amount" binding:"gt=0" swaggertype:"string"`
	Description string           `json:"description" binding:"max=500"`
}

// ListLedgerEntriesParams defines query parameters for paging a ledger.
type ListLedgerEntriesParams struct {
	Limit     int    `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken string `form:"nextToken"`
}

// ListLedgerEntriesResponse is one page of a counterparty ledger, oldest first.
type ListLedgerEntriesResponse struct {
	Entries   []domain.LedgerEntry `json:"entries"`
	NextToken string               `json:"nextToken,omitempty"`
}

// CounterpartyBalanceResponse summarises a counterparty ledger.
type CounterpartyBalanceResponse struct {
	PersonID    string               `json:"personID"`
	NetBalance  decimal.Decimal      `json:"netBalance" swaggertype:"string"`
	Status      domain.BalanceStatus `json:"status"`
	StatusLabel string               `json:"statusLabel"`
	EntryCount  int                  `json:"entryCount"`
}

// ToCounterpartyBalanceResponse converts a ledger summary.
func ToCounterpartyBalanceResponse(b domain.CounterpartyBalance) CounterpartyBalanceResponse {
	return CounterpartyBalanceResponse{
		PersonID:    b.PersonID,
		NetBalance:  b.NetBalance,
		Status:      b.Status,
		StatusLabel: b.Status.Label(),
		EntryCount:  b.EntryCount,
	}
}
