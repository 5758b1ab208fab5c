package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/shopspring/decimal"
)

// CreateBankAccountRequest defines a new bank or cash account.
type CreateBankAccountRequest struct {
	Name                 string          `json:"name" binding:"required,max=200"`
	BankName             string          `json:"bankName" binding:"max=200"`
	AccountNumber        string          `json:"accountNumber" binding:"max=64"`
	InitialBalance       decimal.Decimal `json:"initialBalance" swaggertype:"string"`
	BalanceEffectiveDate time.Time       `json:"balanceEffectiveDate" binding:"required"`
	Currency             string          `json:"currency" binding:"required,len=3"`
}

// UpdateBankAccountRequest carries the fields to change. Nil fields are kept.
type UpdateBankAccountRequest struct {
	Name                 *string          `json:"name" binding:"omitempty,max=200"`
	BankName             *string          `json:"bankName"`
	AccountNumber        *string          `json:"accountNumber"`
	InitialBalance       *decimal.Decimal `json:"initialBalance" swaggertype:"string"`
	BalanceEffectiveDate *time.Time       `json:"balanceEffectiveDate"`
}

// BankAccountResponse is a bank account with its metadata.
type BankAccountResponse struct {
	EntityMeta
	domain.BankAccount
}

// CreateTransactionRequest defines a direct income or expense. A DEBT_SETTLEMENT
// names the counterparty whose ledger it settles.
type CreateTransactionRequest struct {
	Date            time.Time                  `json:"date" binding:"required"`
	Flow            domain.TransactionFlow     `json:"flow" binding:"required,oneof=INCOME EXPENSE"`
	Category        domain.TransactionCategory `json:"category" binding:"omitempty,oneof=GENERAL DEBT_SETTLEMENT"`
	Amount          decimal.Decimal            `json:"amount" binding:"gt=0" swaggertype:"string"`
	Description     string                     `json:"description" binding:"max=500"`
	BankAccountRef  string                     `json:"bankAccountRef"`
	CounterpartyRef string                     `json:"counterpartyRef"`
}

// ListTransactionsParams filters transaction listings by inclusive date range.
type ListTransactionsParams struct {
	BankAccountRef string    `form:"bankAccountRef"`
	From           time.Time `form:"from" time_format:"2006-01-02"`
	To             time.Time `form:"to" time_format:"2006-01-02"`
	IncludeDeleted bool      `form:"includeDeleted"`
}

// TransactionResponse is a transaction with its metadata.
type TransactionResponse struct {
	EntityMeta
	domain.Transaction
}

// StatementParams selects the accounts, period and record families of a statement.
// No accountID means every account. Omitted include flags default to true.
type StatementParams struct {
	AccountIDs              []string  `form:"accountID"`
	From                    time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To                      time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
	IncludeTransactions     *bool     `form:"includeTransactions"`
	IncludeSalesPayments    *bool     `form:"includeSalesPayments"`
	IncludePurchasePayments *bool     `form:"includePurchasePayments"`
	IncludeDebtSettlements  *bool     `form:"includeDebtSettlements"`
}

// Flags resolves the include flags.
func (p StatementParams) Flags() domain.StatementFlags {
	on := func(b *bool) bool { return b == nil || *b }
	return domain.StatementFlags{
		Transactions:     on(p.IncludeTransactions),
		SalesPayments:    on(p.IncludeSalesPayments),
		PurchasePayments: on(p.IncludePurchasePayments),
		DebtSettlements:  on(p.IncludeDebtSettlements),
	}
}

// OpeningBalanceParams selects the accounts and date of an opening balance.
type OpeningBalanceParams struct {
	AccountIDs []string  `form:"accountID"`
	AsOf       time.Time `form:"asOf" time_format:"2006-01-02" binding:"required"`
}

// OpeningBalanceResponse is the balance of the selected accounts at the start of a day.
type OpeningBalanceResponse struct {
	AccountIDs     []string        `json:"accountIDs"`
	AsOf           time.Time       `json:"asOf"`
	OpeningBalance decimal.Decimal `json:"openingBalance" swaggertype:"string"`
}

// ToBankAccountResponse converts a stored account.
func ToBankAccountResponse(e *versioning.Entity[domain.BankAccount]) BankAccountResponse {
	return BankAccountResponse{EntityMeta: toMeta(e.Header, e.HistoryLen()), BankAccount: e.State}
}

// ToListBankAccountResponse converts a slice of stored accounts.
func ToListBankAccountResponse(es []*versioning.Entity[domain.BankAccount]) []BankAccountResponse {
	out := make([]BankAccountResponse, len(es))
	for i, e := range es {
		out[i] = ToBankAccountResponse(e)
	}
	return out
}

// ToTransactionResponse converts a stored transaction.
func ToTransactionResponse(e *versioning.Entity[domain.Transaction]) TransactionResponse {
	return TransactionResponse{EntityMeta: toMeta(e.Header, e.HistoryLen()), Transaction: e.State}
}

// ToListTransactionResponse converts a slice of stored transactions.
func ToListTransactionResponse(es []*versioning.Entity[domain.Transaction]) []TransactionResponse {
	out := make([]TransactionResponse, len(es))
	for i, e := range es {
		out[i] = ToTransactionResponse(e)
	}
	return out
}
