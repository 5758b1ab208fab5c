package services

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
	"github.com/shopspring/decimal"
)

// BankAccountSvc defines bank account operations
type BankAccountSvc interface {
	CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, userID string) (*versioning.Entity[domain.BankAccount], error)
	GetBankAccount(ctx context.Context, accountID string, userID string) (*versioning.Entity[domain.BankAccount], error)
	ListBankAccounts(ctx context.Context, userID string, includeDeleted bool) ([]*versioning.Entity[domain.BankAccount], error)
	UpdateBankAccount(ctx context.Context, accountID string, req dto.UpdateBankAccountRequest, userID string) (*versioning.Entity[domain.BankAccount], error)
	DeleteBankAccount(ctx context.Context, accountID string, userID string) (*versioning.Entity[domain.BankAccount], error)
	RestoreBankAccount(ctx context.Context, accountID string, userID string) (*versioning.Entity[domain.BankAccount], error)
}

// TransactionSvc defines direct income and expense operations
type TransactionSvc interface {
	// CreateTransaction persists a transaction. A debt settlement also posts to the
	// counterparty ledger.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*versioning.Entity[domain.Transaction], error)
	GetTransaction(ctx context.Context, transactionID string, userID string) (*versioning.Entity[domain.Transaction], error)
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams, userID string) ([]*versioning.Entity[domain.Transaction], error)
	GetTransactionHistory(ctx context.Context, transactionID string, userID string) ([]versioning.Record, error)
	DeleteTransaction(ctx context.Context, transactionID string, userID string) (*versioning.Entity[domain.Transaction], error)
	RestoreTransaction(ctx context.Context, transactionID string, userID string) (*versioning.Entity[domain.Transaction], error)
}

// StatementSvc defines derived bank reporting
type StatementSvc interface {
	// OpeningBalance is the balance of the selected accounts at the start of asOf.
	OpeningBalance(ctx context.Context, accountIDs []string, asOf time.Time, userID string) (decimal.Decimal, error)

	// BuildStatement lists the movements of the selected accounts within a period.
	BuildStatement(ctx context.Context, params dto.StatementParams, userID string) (*domain.BankStatement, error)
}

// BankingSvcFacade combines all banking-related service interfaces
type BankingSvcFacade interface {
	BankAccountSvc
	TransactionSvc
	StatementSvc
}
