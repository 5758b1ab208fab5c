package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/banking"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/ledger"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
	"github.com/SscSPs/bookkeeping_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type bankingService struct {
	BaseService
}

// NewBankingService creates a bank account, transaction and statement service
// over the dataset.
func NewBankingService(data *Dataset) *bankingService {
	return &bankingService{BaseService: BaseService{data: data}}
}

func (s *bankingService) CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, userID string) (*versioning.Entity[domain.BankAccount], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	created, err := s.data.Accounts.Create(ctx, userID, userID, domain.BankAccount{
		Name:                 strings.TrimSpace(req.Name),
		BankName:             strings.TrimSpace(req.BankName),
		AccountNumber:        strings.TrimSpace(req.AccountNumber),
		InitialBalance:       req.InitialBalance,
		BalanceEffectiveDate: req.BalanceEffectiveDate.UTC(),
		Currency:             strings.ToUpper(strings.TrimSpace(req.Currency)),
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create bank account")
		return nil, err
	}
	s.LogInfo(ctx, "Bank account created", slog.String("account_id", created.ID))
	return created, nil
}

func (s *bankingService) GetBankAccount(ctx context.Context, accountID string, userID string) (*versioning.Entity[domain.BankAccount], error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	return owned(s.data.Accounts, accountID, userID)
}

func (s *bankingService) ListBankAccounts(ctx context.Context, userID string, includeDeleted bool) ([]*versioning.Entity[domain.BankAccount], error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	return s.data.Accounts.List(ownedBy[domain.BankAccount](userID, includeDeleted)), nil
}

func (s *bankingService) UpdateBankAccount(ctx context.Context, accountID string, req dto.UpdateBankAccountRequest, userID string) (*versioning.Entity[domain.BankAccount], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Accounts, accountID, userID); err != nil {
		return nil, err
	}
	updated, err := s.data.Accounts.Mutate(ctx, accountID, domain.ActionUpdated, userID, func(cur domain.BankAccount) (domain.BankAccount, error) {
		if req.Name != nil {
			cur.Name = strings.TrimSpace(*req.Name)
		}
		if req.BankName != nil {
			cur.BankName = strings.TrimSpace(*req.BankName)
		}
		if req.AccountNumber != nil {
			cur.AccountNumber = strings.TrimSpace(*req.AccountNumber)
		}
		if req.InitialBalance != nil {
			cur.InitialBalance = *req.InitialBalance
		}
		if req.BalanceEffectiveDate != nil {
			cur.BalanceEffectiveDate = req.BalanceEffectiveDate.UTC()
		}
		return cur, nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to update bank account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Bank account updated", slog.String("account_id", accountID))
	return updated, nil
}

func (s *bankingService) DeleteBankAccount(ctx context.Context, accountID string, userID string) (*versioning.Entity[domain.BankAccount], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Accounts, accountID, userID); err != nil {
		return nil, err
	}
	deleted, err := s.data.Accounts.SoftDelete(ctx, accountID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete bank account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Bank account deleted", slog.String("account_id", accountID))
	return deleted, nil
}

func (s *bankingService) RestoreBankAccount(ctx context.Context, accountID string, userID string) (*versioning.Entity[domain.BankAccount], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Accounts, accountID, userID); err != nil {
		return nil, err
	}
	restored, err := s.data.Accounts.Restore(ctx, accountID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to restore bank account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Bank account restored", slog.String("account_id", accountID))
	return restored, nil
}

func (s *bankingService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*versioning.Entity[domain.Transaction], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	txn := domain.Transaction{
		Date:            req.Date.UTC(),
		Flow:            req.Flow,
		Category:        req.Category,
		Amount:          req.Amount,
		Description:     strings.TrimSpace(req.Description),
		BankAccountRef:  req.BankAccountRef,
		CounterpartyRef: req.CounterpartyRef,
	}
	if txn.Category == "" {
		txn.Category = domain.CategoryGeneral
	}
	if txn.Category == domain.CategoryDebtSettlement && txn.CounterpartyRef == "" {
		return nil, apperrors.NewValidationError("counterpartyRef", "is required for a debt settlement")
	}
	if err := liveRef(s.data.Accounts, "bankAccountRef", txn.BankAccountRef, userID); err != nil {
		return nil, err
	}
	if err := liveRef(s.data.Counterparties, "counterpartyRef", txn.CounterpartyRef, userID); err != nil {
		return nil, err
	}

	if txn.Category == domain.CategoryDebtSettlement {
		entry, err := s.postSettlement(ctx, txn, userID)
		if err != nil {
			s.LogFailure(ctx, err, "Failed to post settlement ledger entry", slog.String("counterparty_id", txn.CounterpartyRef))
			return nil, err
		}
		txn.LedgerEntryRef = entry.ID
	}

	created, err := s.data.Transactions.Create(ctx, userID, userID, txn)
	if err != nil {
		if txn.LedgerEntryRef != "" {
			if undoErr := s.data.removeLedgerEntry(ctx, userID, txn.LedgerEntryRef); undoErr != nil {
				s.LogError(ctx, undoErr, "Failed to remove settlement ledger entry", slog.String("entry_id", txn.LedgerEntryRef))
			}
		}
		s.LogFailure(ctx, err, "Failed to create transaction")
		return nil, err
	}
	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", created.ID),
		slog.String("flow", string(created.State.Flow)),
		slog.String("category", string(created.State.Category)))
	return created, nil
}

func (s *bankingService) GetTransaction(ctx context.Context, transactionID string, userID string) (*versioning.Entity[domain.Transaction], error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	return owned(s.data.Transactions, transactionID, userID)
}

func (s *bankingService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams, userID string) ([]*versioning.Entity[domain.Transaction], error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if !params.From.IsZero() && !params.To.IsZero() && params.To.Before(params.From) {
		return nil, apperrors.NewValidationError("to", "must not be before from")
	}
	mine := ownedBy[domain.Transaction](userID, params.IncludeDeleted)
	from, to := dayOf(params.From), dayOf(params.To)
	return s.data.Transactions.List(func(e *versioning.Entity[domain.Transaction]) bool {
		if !mine(e) {
			return false
		}
		if params.BankAccountRef != "" && e.State.BankAccountRef != params.BankAccountRef {
			return false
		}
		day := dayOf(e.State.Date)
		if !params.From.IsZero() && day.Before(from) {
			return false
		}
		return params.To.IsZero() || !day.After(to)
	}), nil
}

func (s *bankingService) GetTransactionHistory(ctx context.Context, transactionID string, userID string) ([]versioning.Record, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	e, err := owned(s.data.Transactions, transactionID, userID)
	if err != nil {
		return nil, err
	}
	return e.History(), nil
}

// DeleteTransaction soft-deletes a transaction. A settlement also takes its entry
// off the counterparty ledger.
func (s *bankingService) DeleteTransaction(ctx context.Context, transactionID string, userID string) (*versioning.Entity[domain.Transaction], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Transactions, transactionID, userID); err != nil {
		return nil, err
	}
	deleted, err := s.data.Transactions.SoftDelete(ctx, transactionID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	if ref := deleted.State.LedgerEntryRef; ref != "" {
		if _, lookupErr := s.data.Book.Entry(ref); lookupErr == nil {
			if err := s.data.removeLedgerEntry(ctx, userID, ref); err != nil {
				s.LogError(ctx, err, "Failed to remove settlement ledger entry", slog.String("entry_id", ref))
			}
		}
	}
	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID))
	return deleted, nil
}

// RestoreTransaction undoes a soft delete. A settlement posts a fresh ledger
// entry and records its id on the transaction.
func (s *bankingService) RestoreTransaction(ctx context.Context, transactionID string, userID string) (*versioning.Entity[domain.Transaction], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Transactions, transactionID, userID); err != nil {
		return nil, err
	}
	restored, err := s.data.Transactions.Restore(ctx, transactionID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to restore transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	s.LogInfo(ctx, "Transaction restored", slog.String("transaction_id", transactionID))

	if restored.State.Category != domain.CategoryDebtSettlement {
		return restored, nil
	}
	if _, lookupErr := s.data.Book.Entry(restored.State.LedgerEntryRef); lookupErr == nil {
		return restored, nil
	}
	entry, err := s.postSettlement(ctx, restored.State, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to repost settlement ledger entry", slog.String("transaction_id", transactionID))
		return restored, nil
	}
	relinked, err := s.data.Transactions.Mutate(ctx, transactionID, domain.ActionUpdated, userID, func(cur domain.Transaction) (domain.Transaction, error) {
		cur.LedgerEntryRef = entry.ID
		return cur, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to link settlement ledger entry", slog.String("transaction_id", transactionID))
		return restored, nil
	}
	return relinked, nil
}

func (s *bankingService) OpeningBalance(ctx context.Context, accountIDs []string, asOf time.Time, userID string) (decimal.Decimal, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if asOf.IsZero() {
		return decimal.Zero, apperrors.NewValidationError("asOf", "is required")
	}
	return banking.OpeningBalance(s.sources(userID), accountIDs, asOf), nil
}

func (s *bankingService) BuildStatement(ctx context.Context, params dto.StatementParams, userID string) (*domain.BankStatement, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if params.From.IsZero() || params.To.IsZero() {
		return nil, apperrors.NewValidationError("from", "period start and end are required")
	}
	if dayOf(params.To).Before(dayOf(params.From)) {
		return nil, apperrors.NewValidationError("to", "must not be before from")
	}
	stmt := banking.BuildStatement(s.sources(userID), params.AccountIDs, params.From, params.To, params.Flags())
	s.LogDebug(ctx, "Bank statement built",
		slog.Int("accounts", len(stmt.AccountIDs)),
		slog.Int("lines", len(stmt.Lines)))
	return &stmt, nil
}

// sources snapshots the records of one owner. Callers hold mu.
func (s *bankingService) sources(userID string) banking.Sources {
	return banking.Sources{
		Accounts:     s.data.Accounts.List(ownedBy[domain.BankAccount](userID, true)),
		Transactions: s.data.Transactions.List(ownedBy[domain.Transaction](userID, true)),
		Invoices:     s.data.Invoices.List(ownedBy[domain.Invoice](userID, true)),
	}
}

// postSettlement posts the ledger side of a debt settlement. Callers hold mu.
func (s *bankingService) postSettlement(ctx context.Context, txn domain.Transaction, userID string) (domain.LedgerEntry, error) {
	desc := "Debt settlement"
	if txn.Description != "" {
		desc += ": " + txn.Description
	}
	return s.data.postLedgerEntry(ctx, userID, userID, ledger.NewEntry{
		PersonID:    txn.CounterpartyRef,
		Date:        txn.Date,
		Type:        accounting.SettlementEntryType(txn.Flow),
		Amount:      txn.Amount,
		Description: desc,
	})
}

func dayOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
