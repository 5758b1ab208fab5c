package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_app/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
	"github.com/stretchr/testify/suite"
)

type BankingServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	svc       *portssvc.ServiceContainer
	accountID string
}

func (suite *BankingServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	svc, err := newContainer(nil, false)
	suite.Require().NoError(err)
	suite.svc = svc

	acc, err := svc.Banking.CreateBankAccount(suite.ctx, dto.CreateBankAccountRequest{
		Name:                 "Main",
		InitialBalance:       amt("1000"),
		BalanceEffectiveDate: on(2024, 1, 1),
		Currency:             "usd",
	}, ownerA)
	suite.Require().NoError(err)
	suite.Equal("USD", acc.State.Currency)
	suite.accountID = acc.ID
}

func (suite *BankingServiceTestSuite) transaction(req dto.CreateTransactionRequest) string {
	if req.BankAccountRef == "" {
		req.BankAccountRef = suite.accountID
	}
	txn, err := suite.svc.Banking.CreateTransaction(suite.ctx, req, ownerA)
	suite.Require().NoError(err)
	return txn.ID
}

func (suite *BankingServiceTestSuite) TestOpeningBalance() {
	suite.transaction(dto.CreateTransactionRequest{Date: on(2024, 1, 15), Flow: domain.Income, Amount: amt("500")})

	opening, err := suite.svc.Banking.OpeningBalance(suite.ctx, []string{suite.accountID}, on(2024, 2, 1), ownerA)
	suite.Require().NoError(err)
	suite.True(opening.Equal(amt("1500")))

	opening, err = suite.svc.Banking.OpeningBalance(suite.ctx, nil, on(2024, 2, 1), ownerB)
	suite.Require().NoError(err)
	suite.True(opening.IsZero(), "accounts of other owners are never included")
}

func (suite *BankingServiceTestSuite) TestStatementWithInvoicePayments() {
	suite.transaction(dto.CreateTransactionRequest{Date: on(2024, 2, 10), Flow: domain.Expense, Amount: amt("300"), Description: "rent"})

	inv, err := suite.svc.Invoice.CreateInvoice(suite.ctx, dto.CreateInvoiceRequest{
		Kind:      domain.Sales,
		IssueDate: on(2024, 2, 1),
		Items:     []dto.InvoiceItemRequest{{Quantity: amt("1"), UnitPrice: amt("200")}},
	}, ownerA)
	suite.Require().NoError(err)
	_, err = suite.svc.Invoice.RecordPayment(suite.ctx, inv.ID, dto.PaymentRequest{
		Date:           ptr(on(2024, 2, 5)),
		Amount:         amt("200"),
		BankAccountRef: suite.accountID,
	}, ownerA)
	suite.Require().NoError(err)

	stmt, err := suite.svc.Banking.BuildStatement(suite.ctx, dto.StatementParams{From: on(2024, 2, 1), To: on(2024, 2, 29)}, ownerA)
	suite.Require().NoError(err)
	suite.Require().Len(stmt.Lines, 2)
	suite.Equal(domain.SourceSalesPayment, stmt.Lines[0].Source)
	suite.True(stmt.Lines[0].Balance.Equal(amt("1200")))
	suite.True(stmt.ClosingBalance.Equal(amt("900")))

	noPayments := false
	stmt, err = suite.svc.Banking.BuildStatement(suite.ctx, dto.StatementParams{
		From:                 on(2024, 2, 1),
		To:                   on(2024, 2, 29),
		IncludeSalesPayments: &noPayments,
	}, ownerA)
	suite.Require().NoError(err)
	suite.Len(stmt.Lines, 1)

	_, err = suite.svc.Banking.BuildStatement(suite.ctx, dto.StatementParams{From: on(2024, 3, 1), To: on(2024, 2, 1)}, ownerA)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BankingServiceTestSuite) TestDebtSettlementLifecycle() {
	cp, err := suite.svc.Counterparty.CreateCounterparty(suite.ctx, dto.CreateCounterpartyRequest{Name: "Carol", Kind: domain.Customer}, ownerA)
	suite.Require().NoError(err)
	_, err = suite.svc.Counterparty.AddLedgerEntry(suite.ctx, cp.ID, dto.CreateLedgerEntryRequest{Date: on(2024, 1, 2), Type: domain.Debit, Amount: amt("100")}, ownerA)
	suite.Require().NoError(err)

	txnID := suite.transaction(dto.CreateTransactionRequest{
		Date:            on(2024, 1, 20),
		Flow:            domain.Income,
		Category:        domain.CategoryDebtSettlement,
		Amount:          amt("60"),
		CounterpartyRef: cp.ID,
	})

	balance, err := suite.svc.Counterparty.GetBalance(suite.ctx, cp.ID, ownerA)
	suite.Require().NoError(err)
	suite.True(balance.NetBalance.Equal(amt("40")), "money received settles part of the debt")

	stmt, err := suite.svc.Banking.BuildStatement(suite.ctx, dto.StatementParams{From: on(2024, 1, 1), To: on(2024, 1, 31)}, ownerA)
	suite.Require().NoError(err)
	suite.Require().Len(stmt.Lines, 1)
	suite.Equal(domain.SourceDebtSettlement, stmt.Lines[0].Source)

	_, err = suite.svc.Banking.DeleteTransaction(suite.ctx, txnID, ownerA)
	suite.Require().NoError(err)
	balance, err = suite.svc.Counterparty.GetBalance(suite.ctx, cp.ID, ownerA)
	suite.Require().NoError(err)
	suite.True(balance.NetBalance.Equal(amt("100")))

	restored, err := suite.svc.Banking.RestoreTransaction(suite.ctx, txnID, ownerA)
	suite.Require().NoError(err)
	suite.NotEmpty(restored.State.LedgerEntryRef)
	balance, err = suite.svc.Counterparty.GetBalance(suite.ctx, cp.ID, ownerA)
	suite.Require().NoError(err)
	suite.True(balance.NetBalance.Equal(amt("40")))

	history, err := suite.svc.Banking.GetTransactionHistory(suite.ctx, txnID, ownerA)
	suite.Require().NoError(err)
	suite.Len(history, 4, "created, deleted, restored, relinked")
}

func (suite *BankingServiceTestSuite) TestCreateTransaction_Validation() {
	tests := []struct {
		name string
		req  dto.CreateTransactionRequest
	}{
		{"settlement without counterparty", dto.CreateTransactionRequest{Date: on(2024, 1, 1), Flow: domain.Income, Category: domain.CategoryDebtSettlement, Amount: amt("1")}},
		{"unknown account", dto.CreateTransactionRequest{Date: on(2024, 1, 1), Flow: domain.Income, Amount: amt("1"), BankAccountRef: "missing"}},
		{"zero amount", dto.CreateTransactionRequest{Date: on(2024, 1, 1), Flow: domain.Income, Amount: amt("0")}},
		{"bad flow", dto.CreateTransactionRequest{Date: on(2024, 1, 1), Flow: "GIFT", Amount: amt("1")}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.svc.Banking.CreateTransaction(suite.ctx, tt.req, ownerA)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
}

func (suite *BankingServiceTestSuite) TestListTransactions() {
	suite.transaction(dto.CreateTransactionRequest{Date: on(2024, 1, 5), Flow: domain.Income, Amount: amt("1")})
	suite.transaction(dto.CreateTransactionRequest{Date: on(2024, 1, 15), Flow: domain.Income, Amount: amt("2")})
	gone := suite.transaction(dto.CreateTransactionRequest{Date: on(2024, 1, 20), Flow: domain.Income, Amount: amt("3")})
	_, err := suite.svc.Banking.DeleteTransaction(suite.ctx, gone, ownerA)
	suite.Require().NoError(err)

	list, err := suite.svc.Banking.ListTransactions(suite.ctx, dto.ListTransactionsParams{From: on(2024, 1, 5), To: on(2024, 1, 20)}, ownerA)
	suite.Require().NoError(err)
	suite.Len(list, 2)

	list, err = suite.svc.Banking.ListTransactions(suite.ctx, dto.ListTransactionsParams{From: on(2024, 1, 6), IncludeDeleted: true}, ownerA)
	suite.Require().NoError(err)
	suite.Len(list, 2)
}

func (suite *BankingServiceTestSuite) TestDeletedAccountLeavesStatement() {
	suite.transaction(dto.CreateTransactionRequest{Date: on(2024, 2, 2), Flow: domain.Income, Amount: amt("5")})
	_, err := suite.svc.Banking.DeleteBankAccount(suite.ctx, suite.accountID, ownerA)
	suite.Require().NoError(err)

	stmt, err := suite.svc.Banking.BuildStatement(suite.ctx, dto.StatementParams{From: on(2024, 2, 1), To: on(2024, 2, 29)}, ownerA)
	suite.Require().NoError(err)
	suite.Empty(stmt.AccountIDs)
	suite.Empty(stmt.Lines)
	suite.True(stmt.ClosingBalance.IsZero())
}

func TestBankingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BankingServiceTestSuite))
}
