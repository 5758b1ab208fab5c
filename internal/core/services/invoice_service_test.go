package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_app/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	svc       *portssvc.ServiceContainer
	productID string
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	svc, err := newContainer(nil, true)
	suite.Require().NoError(err)
	suite.svc = svc

	p, err := svc.Stock.CreateProduct(suite.ctx, dto.CreateProductRequest{
		Name:              "Widget",
		Unit:              "pcs",
		LowStockThreshold: amt("2"),
		OpeningStock:      amt("20"),
		OpeningDate:       ptr(on(2024, 1, 1)),
	}, ownerA)
	suite.Require().NoError(err)
	suite.productID = p.ID
}

func ptr[T any](v T) *T { return &v }

func (suite *InvoiceServiceTestSuite) salesRequest(qty string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		Number:    "S-1",
		Kind:      domain.Sales,
		IssueDate: on(2024, 3, 1),
		Items: []dto.InvoiceItemRequest{
			{ProductRef: suite.productID, Quantity: amt(qty), UnitPrice: amt("100")},
		},
		Discount: &dto.AdjustmentRequest{Type: domain.PercentageKind, Value: amt("10")},
		Tax:      &dto.AdjustmentRequest{Type: domain.PercentageKind, Value: amt("5")},
	}
}

func (suite *InvoiceServiceTestSuite) stock() string {
	p, err := suite.svc.Stock.GetProduct(suite.ctx, suite.productID, ownerA)
	suite.Require().NoError(err)
	return p.State.CurrentStock.String()
}

func (suite *InvoiceServiceTestSuite) TestCreate_PricesInvoice() {
	inv, err := suite.svc.Invoice.CreateInvoice(suite.ctx, suite.salesRequest("2"), ownerA)
	suite.Require().NoError(err)

	suite.True(inv.State.Subtotal.Equal(amt("200")))
	suite.True(inv.State.Discount.Amount.Equal(amt("20")))
	suite.True(inv.State.Tax.Amount.Equal(amt("9")))
	suite.True(inv.State.TotalAmount.Equal(amt("189")))
	suite.Equal(domain.StatusPending, inv.State.PaymentStatus)
	suite.Equal("20", suite.stock(), "an unpaid sales invoice only commits stock")

	pos, err := suite.svc.Stock.GetStockPosition(suite.ctx, suite.productID, time.Time{}, ownerA)
	suite.Require().NoError(err)
	suite.True(pos.Committed.Equal(amt("2")))
	suite.True(pos.Available.Equal(amt("18")))
}

func (suite *InvoiceServiceTestSuite) TestCreate_UnknownReferences() {
	req := suite.salesRequest("1")
	req.CounterpartyRef = "nobody"
	_, err := suite.svc.Invoice.CreateInvoice(suite.ctx, req, ownerA)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.svc.Invoice.CreateInvoice(suite.ctx, suite.salesRequest("1"), ownerB)
	suite.ErrorIs(err, apperrors.ErrValidation, "products of other owners cannot be referenced")
}

func (suite *InvoiceServiceTestSuite) TestCreate_PaidPostsStock() {
	req := suite.salesRequest("3")
	req.InitialStatus = domain.StatusPaid

	inv, err := suite.svc.Invoice.CreateInvoice(suite.ctx, req, ownerA)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPaid, inv.State.PaymentStatus)
	suite.Require().Len(inv.State.Payments, 1)
	suite.Equal(1, inv.HistoryLen(), "the opening payment is part of the created record")
	suite.Equal("17", suite.stock())
}

func (suite *InvoiceServiceTestSuite) TestCreate_PendingRejectsInitialPayment() {
	req := suite.salesRequest("1")
	req.InitialStatus = domain.StatusPending
	req.InitialPayment = &dto.PaymentRequest{Amount: amt("40")}

	_, err := suite.svc.Invoice.CreateInvoice(suite.ctx, req, ownerA)
	suite.ErrorIs(err, apperrors.ErrValidation)

	list, err := suite.svc.Invoice.ListInvoices(suite.ctx, dto.ListInvoicesParams{}, time.Time{}, ownerA)
	suite.Require().NoError(err)
	suite.Empty(list, "nothing is stored")
}

func (suite *InvoiceServiceTestSuite) TestCreate_PurchasePostsStock() {
	req := suite.salesRequest("5")
	req.Kind = domain.Purchase

	_, err := suite.svc.Invoice.CreateInvoice(suite.ctx, req, ownerA)
	suite.Require().NoError(err)
	suite.Equal("25", suite.stock())
}

func (suite *InvoiceServiceTestSuite) TestRecordPayment() {
	inv, err := suite.svc.Invoice.CreateInvoice(suite.ctx, suite.salesRequest("2"), ownerA)
	suite.Require().NoError(err)

	_, err = suite.svc.Invoice.RecordPayment(suite.ctx, inv.ID, dto.PaymentRequest{Amount: amt("189.02")}, ownerA)
	suite.ErrorIs(err, apperrors.ErrOverpayment)

	_, err = suite.svc.Invoice.RecordPayment(suite.ctx, inv.ID, dto.PaymentRequest{Amount: amt("10"), BankAccountRef: "missing"}, ownerA)
	suite.ErrorIs(err, apperrors.ErrValidation)

	partial, err := suite.svc.Invoice.RecordPayment(suite.ctx, inv.ID, dto.PaymentRequest{Amount: amt("89")}, ownerA)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPartiallyPaid, partial.State.PaymentStatus)
	suite.Equal("20", suite.stock())

	paid, err := suite.svc.Invoice.RecordPayment(suite.ctx, inv.ID, dto.PaymentRequest{Amount: amt("100")}, ownerA)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPaid, paid.State.PaymentStatus)
	suite.Equal(3, paid.HistoryLen())
	suite.Equal("18", suite.stock(), "settling the invoice posts the sale")

	history, err := suite.svc.Invoice.GetInvoiceHistory(suite.ctx, inv.ID, ownerA)
	suite.Require().NoError(err)
	suite.Equal(domain.ActionPaymentRecorded, history[2].Action)
}

func (suite *InvoiceServiceTestSuite) TestCancelAndStatus() {
	req := suite.salesRequest("1")
	req.DueDate = ptr(on(2024, 3, 5))
	inv, err := suite.svc.Invoice.CreateInvoice(suite.ctx, req, ownerA)
	suite.Require().NoError(err)

	status, err := suite.svc.Invoice.GetInvoiceStatus(suite.ctx, inv.ID, on(2024, 3, 5), ownerA)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPending, status)

	status, err = suite.svc.Invoice.GetInvoiceStatus(suite.ctx, inv.ID, on(2024, 3, 6), ownerA)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusOverdue, status)

	overdue, err := suite.svc.Invoice.ListInvoices(suite.ctx, dto.ListInvoicesParams{Status: domain.StatusOverdue}, on(2024, 3, 6), ownerA)
	suite.Require().NoError(err)
	suite.Len(overdue, 1)

	_, err = suite.svc.Invoice.CancelInvoice(suite.ctx, inv.ID, ownerA)
	suite.Require().NoError(err)

	status, err = suite.svc.Invoice.GetInvoiceStatus(suite.ctx, inv.ID, on(2024, 3, 6), ownerA)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, status)

	_, err = suite.svc.Invoice.RecordPayment(suite.ctx, inv.ID, dto.PaymentRequest{Amount: amt("1")}, ownerA)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *InvoiceServiceTestSuite) TestUpdate_KeepsPayments() {
	inv, err := suite.svc.Invoice.CreateInvoice(suite.ctx, suite.salesRequest("2"), ownerA)
	suite.Require().NoError(err)
	_, err = suite.svc.Invoice.RecordPayment(suite.ctx, inv.ID, dto.PaymentRequest{Amount: amt("50")}, ownerA)
	suite.Require().NoError(err)

	upd := dto.UpdateInvoiceRequest{
		Number:    "S-1b",
		IssueDate: on(2024, 3, 1),
		Items:     []dto.InvoiceItemRequest{{Quantity: amt("1"), UnitPrice: amt("80")}},
	}
	updated, err := suite.svc.Invoice.UpdateInvoice(suite.ctx, inv.ID, upd, 2, ownerA)
	suite.Require().NoError(err)
	suite.True(updated.State.TotalAmount.Equal(amt("80")))
	suite.Len(updated.State.Payments, 1)
	suite.Equal(domain.StatusPartiallyPaid, updated.State.PaymentStatus)

	_, err = suite.svc.Invoice.UpdateInvoice(suite.ctx, inv.ID, upd, 2, ownerA)
	suite.Require().NoError(err, "replay")

	upd.Notes = "changed"
	_, err = suite.svc.Invoice.UpdateInvoice(suite.ctx, inv.ID, upd, 2, ownerA)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *InvoiceServiceTestSuite) TestDeleteRestore() {
	inv, err := suite.svc.Invoice.CreateInvoice(suite.ctx, suite.salesRequest("4"), ownerA)
	suite.Require().NoError(err)

	_, err = suite.svc.Invoice.DeleteInvoice(suite.ctx, inv.ID, ownerA)
	suite.Require().NoError(err)
	pos, err := suite.svc.Stock.GetStockPosition(suite.ctx, suite.productID, time.Time{}, ownerA)
	suite.Require().NoError(err)
	suite.True(pos.Committed.IsZero(), "deleted invoices commit nothing")

	list, err := suite.svc.Invoice.ListInvoices(suite.ctx, dto.ListInvoicesParams{}, time.Time{}, ownerA)
	suite.Require().NoError(err)
	suite.Empty(list)

	_, err = suite.svc.Invoice.RestoreInvoice(suite.ctx, inv.ID, ownerA)
	suite.Require().NoError(err)
	pos, err = suite.svc.Stock.GetStockPosition(suite.ctx, suite.productID, time.Time{}, ownerA)
	suite.Require().NoError(err)
	suite.True(pos.Committed.Equal(amt("4")))
}

func (suite *InvoiceServiceTestSuite) TestComputeTotals() {
	totals, err := suite.svc.Invoice.ComputeTotals(suite.ctx, dto.ComputeTotalsRequest{
		Items:    []dto.InvoiceItemRequest{{Quantity: amt("2"), UnitPrice: amt("100")}},
		Discount: &dto.AdjustmentRequest{Type: domain.PercentageKind, Value: amt("10")},
		Tax:      &dto.AdjustmentRequest{Type: domain.PercentageKind, Value: amt("5")},
	})
	suite.Require().NoError(err)
	suite.True(totals.TotalAmount.Equal(amt("189")))

	_, err = suite.svc.Invoice.ComputeTotals(suite.ctx, dto.ComputeTotalsRequest{
		Items: []dto.InvoiceItemRequest{{Quantity: amt("0"), UnitPrice: amt("100")}},
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}
