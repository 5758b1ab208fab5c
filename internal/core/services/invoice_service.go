package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/invoicing"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
)

type invoiceService struct {
	BaseService
	autoStock bool
}

// InvoiceServiceOption configures the invoice service.
type InvoiceServiceOption func(*invoiceService)

// WithAutoStock posts stock adjustments for settled sales invoices and for
// purchase invoices as they are created.
func WithAutoStock(enabled bool) InvoiceServiceOption {
	return func(s *invoiceService) { s.autoStock = enabled }
}

// NewInvoiceService creates an invoice service over the dataset.
func NewInvoiceService(data *Dataset, opts ...InvoiceServiceOption) *invoiceService {
	s := &invoiceService{BaseService: BaseService{data: data}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*versioning.Entity[domain.Invoice], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	draft := invoicing.Draft{
		Number:          req.Number,
		Kind:            req.Kind,
		CounterpartyRef: req.CounterpartyRef,
		IssueDate:       req.IssueDate,
		Items:           dto.ToInvoiceItems(req.Items),
		Discount:        dto.ToAdjustment(req.Discount),
		Tax:             dto.ToAdjustment(req.Tax),
		DueDate:         req.DueDate,
		Notes:           req.Notes,
	}
	if err := s.checkRefs(draft, userID); err != nil {
		return nil, err
	}

	var opening *invoicing.Opening
	if req.InitialStatus != "" || req.InitialPayment != nil {
		opening = &invoicing.Opening{Status: req.InitialStatus}
		if opening.Status == "" {
			opening.Status = domain.StatusPartiallyPaid
		}
		if req.InitialPayment != nil {
			opening.Payment = dto.ToPaymentInput(*req.InitialPayment)
		}
		if err := liveRef(s.data.Accounts, "initialPayment.bankAccountRef", opening.Payment.BankAccountRef, userID); err != nil {
			return nil, err
		}
	}

	created, err := s.data.Engine.Create(ctx, userID, userID, draft, opening)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create invoice")
		return nil, err
	}
	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", created.ID),
		slog.String("kind", string(created.State.Kind)),
		slog.String("total", created.State.TotalAmount.StringFixed(2)))

	switch {
	case created.State.Kind == domain.Purchase:
		s.postStock(ctx, created, created.State.IssueDate, userID)
	case created.State.PaymentStatus == domain.StatusPaid:
		s.postStock(ctx, created, lastPaymentDate(created.State), userID)
	}
	return created, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string, userID string) (*versioning.Entity[domain.Invoice], error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	return owned(s.data.Invoices, invoiceID, userID)
}

func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams, asOf time.Time, userID string) ([]*versioning.Entity[domain.Invoice], error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if asOf.IsZero() {
		asOf = s.data.now()
	}
	mine := ownedBy[domain.Invoice](userID, params.IncludeDeleted)
	return s.data.Invoices.List(func(e *versioning.Entity[domain.Invoice]) bool {
		if !mine(e) {
			return false
		}
		if params.Kind != "" && e.State.Kind != params.Kind {
			return false
		}
		if params.CounterpartyRef != "" && e.State.CounterpartyRef != params.CounterpartyRef {
			return false
		}
		return params.Status == "" || invoicing.DeriveStatus(e.State, asOf) == params.Status
	}), nil
}

func (s *invoiceService) GetInvoiceHistory(ctx context.Context, invoiceID string, userID string) ([]versioning.Record, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	e, err := owned(s.data.Invoices, invoiceID, userID)
	if err != nil {
		return nil, err
	}
	return e.History(), nil
}

func (s *invoiceService) GetInvoiceStatus(ctx context.Context, invoiceID string, asOf time.Time, userID string) (domain.PaymentStatus, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if _, err := owned(s.data.Invoices, invoiceID, userID); err != nil {
		return "", err
	}
	if asOf.IsZero() {
		asOf = s.data.now()
	}
	return s.data.Engine.Status(invoiceID, asOf)
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, expectedVersion int, userID string) (*versioning.Entity[domain.Invoice], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Invoices, invoiceID, userID); err != nil {
		return nil, err
	}
	draft := invoicing.Draft{
		Number:          req.Number,
		CounterpartyRef: req.CounterpartyRef,
		IssueDate:       req.IssueDate,
		Items:           dto.ToInvoiceItems(req.Items),
		Discount:        dto.ToAdjustment(req.Discount),
		Tax:             dto.ToAdjustment(req.Tax),
		DueDate:         req.DueDate,
		Notes:           req.Notes,
	}
	if err := s.checkRefs(draft, userID); err != nil {
		return nil, err
	}

	updated, err := s.data.Engine.Update(ctx, invoiceID, userID, expectedVersion, draft)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to update invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	s.LogInfo(ctx, "Invoice updated", slog.String("invoice_id", invoiceID), slog.Int("version", updated.HistoryLen()))
	return updated, nil
}

func (s *invoiceService) RecordPayment(ctx context.Context, invoiceID string, req dto.PaymentRequest, userID string) (*versioning.Entity[domain.Invoice], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Invoices, invoiceID, userID); err != nil {
		return nil, err
	}
	if err := liveRef(s.data.Accounts, "bankAccountRef", req.BankAccountRef, userID); err != nil {
		return nil, err
	}

	updated, err := s.data.Engine.RecordPayment(ctx, invoiceID, userID, dto.ToPaymentInput(req))
	if err != nil {
		s.LogFailure(ctx, err, "Failed to record payment", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	s.LogInfo(ctx, "Payment recorded",
		slog.String("invoice_id", invoiceID),
		slog.String("amount", req.Amount.StringFixed(2)),
		slog.String("status", string(updated.State.PaymentStatus)))

	if updated.State.Kind == domain.Sales && updated.State.PaymentStatus == domain.StatusPaid {
		s.postStock(ctx, updated, lastPaymentDate(updated.State), userID)
	}
	return updated, nil
}

func (s *invoiceService) CancelInvoice(ctx context.Context, invoiceID string, userID string) (*versioning.Entity[domain.Invoice], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Invoices, invoiceID, userID); err != nil {
		return nil, err
	}
	cancelled, err := s.data.Engine.Cancel(ctx, invoiceID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to cancel invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	s.LogInfo(ctx, "Invoice cancelled", slog.String("invoice_id", invoiceID))
	return cancelled, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, invoiceID string, userID string) (*versioning.Entity[domain.Invoice], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Invoices, invoiceID, userID); err != nil {
		return nil, err
	}
	deleted, err := s.data.Engine.Delete(ctx, invoiceID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	s.LogInfo(ctx, "Invoice deleted", slog.String("invoice_id", invoiceID))
	return deleted, nil
}

func (s *invoiceService) RestoreInvoice(ctx context.Context, invoiceID string, userID string) (*versioning.Entity[domain.Invoice], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Invoices, invoiceID, userID); err != nil {
		return nil, err
	}
	restored, err := s.data.Engine.Restore(ctx, invoiceID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to restore invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	s.LogInfo(ctx, "Invoice restored", slog.String("invoice_id", invoiceID))
	return restored, nil
}

func (s *invoiceService) ComputeTotals(ctx context.Context, req dto.ComputeTotalsRequest) (domain.InvoiceTotals, error) {
	for i, item := range req.Items {
		if !item.Quantity.IsPositive() {
			return domain.InvoiceTotals{}, apperrors.NewValidationError("items["+strconv.Itoa(i)+"].quantity", "must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return domain.InvoiceTotals{}, apperrors.NewValidationError("items["+strconv.Itoa(i)+"].unitPrice", "must not be negative")
		}
	}
	discount, tax := dto.ToAdjustment(req.Discount), dto.ToAdjustment(req.Tax)
	if discount.Value.IsNegative() || tax.Value.IsNegative() {
		return domain.InvoiceTotals{}, apperrors.NewValidationError("adjustment.value", "must not be negative")
	}
	return invoicing.ComputeTotals(dto.ToInvoiceItems(req.Items), discount, tax), nil
}

func (s *invoiceService) checkRefs(d invoicing.Draft, userID string) error {
	if err := liveRef(s.data.Counterparties, "counterpartyRef", d.CounterpartyRef, userID); err != nil {
		return err
	}
	for i, item := range d.Items {
		if err := liveRef(s.data.Products, "items["+strconv.Itoa(i)+"].productRef", item.ProductRef, userID); err != nil {
			return err
		}
	}
	return nil
}

// postStock records the stock effect of an invoice when auto stock is on. A
// failure is logged; the invoice write has already happened.
func (s *invoiceService) postStock(ctx context.Context, inv *versioning.Entity[domain.Invoice], date time.Time, userID string) {
	if !s.autoStock {
		return
	}
	if err := s.data.Stock.PostInvoice(ctx, userID, inv.ID, inv.State, date); err != nil {
		s.LogError(ctx, err, "Failed to post invoice stock", slog.String("invoice_id", inv.ID))
		return
	}
	s.LogDebug(ctx, "Invoice stock posted", slog.String("invoice_id", inv.ID))
}

func lastPaymentDate(inv domain.Invoice) time.Time {
	var last time.Time
	for _, p := range inv.Payments {
		if p.Date.After(last) {
			last = p.Date
		}
	}
	if last.IsZero() {
		return inv.IssueDate
	}
	return last
}
