package invoicing

import (
	"context"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Draft carries the user-editable fields of an invoice.
type Draft struct {
	Number          string
	Kind            domain.InvoiceKind
	CounterpartyRef string
	IssueDate       time.Time
	Items           []domain.InvoiceItem
	Discount        domain.Adjustment
	Tax             domain.Adjustment
	DueDate         *time.Time
	Notes           string
}

// PaymentInput is a payment to be recorded. A zero Date means the current day.
type PaymentInput struct {
	Date           time.Time
	Amount         decimal.Decimal
	Method         string
	Notes          string
	BankAccountRef string
}

// Opening describes how an invoice is settled at creation time. Status PAID
// settles the full total; PARTIALLY_PAID requires Payment.Amount. Payment.Amount
// is ignored for PAID.
type Opening struct {
	Status  domain.PaymentStatus
	Payment PaymentInput
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source used for status derivation and default payment dates.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// WithPaymentIDGenerator overrides payment id generation.
func WithPaymentIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) { e.newID = newID }
}

// Engine applies invoice mutations to a versioned invoice store.
type Engine struct {
	store *versioning.Store[domain.Invoice]
	clock func() time.Time
	newID func() string
}

// NewEngine returns an Engine over store.
func NewEngine(store *versioning.Store[domain.Invoice], opts ...EngineOption) *Engine {
	e := &Engine{store: store, clock: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the underlying invoice store for reads.
func (e *Engine) Store() *versioning.Store[domain.Invoice] {
	return e.store
}

// Create prices the draft and stores it. An opening payment, if any, is part of
// the single "created" record.
func (e *Engine) Create(ctx context.Context, ownerID, actorID string, d Draft, opening *Opening) (*versioning.Entity[domain.Invoice], error) {
	inv := Price(fromDraft(d))
	inv.PaymentStatus = domain.StatusPending

	if opening != nil {
		switch opening.Status {
		case "", domain.StatusPending:
			if !opening.Payment.Amount.IsZero() {
				return nil, apperrors.NewValidationError("initialPayment", "not allowed for a PENDING invoice")
			}
		case domain.StatusPaid:
			if inv.TotalAmount.IsPositive() {
				p := opening.Payment
				p.Amount = inv.TotalAmount
				inv.Payments = append(inv.Payments, e.payment(p, inv.IssueDate))
			}
		case domain.StatusPartiallyPaid:
			p := opening.Payment
			if !p.Amount.IsPositive() {
				return nil, apperrors.NewValidationError("initialPayment.amount", "must be positive for a partially paid invoice")
			}
			if p.Amount.GreaterThan(inv.TotalAmount.Add(Epsilon)) {
				return nil, &apperrors.OverpaymentError{Attempted: p.Amount, Remaining: inv.TotalAmount}
			}
			inv.Payments = append(inv.Payments, e.payment(p, inv.IssueDate))
		default:
			return nil, apperrors.NewValidationError("initialStatus", "must be PENDING, PARTIALLY_PAID or PAID")
		}
	}

	inv.PaymentStatus = DeriveStatus(inv, e.clock())
	return e.store.Create(ctx, ownerID, actorID, inv)
}

// Update replaces the editable fields and re-prices the invoice. Payments are kept.
// With expectedLen > 0 the write only succeeds against that history length.
func (e *Engine) Update(ctx context.Context, id, actorID string, expectedLen int, d Draft) (*versioning.Entity[domain.Invoice], error) {
	next := func(cur domain.Invoice) (domain.Invoice, error) {
		if d.Kind != "" && d.Kind != cur.Kind {
			return cur, apperrors.NewValidationError("kind", "cannot be changed")
		}
		upd := fromDraft(d)
		upd.Kind = cur.Kind
		upd.Payments = cur.Payments
		upd.PaymentStatus = cur.PaymentStatus
		upd = Price(upd)
		upd.PaymentStatus = DeriveStatus(upd, e.clock())
		return upd, nil
	}

	if expectedLen <= 0 {
		return e.store.Mutate(ctx, id, domain.ActionUpdated, actorID, next)
	}
	cur, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	state, err := next(cur.State)
	if err != nil {
		return nil, err
	}
	return e.store.ApplyExpected(ctx, id, expectedLen, domain.ActionUpdated, actorID, state)
}

// RecordPayment appends a payment and re-derives the status in one
// "payment_recorded" record. Payments beyond the remaining balance plus Epsilon
// are rejected with an OverpaymentError.
func (e *Engine) RecordPayment(ctx context.Context, id, actorID string, in PaymentInput) (*versioning.Entity[domain.Invoice], error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount", "must be positive")
	}
	return e.store.Mutate(ctx, id, domain.ActionPaymentRecorded, actorID, func(cur domain.Invoice) (domain.Invoice, error) {
		if cur.PaymentStatus == domain.StatusCancelled {
			return cur, apperrors.NewValidationError("paymentStatus", "invoice is cancelled")
		}
		remaining := Remaining(cur)
		if in.Amount.GreaterThan(remaining.Add(Epsilon)) {
			return cur, &apperrors.OverpaymentError{InvoiceID: id, Attempted: in.Amount, Remaining: remaining}
		}
		cur.Payments = append(cur.Payments, e.payment(in, e.clock()))
		cur.PaymentStatus = DeriveStatus(cur, e.clock())
		return cur, nil
	})
}

// Cancel marks the invoice CANCELLED. No later mutation changes that status.
func (e *Engine) Cancel(ctx context.Context, id, actorID string) (*versioning.Entity[domain.Invoice], error) {
	return e.store.Mutate(ctx, id, domain.ActionUpdated, actorID, func(cur domain.Invoice) (domain.Invoice, error) {
		if cur.PaymentStatus == domain.StatusCancelled {
			return cur, apperrors.NewValidationError("paymentStatus", "invoice is already cancelled")
		}
		cur.PaymentStatus = domain.StatusCancelled
		return cur, nil
	})
}

// Delete soft-deletes the invoice.
func (e *Engine) Delete(ctx context.Context, id, actorID string) (*versioning.Entity[domain.Invoice], error) {
	return e.store.SoftDelete(ctx, id, actorID)
}

// Restore undoes a soft delete.
func (e *Engine) Restore(ctx context.Context, id, actorID string) (*versioning.Entity[domain.Invoice], error) {
	return e.store.Restore(ctx, id, actorID)
}

// Status derives the payment status of an invoice as of the given time.
func (e *Engine) Status(id string, asOf time.Time) (domain.PaymentStatus, error) {
	inv, err := e.store.Get(id)
	if err != nil {
		return "", err
	}
	return DeriveStatus(inv.State, asOf), nil
}

func (e *Engine) payment(in PaymentInput, defaultDate time.Time) domain.InvoicePayment {
	date := in.Date
	if date.IsZero() {
		date = defaultDate
	}
	return domain.InvoicePayment{
		ID:             e.newID(),
		Date:           date.UTC(),
		Amount:         in.Amount,
		Method:         strings.TrimSpace(in.Method),
		Notes:          in.Notes,
		BankAccountRef: in.BankAccountRef,
	}
}

func fromDraft(d Draft) domain.Invoice {
	inv := domain.Invoice{
		Number:          strings.TrimSpace(d.Number),
		Kind:            d.Kind,
		CounterpartyRef: d.CounterpartyRef,
		IssueDate:       d.IssueDate.UTC(),
		Items:           append([]domain.InvoiceItem(nil), d.Items...),
		Discount:        domain.AppliedAdjustment{Adjustment: d.Discount},
		Tax:             domain.AppliedAdjustment{Adjustment: d.Tax},
		Notes:           d.Notes,
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		inv.DueDate = &due
	}
	return inv
}
