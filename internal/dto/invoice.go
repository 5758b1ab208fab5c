package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/invoicing"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/shopspring/decimal"
)

// AdjustmentRequest is a discount or tax rule. Omit it, or send an empty type,
// for no adjustment.
type AdjustmentRequest struct {
	Type  domain.AdjustmentKind `json:"type" binding:"omitempty,oneof=percentage fixed"`
	Value decimal.Decimal       `json:"value" binding:"gte=0" swaggertype:"string"`
}

// InvoiceItemRequest is one invoice line.
type InvoiceItemRequest struct {
	ProductRef  string          `json:"productRef"`
	Description string          `json:"description" binding:"max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0" swaggertype:"string"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"gte=0" swaggertype:"string"`
	Unit        string          `json:"unit"`
}

// PaymentRequest records money received or paid against an invoice.
type PaymentRequest struct {
	Date           *time.Time      `json:"date"`
	Amount         decimal.Decimal `json:"amount" swaggertype:"string"`
	Method         string          `json:"method"`
	Notes          string          `json:"notes"`
	BankAccountRef string          `json:"bankAccountRef"`
}

// CreateInvoiceRequest defines a new invoice. InitialStatus PAID settles the
// invoice in full; PARTIALLY_PAID requires InitialPayment.
type CreateInvoiceRequest struct {
	Number          string               `json:"number"`
	Kind            domain.InvoiceKind   `json:"kind" binding:"required,oneof=SALES PURCHASE"`
	CounterpartyRef string               `json:"counterpartyRef"`
	IssueDate       time.Time            `json:"issueDate" binding:"required"`
	Items           []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount        *AdjustmentRequest   `json:"discount"`
	Tax             *AdjustmentRequest   `json:"tax"`
	DueDate         *time.Time           `json:"dueDate"`
	Notes           string               `json:"notes"`
	InitialStatus   domain.PaymentStatus `json:"initialStatus" binding:"omitempty,oneof=PENDING PARTIALLY_PAID PAID"`
	InitialPayment  *PaymentRequest      `json:"initialPayment"`
}

// UpdateInvoiceRequest replaces the editable fields of an invoice. Payments are kept.
type UpdateInvoiceRequest struct {
	Number          string               `json:"number"`
	CounterpartyRef string               `json:"counterpartyRef"`
	IssueDate       time.Time            `json:"issueDate" binding:"required"`
	Items           []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount        *AdjustmentRequest   `json:"discount"`
	Tax             *AdjustmentRequest   `json:"tax"`
	DueDate         *time.Time           `json:"dueDate"`
	Notes           string               `json:"notes"`
}

// ComputeTotalsRequest prices invoice lines without storing anything.
type ComputeTotalsRequest struct {
	Items    []InvoiceItemRequest `json:"items" binding:"dive"`
	Discount *AdjustmentRequest   `json:"discount"`
	Tax      *AdjustmentRequest   `json:"tax"`
}

// ListInvoicesParams filters invoice listings.
type ListInvoicesParams struct {
	Kind            domain.InvoiceKind   `form:"kind" binding:"omitempty,oneof=SALES PURCHASE"`
	Status          domain.PaymentStatus `form:"status" binding:"omitempty,oneof=PENDING PARTIALLY_PAID PAID OVERDUE CANCELLED"`
	CounterpartyRef string               `form:"counterpartyRef"`
	IncludeDeleted  bool                 `form:"includeDeleted"`
}

// InvoiceResponse is an invoice with its metadata and derived payment figures.
type InvoiceResponse struct {
	EntityMeta
	domain.Invoice
	AmountPaid    decimal.Decimal      `json:"amountPaid" swaggertype:"string"`
	Remaining     decimal.Decimal      `json:"remaining" swaggertype:"string"`
	CurrentStatus domain.PaymentStatus `json:"currentStatus"`
}

// InvoiceStatusResponse is the derived status of an invoice at a date.
type InvoiceStatusResponse struct {
	InvoiceID string               `json:"invoiceID"`
	AsOf      time.Time            `json:"asOf"`
	Status    domain.PaymentStatus `json:"status"`
}

// ToAdjustment converts an optional adjustment request.
func ToAdjustment(req *AdjustmentRequest) domain.Adjustment {
	if req == nil {
		return domain.NoAdjustment()
	}
	switch req.Type {
	case domain.PercentageKind:
		return domain.Percentage(req.Value)
	case domain.FixedKind:
		return domain.Fixed(req.Value)
	default:
		return domain.NoAdjustment()
	}
}

// ToInvoiceItems converts request lines to domain lines.
func ToInvoiceItems(items []InvoiceItemRequest) []domain.InvoiceItem {
	out := make([]domain.InvoiceItem, len(items))
	for i, it := range items {
		out[i] = domain.InvoiceItem{
			ProductRef:  it.ProductRef,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Unit:        it.Unit,
		}
	}
	return out
}

// ToPaymentInput converts a payment request.
func ToPaymentInput(req PaymentRequest) invoicing.PaymentInput {
	in := invoicing.PaymentInput{
		Amount:         req.Amount,
		Method:         req.Method,
		Notes:          req.Notes,
		BankAccountRef: req.BankAccountRef,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	return in
}

// ToInvoiceResponse converts a stored invoice, deriving its status as of asOf.
func ToInvoiceResponse(e *versioning.Entity[domain.Invoice], asOf time.Time) InvoiceResponse {
	return InvoiceResponse{
		EntityMeta:    toMeta(e.Header, e.HistoryLen()),
		Invoice:       e.State,
		AmountPaid:    invoicing.AmountPaid(e.State),
		Remaining:     invoicing.Remaining(e.State),
		CurrentStatus: invoicing.DeriveStatus(e.State, asOf),
	}
}

// ToListInvoiceResponse converts a slice of stored invoices.
func ToListInvoiceResponse(es []*versioning.Entity[domain.Invoice], asOf time.Time) []InvoiceResponse {
	out := make([]InvoiceResponse, len(es))
	for i, e := range es {
		out[i] = ToInvoiceResponse(e, asOf)
	}
	return out
}
