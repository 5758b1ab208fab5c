package services

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
)

// InvoiceReaderSvc defines read operations for invoices
type InvoiceReaderSvc interface {
	// GetInvoice retrieves an invoice owned by userID.
	GetInvoice(ctx context.Context, invoiceID string, userID string) (*versioning.Entity[domain.Invoice], error)

	// ListInvoices retrieves the invoices owned by userID matching params. Status
	// filters on the status derived as of asOf.
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams, asOf time.Time, userID string) ([]*versioning.Entity[domain.Invoice], error)

	// GetInvoiceHistory returns the version records of an invoice.
	GetInvoiceHistory(ctx context.Context, invoiceID string, userID string) ([]versioning.Record, error)

	// GetInvoiceStatus derives the payment status of an invoice as of asOf.
	GetInvoiceStatus(ctx context.Context, invoiceID string, asOf time.Time, userID string) (domain.PaymentStatus, error)
}

// InvoiceWriterSvc defines write operations for invoices
type InvoiceWriterSvc interface {
	// CreateInvoice prices and persists a new invoice, with its opening payment if any.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*versioning.Entity[domain.Invoice], error)

	// UpdateInvoice replaces the editable fields of an invoice. expectedVersion > 0 guards the write.
	UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, expectedVersion int, userID string) (*versioning.Entity[domain.Invoice], error)

	// RecordPayment appends a payment, rejecting overpayment.
	RecordPayment(ctx context.Context, invoiceID string, req dto.PaymentRequest, userID string) (*versioning.Entity[domain.Invoice], error)

	// CancelInvoice marks an invoice cancelled for good.
	CancelInvoice(ctx context.Context, invoiceID string, userID string) (*versioning.Entity[domain.Invoice], error)

	// DeleteInvoice soft-deletes an invoice.
	DeleteInvoice(ctx context.Context, invoiceID string, userID string) (*versioning.Entity[domain.Invoice], error)

	// RestoreInvoice undoes a soft delete.
	RestoreInvoice(ctx context.Context, invoiceID string, userID string) (*versioning.Entity[domain.Invoice], error)
}

// InvoiceCalculatorSvc defines pure invoice calculations
type InvoiceCalculatorSvc interface {
	// ComputeTotals prices invoice lines without storing anything.
	ComputeTotals(ctx context.Context, req dto.ComputeTotalsRequest) (domain.InvoiceTotals, error)
}

// InvoiceSvcFacade combines all invoice-related service interfaces
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
	InvoiceCalculatorSvc
}
