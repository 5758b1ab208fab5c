package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes what the user sold from what the user bought.
type InvoiceKind string

const (
	Sales    InvoiceKind = "SALES"
	Purchase InvoiceKind = "PURCHASE"
)

// PaymentStatus is the derived settlement state of an invoice.
type PaymentStatus string

const (
	StatusPending       PaymentStatus = "PENDING"
	StatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	StatusPaid          PaymentStatus = "PAID"
	StatusOverdue       PaymentStatus = "OVERDUE"
	StatusCancelled     PaymentStatus = "CANCELLED"
)

// IsOpen reports whether stock on an invoice in this status is still committed.
func (s PaymentStatus) IsOpen() bool {
	return s == StatusPending || s == StatusPartiallyPaid || s == StatusOverdue
}

// AdjustmentKind tags an Adjustment. The zero value means no adjustment.
type AdjustmentKind string

const (
	NoAdjustmentKind AdjustmentKind = ""
	PercentageKind   AdjustmentKind = "percentage"
	FixedKind        AdjustmentKind = "fixed"
)

// Adjustment is a discount or tax rule: nothing, a percentage, or a fixed amount.
type Adjustment struct {
	Kind  AdjustmentKind  `json:"type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	Value decimal.Decimal `json:"value" validate:"gte=0"`
}

func NoAdjustment() Adjustment                 { return Adjustment{} }
func Percentage(v decimal.Decimal) Adjustment { return Adjustment{Kind: PercentageKind, Value: v} }
func Fixed(v decimal.Decimal) Adjustment      { return Adjustment{Kind: FixedKind, Value: v} }

// IsNone reports whether the adjustment changes nothing.
func (a Adjustment) IsNone() bool { return a.Kind == NoAdjustmentKind }

// AppliedAdjustment is an Adjustment together with the amount it produced.
type AppliedAdjustment struct {
	Adjustment
	Amount decimal.Decimal `json:"amount"`
}

// InvoiceItem is one line of an invoice.
type InvoiceItem struct {
	ProductRef  string          `json:"productRef,omitempty"`
	Description string          `json:"description,omitempty" validate:"max=500"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	Unit        string          `json:"unit,omitempty"`
}

// InvoicePayment is money received (sales) or paid (purchase) against an invoice.
type InvoicePayment struct {
	ID             string          `json:"id" validate:"required"`
	Date           time.Time       `json:"date" validate:"required"`
	Amount         decimal.Decimal `json:"amount" validate:"gt=0"`
	Method         string          `json:"method,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	BankAccountRef string          `json:"bankAccountRef,omitempty"`
}

// Invoice is a sales or purchase invoice with its derived totals and payments.
type Invoice struct {
	Number          string            `json:"number,omitempty" validate:"max=100"`
	Kind            InvoiceKind       `json:"kind" validate:"required,oneof=SALES PURCHASE"`
	CounterpartyRef string            `json:"counterpartyRef,omitempty"`
	IssueDate       time.Time         `json:"issueDate" validate:"required"`
	Items           []InvoiceItem     `json:"items" validate:"required,min=1,dive"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	Discount        AppliedAdjustment `json:"discount"`
	Tax             AppliedAdjustment `json:"tax"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	DueDate         *time.Time        `json:"dueDate,omitempty"`
	PaymentStatus   PaymentStatus     `json:"paymentStatus" validate:"required"`
	Payments        []InvoicePayment  `json:"payments" validate:"dive"`
	Notes           string            `json:"notes,omitempty" validate:"max=2000"`
}

func (inv Invoice) Clone() Invoice {
	out := inv
	out.Items = append([]InvoiceItem(nil), inv.Items...)
	out.Payments = append([]InvoicePayment(nil), inv.Payments...)
	if inv.DueDate != nil {
		d := *inv.DueDate
		out.DueDate = &d
	}
	return out
}

// InvoiceTotals is the result of computing an invoice's amounts from its lines.
type InvoiceTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}
