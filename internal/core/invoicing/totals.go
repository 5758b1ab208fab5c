// Package invoicing computes invoice totals and payment state.
package invoicing

import (
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance used when comparing paid amounts against totals.
var Epsilon = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// LineTotal is quantity times unit price.
func LineTotal(item domain.InvoiceItem) decimal.Decimal {
	return item.Quantity.Mul(item.UnitPrice)
}

// AdjustmentAmount evaluates adj against base. Percentages are taken of base,
// fixed values are used as is. The result is rounded to cents.
func AdjustmentAmount(adj domain.Adjustment, base decimal.Decimal) decimal.Decimal {
	switch adj.Kind {
	case domain.PercentageKind:
		return base.Mul(adj.Value).Div(hundred).Round(2)
	case domain.FixedKind:
		return adj.Value.Round(2)
	default:
		return decimal.Zero
	}
}

// ComputeTotals derives subtotal, discount, tax and total from invoice lines.
// The discount is clamped to [0, subtotal]; tax is taken on the discounted base.
func ComputeTotals(items []domain.InvoiceItem, discount, tax domain.Adjustment) domain.InvoiceTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineTotal(item))
	}

	discountAmount := clamp(AdjustmentAmount(discount, subtotal), decimal.Zero, subtotal)
	taxAmount := decimal.Max(AdjustmentAmount(tax, subtotal.Sub(discountAmount)), decimal.Zero)

	return domain.InvoiceTotals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		TotalAmount:    subtotal.Sub(discountAmount).Add(taxAmount),
	}
}

// Price fills in line totals and every derived amount of inv from its items and
// adjustment rules.
func Price(inv domain.Invoice) domain.Invoice {
	out := inv.Clone()
	for i := range out.Items {
		out.Items[i].LineTotal = LineTotal(out.Items[i])
	}
	totals := ComputeTotals(out.Items, out.Discount.Adjustment, out.Tax.Adjustment)
	out.Subtotal = totals.Subtotal
	out.Discount.Amount = totals.DiscountAmount
	out.Tax.Amount = totals.TaxAmount
	out.TotalAmount = totals.TotalAmount
	return out
}

// AmountPaid sums the payments recorded on inv.
func AmountPaid(inv domain.Invoice) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// Remaining is the unpaid part of the total. It is negative for an overpaid invoice.
func Remaining(inv domain.Invoice) decimal.Decimal {
	return inv.TotalAmount.Sub(AmountPaid(inv))
}

// DeriveStatus returns the payment status of inv as of the given date.
// CANCELLED never changes. An invoice is overdue from the calendar day after its due date.
func DeriveStatus(inv domain.Invoice, asOf time.Time) domain.PaymentStatus {
	if inv.PaymentStatus == domain.StatusCancelled {
		return domain.StatusCancelled
	}

	paid := AmountPaid(inv)
	switch {
	case paid.GreaterThanOrEqual(inv.TotalAmount.Sub(Epsilon)):
		return domain.StatusPaid
	case inv.DueDate != nil && dateOf(asOf).After(dateOf(*inv.DueDate)) && paid.LessThan(inv.TotalAmount):
		return domain.StatusOverdue
	case paid.IsPositive():
		return domain.StatusPartiallyPaid
	default:
		return domain.StatusPending
	}
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(v, lo), hi)
}
