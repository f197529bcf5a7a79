// Package billing computes invoice totals, payment status and the eligibility
// rules for deleting or paying an invoice. All money is fixed-point.
package billing

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

const (
	invoiceNumberPrefix = "INV-"
	firstInvoiceNumber  = "INV-000001"

	ReasonPaidInvoice        = "cannot delete a paid invoice"
	ReasonInvoiceHasPayments = "cannot delete an invoice with recorded payments"
	ReasonCancelledInvoice   = "cannot pay a cancelled invoice"
)

var invoiceNumberPattern = regexp.MustCompile(`^INV-(\d+)$`)

// LineItem is a single billable line on an invoice
type LineItem struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
}

// Payment is an amount received against an invoice
type Payment struct {
	Amount decimal.Decimal
}

// Totals is the aggregate of an invoice's line items
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// DeleteEligibility tells whether an invoice may be deleted and, if not, why
type DeleteEligibility struct {
	CanDelete bool   `json:"can_delete"`
	Reason    string `json:"reason,omitempty"`
}

// PaymentEligibility tells whether a payment may be recorded and, if not, why
type PaymentEligibility struct {
	CanAdd bool   `json:"can_add"`
	Reason string `json:"reason,omitempty"`
}

// CalculateItemTotal returns quantity*unitPrice - discount. The result is not
// clamped, so a discount larger than the line yields a negative total.
func CalculateItemTotal(item LineItem) decimal.Decimal {
	return gross(item).Sub(item.Discount)
}

func gross(item LineItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// CalculateInvoiceTotals sums the items. Tax is always zero.
func CalculateInvoiceTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(gross(item))
		discount = discount.Add(item.Discount)
	}
	tax := decimal.Zero
	return Totals{
		Subtotal:      subtotal,
		TotalDiscount: discount,
		Tax:           tax,
		Total:         subtotal.Sub(discount).Add(tax),
	}
}

// CalculateTotalPaid sums payment amounts
func CalculateTotalPaid(payments []Payment) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// CalculateBalance returns total - totalPaid. Overpayment gives a negative balance.
func CalculateBalance(total, totalPaid decimal.Decimal) decimal.Decimal {
	return total.Sub(totalPaid)
}

// DeterminePaymentStatus derives the payment status from what has been paid
func DeterminePaymentStatus(total, totalPaid decimal.Decimal) enum.InvoiceStatus {
	switch {
	case totalPaid.GreaterThanOrEqual(total):
		return enum.InvoiceStatusPaid
	case totalPaid.IsPositive():
		return enum.InvoiceStatusPartial
	default:
		return enum.InvoiceStatusPending
	}
}

// CanDeleteInvoice refuses paid invoices first, then any invoice holding payments.
func CanDeleteInvoice(status enum.InvoiceStatus, hasPayments bool) DeleteEligibility {
	if status == enum.InvoiceStatusPaid {
		return DeleteEligibility{CanDelete: false, Reason: ReasonPaidInvoice}
	}
	if hasPayments {
		return DeleteEligibility{CanDelete: false, Reason: ReasonInvoiceHasPayments}
	}
	return DeleteEligibility{CanDelete: true}
}

// CanAddPayment refuses only cancelled invoices. Paid invoices still accept payments.
func CanAddPayment(status enum.InvoiceStatus) PaymentEligibility {
	if status == enum.InvoiceStatusCancelled {
		return PaymentEligibility{CanAdd: false, Reason: ReasonCancelledInvoice}
	}
	return PaymentEligibility{CanAdd: true}
}

// GenerateInvoiceNumber returns the number following previous. An empty or
// malformed previous number restarts the sequence at INV-000001. The numeric
// part is zero padded to six digits and grows past that width when needed.
func GenerateInvoiceNumber(previous string) string {
	m := invoiceNumberPattern.FindStringSubmatch(previous)
	if m == nil {
		return firstInvoiceNumber
	}
	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil || n == ^uint64(0) {
		return firstInvoiceNumber
	}
	return fmt.Sprintf("%s%06d", invoiceNumberPrefix, n+1)
}
