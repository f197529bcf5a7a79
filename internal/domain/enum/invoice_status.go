package enum

import (
	"fmt"
	"strings"
)

// InvoiceStatus represents the payment state of an invoice.
// PENDING, PARTIAL and PAID are derived from payments; CANCELLED is set explicitly.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

var invoiceStatuses = []InvoiceStatus{
	InvoiceStatusPending,
	InvoiceStatusPartial,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
}

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) IsValid() bool {
	for _, known := range invoiceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseInvoiceStatus parses a case-insensitive status string
func ParseInvoiceStatus(v string) (InvoiceStatus, error) {
	s := InvoiceStatus(strings.ToUpper(strings.TrimSpace(v)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown invoice status %q", v)
	}
	return s, nil
}

// PaymentMethod represents how a payment was tendered
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodInsurance    PaymentMethod = "INSURANCE"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobileMoney,
		PaymentMethodBankTransfer, PaymentMethodInsurance:
		return true
	}
	return false
}
