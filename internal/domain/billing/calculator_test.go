package billing

import (
	"testing"

	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func TestCalculateItemTotal(t *testing.T) {
	cases := []struct {
		name string
		item LineItem
		want string
	}{
		{"no discount", LineItem{Quantity: 3, UnitPrice: d("1500.50"), Discount: decimal.Zero}, "4501.50"},
		{"with discount", LineItem{Quantity: 2, UnitPrice: d("100"), Discount: d("25.25")}, "174.75"},
		{"zero quantity", LineItem{Quantity: 0, UnitPrice: d("100"), Discount: decimal.Zero}, "0"},
		{"discount exceeds line", LineItem{Quantity: 1, UnitPrice: d("10"), Discount: d("15")}, "-5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertDecimal(t, "CalculateItemTotal", CalculateItemTotal(tc.item), d(tc.want))
		})
	}
}

func TestCalculateInvoiceTotals(t *testing.T) {
	items := []LineItem{
		{Description: "Consultation", Quantity: 1, UnitPrice: d("2500"), Discount: d("500")},
		{Description: "Blood panel", Quantity: 2, UnitPrice: d("0.10"), Discount: d("0.05")},
	}
	totals := CalculateInvoiceTotals(items)
	assertDecimal(t, "Subtotal", totals.Subtotal, d("2500.20"))
	assertDecimal(t, "TotalDiscount", totals.TotalDiscount, d("500.05"))
	assertDecimal(t, "Tax", totals.Tax, decimal.Zero)
	assertDecimal(t, "Total", totals.Total, d("2000.15"))

	empty := CalculateInvoiceTotals(nil)
	assertDecimal(t, "empty Subtotal", empty.Subtotal, decimal.Zero)
	assertDecimal(t, "empty Total", empty.Total, decimal.Zero)
}

func TestDecimalHasNoFloatDrift(t *testing.T) {
	items := make([]LineItem, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, LineItem{Quantity: 1, UnitPrice: d("0.1"), Discount: decimal.Zero})
	}
	assertDecimal(t, "Total", CalculateInvoiceTotals(items).Total, d("1"))
}

func TestCalculateTotalPaidAndBalance(t *testing.T) {
	paid := CalculateTotalPaid([]Payment{{Amount: d("100.10")}, {Amount: d("50.20")}})
	assertDecimal(t, "CalculateTotalPaid", paid, d("150.30"))
	assertDecimal(t, "empty CalculateTotalPaid", CalculateTotalPaid(nil), decimal.Zero)

	assertDecimal(t, "balance", CalculateBalance(d("200"), paid), d("49.70"))
	assertDecimal(t, "overpaid balance", CalculateBalance(d("100"), d("120")), d("-20"))
}

func TestDeterminePaymentStatus(t *testing.T) {
	cases := []struct {
		total, paid string
		want        enum.InvoiceStatus
	}{
		{"100", "0", enum.InvoiceStatusPending},
		{"100", "0.01", enum.InvoiceStatusPartial},
		{"100", "100", enum.InvoiceStatusPaid},
		{"100", "150", enum.InvoiceStatusPaid},
		{"0", "0", enum.InvoiceStatusPaid},
	}
	for _, tc := range cases {
		if got := DeterminePaymentStatus(d(tc.total), d(tc.paid)); got != tc.want {
			t.Fatalf("DeterminePaymentStatus(%s, %s) = %s, want %s", tc.total, tc.paid, got, tc.want)
		}
	}
}

func TestCanDeleteInvoice(t *testing.T) {
	cases := []struct {
		name        string
		status      enum.InvoiceStatus
		hasPayments bool
		want        DeleteEligibility
	}{
		{"pending without payments", enum.InvoiceStatusPending, false, DeleteEligibility{CanDelete: true}},
		{"cancelled without payments", enum.InvoiceStatusCancelled, false, DeleteEligibility{CanDelete: true}},
		{"partial with payments", enum.InvoiceStatusPartial, true, DeleteEligibility{Reason: ReasonInvoiceHasPayments}},
		{"paid with payments", enum.InvoiceStatusPaid, true, DeleteEligibility{Reason: ReasonPaidInvoice}},
		{"paid without payments", enum.InvoiceStatusPaid, false, DeleteEligibility{Reason: ReasonPaidInvoice}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanDeleteInvoice(tc.status, tc.hasPayments); got != tc.want {
				t.Fatalf("CanDeleteInvoice() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestCanAddPayment(t *testing.T) {
	for _, status := range []enum.InvoiceStatus{enum.InvoiceStatusPending, enum.InvoiceStatusPartial, enum.InvoiceStatusPaid} {
		if got := CanAddPayment(status); !got.CanAdd || got.Reason != "" {
			t.Fatalf("CanAddPayment(%s) = %+v, want allowed", status, got)
		}
	}
	got := CanAddPayment(enum.InvoiceStatusCancelled)
	if got.CanAdd || got.Reason != ReasonCancelledInvoice {
		t.Fatalf("CanAddPayment(CANCELLED) = %+v", got)
	}
}

func TestGenerateInvoiceNumber(t *testing.T) {
	cases := map[string]string{
		"":                            "INV-000001",
		"INV-000001":                  "INV-000002",
		"INV-000099":                  "INV-000100",
		"INV-999999":                  "INV-1000000",
		"INV-1000000":                 "INV-1000001",
		"INV-7":                       "INV-000008",
		"garbage":                     "INV-000001",
		"INV-":                        "INV-000001",
		"INV-12a":                     "INV-000001",
		"inv-000004":                  "INV-000001",
		"X-INV-000004":                "INV-000001",
		"INV-99999999999999999999999": "INV-000001",
	}
	for prev, want := range cases {
		if got := GenerateInvoiceNumber(prev); got != want {
			t.Fatalf("GenerateInvoiceNumber(%q) = %q, want %q", prev, got, want)
		}
	}
}
