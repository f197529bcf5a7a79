package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/billing"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

type invoiceFixture struct {
	svc      *InvoiceService
	invoices *mockInvoiceRepo
	payments *mockPaymentRepo
	services *mockClinicServiceRepo
	patient  *entity.Patient
	ctx      context.Context
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()

	patients := newMockPatientRepo()
	f := &invoiceFixture{
		payments: newMockPaymentRepo(),
		services: newMockClinicServiceRepo(),
		patient:  patients.add(&entity.Patient{MRN: "MRN-7", FirstName: "Wanjiru", LastName: "Mwangi"}),
		ctx:      infraRepo.WithTenant(context.Background(), testTenantID),
	}
	f.invoices = newMockInvoiceRepo(f.payments)
	f.svc = NewInvoiceService(f.invoices, f.payments, f.services, patients, newMockAppointmentRepo(), &passthroughTx{})
	f.svc.now = func() time.Time { return time.Date(2030, 3, 2, 10, 0, 0, 0, time.UTC) }
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func (f *invoiceFixture) create(t *testing.T, items ...InvoiceItemInput) *entity.Invoice {
	t.Helper()
	inv, err := f.svc.CreateInvoice(f.ctx, &CreateInvoiceInput{PatientID: f.patient.ID, Items: items})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	return inv
}

func consultation(price string) InvoiceItemInput {
	return InvoiceItemInput{Description: "Consultation", Quantity: 1, UnitPrice: decPtr(price)}
}

func TestCreateInvoice_TotalsAndNumbering(t *testing.T) {
	f := newInvoiceFixture(t)

	first := f.create(t,
		InvoiceItemInput{Description: "Consultation", Quantity: 1, UnitPrice: decPtr("1500")},
		InvoiceItemInput{Description: "Malaria test", Quantity: 2, UnitPrice: decPtr("450.50"), Discount: dec("100")},
	)
	second := f.create(t, consultation("1000"))

	if first.InvoiceNumber != "INV-000001" || second.InvoiceNumber != "INV-000002" {
		t.Fatalf("numbers = %s, %s", first.InvoiceNumber, second.InvoiceNumber)
	}
	if !first.Subtotal.Equal(dec("2401")) {
		t.Errorf("subtotal = %s", first.Subtotal)
	}
	if !first.TotalDiscount.Equal(dec("100")) {
		t.Errorf("discount = %s", first.TotalDiscount)
	}
	if !first.Total.Equal(dec("2301")) || !first.Balance.Equal(dec("2301")) {
		t.Errorf("total = %s balance = %s", first.Total, first.Balance)
	}
	if first.Status != enum.InvoiceStatusPending {
		t.Errorf("status = %s", first.Status)
	}
	if f.invoices.seqLocks != 2 {
		t.Errorf("expected the sequence lock on every create, got %d", f.invoices.seqLocks)
	}
}

func TestCreateInvoice_ContinuesAfterLastNumber(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.lastNumber = "INV-000999"

	if inv := f.create(t, consultation("10")); inv.InvoiceNumber != "INV-001000" {
		t.Errorf("number = %s", inv.InvoiceNumber)
	}
}

func TestCreateInvoice_DefaultsFromCatalog(t *testing.T) {
	f := newInvoiceFixture(t)
	svc := &entity.ClinicService{Code: "XRAY", Name: "Chest X-ray", Price: dec("3200"), Active: true}
	_ = f.services.Create(f.ctx, svc)

	inv := f.create(t, InvoiceItemInput{ServiceID: &svc.ID, Quantity: 1})
	if len(inv.Items) != 1 {
		t.Fatalf("items = %d", len(inv.Items))
	}
	item := inv.Items[0]
	if item.Description != "Chest X-ray" || !item.UnitPrice.Equal(dec("3200")) {
		t.Errorf("item = %+v", item)
	}

	override := f.create(t, InvoiceItemInput{ServiceID: &svc.ID, Quantity: 1, UnitPrice: decPtr("2800"), Description: "X-ray (follow-up)"})
	if !override.Total.Equal(dec("2800")) || override.Items[0].Description != "X-ray (follow-up)" {
		t.Errorf("explicit price or description ignored: %+v", override.Items[0])
	}
}

func TestCreateInvoice_ItemValidation(t *testing.T) {
	tests := []struct {
		name  string
		items []InvoiceItemInput
		code  int
		field string
	}{
		{"no items", nil, http.StatusBadRequest, ""},
		{"missing description", []InvoiceItemInput{{Quantity: 1, UnitPrice: decPtr("10")}}, http.StatusUnprocessableEntity, "items[0].description"},
		{"zero quantity", []InvoiceItemInput{{Description: "x", Quantity: 0, UnitPrice: decPtr("10")}}, http.StatusUnprocessableEntity, "items[0].quantity"},
		{"missing price", []InvoiceItemInput{consultation("1"), {Description: "x", Quantity: 1}}, http.StatusUnprocessableEntity, "items[1].unit_price"},
		{"negative price", []InvoiceItemInput{{Description: "x", Quantity: 1, UnitPrice: decPtr("-1")}}, http.StatusUnprocessableEntity, "items[0].unit_price"},
		{"negative discount", []InvoiceItemInput{{Description: "x", Quantity: 1, UnitPrice: decPtr("5"), Discount: dec("-1")}}, http.StatusUnprocessableEntity, "items[0].discount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInvoiceFixture(t)
			_, err := f.svc.CreateInvoice(f.ctx, &CreateInvoiceInput{PatientID: f.patient.ID, Items: tt.items})
			if errorCode(err) != tt.code {
				t.Fatalf("expected %d, got %v", tt.code, err)
			}
			if tt.field != "" {
				appErr := err.(*apperror.AppError)
				if len(appErr.Errors) != 1 || appErr.Errors[0].Field != tt.field {
					t.Errorf("field errors = %+v", appErr.Errors)
				}
			}
			if len(f.invoices.invoices) != 0 {
				t.Error("invalid invoice must not be stored")
			}
		})
	}
}

func TestCreateInvoice_UnknownPatient(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.svc.CreateInvoice(f.ctx, &CreateInvoiceInput{PatientID: uuid.New(), Items: []InvoiceItemInput{consultation("10")}})
	if errorCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestAddPayment_PartialThenPaid(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, consultation("1000"))

	out, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: inv.ID, Amount: dec("400"), Method: enum.PaymentMethodMobileMoney})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if out.Invoice.Status != enum.InvoiceStatusPartial {
		t.Errorf("status = %s, want PARTIAL", out.Invoice.Status)
	}
	if !out.Invoice.AmountPaid.Equal(dec("400")) || !out.Invoice.Balance.Equal(dec("600")) {
		t.Errorf("paid = %s balance = %s", out.Invoice.AmountPaid, out.Invoice.Balance)
	}
	if !out.Payment.PaidAt.Equal(f.svc.now()) {
		t.Errorf("paid_at = %v", out.Payment.PaidAt)
	}

	out, err = f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: inv.ID, Amount: dec("600"), Method: enum.PaymentMethodCash})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if out.Invoice.Status != enum.InvoiceStatusPaid || !out.Invoice.Balance.IsZero() {
		t.Errorf("status = %s balance = %s", out.Invoice.Status, out.Invoice.Balance)
	}
	if f.invoices.itemLocks[inv.ID] != 2 {
		t.Errorf("expected the invoice lock for each payment, got %d", f.invoices.itemLocks[inv.ID])
	}
}

func TestAddPayment_PaidInvoiceStillAcceptsPayment(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, consultation("100"))

	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: inv.ID, Amount: dec("100"), Method: enum.PaymentMethodCard}); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	out, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: inv.ID, Amount: dec("20"), Method: enum.PaymentMethodCard})
	if err != nil {
		t.Fatalf("overpayment rejected: %v", err)
	}
	if out.Invoice.Status != enum.InvoiceStatusPaid || !out.Invoice.Balance.Equal(dec("-20")) {
		t.Errorf("status = %s balance = %s", out.Invoice.Status, out.Invoice.Balance)
	}
}

func TestAddPayment_Rejections(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, consultation("100"))

	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: inv.ID, Amount: dec("0"), Method: enum.PaymentMethodCash}); errorCode(err) != http.StatusBadRequest {
		t.Errorf("zero amount: expected 400, got %v", err)
	}
	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: inv.ID, Amount: dec("0.004"), Method: enum.PaymentMethodCash}); errorCode(err) != http.StatusBadRequest {
		t.Errorf("amount rounding to zero: expected 400, got %v", err)
	}
	if n, _ := f.payments.CountByInvoice(f.ctx, inv.ID); n != 0 {
		t.Errorf("rejected payments were stored: %d", n)
	}
	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: inv.ID, Amount: dec("10"), Method: "BARTER"}); errorCode(err) != http.StatusBadRequest {
		t.Errorf("unknown method: expected 400, got %v", err)
	}
	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: uuid.New(), Amount: dec("10"), Method: enum.PaymentMethodCash}); errorCode(err) != http.StatusNotFound {
		t.Errorf("unknown invoice: expected 404, got %v", err)
	}

	if _, err := f.svc.CancelInvoice(f.ctx, inv.ID); err != nil {
		t.Fatalf("CancelInvoice: %v", err)
	}
	_, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: inv.ID, Amount: dec("10"), Method: enum.PaymentMethodCash})
	if errorCode(err) != http.StatusBadRequest || err.Error() != billing.ReasonCancelledInvoice {
		t.Errorf("cancelled invoice: expected 400 %q, got %v", billing.ReasonCancelledInvoice, err)
	}
}

func TestDeleteInvoice_Eligibility(t *testing.T) {
	f := newInvoiceFixture(t)

	dust := f.create(t, consultation("100"))
	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: dust.ID, Amount: dec("0.004"), Method: enum.PaymentMethodCard}); err == nil {
		t.Fatal("expected sub-cent payment to be rejected")
	}
	if err := f.svc.DeleteInvoice(f.ctx, dust.ID); err != nil {
		t.Fatalf("delete invoice after rejected payment: %v", err)
	}

	clean := f.create(t, consultation("100"))
	if err := f.svc.DeleteInvoice(f.ctx, clean.ID); err != nil {
		t.Fatalf("delete unpaid invoice: %v", err)
	}

	partial := f.create(t, consultation("100"))
	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: partial.ID, Amount: dec("50"), Method: enum.PaymentMethodCash}); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	err := f.svc.DeleteInvoice(f.ctx, partial.ID)
	if errorCode(err) != http.StatusBadRequest || err.Error() != billing.ReasonInvoiceHasPayments {
		t.Errorf("expected %q, got %v", billing.ReasonInvoiceHasPayments, err)
	}

	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: partial.ID, Amount: dec("50"), Method: enum.PaymentMethodCash}); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	err = f.svc.DeleteInvoice(f.ctx, partial.ID)
	if errorCode(err) != http.StatusBadRequest || err.Error() != billing.ReasonPaidInvoice {
		t.Errorf("expected %q, got %v", billing.ReasonPaidInvoice, err)
	}
}

func TestGetEligibility(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, consultation("100"))

	got, err := f.svc.GetEligibility(f.ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetEligibility: %v", err)
	}
	if !got.Delete.CanDelete || !got.Payment.CanAdd {
		t.Errorf("fresh invoice eligibility = %+v", got)
	}

	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: inv.ID, Amount: dec("10"), Method: enum.PaymentMethodCash}); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	got, _ = f.svc.GetEligibility(f.ctx, inv.ID)
	if got.Delete.CanDelete || got.Delete.Reason != billing.ReasonInvoiceHasPayments {
		t.Errorf("delete eligibility = %+v", got.Delete)
	}
}

func TestCancelInvoice(t *testing.T) {
	f := newInvoiceFixture(t)

	inv := f.create(t, consultation("100"))
	cancelled, err := f.svc.CancelInvoice(f.ctx, inv.ID)
	if err != nil {
		t.Fatalf("CancelInvoice: %v", err)
	}
	if cancelled.Status != enum.InvoiceStatusCancelled {
		t.Errorf("status = %s", cancelled.Status)
	}
	if _, err := f.svc.CancelInvoice(f.ctx, inv.ID); err != nil {
		t.Errorf("cancelling twice should be a no-op, got %v", err)
	}

	paid := f.create(t, consultation("100"))
	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: paid.ID, Amount: dec("100"), Method: enum.PaymentMethodCash}); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if _, err := f.svc.CancelInvoice(f.ctx, paid.ID); errorCode(err) != http.StatusBadRequest {
		t.Errorf("expected 400 cancelling a paid invoice, got %v", err)
	}
}

func TestUpdateInvoice_ReplacesItems(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, consultation("100"))

	updated, err := f.svc.UpdateInvoice(f.ctx, &UpdateInvoiceInput{
		ID:    inv.ID,
		Notes: strPtr("insurance pre-authorised"),
		Items: []InvoiceItemInput{consultation("100"), {Description: "Dressing", Quantity: 3, UnitPrice: decPtr("50")}},
	})
	if err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	if len(updated.Items) != 2 || !updated.Total.Equal(dec("250")) || !updated.Balance.Equal(dec("250")) {
		t.Errorf("items=%d total=%s balance=%s", len(updated.Items), updated.Total, updated.Balance)
	}
	if updated.InvoiceNumber != inv.InvoiceNumber {
		t.Error("editing must keep the invoice number")
	}
}

func TestUpdateInvoice_WithoutItemsKeepsLines(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, consultation("100"), consultation("40"))

	updated, err := f.svc.UpdateInvoice(f.ctx, &UpdateInvoiceInput{ID: inv.ID, Notes: strPtr("send to employer")})
	if err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	if len(updated.Items) != 2 || !updated.Total.Equal(dec("140")) {
		t.Errorf("items=%d total=%s", len(updated.Items), updated.Total)
	}
	if updated.Notes == nil || *updated.Notes != "send to employer" {
		t.Errorf("notes = %v", updated.Notes)
	}
}

func TestUpdateInvoice_RefusedWithPayments(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t, consultation("100"))
	if _, err := f.svc.AddPayment(f.ctx, &AddPaymentInput{InvoiceID: inv.ID, Amount: dec("10"), Method: enum.PaymentMethodCash}); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	_, err := f.svc.UpdateInvoice(f.ctx, &UpdateInvoiceInput{ID: inv.ID, Items: []InvoiceItemInput{consultation("5")}})
	if errorCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if stored := f.invoices.invoices[inv.ID]; !stored.Total.Equal(dec("100")) {
		t.Errorf("refused edit changed the total to %s", stored.Total)
	}
}
