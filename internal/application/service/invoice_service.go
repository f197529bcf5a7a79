package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/billing"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// InvoiceService bills patients and records payments
type InvoiceService struct {
	invoiceRepo     repository.InvoiceRepository
	paymentRepo     repository.PaymentRepository
	serviceRepo     repository.ClinicServiceRepository
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	tx              repository.Transactor
	now             func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	serviceRepo repository.ClinicServiceRepository,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	tx repository.Transactor,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:     invoiceRepo,
		paymentRepo:     paymentRepo,
		serviceRepo:     serviceRepo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		tx:              tx,
		now:             time.Now,
	}
}

// InvoiceItemInput is one line of an invoice. When ServiceID is set the
// description and unit price default to the catalog entry.
type InvoiceItemInput struct {
	ServiceID   *uuid.UUID
	Description string
	Quantity    int
	UnitPrice   *decimal.Decimal
	Discount    decimal.Decimal
}

// CreateInvoiceInput represents the create invoice input
type CreateInvoiceInput struct {
	PatientID     uuid.UUID
	AppointmentID *uuid.UUID
	DueDate       *time.Time
	Notes         *string
	Items         []InvoiceItemInput
	CreatedBy     uuid.UUID
}

// CreateInvoice prices the items and issues the next invoice number of the clinic.
// Number allocation and insert share a transaction holding the clinic's sequence lock.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}

	patient, err := s.patientRepo.GetByID(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NewNotFoundError("Patient")
	}

	if input.AppointmentID != nil {
		appointment, err := s.appointmentRepo.GetByID(ctx, *input.AppointmentID)
		if err != nil {
			return nil, err
		}
		if appointment == nil {
			return nil, apperror.NewNotFoundError("Appointment")
		}
		if appointment.PatientID != patient.ID {
			return nil, apperror.NewBadRequestError("Appointment belongs to a different patient")
		}
	}

	items, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	invoice := &entity.Invoice{
		TenantID:      tenantID,
		PatientID:     patient.ID,
		AppointmentID: input.AppointmentID,
		Status:        enum.InvoiceStatusPending,
		DueDate:       input.DueDate,
		Notes:         input.Notes,
		CreatedBy:     input.CreatedBy,
		Items:         items,
	}
	invoice.ApplyTotals(billing.CalculateInvoiceTotals(invoice.LineItems()))
	invoice.AmountPaid = decimal.Zero
	invoice.Balance = billing.CalculateBalance(invoice.Total, invoice.AmountPaid)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.LockInvoiceSequence(ctx); err != nil {
			return fmt.Errorf("lock invoice sequence: %w", err)
		}
		last, err := s.invoiceRepo.LastInvoiceNumber(ctx)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = billing.GenerateInvoiceNumber(last)
		return s.invoiceRepo.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return s.GetInvoice(ctx, invoice.ID)
}

func (s *InvoiceService) buildItems(ctx context.Context, inputs []InvoiceItemInput) ([]entity.InvoiceItem, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewBadRequestError("An invoice needs at least one item")
	}

	items := make([]entity.InvoiceItem, 0, len(inputs))
	for i, in := range inputs {
		item := entity.InvoiceItem{
			ServiceID:   in.ServiceID,
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			Discount:    in.Discount.Round(2),
		}
		if in.UnitPrice != nil {
			item.UnitPrice = in.UnitPrice.Round(2)
		}

		if in.ServiceID != nil {
			svc, err := s.serviceRepo.GetByID(ctx, *in.ServiceID)
			if err != nil {
				return nil, err
			}
			if svc == nil {
				return nil, apperror.NewNotFoundError("Service")
			}
			if item.Description == "" {
				item.Description = svc.Name
			}
			if in.UnitPrice == nil {
				item.UnitPrice = svc.Price
			}
		}

		if item.Description == "" {
			return nil, itemError(i, "description", "description is required")
		}
		if item.Quantity < 1 {
			return nil, itemError(i, "quantity", "quantity must be at least 1")
		}
		if in.UnitPrice == nil && in.ServiceID == nil {
			return nil, itemError(i, "unit_price", "unit price is required")
		}
		if item.UnitPrice.IsNegative() {
			return nil, itemError(i, "unit_price", "unit price cannot be negative")
		}
		if item.Discount.IsNegative() {
			return nil, itemError(i, "discount", "discount cannot be negative")
		}

		item.Total = billing.CalculateItemTotal(item.LineItem())
		items = append(items, item)
	}
	return items, nil
}

func itemError(index int, field, message string) error {
	return apperror.NewValidationError([]apperror.FieldError{
		{Field: fmt.Sprintf("items[%d].%s", index, field), Message: message},
	})
}

// GetInvoice retrieves an invoice with its items and payments
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices lists invoices matching the filter
func (s *InvoiceService) ListInvoices(ctx context.Context, filter repository.InvoiceFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	params.Validate()
	invoices, total, err := s.invoiceRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(invoices, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateInvoiceInput represents the update invoice input. Empty Items keeps the current lines.
type UpdateInvoiceInput struct {
	ID      uuid.UUID
	DueDate *time.Time
	Notes   *string
	Items   []InvoiceItemInput
}

// UpdateInvoice replaces the lines, notes and due date of an unpaid invoice
func (s *InvoiceService) UpdateInvoice(ctx context.Context, input *UpdateInvoiceInput) (*entity.Invoice, error) {
	var items []entity.InvoiceItem
	if len(input.Items) > 0 {
		var err error
		if items, err = s.buildItems(ctx, input.Items); err != nil {
			return nil, err
		}
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.LockInvoice(ctx, input.ID); err != nil {
			return fmt.Errorf("lock invoice: %w", err)
		}
		invoice, err := s.GetInvoice(ctx, input.ID)
		if err != nil {
			return err
		}

		switch {
		case invoice.Status == enum.InvoiceStatusPaid:
			return apperror.NewBadRequestError("cannot edit a paid invoice")
		case invoice.Status == enum.InvoiceStatusCancelled:
			return apperror.NewBadRequestError("cannot edit a cancelled invoice")
		case len(invoice.Payments) > 0:
			return apperror.NewBadRequestError("cannot edit an invoice with recorded payments")
		}

		invoice.DueDate = input.DueDate
		invoice.Notes = input.Notes
		if items != nil {
			if err := s.invoiceRepo.ReplaceItems(ctx, invoice.ID, items); err != nil {
				return err
			}
			invoice.Items = items
			invoice.ApplyTotals(billing.CalculateInvoiceTotals(invoice.LineItems()))
			invoice.Balance = billing.CalculateBalance(invoice.Total, invoice.AmountPaid)
		}
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return s.GetInvoice(ctx, input.ID)
}

// CancelInvoice voids an invoice. Paid invoices cannot be cancelled.
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.LockInvoice(ctx, id); err != nil {
			return fmt.Errorf("lock invoice: %w", err)
		}
		invoice, err := s.GetInvoice(ctx, id)
		if err != nil {
			return err
		}

		switch invoice.Status {
		case enum.InvoiceStatusPaid:
			return apperror.NewBadRequestError("cannot cancel a paid invoice")
		case enum.InvoiceStatusCancelled:
			return nil
		}

		invoice.Status = enum.InvoiceStatusCancelled
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return s.GetInvoice(ctx, id)
}

// DeleteInvoice removes an invoice that is unpaid and has no payments
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.LockInvoice(ctx, id); err != nil {
			return fmt.Errorf("lock invoice: %w", err)
		}
		invoice, err := s.GetInvoice(ctx, id)
		if err != nil {
			return err
		}

		count, err := s.paymentRepo.CountByInvoice(ctx, id)
		if err != nil {
			return err
		}
		if eligibility := billing.CanDeleteInvoice(invoice.Status, count > 0); !eligibility.CanDelete {
			return apperror.NewBadRequestError(eligibility.Reason)
		}

		return s.invoiceRepo.Delete(ctx, id)
	})
}

// AddPaymentInput represents the add payment input
type AddPaymentInput struct {
	InvoiceID  uuid.UUID
	Amount     decimal.Decimal
	Method     enum.PaymentMethod
	Reference  *string
	Notes      *string
	PaidAt     *time.Time
	ReceivedBy uuid.UUID
}

// AddPaymentOutput is the recorded payment and the invoice after reconciliation
type AddPaymentOutput struct {
	Payment *entity.Payment `json:"payment"`
	Invoice *entity.Invoice `json:"invoice"`
}

// AddPayment records money received and recomputes amount paid, balance and status
func (s *InvoiceService) AddPayment(ctx context.Context, input *AddPaymentInput) (*AddPaymentOutput, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperror.NewBadRequestError("Payment amount must be greater than zero")
	}
	if !input.Method.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid payment method")
	}

	paidAt := s.now()
	if input.PaidAt != nil {
		paidAt = *input.PaidAt
	}

	payment := &entity.Payment{
		TenantID:   tenantID,
		InvoiceID:  input.InvoiceID,
		Amount:     amount,
		Method:     input.Method,
		Reference:  input.Reference,
		Notes:      input.Notes,
		PaidAt:     paidAt,
		ReceivedBy: input.ReceivedBy,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.LockInvoice(ctx, input.InvoiceID); err != nil {
			return fmt.Errorf("lock invoice: %w", err)
		}
		invoice, err := s.GetInvoice(ctx, input.InvoiceID)
		if err != nil {
			return err
		}

		if eligibility := billing.CanAddPayment(invoice.Status); !eligibility.CanAdd {
			return apperror.NewBadRequestError(eligibility.Reason)
		}

		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		invoice.Payments = append(invoice.Payments, *payment)
		invoice.Reconcile()
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	invoice, err := s.GetInvoice(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	return &AddPaymentOutput{Payment: payment, Invoice: invoice}, nil
}

// ListPayments lists the payments recorded against an invoice
func (s *InvoiceService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	if _, err := s.GetInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByInvoice(ctx, invoiceID)
}

// InvoiceEligibility tells a client which actions an invoice currently allows
type InvoiceEligibility struct {
	Delete  billing.DeleteEligibility  `json:"delete"`
	Payment billing.PaymentEligibility `json:"payment"`
}

// GetEligibility evaluates the delete and payment rules for an invoice
func (s *InvoiceService) GetEligibility(ctx context.Context, id uuid.UUID) (*InvoiceEligibility, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.paymentRepo.CountByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceEligibility{
		Delete:  billing.CanDeleteInvoice(invoice.Status, count > 0),
		Payment: billing.CanAddPayment(invoice.Status),
	}, nil
}
