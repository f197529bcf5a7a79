package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ClinicServiceRepository defines the interface for the clinic price list
type ClinicServiceRepository interface {
	Create(ctx context.Context, svc *entity.ClinicService) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ClinicService, error)
	GetByCode(ctx context.Context, code string) (*entity.ClinicService, error)
	Update(ctx context.Context, svc *entity.ClinicService) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string, activeOnly bool) ([]entity.ClinicService, int64, error)
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	PatientID *uuid.UUID
	Status    *enum.InvoiceStatus
	From      *time.Time
	To        *time.Time
}

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create inserts the invoice together with its items
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetByID loads the invoice with items and payments
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// Update saves invoice columns only, not associations
	Update(ctx context.Context, invoice *entity.Invoice) error
	ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []entity.InvoiceItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter InvoiceFilter, params *pagination.PaginationParams) ([]entity.Invoice, int64, error)

	// LastInvoiceNumber returns the most recently issued number of the current clinic, or "" if none
	LastInvoiceNumber(ctx context.Context) (string, error)
	// LockInvoiceSequence serializes number generation for the current clinic until the transaction ends
	LockInvoiceSequence(ctx context.Context) error
	// LockInvoice serializes changes to one invoice's payments until the transaction ends
	LockInvoice(ctx context.Context, id uuid.UUID) error

	CountByStatus(ctx context.Context) (map[enum.InvoiceStatus]int64, error)
	OutstandingBalance(ctx context.Context) (decimal.Decimal, error)
}

// PaymentRepository defines the interface for invoice payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error)
	CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	// SumBetween totals payments received in [from, to)
	SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}
