package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/billing"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClinicService is a billable item on the clinic's price list
type ClinicService struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_clinic_services_tenant_code" json:"tenant_id"`
	Code        string          `gorm:"size:50;not null;uniqueIndex:idx_clinic_services_tenant_code" json:"code"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Active      bool            `gorm:"default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (s *ClinicService) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (ClinicService) TableName() string {
	return "clinic_services"
}

// Invoice bills a patient for services rendered
type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoices_tenant_number" json:"tenant_id"`
	InvoiceNumber string             `gorm:"size:32;not null;uniqueIndex:idx_invoices_tenant_number" json:"invoice_number"`
	PatientID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentID *uuid.UUID         `gorm:"type:uuid" json:"appointment_id,omitempty"`
	Status        enum.InvoiceStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Subtotal      decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	TotalDiscount decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"total_discount"`
	Tax           decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	Total         decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	AmountPaid    decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`
	Balance       decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	DueDate       *time.Time         `gorm:"type:date" json:"due_date,omitempty"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy     uuid.UUID          `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
	Patient  *Patient      `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Invoice) TableName() string {
	return "invoices"
}

// LineItems converts the invoice items for the billing calculator
func (i *Invoice) LineItems() []billing.LineItem {
	items := make([]billing.LineItem, 0, len(i.Items))
	for _, it := range i.Items {
		items = append(items, it.LineItem())
	}
	return items
}

// PaymentAmounts converts the recorded payments for the billing calculator
func (i *Invoice) PaymentAmounts() []billing.Payment {
	payments := make([]billing.Payment, 0, len(i.Payments))
	for _, p := range i.Payments {
		payments = append(payments, billing.Payment{Amount: p.Amount})
	}
	return payments
}

// ApplyTotals copies calculated totals onto the invoice
func (i *Invoice) ApplyTotals(t billing.Totals) {
	i.Subtotal = t.Subtotal
	i.TotalDiscount = t.TotalDiscount
	i.Tax = t.Tax
	i.Total = t.Total
}

// Reconcile recomputes amount paid and balance from the loaded payments and,
// unless the invoice is cancelled, derives its payment status.
func (i *Invoice) Reconcile() {
	i.AmountPaid = billing.CalculateTotalPaid(i.PaymentAmounts())
	i.Balance = billing.CalculateBalance(i.Total, i.AmountPaid)
	if i.Status != enum.InvoiceStatusCancelled {
		i.Status = billing.DeterminePaymentStatus(i.Total, i.AmountPaid)
	}
}

// InvoiceItem is a line on an invoice
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ServiceID   *uuid.UUID      `gorm:"type:uuid" json:"service_id,omitempty"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}

func (it InvoiceItem) LineItem() billing.LineItem {
	return billing.LineItem{
		Description: it.Description,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		Discount:    it.Discount,
	}
}

// Payment is money received against an invoice
type Payment struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	InvoiceID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount     decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method     enum.PaymentMethod `gorm:"size:20;not null" json:"method"`
	Reference  *string            `gorm:"size:255" json:"reference,omitempty"`
	Notes      *string            `gorm:"type:text" json:"notes,omitempty"`
	PaidAt     time.Time          `gorm:"not null" json:"paid_at"`
	ReceivedBy uuid.UUID          `gorm:"type:uuid" json:"received_by"`
	CreatedAt  time.Time          `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Payment) TableName() string {
	return "payments"
}
