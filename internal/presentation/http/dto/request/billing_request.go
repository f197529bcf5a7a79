package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClinicServiceRequest represents a price list entry
type ClinicServiceRequest struct {
	Code        string          `json:"code" binding:"required,max=50"`
	Name        string          `json:"name" binding:"required,max=255"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Active      *bool           `json:"active"`
}

// InvoiceItemRequest is one invoice line. Description and unit price default
// from the referenced service.
type InvoiceItemRequest struct {
	ServiceID   string           `json:"service_id" binding:"omitempty,uuid"`
	Description string           `json:"description" binding:"max=500"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal  `json:"discount"`
}

// CreateInvoiceRequest represents a new invoice
type CreateInvoiceRequest struct {
	PatientID     string               `json:"patient_id" binding:"required,uuid"`
	AppointmentID string               `json:"appointment_id" binding:"omitempty,uuid"`
	DueDate       *time.Time           `json:"due_date"`
	Notes         *string              `json:"notes"`
	Items         []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest edits an invoice's details. Items, when sent, replace every line.
type UpdateInvoiceRequest struct {
	DueDate *time.Time           `json:"due_date"`
	Notes   *string              `json:"notes"`
	Items   []InvoiceItemRequest `json:"items" binding:"omitempty,dive"`
}

// PaymentRequest records a payment against an invoice
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"required,payment_method"`
	Reference *string         `json:"reference" binding:"omitempty,max=100"`
	Notes     *string         `json:"notes"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// InvoiceFilterRequest represents invoice list parameters
type InvoiceFilterRequest struct {
	PatientID string `form:"patient_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,invoice_status"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// AuditFilterRequest represents audit log list parameters
type AuditFilterRequest struct {
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	Resource string `form:"resource" binding:"omitempty,max=100"`
	From     string `form:"from"`
	To       string `form:"to"`
}
