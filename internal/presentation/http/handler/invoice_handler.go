package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
)

// InvoiceHandler handles invoice and payment HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func toItemInputs(c *gin.Context, reqs []request.InvoiceItemRequest) ([]service.InvoiceItemInput, bool) {
	if len(reqs) == 0 {
		return nil, true
	}
	items := make([]service.InvoiceItemInput, len(reqs))
	for i, item := range reqs {
		serviceID, ok := optionalUUID(item.ServiceID)
		if !ok {
			response.BadRequest(c, fmt.Sprintf("Invalid service ID on item %d", i))
			return nil, false
		}
		items[i] = service.InvoiceItemInput{
			ServiceID:   serviceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
		}
	}
	return items, true
}

// CreateInvoice issues an invoice for a patient
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	appointmentID, ok := optionalUUID(req.AppointmentID)
	if !ok {
		response.BadRequest(c, "Invalid appointment ID")
		return
	}
	items, ok := toItemInputs(c, req.Items)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		PatientID:     uuid.MustParse(req.PatientID),
		AppointmentID: appointmentID,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		Items:         items,
		CreatedBy:     actor.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// ListInvoices lists invoices by status, patient and issue date
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var req request.InvoiceFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	var filter repository.InvoiceFilter
	if req.PatientID != "" {
		id := uuid.MustParse(req.PatientID)
		filter.PatientID = &id
	}
	if req.Status != "" {
		status := enum.InvoiceStatus(req.Status)
		filter.Status = &status
	}
	var ok bool
	if filter.From, ok = optionalTime(req.From); !ok {
		response.BadRequest(c, "Invalid from date")
		return
	}
	if filter.To, ok = optionalTime(req.To); !ok {
		response.BadRequest(c, "Invalid to date")
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// GetInvoice returns an invoice with items and payments
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// UpdateInvoice replaces the lines of an unpaid invoice
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	var req request.UpdateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	items, ok := toItemInputs(c, req.Items)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), &service.UpdateInvoiceInput{
		ID:      id,
		DueDate: req.DueDate,
		Notes:   req.Notes,
		Items:   items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// CancelInvoice voids an invoice that is not fully paid
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice cancelled successfully", invoice)
}

// DeleteInvoice deletes an invoice when the billing rules allow it
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice deleted successfully", nil)
}

// AddPayment records a payment against an invoice
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	var req request.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	output, err := h.invoiceService.AddPayment(c.Request.Context(), &service.AddPaymentInput{
		InvoiceID:  id,
		Amount:     req.Amount,
		Method:     enum.PaymentMethod(req.Method),
		Reference:  req.Reference,
		Notes:      req.Notes,
		PaidAt:     req.PaidAt,
		ReceivedBy: actor.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", output)
}

// ListPayments lists the payments of an invoice
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	payments, err := h.invoiceService.ListPayments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved successfully", gin.H{"payments": payments})
}

// GetEligibility reports whether the invoice can be deleted or paid, and why not
func (h *InvoiceHandler) GetEligibility(c *gin.Context) {
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	eligibility, err := h.invoiceService.GetEligibility(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice eligibility retrieved successfully", eligibility)
}
