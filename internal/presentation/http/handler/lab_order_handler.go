package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
)

// LabOrderHandler handles lab and imaging order HTTP requests
type LabOrderHandler struct {
	labOrderService *service.LabOrderService
}

// NewLabOrderHandler creates a new lab order handler
func NewLabOrderHandler(labOrderService *service.LabOrderService) *LabOrderHandler {
	return &LabOrderHandler{labOrderService: labOrderService}
}

// CreateLabOrder places an order
func (h *LabOrderHandler) CreateLabOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CreateLabOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	appointmentID, ok := optionalUUID(req.AppointmentID)
	if !ok {
		response.BadRequest(c, "Invalid appointment ID")
		return
	}

	order, err := h.labOrderService.CreateLabOrder(c.Request.Context(), &service.CreateLabOrderInput{
		PatientID:     uuid.MustParse(req.PatientID),
		AppointmentID: appointmentID,
		OrderedBy:     actor.UserID,
		Type:          enum.LabOrderType(req.Type),
		TestName:      req.TestName,
		Priority:      enum.LabPriority(req.Priority),
		ClinicalNotes: req.ClinicalNotes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Lab order created successfully", order)
}

// ListLabOrders lists orders by patient, status and type
func (h *LabOrderHandler) ListLabOrders(c *gin.Context) {
	var req request.LabOrderFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	var filter repository.LabOrderFilter
	if req.PatientID != "" {
		id := uuid.MustParse(req.PatientID)
		filter.PatientID = &id
	}
	if req.Status != "" {
		status := enum.LabOrderStatus(req.Status)
		filter.Status = &status
	}
	if req.Type != "" {
		orderType := enum.LabOrderType(req.Type)
		filter.Type = &orderType
	}

	result, err := h.labOrderService.ListLabOrders(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Lab orders retrieved successfully", result)
}

// GetLabOrder handles getting a single order
func (h *LabOrderHandler) GetLabOrder(c *gin.Context) {
	id, ok := paramID(c, "id", "lab order")
	if !ok {
		return
	}

	order, err := h.labOrderService.GetLabOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lab order retrieved successfully", order)
}

// UpdateStatus moves an order forward or cancels it
func (h *LabOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id", "lab order")
	if !ok {
		return
	}

	var req request.LabOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.labOrderService.UpdateStatus(c.Request.Context(), id, enum.LabOrderStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lab order status updated successfully", order)
}

// RecordResult stores the result and completes the order
func (h *LabOrderHandler) RecordResult(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "lab order")
	if !ok {
		return
	}

	var req request.LabResultRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.labOrderService.RecordResult(c.Request.Context(), &service.RecordResultInput{
		ID:         id,
		Result:     req.Result,
		ResultedBy: actor.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lab result recorded successfully", order)
}
