package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
)

// PortalHandler serves the patient portal. Every call is limited to the
// patient record linked to the caller.
type PortalHandler struct {
	portalService *service.PortalService
}

// NewPortalHandler creates a new portal handler
func NewPortalHandler(portalService *service.PortalService) *PortalHandler {
	return &PortalHandler{portalService: portalService}
}

func (h *PortalHandler) GetProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	patient, err := h.portalService.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", patient)
}

func (h *PortalHandler) ListAppointments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.portalService.ListAppointments(c.Request.Context(), actor.UserID, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Appointments retrieved successfully", result)
}

// RequestAppointment books an appointment for the calling patient
func (h *PortalHandler) RequestAppointment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.PortalAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	appointment, err := h.portalService.RequestAppointment(c.Request.Context(), &service.PortalAppointmentInput{
		UserID:    actor.UserID,
		DoctorID:  uuid.MustParse(req.DoctorID),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Appointment requested successfully", appointment)
}

// CancelAppointment cancels one of the caller's upcoming appointments
func (h *PortalHandler) CancelAppointment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "appointment")
	if !ok {
		return
	}

	var req request.CancelRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	appointment, err := h.portalService.CancelAppointment(c.Request.Context(), actor.UserID, id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Appointment cancelled successfully", appointment)
}

func (h *PortalHandler) ListInvoices(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.portalService.ListInvoices(c.Request.Context(), actor.UserID, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

func (h *PortalHandler) ListPrescriptions(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.portalService.ListPrescriptions(c.Request.Context(), actor.UserID, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Prescriptions retrieved successfully", result)
}

// ListLabResults lists completed orders only
func (h *PortalHandler) ListLabResults(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.portalService.ListLabResults(c.Request.Context(), actor.UserID, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Lab results retrieved successfully", result)
}
