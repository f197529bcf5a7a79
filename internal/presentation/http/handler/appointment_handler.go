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

// AppointmentHandler handles appointment HTTP requests
type AppointmentHandler struct {
	appointmentService *service.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointmentService *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// CreateAppointment books an appointment
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	appointment, err := h.appointmentService.CreateAppointment(c.Request.Context(), &service.CreateAppointmentInput{
		PatientID: uuid.MustParse(req.PatientID),
		DoctorID:  uuid.MustParse(req.DoctorID),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    enum.AppointmentStatus(req.Status),
		Reason:    req.Reason,
		Notes:     req.Notes,
		CreatedBy: actor.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Appointment created successfully", appointment)
}

// GetAppointment handles getting a single appointment
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	id, ok := paramID(c, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentService.GetAppointment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Appointment retrieved successfully", appointment)
}

// ListAppointments handles listing appointments with filters
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	var req request.AppointmentFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	var filter repository.AppointmentFilter
	if req.DoctorID != "" {
		id := uuid.MustParse(req.DoctorID)
		filter.DoctorID = &id
	}
	if req.PatientID != "" {
		id := uuid.MustParse(req.PatientID)
		filter.PatientID = &id
	}
	if req.Status != "" {
		status := enum.AppointmentStatus(req.Status)
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

	result, err := h.appointmentService.ListAppointments(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Appointments retrieved successfully", result)
}

// UpdateAppointment reschedules or edits an appointment
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	id, ok := paramID(c, "id", "appointment")
	if !ok {
		return
	}

	var req request.UpdateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateAppointmentInput{
		ID:        id,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
		Notes:     req.Notes,
	}
	if req.PatientID != nil {
		patientID := uuid.MustParse(*req.PatientID)
		input.PatientID = &patientID
	}
	if req.DoctorID != nil {
		doctorID := uuid.MustParse(*req.DoctorID)
		input.DoctorID = &doctorID
	}
	if req.Status != nil {
		status := enum.AppointmentStatus(*req.Status)
		input.Status = &status
	}

	appointment, err := h.appointmentService.UpdateAppointment(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Appointment updated successfully", appointment)
}

// UpdateStatus moves an appointment through its lifecycle
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id", "appointment")
	if !ok {
		return
	}

	var req request.UpdateAppointmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	appointment, err := h.appointmentService.UpdateStatus(c.Request.Context(), id, enum.AppointmentStatus(req.Status), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Appointment status updated successfully", appointment)
}

// CancelAppointment cancels an appointment with an optional reason
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	id, ok := paramID(c, "id", "appointment")
	if !ok {
		return
	}

	var req request.CancelRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	appointment, err := h.appointmentService.CancelAppointment(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Appointment cancelled successfully", appointment)
}

// DeleteAppointment deletes a scheduled or cancelled appointment
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	id, ok := paramID(c, "id", "appointment")
	if !ok {
		return
	}

	if err := h.appointmentService.DeleteAppointment(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Appointment deleted successfully", nil)
}

// GetAvailability lists a doctor's free slots on a date
func (h *AppointmentHandler) GetAvailability(c *gin.Context) {
	var req request.AvailabilityRequest
	if !bindQuery(c, &req) {
		return
	}

	availability, err := h.appointmentService.GetAvailability(c.Request.Context(), &service.AvailabilityInput{
		DoctorID:        uuid.MustParse(req.DoctorID),
		Date:            req.Date,
		DurationMinutes: req.Duration,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Availability retrieved successfully", availability)
}
