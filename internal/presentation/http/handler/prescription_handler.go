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

// PrescriptionHandler handles prescription HTTP requests
type PrescriptionHandler struct {
	prescriptionService *service.PrescriptionService
}

// NewPrescriptionHandler creates a new prescription handler
func NewPrescriptionHandler(prescriptionService *service.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptionService: prescriptionService}
}

// CreatePrescription prescribes medication. The caller is the prescribing doctor.
func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CreatePrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	appointmentID, ok := optionalUUID(req.AppointmentID)
	if !ok {
		response.BadRequest(c, "Invalid appointment ID")
		return
	}

	items := make([]service.PrescriptionItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.PrescriptionItemInput{
			Medication:   item.Medication,
			Dosage:       item.Dosage,
			Frequency:    item.Frequency,
			DurationDays: item.DurationDays,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		}
	}

	prescription, err := h.prescriptionService.CreatePrescription(c.Request.Context(), &service.CreatePrescriptionInput{
		PatientID:     uuid.MustParse(req.PatientID),
		DoctorID:      actor.UserID,
		AppointmentID: appointmentID,
		Notes:         req.Notes,
		Items:         items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Prescription created successfully", prescription)
}

// ListPrescriptions lists prescriptions by patient and status
func (h *PrescriptionHandler) ListPrescriptions(c *gin.Context) {
	var req request.PrescriptionFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	var filter repository.PrescriptionFilter
	if req.PatientID != "" {
		id := uuid.MustParse(req.PatientID)
		filter.PatientID = &id
	}
	if req.Status != "" {
		status := enum.PrescriptionStatus(req.Status)
		filter.Status = &status
	}

	result, err := h.prescriptionService.ListPrescriptions(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Prescriptions retrieved successfully", result)
}

// GetPrescription handles getting a single prescription with its items
func (h *PrescriptionHandler) GetPrescription(c *gin.Context) {
	id, ok := paramID(c, "id", "prescription")
	if !ok {
		return
	}

	prescription, err := h.prescriptionService.GetPrescription(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Prescription retrieved successfully", prescription)
}

// UpdateStatus completes or cancels an active prescription
func (h *PrescriptionHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id", "prescription")
	if !ok {
		return
	}

	var req request.PrescriptionStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	prescription, err := h.prescriptionService.UpdateStatus(c.Request.Context(), id, enum.PrescriptionStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Prescription status updated successfully", prescription)
}

// DeletePrescription removes an active prescription
func (h *PrescriptionHandler) DeletePrescription(c *gin.Context) {
	id, ok := paramID(c, "id", "prescription")
	if !ok {
		return
	}

	if err := h.prescriptionService.DeletePrescription(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Prescription deleted successfully", nil)
}
