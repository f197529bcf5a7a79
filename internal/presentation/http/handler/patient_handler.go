package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// PatientHandler handles patient HTTP requests
type PatientHandler struct {
	patientService *service.PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientService *service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

func toPatientInput(req *request.PatientRequest) service.PatientInput {
	var dob *time.Time
	if req.DateOfBirth != "" {
		// format already checked by the date binding tag
		if t, err := time.Parse("2006-01-02", req.DateOfBirth); err == nil {
			dob = &t
		}
	}
	return service.PatientInput{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		DateOfBirth:           dob,
		Gender:                enum.Gender(req.Gender),
		Phone:                 req.Phone,
		Email:                 req.Email,
		Address:               req.Address,
		BloodGroup:            req.BloodGroup,
		Allergies:             req.Allergies,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
	}
}

// CreatePatient handles registering a patient
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.PatientRequest
	if !bindJSON(c, &req) {
		return
	}

	patient, err := h.patientService.CreatePatient(c.Request.Context(), &service.CreatePatientInput{
		PatientInput: toPatientInput(&req),
		CreatedBy:    actor.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Patient created successfully", patient)
}

// GetPatient handles getting a single patient
func (h *PatientHandler) GetPatient(c *gin.Context) {
	id, ok := paramID(c, "id", "patient")
	if !ok {
		return
	}

	patient, err := h.patientService.GetPatient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient retrieved successfully", patient)
}

// ListPatients handles listing patients. Passing cursor or limit switches to
// cursor pagination, which suits long scrolling lists.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	var req request.PatientFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	page := pagination.UnifiedPaginationParams{
		Page:      req.Page,
		PerPage:   req.PerPage,
		Cursor:    req.Cursor,
		Direction: pagination.CursorDirection(req.Direction),
		Limit:     req.Limit,
	}
	if page.IsCursorBased() {
		result, err := h.patientService.ListPatientsWithCursor(c.Request.Context(), page.ToCursorParams(), req.Search)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, "Patients retrieved successfully",
			pagination.NewUnifiedPaginatedResultFromCursor(result.Items, result.Pagination))
		return
	}

	result, err := h.patientService.ListPatients(c.Request.Context(), page.ToPaginationParams(), req.Search)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Patients retrieved successfully", result)
}

// UpdatePatient handles updating a patient's demographics
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	id, ok := paramID(c, "id", "patient")
	if !ok {
		return
	}

	var req request.PatientRequest
	if !bindJSON(c, &req) {
		return
	}

	patient, err := h.patientService.UpdatePatient(c.Request.Context(), &service.UpdatePatientInput{
		ID:           id,
		PatientInput: toPatientInput(&req),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient updated successfully", patient)
}

// DeletePatient handles deleting a patient
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	id, ok := paramID(c, "id", "patient")
	if !ok {
		return
	}

	if err := h.patientService.DeletePatient(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient deleted successfully", nil)
}

// GetSummary returns the chart header for a patient
func (h *PatientHandler) GetSummary(c *gin.Context) {
	id, ok := paramID(c, "id", "patient")
	if !ok {
		return
	}

	summary, err := h.patientService.GetSummary(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient summary retrieved successfully", summary)
}

// EnablePortalAccess creates a portal login for the patient
func (h *PatientHandler) EnablePortalAccess(c *gin.Context) {
	id, ok := paramID(c, "id", "patient")
	if !ok {
		return
	}

	var req request.PortalAccessRequest
	if !bindJSON(c, &req) {
		return
	}

	patient, err := h.patientService.EnablePortalAccess(c.Request.Context(), &service.EnablePortalAccessInput{
		PatientID: id,
		Password:  req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Portal access enabled", patient)
}
