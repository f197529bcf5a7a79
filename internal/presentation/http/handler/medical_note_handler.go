package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
)

// MedicalNoteHandler handles clinical note HTTP requests
type MedicalNoteHandler struct {
	noteService *service.MedicalNoteService
}

// NewMedicalNoteHandler creates a new medical note handler
func NewMedicalNoteHandler(noteService *service.MedicalNoteService) *MedicalNoteHandler {
	return &MedicalNoteHandler{noteService: noteService}
}

func toNoteContent(c *gin.Context, req *request.NoteRequest) (service.NoteContent, bool) {
	appointmentID, ok := optionalUUID(req.AppointmentID)
	if !ok {
		response.BadRequest(c, "Invalid appointment ID")
		return service.NoteContent{}, false
	}
	return service.NoteContent{
		AppointmentID:  appointmentID,
		Subjective:     req.Subjective,
		Objective:      req.Objective,
		Assessment:     req.Assessment,
		Plan:           req.Plan,
		DiagnosisCodes: req.DiagnosisCodes,
		Vitals:         req.Vitals,
	}, true
}

// CreateNote adds a note to a patient's chart
func (h *MedicalNoteHandler) CreateNote(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	patientID, ok := paramID(c, "id", "patient")
	if !ok {
		return
	}

	var req request.NoteRequest
	if !bindJSON(c, &req) {
		return
	}
	content, ok := toNoteContent(c, &req)
	if !ok {
		return
	}

	note, err := h.noteService.CreateNote(c.Request.Context(), &service.CreateNoteInput{
		PatientID:   patientID,
		AuthorID:    actor.UserID,
		NoteContent: content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Note created successfully", note)
}

// ListPatientNotes lists a patient's notes, newest first
func (h *MedicalNoteHandler) ListPatientNotes(c *gin.Context) {
	patientID, ok := paramID(c, "id", "patient")
	if !ok {
		return
	}

	result, err := h.noteService.ListPatientNotes(c.Request.Context(), patientID, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Notes retrieved successfully", result)
}

// GetNote handles getting a single note
func (h *MedicalNoteHandler) GetNote(c *gin.Context) {
	id, ok := paramID(c, "id", "note")
	if !ok {
		return
	}

	note, err := h.noteService.GetNote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Note retrieved successfully", note)
}

// UpdateNote edits a note
func (h *MedicalNoteHandler) UpdateNote(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "note")
	if !ok {
		return
	}

	var req request.NoteRequest
	if !bindJSON(c, &req) {
		return
	}
	content, ok := toNoteContent(c, &req)
	if !ok {
		return
	}

	note, err := h.noteService.UpdateNote(c.Request.Context(), &service.UpdateNoteInput{
		ID:          id,
		Actor:       actor,
		NoteContent: content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Note updated successfully", note)
}

// DeleteNote removes a note
func (h *MedicalNoteHandler) DeleteNote(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "note")
	if !ok {
		return
	}

	if err := h.noteService.DeleteNote(c.Request.Context(), id, actor); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Note deleted successfully", nil)
}
