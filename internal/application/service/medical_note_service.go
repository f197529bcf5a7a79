package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// MedicalNoteService manages clinical notes
type MedicalNoteService struct {
	noteRepo        repository.MedicalNoteRepository
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
}

// NewMedicalNoteService creates a new medical note service
func NewMedicalNoteService(
	noteRepo repository.MedicalNoteRepository,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
) *MedicalNoteService {
	return &MedicalNoteService{
		noteRepo:        noteRepo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
	}
}

// NoteContent carries the editable parts of a note
type NoteContent struct {
	AppointmentID  *uuid.UUID
	Subjective     string
	Objective      string
	Assessment     string
	Plan           string
	DiagnosisCodes []string
	Vitals         *entity.Vitals
}

// CreateNoteInput represents the create note input
type CreateNoteInput struct {
	PatientID uuid.UUID
	AuthorID  uuid.UUID
	NoteContent
}

// CreateNote writes a note on a patient's chart
func (s *MedicalNoteService) CreateNote(ctx context.Context, input *CreateNoteInput) (*entity.MedicalNote, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}

	patient, err := s.patientRepo.GetByID(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NewNotFoundError("Patient")
	}

	if err := s.checkAppointment(ctx, input.AppointmentID, patient.ID); err != nil {
		return nil, err
	}

	note := &entity.MedicalNote{
		TenantID:       tenantID,
		PatientID:      patient.ID,
		AppointmentID:  input.AppointmentID,
		AuthorID:       input.AuthorID,
		Subjective:     input.Subjective,
		Objective:      input.Objective,
		Assessment:     input.Assessment,
		Plan:           input.Plan,
		DiagnosisCodes: entity.StringList(input.DiagnosisCodes),
		Vitals:         input.Vitals,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *MedicalNoteService) checkAppointment(ctx context.Context, appointmentID *uuid.UUID, patientID uuid.UUID) error {
	if appointmentID == nil {
		return nil
	}
	appointment, err := s.appointmentRepo.GetByID(ctx, *appointmentID)
	if err != nil {
		return err
	}
	if appointment == nil {
		return apperror.NewNotFoundError("Appointment")
	}
	if appointment.PatientID != patientID {
		return apperror.NewBadRequestError("Appointment belongs to a different patient")
	}
	return nil
}

// GetNote retrieves a note by ID
func (s *MedicalNoteService) GetNote(ctx context.Context, id uuid.UUID) (*entity.MedicalNote, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NewNotFoundError("Note")
	}
	return note, nil
}

// ListPatientNotes lists the notes on a patient's chart, newest first
func (s *MedicalNoteService) ListPatientNotes(ctx context.Context, patientID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.MedicalNote], error) {
	params.Validate()
	notes, total, err := s.noteRepo.ListByPatient(ctx, patientID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(notes, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateNoteInput represents the update note input
type UpdateNoteInput struct {
	ID    uuid.UUID
	Actor Actor
	NoteContent
}

// UpdateNote edits a note. Only its author or an admin may do so.
func (s *MedicalNoteService) UpdateNote(ctx context.Context, input *UpdateNoteInput) (*entity.MedicalNote, error) {
	note, err := s.GetNote(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if note.AuthorID != input.Actor.UserID && !input.Actor.IsAdmin() {
		return nil, apperror.NewForbiddenError("Only the author or an admin can edit this note")
	}

	if err := s.checkAppointment(ctx, input.AppointmentID, note.PatientID); err != nil {
		return nil, err
	}

	note.AppointmentID = input.AppointmentID
	note.Subjective = input.Subjective
	note.Objective = input.Objective
	note.Assessment = input.Assessment
	note.Plan = input.Plan
	note.DiagnosisCodes = entity.StringList(input.DiagnosisCodes)
	note.Vitals = input.Vitals
	note.Author = nil

	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes a note. Admin only.
func (s *MedicalNoteService) DeleteNote(ctx context.Context, id uuid.UUID, actor Actor) error {
	if !actor.IsAdmin() {
		return apperror.NewForbiddenError("Only an admin can delete notes")
	}
	if _, err := s.GetNote(ctx, id); err != nil {
		return err
	}
	return s.noteRepo.Delete(ctx, id)
}
