package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// PrescriptionService manages medication orders
type PrescriptionService struct {
	prescriptionRepo repository.PrescriptionRepository
	patientRepo      repository.PatientRepository
}

// NewPrescriptionService creates a new prescription service
func NewPrescriptionService(prescriptionRepo repository.PrescriptionRepository, patientRepo repository.PatientRepository) *PrescriptionService {
	return &PrescriptionService{
		prescriptionRepo: prescriptionRepo,
		patientRepo:      patientRepo,
	}
}

// PrescriptionItemInput is one medication line of a new prescription
type PrescriptionItemInput struct {
	Medication   string
	Dosage       string
	Frequency    string
	DurationDays int
	Quantity     int
	Instructions *string
}

// CreatePrescriptionInput represents the create prescription input
type CreatePrescriptionInput struct {
	PatientID     uuid.UUID
	DoctorID      uuid.UUID
	AppointmentID *uuid.UUID
	Notes         *string
	Items         []PrescriptionItemInput
}

// CreatePrescription records a prescription with its medication lines
func (s *PrescriptionService) CreatePrescription(ctx context.Context, input *CreatePrescriptionInput) (*entity.Prescription, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("A prescription needs at least one medication")
	}

	patient, err := s.patientRepo.GetByID(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NewNotFoundError("Patient")
	}

	items := make([]entity.PrescriptionItem, 0, len(input.Items))
	for _, it := range input.Items {
		if strings.TrimSpace(it.Medication) == "" {
			return nil, apperror.NewBadRequestError("Medication name is required")
		}
		if it.DurationDays < 0 || it.Quantity < 0 {
			return nil, apperror.NewBadRequestError("Duration and quantity cannot be negative")
		}
		items = append(items, entity.PrescriptionItem{
			Medication:   it.Medication,
			Dosage:       it.Dosage,
			Frequency:    it.Frequency,
			DurationDays: it.DurationDays,
			Quantity:     it.Quantity,
			Instructions: it.Instructions,
		})
	}

	prescription := &entity.Prescription{
		TenantID:      tenantID,
		PatientID:     patient.ID,
		DoctorID:      input.DoctorID,
		AppointmentID: input.AppointmentID,
		Status:        enum.PrescriptionStatusActive,
		Notes:         input.Notes,
		Items:         items,
	}

	if err := s.prescriptionRepo.Create(ctx, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

// GetPrescription retrieves a prescription with its items
func (s *PrescriptionService) GetPrescription(ctx context.Context, id uuid.UUID) (*entity.Prescription, error) {
	prescription, err := s.prescriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prescription == nil {
		return nil, apperror.NewNotFoundError("Prescription")
	}
	return prescription, nil
}

// ListPrescriptions lists prescriptions matching the filter
func (s *PrescriptionService) ListPrescriptions(ctx context.Context, filter repository.PrescriptionFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Prescription], error) {
	params.Validate()
	prescriptions, total, err := s.prescriptionRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(prescriptions, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateStatus closes an active prescription as completed or cancelled
func (s *PrescriptionService) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PrescriptionStatus) (*entity.Prescription, error) {
	if status != enum.PrescriptionStatusCompleted && status != enum.PrescriptionStatusCancelled {
		return nil, apperror.NewBadRequestError("Status must be COMPLETED or CANCELLED")
	}

	prescription, err := s.GetPrescription(ctx, id)
	if err != nil {
		return nil, err
	}
	if prescription.Status != enum.PrescriptionStatusActive {
		return nil, apperror.NewBadRequestError("Only active prescriptions can change status")
	}

	if err := s.prescriptionRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	prescription.Status = status
	return prescription, nil
}

// DeletePrescription removes a prescription that is still active
func (s *PrescriptionService) DeletePrescription(ctx context.Context, id uuid.UUID) error {
	prescription, err := s.GetPrescription(ctx, id)
	if err != nil {
		return err
	}
	if prescription.Status != enum.PrescriptionStatusActive {
		return apperror.NewBadRequestError("Only active prescriptions can be deleted")
	}
	return s.prescriptionRepo.Delete(ctx, id)
}
