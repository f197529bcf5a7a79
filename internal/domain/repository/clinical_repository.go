package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// MedicalNoteRepository defines the interface for clinical note data operations
type MedicalNoteRepository interface {
	Create(ctx context.Context, note *entity.MedicalNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.MedicalNote, error)
	Update(ctx context.Context, note *entity.MedicalNote) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, params *pagination.PaginationParams) ([]entity.MedicalNote, int64, error)
}

// PrescriptionFilter narrows prescription listings
type PrescriptionFilter struct {
	PatientID *uuid.UUID
	Status    *enum.PrescriptionStatus
}

// PrescriptionRepository defines the interface for prescription data operations
type PrescriptionRepository interface {
	// Create inserts the prescription together with its items
	Create(ctx context.Context, prescription *entity.Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Prescription, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PrescriptionStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter PrescriptionFilter, params *pagination.PaginationParams) ([]entity.Prescription, int64, error)
}

// LabOrderFilter narrows lab order listings
type LabOrderFilter struct {
	PatientID *uuid.UUID
	Status    *enum.LabOrderStatus
	Type      *enum.LabOrderType
}

// LabOrderRepository defines the interface for lab and imaging order data operations
type LabOrderRepository interface {
	Create(ctx context.Context, order *entity.LabOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.LabOrder, error)
	Update(ctx context.Context, order *entity.LabOrder) error
	List(ctx context.Context, filter LabOrderFilter, params *pagination.PaginationParams) ([]entity.LabOrder, int64, error)
}
