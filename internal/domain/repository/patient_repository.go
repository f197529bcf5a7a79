package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// PatientRepository defines the interface for patient data operations
type PatientRepository interface {
	Create(ctx context.Context, patient *entity.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*entity.Patient, error)
	// GetByUserID resolves the patient record linked to a portal account
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Patient, error)
	Update(ctx context.Context, patient *entity.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Patient, int64, error)
	ListWithCursor(ctx context.Context, params *pagination.CursorParams, search string) ([]entity.Patient, error)
	Count(ctx context.Context) (int64, error)
}
